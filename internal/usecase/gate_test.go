package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"ainews/internal/domain"
	"ainews/internal/ports"
)

type fakeStore struct {
	mu           sync.Mutex
	rows         []map[string]any
	queryErr     error
	insertErr    error
	insertResult *ports.InsertResult
	queries      int
	inserts      int
}

func (f *fakeStore) Insert(ctx context.Context, table string, record map[string]any) (ports.InsertResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts++
	if f.insertErr != nil {
		return ports.InsertResult{}, f.insertErr
	}
	if f.insertResult != nil {
		return *f.insertResult, nil
	}
	f.rows = append(f.rows, record)
	return ports.InsertResult{Success: true, StatusCode: 201}, nil
}

func (f *fakeStore) Query(ctx context.Context, table string, filters map[string]string) ([]map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	var out []map[string]any
	for _, row := range f.rows {
		matched := true
		for column, want := range filters {
			if got, _ := row[column].(string); got != want {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeStore) counts() (queries, inserts int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries, f.inserts
}

func storedRow(source, title, date string) map[string]any {
	return map[string]any{
		"source":   source,
		"title":    title,
		"summary":  "s",
		"category": "research",
		"url":      "https://example.org",
		"date":     date,
	}
}

func TestHasToday(t *testing.T) {
	t.Parallel()

	today := domain.DateOf(time.Now())
	store := &fakeStore{rows: []map[string]any{storedRow(domain.SourceArxiv, "Paper", today)}}
	gate := NewGate(store, testLogger())

	if !gate.HasToday(context.Background(), domain.SourceArxiv) {
		t.Fatal("expected arXiv to be fresh today")
	}
	if gate.HasToday(context.Background(), domain.SourceYouTube) {
		t.Fatal("expected YouTube to be stale")
	}
}

func TestHasTodayQueryErrorMeansStale(t *testing.T) {
	t.Parallel()

	store := &fakeStore{queryErr: fmt.Errorf("store unreachable")}
	gate := NewGate(store, testLogger())

	if gate.HasToday(context.Background(), domain.SourceArxiv) {
		t.Fatal("query errors must not mark a source fresh")
	}
}

func TestUploadSkipsDuplicates(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	gate := NewGate(store, testLogger())
	article := domain.Article{
		Source: domain.SourceTechCrunch, Title: "A", Summary: "s",
		Category: "research", URL: "u", Date: "2026-09-01",
	}

	if !gate.Upload(context.Background(), article) {
		t.Fatal("first upload should succeed")
	}
	if gate.Upload(context.Background(), article) {
		t.Fatal("second upload of the same (source, title) must be rejected")
	}
	if _, inserts := store.counts(); inserts != 1 {
		t.Fatalf("expected exactly one insert, got %d", inserts)
	}
}

func TestUploadReportsStoreRejection(t *testing.T) {
	t.Parallel()

	store := &fakeStore{insertResult: &ports.InsertResult{Success: false, StatusCode: 400, Body: "bad request"}}
	gate := NewGate(store, testLogger())

	if gate.Upload(context.Background(), domain.Article{Source: "s", Title: "t"}) {
		t.Fatal("rejected insert must report false")
	}
}

func TestUploadReportsTransportError(t *testing.T) {
	t.Parallel()

	store := &fakeStore{insertErr: fmt.Errorf("connection reset")}
	gate := NewGate(store, testLogger())

	if gate.Upload(context.Background(), domain.Article{Source: "s", Title: "t"}) {
		t.Fatal("transport errors must report false")
	}
}
