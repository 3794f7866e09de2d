package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewSupabaseStoreRequiresCredentials(t *testing.T) {
	t.Parallel()

	if _, err := NewSupabaseStore("", "key"); err == nil {
		t.Fatal("expected an error for a missing url")
	}
	if _, err := NewSupabaseStore("https://x.supabase.co", ""); err == nil {
		t.Fatal("expected an error for a missing key")
	}
}

func TestSupabaseInsert(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/rest/v1/articles" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("apikey") != "secret" || r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("missing auth headers")
		}

		var record map[string]any
		if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if record["title"] != "A" {
			t.Errorf("unexpected record %+v", record)
		}

		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	store, err := NewSupabaseStore(server.URL, "secret")
	if err != nil {
		t.Fatalf("NewSupabaseStore: %v", err)
	}

	res, err := store.Insert(context.Background(), "articles", map[string]any{"title": "A"})
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if !res.Success || res.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestSupabaseInsertRejection(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"message":"duplicate key value"}`)
	}))
	defer server.Close()

	store, err := NewSupabaseStore(server.URL, "secret")
	if err != nil {
		t.Fatalf("NewSupabaseStore: %v", err)
	}

	res, err := store.Insert(context.Background(), "articles", map[string]any{"title": "A"})
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if res.Success {
		t.Fatal("conflict must not report success")
	}
	if res.StatusCode != http.StatusConflict || res.Body == "" {
		t.Fatalf("expected status and body to be captured, got %+v", res)
	}
}

func TestSupabaseQueryEncodesFilters(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("select") != "*" {
			t.Errorf("missing select param")
		}
		if q.Get("source") != "eq.arXiv" || q.Get("date") != "eq.2026-09-01" {
			t.Errorf("unexpected filters %v", q)
		}
		fmt.Fprint(w, `[{"id":1,"source":"arXiv","title":"Paper"}]`)
	}))
	defer server.Close()

	store, err := NewSupabaseStore(server.URL, "secret")
	if err != nil {
		t.Fatalf("NewSupabaseStore: %v", err)
	}

	rows, err := store.Query(context.Background(), "articles", map[string]string{
		"source": "arXiv",
		"date":   "2026-09-01",
	})
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}
	if len(rows) != 1 || rows[0]["title"] != "Paper" {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func TestSupabaseQueryErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"invalid api key"}`)
	}))
	defer server.Close()

	store, err := NewSupabaseStore(server.URL, "bad")
	if err != nil {
		t.Fatalf("NewSupabaseStore: %v", err)
	}

	if _, err := store.Query(context.Background(), "articles", nil); err == nil {
		t.Fatal("expected an error on non-200 status")
	}
}
