package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"ainews/internal/config"
	"ainews/internal/domain"
)

const arxivTestFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>ArXiv Query: search_query=cat:cs.AI</title>
  <entry>
    <id>http://arxiv.org/abs/2609.00001v1</id>
    <title>Planning with
 Latent Rollouts</title>
    <summary>We study planning
 over latent rollouts.</summary>
    <published>2026-08-31T00:00:00Z</published>
    <link href="http://arxiv.org/abs/2609.00001v1" rel="alternate" type="text/html"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2609.00002v1</id>
    <title>Second Paper</title>
    <summary>Second abstract.</summary>
    <published>2026-08-31T00:00:00Z</published>
    <link href="http://arxiv.org/abs/2609.00002v1" rel="alternate" type="text/html"/>
  </entry>
</feed>`

func TestArxivFetchDirect(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, arxivTestFeed)
	}))
	defer server.Close()

	adapter := NewArxivAdapter(config.ArxivConfig{QueryURL: server.URL, MaxItems: 3}, server.Client(), testLogger())

	items, err := adapter.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Source != domain.SourceArxiv {
		t.Fatalf("unexpected source %q", items[0].Source)
	}
	if items[0].Title != "Planning with Latent Rollouts" {
		t.Fatalf("whitespace not collapsed in title: %q", items[0].Title)
	}
	if items[0].BodyText != "We study planning over latent rollouts." {
		t.Fatalf("unexpected abstract: %q", items[0].BodyText)
	}
	if items[0].PublishedAt == nil || domain.DateOf(*items[0].PublishedAt) != "2026-08-31" {
		t.Fatalf("unexpected publication date: %v", items[0].PublishedAt)
	}
}

func TestArxivFetchBoundsItems(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, arxivTestFeed)
	}))
	defer server.Close()

	adapter := NewArxivAdapter(config.ArxivConfig{QueryURL: server.URL, MaxItems: 1}, server.Client(), testLogger())

	items, err := adapter.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected max 1 item, got %d", len(items))
	}
}

func TestArxivFetchFallsBackToParserFetch(t *testing.T) {
	t.Parallel()

	var requests int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&requests, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, arxivTestFeed)
	}))
	defer server.Close()

	adapter := NewArxivAdapter(config.ArxivConfig{QueryURL: server.URL, MaxItems: 3}, server.Client(), testLogger())

	items, err := adapter.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fallback path should recover, got %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items from fallback, got %d", len(items))
	}
	if atomic.LoadInt64(&requests) != 2 {
		t.Fatalf("expected exactly two upstream requests, got %d", requests)
	}
}

func TestArxivFetchBothPathsBroken(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	adapter := NewArxivAdapter(config.ArxivConfig{QueryURL: server.URL, MaxItems: 3}, server.Client(), testLogger())

	if _, err := adapter.Fetch(context.Background()); err == nil {
		t.Fatal("expected an error when both fetch paths fail")
	}
}
