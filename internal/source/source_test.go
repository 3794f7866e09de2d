package source

import (
	"context"
	"testing"

	"ainews/internal/domain"
)

type stubAdapter struct {
	name string
}

func (s stubAdapter) Name() string            { return s.name }
func (s stubAdapter) FreshnessSource() string { return s.name }
func (s stubAdapter) Fetch(ctx context.Context) ([]domain.RawItem, error) {
	return nil, nil
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register(stubAdapter{name: "news"})

	adapter, err := r.Resolve("news")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if adapter.Name() != "news" {
		t.Fatalf("unexpected adapter %q", adapter.Name())
	}

	if _, err := r.Resolve("reddit"); err == nil {
		t.Fatal("expected an error for an unregistered source")
	}
}

func TestRegistryNamesKeepRegistrationOrder(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register(stubAdapter{name: "news"})
	r.Register(stubAdapter{name: "arxiv"})
	r.Register(stubAdapter{name: "youtube"})
	r.Register(stubAdapter{name: "arxiv"})

	names := r.Names()
	if len(names) != 3 {
		t.Fatalf("expected 3 names, got %v", names)
	}
	if names[0] != "news" || names[1] != "arxiv" || names[2] != "youtube" {
		t.Fatalf("unexpected order %v", names)
	}
}
