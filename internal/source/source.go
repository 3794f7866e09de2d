package source

import (
	"context"
	"fmt"

	"ainews/internal/domain"
)

// Adapter fetches a small bounded batch of candidate items for one trigger.
type Adapter interface {
	// Name identifies the trigger inside the registry (news, arxiv, youtube).
	Name() string
	// FreshnessSource is the stored source probed by the already-ran-today check.
	FreshnessSource() string
	Fetch(ctx context.Context) ([]domain.RawItem, error)
}

// Registry keeps a mapping from trigger names to their adapters.
type Registry struct {
	adapters map[string]Adapter
	order    []string
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: map[string]Adapter{}}
}

// Register adds or replaces an adapter.
func (r *Registry) Register(adapter Adapter) {
	if r.adapters == nil {
		r.adapters = map[string]Adapter{}
	}
	if _, ok := r.adapters[adapter.Name()]; !ok {
		r.order = append(r.order, adapter.Name())
	}
	r.adapters[adapter.Name()] = adapter
}

// Resolve returns an adapter by trigger name or an error if it is absent.
func (r *Registry) Resolve(name string) (Adapter, error) {
	if adapter, ok := r.adapters[name]; ok {
		return adapter, nil
	}
	return nil, fmt.Errorf("source %s is not registered", name)
}

// Names lists registered triggers in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}
