package ports

import (
	"context"
	"time"
)

// ChatModel runs a single chat-completion round trip against an external
// language model.
type ChatModel interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// InsertResult carries the datastore's verdict on one insert attempt.
type InsertResult struct {
	Success    bool
	StatusCode int
	Body       string
}

// Store is the boundary to the articles datastore. Filters are conjunctive
// equality predicates.
type Store interface {
	Insert(ctx context.Context, table string, record map[string]any) (InsertResult, error)
	Query(ctx context.Context, table string, filters map[string]string) ([]map[string]any, error)
}

// Notifier publishes cycle digests to an external channel.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when ingestion cycles execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}

// Limiter enforces a minimum spacing between successive calls.
type Limiter interface {
	Wait(ctx context.Context) error
}
