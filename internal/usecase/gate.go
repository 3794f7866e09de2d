package usecase

import (
	"context"
	"log/slog"
	"time"

	"ainews/internal/domain"
	"ainews/internal/ports"
)

// Gate guards inserts against same-day reruns and (source, title) duplicates.
// Duplicate detection is exact string equality on both fields; normalized or
// near-duplicate titles pass through. Query failures degrade to "not found"
// so an unreachable store never blocks an ingestion attempt outright.
type Gate struct {
	store  ports.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewGate wires the gate to the articles datastore.
func NewGate(store ports.Store, logger *slog.Logger) *Gate {
	return &Gate{store: store, logger: logger, now: time.Now}
}

// HasToday reports whether any article from source is already stored under
// the current date.
func (g *Gate) HasToday(ctx context.Context, source string) bool {
	rows, err := g.store.Query(ctx, domain.ArticlesTable, map[string]string{
		"date":   domain.DateOf(g.now()),
		"source": source,
	})
	if err != nil {
		g.logger.Warn("freshness check failed", "source", source, "error", err)
		return false
	}
	return len(rows) > 0
}

// Exists reports whether an article with the same source and exact title is
// already stored.
func (g *Gate) Exists(ctx context.Context, source, title string) bool {
	rows, err := g.store.Query(ctx, domain.ArticlesTable, map[string]string{
		"source": source,
		"title":  title,
	})
	if err != nil {
		g.logger.Warn("duplicate check failed", "source", source, "title", title, "error", err)
		return false
	}
	return len(rows) > 0
}

// Upload inserts the article unless an identical (source, title) row already
// exists, returning true only when the store reported success. Concurrent
// writers can still double-insert between the existence check and the
// insert; there is no cross-process lock.
func (g *Gate) Upload(ctx context.Context, article domain.Article) bool {
	if g.Exists(ctx, article.Source, article.Title) {
		g.logger.Info("article already stored", "source", article.Source, "title", article.Title)
		return false
	}

	res, err := g.store.Insert(ctx, domain.ArticlesTable, article.Record())
	if err != nil {
		g.logger.Error("insert failed", "source", article.Source, "title", article.Title, "error", err)
		return false
	}
	if !res.Success {
		g.logger.Error("store rejected insert",
			"source", article.Source, "title", article.Title,
			"status", res.StatusCode, "body", res.Body)
		return false
	}

	g.logger.Info("article stored", "source", article.Source, "title", article.Title)
	return true
}
