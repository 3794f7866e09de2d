package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"ainews/internal/domain"
	"ainews/internal/ports"
	"ainews/internal/source"
)

const defaultSourceTimeout = 5 * time.Minute

// PipelineDeps wires all collaborators into the ingestion orchestrator.
type PipelineDeps struct {
	Registry      *source.Registry
	Enricher      *Enricher
	Gate          *Gate
	Limiters      map[string]ports.Limiter
	SourceTimeout time.Duration
	Logger        *slog.Logger
}

// Pipeline sequences fetch, enrichment, and gated upload for each source and
// fans out across sources. Failures stay isolated per source: one broken
// upstream turns into a report entry, never into a failed cycle.
type Pipeline struct {
	registry      *source.Registry
	enricher      *Enricher
	gate          *Gate
	limiters      map[string]ports.Limiter
	sourceTimeout time.Duration
	logger        *slog.Logger
	now           func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	timeout := deps.SourceTimeout
	if timeout <= 0 {
		timeout = defaultSourceTimeout
	}
	return &Pipeline{
		registry:      deps.Registry,
		enricher:      deps.Enricher,
		gate:          deps.Gate,
		limiters:      deps.Limiters,
		sourceTimeout: timeout,
		logger:        deps.Logger,
		now:           time.Now,
	}
}

// UpdateSource runs one trigger's pipeline. The second return value reports
// whether the run was skipped because the source already produced articles
// today; a skipped source performs no fetch, enrichment, or store calls.
func (p *Pipeline) UpdateSource(ctx context.Context, trigger string) (domain.SourceReport, bool) {
	adapter, err := p.registry.Resolve(trigger)
	if err != nil {
		return domain.SourceReport{Trigger: trigger, Err: err}, false
	}

	if p.gate.HasToday(ctx, adapter.FreshnessSource()) {
		p.logger.Info("source already updated today", "trigger", trigger)
		return domain.SourceReport{Trigger: trigger}, true
	}

	return p.runAdapter(ctx, adapter), false
}

// UpdateAll evaluates freshness for every registered source up front, then
// runs the pending pipelines concurrently and joins them into one report.
// An all-skipped cycle terminates without any outbound call.
func (p *Pipeline) UpdateAll(ctx context.Context) domain.Report {
	var (
		pending []source.Adapter
		report  domain.Report
	)
	for _, name := range p.registry.Names() {
		adapter, err := p.registry.Resolve(name)
		if err != nil {
			report.Updated = append(report.Updated, domain.SourceReport{Trigger: name, Err: err})
			continue
		}
		if p.gate.HasToday(ctx, adapter.FreshnessSource()) {
			report.Skipped = append(report.Skipped, name)
			continue
		}
		pending = append(pending, adapter)
	}

	if len(pending) == 0 {
		p.logger.Info("all sources already updated today")
		return report
	}

	results := make([]domain.SourceReport, len(pending))
	var wg sync.WaitGroup
	for i, adapter := range pending {
		wg.Add(1)
		go func(i int, a source.Adapter) {
			defer wg.Done()
			results[i] = p.runAdapter(ctx, a)
		}(i, adapter)
	}
	wg.Wait()

	report.Updated = append(report.Updated, results...)
	return report
}

// runAdapter processes one source sequentially: items keep fetch order, and
// the source's limiter spaces out enrichment calls to respect upstream rate
// limits. A per-source timeout keeps one hung upstream from stalling the
// whole cycle.
func (p *Pipeline) runAdapter(ctx context.Context, adapter source.Adapter) domain.SourceReport {
	ctx, cancel := context.WithTimeout(ctx, p.sourceTimeout)
	defer cancel()

	trigger := adapter.Name()
	report := domain.SourceReport{Trigger: trigger}

	items, err := adapter.Fetch(ctx)
	if err != nil {
		p.logger.Error("fetch failed", "trigger", trigger, "error", err)
		report.Err = fmt.Errorf("fetch %s: %w", trigger, err)
		return report
	}
	p.logger.Info("fetched items", "trigger", trigger, "count", len(items))

	limiter := p.limiters[trigger]
	for _, item := range items {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				report.Err = fmt.Errorf("throttle %s: %w", trigger, err)
				return report
			}
		}

		text := item.BodyText
		if strings.TrimSpace(text) == "" {
			text = item.Title
		}

		article := domain.Article{
			Source:   item.Source,
			Title:    item.Title,
			Summary:  p.enricher.Summarize(ctx, text),
			Category: p.enricher.Classify(ctx, text),
			URL:      item.URL,
			Date:     p.itemDate(item),
		}
		if p.gate.Upload(ctx, article) {
			report.Added++
		}
	}

	p.logger.Info("source updated", "trigger", trigger, "added", report.Added)
	return report
}

// itemDate normalizes the publication date to an ISO calendar date, using
// the current date when the source exposed none.
func (p *Pipeline) itemDate(item domain.RawItem) string {
	if item.PublishedAt != nil {
		return domain.DateOf(*item.PublishedAt)
	}
	return domain.DateOf(p.now())
}
