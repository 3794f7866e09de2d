package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"ainews/internal/config"
	"ainews/internal/domain"
	"ainews/internal/source"
)

// ArxivAdapter queries the arXiv API feed for recent submissions. The fetch
// has two independent paths: a direct HTTP GET whose body is handed to the
// feed parser, and a fallback where the parser fetches the URL itself when
// the direct request errors or returns a non-success status.
type ArxivAdapter struct {
	queryURL string
	maxItems int
	client   *http.Client
	parser   *gofeed.Parser
	logger   *slog.Logger
}

var _ source.Adapter = (*ArxivAdapter)(nil)

// NewArxivAdapter wires an HTTP client and feed parser; nil arguments get
// defaults.
func NewArxivAdapter(cfg config.ArxivConfig, client *http.Client, logger *slog.Logger) *ArxivAdapter {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	parser := gofeed.NewParser()
	parser.UserAgent = newsUserAgent
	return &ArxivAdapter{
		queryURL: cfg.QueryURL,
		maxItems: cfg.MaxItems,
		client:   client,
		parser:   parser,
		logger:   logger,
	}
}

// Name identifies the trigger inside the registry.
func (a *ArxivAdapter) Name() string {
	return "arxiv"
}

// FreshnessSource is the stored source probed before an arXiv run.
func (a *ArxivAdapter) FreshnessSource() string {
	return domain.SourceArxiv
}

// Fetch returns the newest papers from the query feed, first path wins
// unless it errors.
func (a *ArxivAdapter) Fetch(ctx context.Context) ([]domain.RawItem, error) {
	parsed, err := a.fetchDirect(ctx)
	if err != nil {
		a.logger.Warn("direct fetch failed, falling back to parser fetch", "error", err)
		parsed, err = a.parser.ParseURLWithContext(a.queryURL, ctx)
		if err != nil {
			return nil, fmt.Errorf("arxiv query: %w", err)
		}
	}

	items := make([]domain.RawItem, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		if a.maxItems > 0 && len(items) >= a.maxItems {
			break
		}
		items = append(items, domain.RawItem{
			Source:      domain.SourceArxiv,
			Title:       collapseWhitespace(entry.Title),
			BodyText:    collapseWhitespace(entry.Description),
			URL:         entry.Link,
			PublishedAt: entry.PublishedParsed,
		})
	}
	return items, nil
}

func (a *ArxivAdapter) fetchDirect(ctx context.Context) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.queryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", newsUserAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv returned %s", resp.Status)
	}

	parsed, err := a.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return parsed, nil
}

// collapseWhitespace folds the newline-wrapped text arXiv emits into single
// spaces.
func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
