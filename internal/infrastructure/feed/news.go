package feed

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"ainews/internal/config"
	"ainews/internal/domain"
	"ainews/internal/source"
)

const newsUserAgent = "ainews/1.0"

// Textual pubDate layouts accepted when the parser exposes no parsed time.
var newsDateLayouts = []string{time.RFC1123Z, time.RFC1123}

// NewsAdapter pulls AI coverage from the configured RSS feeds. Feeds marked
// as keyword-filtered only yield entries whose title or description matches
// the keyword set; everything else is silently dropped.
type NewsAdapter struct {
	feeds           []config.NewsFeedConfig
	keywords        []string
	maxItems        int
	freshnessSource string
	parser          *gofeed.Parser
	logger          *slog.Logger
}

var _ source.Adapter = (*NewsAdapter)(nil)

// NewNewsAdapter wires the feed parser; a nil parser gets a default one.
func NewNewsAdapter(cfg config.NewsConfig, parser *gofeed.Parser, logger *slog.Logger) *NewsAdapter {
	if parser == nil {
		parser = gofeed.NewParser()
		parser.UserAgent = newsUserAgent
	}
	keywords := make([]string, 0, len(cfg.Keywords))
	for _, kw := range cfg.Keywords {
		keywords = append(keywords, strings.ToLower(kw))
	}
	return &NewsAdapter{
		feeds:           cfg.Feeds,
		keywords:        keywords,
		maxItems:        cfg.MaxItems,
		freshnessSource: cfg.FreshnessSource,
		parser:          parser,
		logger:          logger,
	}
}

// Name identifies the trigger inside the registry.
func (n *NewsAdapter) Name() string {
	return "news"
}

// FreshnessSource is the stored source probed before a news run.
func (n *NewsAdapter) FreshnessSource() string {
	if n.freshnessSource != "" {
		return n.freshnessSource
	}
	return domain.SourceTheVerge
}

// Fetch walks each configured feed and normalizes up to maxItems entries per
// feed. A feed that cannot be fetched is logged and skipped; the error only
// surfaces when every feed failed.
func (n *NewsAdapter) Fetch(ctx context.Context) ([]domain.RawItem, error) {
	var (
		items    []domain.RawItem
		firstErr error
	)

	for _, feedCfg := range n.feeds {
		parsed, err := n.parser.ParseURLWithContext(feedCfg.URL, ctx)
		if err != nil {
			n.logger.Error("feed fetch failed", "source", feedCfg.Source, "url", feedCfg.URL, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		count := 0
		for _, entry := range parsed.Items {
			if n.maxItems > 0 && count >= n.maxItems {
				break
			}
			count++

			body := entry.Description
			if body == "" {
				body = entry.Content
			}
			body = stripMarkup(body)

			if feedCfg.KeywordFiltered && !n.matchesKeywords(entry.Title+" "+body) {
				continue
			}

			items = append(items, domain.RawItem{
				Source:      feedCfg.Source,
				Title:       strings.TrimSpace(entry.Title),
				BodyText:    body,
				URL:         entry.Link,
				PublishedAt: entryDate(entry),
			})
		}
	}

	if len(items) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return items, nil
}

func (n *NewsAdapter) matchesKeywords(text string) bool {
	lowered := strings.ToLower(text)
	for _, kw := range n.keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// entryDate prefers the parser's parsed time, then the accepted textual
// layouts. A nil result means the caller should fall back to the current
// date; an unparsable date never aborts the fetch.
func entryDate(entry *gofeed.Item) *time.Time {
	if entry.PublishedParsed != nil {
		return entry.PublishedParsed
	}
	raw := strings.TrimSpace(entry.Published)
	if raw == "" {
		return nil
	}
	for _, layout := range newsDateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed
		}
	}
	return nil
}

// stripMarkup flattens HTML-bearing feed descriptions to plain text.
func stripMarkup(fragment string) string {
	if fragment == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.TrimSpace(doc.Text())
}
