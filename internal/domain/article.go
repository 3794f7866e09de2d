package domain

import "time"

// Fixed logical origins of stored content.
const (
	SourceTechCrunch = "TechCrunch"
	SourceTheVerge   = "TheVerge"
	SourceArxiv      = "arXiv"
	SourceYouTube    = "YouTube"
)

// ArticlesTable is the datastore table holding persisted articles.
const ArticlesTable = "articles"

// Categories is the closed label set produced by classification. The first
// entry doubles as the fallback when the model call fails.
var Categories = []string{
	"research",
	"new_product",
	"policy/regulation",
	"opinion/ethics",
	"event/announcement",
}

// ValidCategory reports whether label belongs to the fixed category set.
func ValidCategory(label string) bool {
	for _, c := range Categories {
		if c == label {
			return true
		}
	}
	return false
}

// RawItem is unprocessed content fetched by a source adapter, consumed
// immediately by the enrichment step.
type RawItem struct {
	Source      string
	Title       string
	BodyText    string
	URL         string
	PublishedAt *time.Time
}

// Article is the persisted, enriched record. Ingestion is append-only: an
// Article is either stored once or discarded, never mutated afterwards.
type Article struct {
	Source   string
	Title    string
	Summary  string
	Category string
	URL      string
	Date     string
}

// DateOf formats a point in time the way article dates are stored.
func DateOf(t time.Time) string {
	return t.Format("2006-01-02")
}

// Record returns the row shape sent to the articles table.
func (a Article) Record() map[string]any {
	return map[string]any{
		"source":   a.Source,
		"title":    a.Title,
		"summary":  a.Summary,
		"category": a.Category,
		"url":      a.URL,
		"date":     a.Date,
	}
}

// ArticleFromRecord rebuilds an Article from a queried row.
func ArticleFromRecord(row map[string]any) Article {
	str := func(key string) string {
		if v, ok := row[key].(string); ok {
			return v
		}
		return ""
	}
	return Article{
		Source:   str("source"),
		Title:    str("title"),
		Summary:  str("summary"),
		Category: str("category"),
		URL:      str("url"),
		Date:     str("date"),
	}
}

// SourceReport is the outcome of one source pipeline within a cycle.
type SourceReport struct {
	Trigger string
	Added   int
	Err     error
}

// Report aggregates the outcome of one ingestion cycle.
type Report struct {
	Updated []SourceReport
	Skipped []string
}

// TotalAdded sums added counts across all updated sources.
func (r Report) TotalAdded() int {
	total := 0
	for _, s := range r.Updated {
		total += s.Added
	}
	return total
}
