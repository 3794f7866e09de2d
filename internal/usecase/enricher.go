package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"ainews/internal/domain"
	"ainews/internal/ports"
)

const (
	summarySystemPrompt  = "You summarize AI-related news, papers, and videos."
	classifySystemPrompt = "You label AI-related content with a single category."
	truncationLimit      = 200
)

// Enricher wraps the external model behind summarize/classify calls that
// never fail: every model error resolves to a deterministic local fallback,
// so enrichment degrades quality, not availability.
type Enricher struct {
	model  ports.ChatModel
	logger *slog.Logger
}

// NewEnricher builds the enrichment service. A nil model means every call
// takes the fallback path.
func NewEnricher(model ports.ChatModel, logger *slog.Logger) *Enricher {
	return &Enricher{model: model, logger: logger}
}

// Summarize produces a 5-6 sentence summary of text. Empty input returns ""
// with no external call. On failure it returns a truncated prefix of the
// input instead.
func (e *Enricher) Summarize(ctx context.Context, text string) string {
	if text == "" {
		return ""
	}
	if e.model == nil {
		return truncateSummary(text)
	}

	prompt := fmt.Sprintf(
		"Summarize the following text in 5 or 6 relevant sentences:\n\n%s\n\n"+
			"If the text is only a headline, expand it into a full description.\n"+
			"Return the summary with no additional commentary.\nSummary:",
		text)

	out, err := e.model.Complete(ctx, summarySystemPrompt, prompt)
	if err != nil {
		e.warn("summarize failed, using truncation fallback", err)
		return truncateSummary(text)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return truncateSummary(text)
	}
	return out
}

// Classify assigns one label from the fixed category set. Empty input returns
// "" with no external call. A failed call, or a response outside the set,
// falls back to the first category.
func (e *Enricher) Classify(ctx context.Context, text string) string {
	if text == "" {
		return ""
	}
	fallback := domain.Categories[0]
	if e.model == nil {
		return fallback
	}

	prompt := fmt.Sprintf(
		"Classify the following text into one of the categories: %s.\n\nText:\n%s\n\n"+
			"Respond with the exact category name only, no explanations or quotes.\nCategory:",
		strings.Join(domain.Categories, ", "), text)

	out, err := e.model.Complete(ctx, classifySystemPrompt, prompt)
	if err != nil {
		e.warn("classify failed, using fallback category", err)
		return fallback
	}
	label := strings.TrimSpace(out)
	if !domain.ValidCategory(label) {
		e.warn("classify returned unknown label "+label, nil)
		return fallback
	}
	return label
}

// truncateSummary keeps the first 200 runes of text, appending an ellipsis
// when anything was cut.
func truncateSummary(text string) string {
	runes := []rune(text)
	if len(runes) <= truncationLimit {
		return text
	}
	return string(runes[:truncationLimit]) + "..."
}

func (e *Enricher) warn(msg string, err error) {
	if e.logger == nil {
		return
	}
	if err != nil {
		e.logger.Warn(msg, "error", err)
		return
	}
	e.logger.Warn(msg)
}
