package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"CampusFeed/internal/domain"
	"CampusFeed/internal/metrics"
	"CampusFeed/internal/ports"
)

// EnricherConfig tunes tagging and summarization.
type EnricherConfig struct {
	Vocabulary        Vocabulary
	Summarize         bool
	SummaryLanguage   string
	SummarySentences  int
	SummaryInputLimit int
	MinBodyForSummary int
}

// EnricherDeps wires the inference gateway and pacing into the worker.
type EnricherDeps struct {
	Completer ports.Completer
	Pacer     *Pacer
	Config    EnricherConfig
	Logger    *slog.Logger
	Metrics   *metrics.Collector
}

// Enricher produces tags and summaries for content items. It never fails:
// every gateway problem degrades to a fallback.
type Enricher struct {
	completer ports.Completer
	pacer     *Pacer
	cfg       EnricherConfig
	logger    *slog.Logger
	metrics   *metrics.Collector
}

// NewEnricher constructs the enrichment worker.
func NewEnricher(deps EnricherDeps) *Enricher {
	return &Enricher{
		completer: deps.Completer,
		pacer:     deps.Pacer,
		cfg:       deps.Config,
		logger:    orDiscard(deps.Logger),
		metrics:   deps.Metrics,
	}
}

// Vocabulary returns the tag set the worker filters against.
func (e *Enricher) Vocabulary() Vocabulary {
	return e.cfg.Vocabulary
}

// Tags classifies an item into the closed vocabulary, or returns the fallback tag.
func (e *Enricher) Tags(ctx context.Context, item domain.ContentItem) []string {
	tags, _ := e.tags(ctx, item)
	return tags
}

func (e *Enricher) tags(ctx context.Context, item domain.ContentItem) ([]string, bool) {
	fallback := e.cfg.Vocabulary.Fallback()
	if e.completer == nil {
		return fallback, false
	}

	raw, err := e.complete(ctx, e.tagPrompt(item))
	if err != nil {
		e.logger.Warn("tagging failed", "item_id", item.ID, "error", err)
		return fallback, false
	}

	candidates, err := decodeStrings(raw)
	if err != nil {
		e.logger.Warn("tagging response unparsable", "item_id", item.ID, "error", err)
		return fallback, false
	}

	tags := e.cfg.Vocabulary.Filter(candidates)
	if len(tags) == 0 {
		e.logger.Debug("no tag inside vocabulary", "item_id", item.ID, "candidates", candidates)
		return fallback, false
	}

	return tags, true
}

// Summarize condenses text; ok is false when no usable summary was produced.
func (e *Enricher) Summarize(ctx context.Context, text string) (string, bool) {
	text = strings.TrimSpace(text)
	if e.completer == nil || text == "" {
		return "", false
	}

	raw, err := e.complete(ctx, e.summaryPrompt(truncateRunes(text, e.cfg.SummaryInputLimit)))
	if err != nil {
		e.logger.Warn("summarization failed", "error", err)
		return "", false
	}

	summary := strings.TrimSpace(raw)
	if summary == "" {
		return "", false
	}
	return summary, true
}

// Enrich runs one full pass over an item.
func (e *Enricher) Enrich(ctx context.Context, item domain.ContentItem) domain.EnrichmentOutcome {
	tags, ok := e.tags(ctx, item)
	outcome := domain.EnrichmentOutcome{Tags: tags, Status: domain.StatusEnriched}
	if !ok {
		outcome.Status = domain.StatusFallback
	}

	if e.cfg.Summarize && utf8.RuneCountInString(item.Body) >= e.cfg.MinBodyForSummary {
		if summary, ok := e.Summarize(ctx, item.Body); ok {
			outcome.Summary = summary
		}
	}

	e.metrics.ObserveEnrichment(string(outcome.Status))
	return outcome
}

func (e *Enricher) complete(ctx context.Context, prompt string) (string, error) {
	if err := e.pacer.Wait(ctx); err != nil {
		return "", fmt.Errorf("pace: %w", err)
	}
	defer e.pacer.Done()
	return e.completer.Complete(ctx, prompt)
}

func (e *Enricher) tagPrompt(item domain.ContentItem) string {
	var b strings.Builder
	b.WriteString("Classify the following university content into one or more of these categories: ")
	b.WriteString(mustJSON(e.cfg.Vocabulary.Terms()))
	b.WriteString(".\nReply only with a JSON array of category names taken from that list.\n\n")
	fmt.Fprintf(&b, "Title: %s\nSummary: %s\nContent: %s\n",
		item.Title,
		item.Summary,
		truncateRunes(item.Body, e.cfg.SummaryInputLimit))
	return b.String()
}

func (e *Enricher) summaryPrompt(text string) string {
	return fmt.Sprintf(
		"Summarize the following text in %d sentences at most, written in %s. Reply with the summary only.\n\n%s",
		e.cfg.SummarySentences,
		e.cfg.SummaryLanguage,
		text,
	)
}
