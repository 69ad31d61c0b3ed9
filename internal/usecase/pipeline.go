package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"CampusFeed/internal/domain"
	"CampusFeed/internal/metrics"
	"CampusFeed/internal/ports"
	"CampusFeed/internal/source"
)

// PipelineDeps wires all driven adapters into the ingestion pipeline.
type PipelineDeps struct {
	Source     ports.RecordSource
	Normalizer *source.Normalizer
	Repository ports.ContentRepository
	Guard      *Guard
	Enricher   *Enricher
	Notifier   ports.Notifier
	Logger     *slog.Logger
	Metrics    *metrics.Collector
	Clock      func() time.Time
}

// Pipeline implements the ingestion workflow: guard, load, persist, enrich.
type Pipeline struct {
	source     ports.RecordSource
	normalizer *source.Normalizer
	repository ports.ContentRepository
	guard      *Guard
	enricher   *Enricher
	notifier   ports.Notifier
	logger     *slog.Logger
	metrics    *metrics.Collector
	clock      func() time.Time
}

// Outcome is the per-item result of one run.
type Outcome struct {
	ItemID int64
	Title  string
	Status domain.EnrichmentStatus
	Reason string
}

// Report collects what one run did.
type Report struct {
	RunID      string
	Decision   Decision
	Loaded     int
	Persisted  int
	Outcomes   []Outcome
	StartedAt  time.Time
	FinishedAt time.Time
}

// Count returns how many outcomes carry status.
func (r Report) Count(status domain.EnrichmentStatus) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	normalizer := deps.Normalizer
	if normalizer == nil {
		normalizer = source.NewNormalizer(source.Policy{}, nil)
	}
	return &Pipeline{
		source:     deps.Source,
		normalizer: normalizer,
		repository: deps.Repository,
		guard:      deps.Guard,
		enricher:   deps.Enricher,
		notifier:   deps.Notifier,
		logger:     orDiscard(deps.Logger),
		metrics:    deps.Metrics,
		clock:      clock,
	}
}

// Run executes one ingestion. It is not re-entrant; callers serialize runs.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	report := Report{RunID: uuid.NewString(), Decision: DecisionIngest, StartedAt: p.clock()}
	logger := p.logger.With("run_id", report.RunID)

	if p.source == nil || p.repository == nil {
		return report, errors.New("pipeline requires a record source and a repository")
	}

	if p.guard != nil {
		decision, err := p.guard.Check(ctx)
		report.Decision = decision
		if err != nil {
			return p.finish(ctx, logger, report, fmt.Errorf("guard: %w", err))
		}
		if decision == DecisionSkip {
			logger.Info("ingestion skipped by guard")
			return p.finish(ctx, logger, report, nil)
		}
	}

	records, err := p.source.Load(ctx)
	if err != nil {
		return p.finish(ctx, logger, report, fmt.Errorf("load records: %w", err))
	}
	report.Loaded = len(records)
	logger.Info("records loaded", "count", len(records), "decision", report.Decision)

	items, err := p.persist(ctx, logger, records, &report)
	if err != nil {
		return p.finish(ctx, logger, report, err)
	}

	if err := p.enrich(ctx, logger, items, &report); err != nil {
		return p.finish(ctx, logger, report, err)
	}

	return p.finish(ctx, logger, report, nil)
}

func (p *Pipeline) persist(ctx context.Context, logger *slog.Logger, records []source.Record, report *Report) ([]domain.ContentItem, error) {
	now := p.clock()
	items := make([]domain.ContentItem, 0, len(records))

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return items, err
		}

		draft, err := p.normalizer.Normalize(rec, now)
		if errors.Is(err, source.ErrEmptyRecord) {
			continue
		}
		if err != nil {
			logger.Warn("record rejected", "row", i+1, "error", err)
			report.Outcomes = append(report.Outcomes, Outcome{Title: source.Clean(rec.Title), Status: domain.StatusSkipped, Reason: err.Error()})
			continue
		}

		id, err := p.repository.Insert(ctx, draft)
		if err != nil {
			logger.Warn("insert failed", "title", draft.Title, "error", err)
			report.Outcomes = append(report.Outcomes, Outcome{Title: draft.Title, Status: domain.StatusSkipped, Reason: err.Error()})
			continue
		}

		draft.ID = id
		report.Persisted++
		p.metrics.ObserveIngested(string(draft.Type))
		items = append(items, draft)
	}

	return items, nil
}

func (p *Pipeline) enrich(ctx context.Context, logger *slog.Logger, items []domain.ContentItem, report *Report) error {
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}

		if p.enricher == nil {
			report.Outcomes = append(report.Outcomes, Outcome{ItemID: item.ID, Title: item.Title, Status: domain.StatusSkipped, Reason: "no enricher"})
			continue
		}

		outcome := p.enricher.Enrich(ctx, item)
		result := Outcome{ItemID: item.ID, Title: item.Title, Status: outcome.Status}

		if err := p.repository.AddTags(ctx, item.ID, outcome.Tags); err != nil {
			logger.Warn("tag write failed", "item_id", item.ID, "error", err)
			result.Status = domain.StatusSkipped
			result.Reason = err.Error()
		}

		if outcome.HasSummary() {
			if err := p.repository.UpdateSummary(ctx, item.ID, outcome.Summary); err != nil {
				logger.Warn("summary write failed", "item_id", item.ID, "error", err)
			}
		}

		logger.Debug("item enriched", "item_id", item.ID, "status", result.Status, "tags", outcome.Tags)
		report.Outcomes = append(report.Outcomes, result)
	}

	return nil
}

func (p *Pipeline) finish(ctx context.Context, logger *slog.Logger, report Report, runErr error) (Report, error) {
	report.FinishedAt = p.clock()

	attrs := []any{
		"decision", report.Decision,
		"loaded", report.Loaded,
		"persisted", report.Persisted,
		"enriched", report.Count(domain.StatusEnriched),
		"fallback", report.Count(domain.StatusFallback),
		"skipped", report.Count(domain.StatusSkipped),
		"elapsed", report.FinishedAt.Sub(report.StartedAt),
	}
	if runErr != nil {
		logger.Error("ingestion failed", append(attrs, "error", runErr)...)
	} else {
		logger.Info("ingestion finished", attrs...)
	}

	if p.notifier != nil {
		if err := p.notifier.PublishReport(ctx, buildReportMessage(report, runErr)); err != nil {
			logger.Warn("report notification failed", "error", err)
		}
	}

	return report, runErr
}

func buildReportMessage(report Report, runErr error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Ingestion %s*\n", report.RunID)
	fmt.Fprintf(&b, "Decision: %s\n", report.Decision)
	fmt.Fprintf(&b, "Loaded: %d, persisted: %d\n", report.Loaded, report.Persisted)
	fmt.Fprintf(&b, "Enriched: %d, fallback: %d, skipped: %d\n",
		report.Count(domain.StatusEnriched),
		report.Count(domain.StatusFallback),
		report.Count(domain.StatusSkipped))
	if runErr != nil {
		fmt.Fprintf(&b, "Error: %v\n", runErr)
	}
	return b.String()
}
