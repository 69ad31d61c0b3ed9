package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"CampusFeed/internal/domain"
	"CampusFeed/internal/metrics"
	"CampusFeed/internal/ports"
)

// Decision is what the guard allows an ingestion run to do.
type Decision string

const (
	// DecisionIngest loads into a store considered empty enough.
	DecisionIngest Decision = "ingest"
	// DecisionReingest loads after the store was wiped.
	DecisionReingest Decision = "reingest"
	// DecisionSkip leaves a populated, healthy store untouched.
	DecisionSkip Decision = "skip"
)

// GuardConfig holds the thresholds of the idempotency heuristic.
type GuardConfig struct {
	Threshold        int
	MinActivityRatio float64
}

// Guard decides whether an ingestion run should proceed. It is a heuristic
// over counts, not an identity check.
type Guard struct {
	repo    ports.ContentRepository
	cfg     GuardConfig
	logger  *slog.Logger
	metrics *metrics.Collector
}

// NewGuard constructs the guard.
func NewGuard(repo ports.ContentRepository, cfg GuardConfig, logger *slog.Logger, m *metrics.Collector) *Guard {
	return &Guard{repo: repo, cfg: cfg, logger: orDiscard(logger), metrics: m}
}

// Check sweeps malformed rows, then inspects the store. A failed wipe is the
// only error; the decision is DecisionSkip in that case.
func (g *Guard) Check(ctx context.Context) (Decision, error) {
	if removed, err := g.repo.DeleteMalformed(ctx); err != nil {
		g.logger.Warn("malformed row sweep failed", "error", err)
	} else if removed > 0 {
		g.logger.Info("removed malformed rows", "count", removed)
	}

	decision, err := g.decide(ctx)
	g.metrics.ObserveGuard(string(decision))
	return decision, err
}

func (g *Guard) decide(ctx context.Context) (Decision, error) {
	total, err := g.repo.Count(ctx)
	if err != nil {
		g.logger.Warn("count failed, proceeding with ingestion", "error", err)
		return DecisionIngest, nil
	}
	if total <= g.cfg.Threshold {
		g.logger.Info("store below threshold", "count", total, "threshold", g.cfg.Threshold)
		return DecisionIngest, nil
	}

	activities, err := g.repo.CountByType(ctx, domain.TypeActivity)
	if err != nil {
		g.logger.Warn("activity count failed, skipping ingestion", "error", err)
		return DecisionSkip, nil
	}

	ratio := float64(activities) / float64(total)
	if ratio >= g.cfg.MinActivityRatio {
		g.logger.Info("store populated, skipping ingestion", "count", total, "activities", activities)
		return DecisionSkip, nil
	}

	g.logger.Warn("activity ratio below minimum, wiping store",
		"count", total,
		"activities", activities,
		"ratio", ratio,
		"min_ratio", g.cfg.MinActivityRatio)
	if err := g.repo.WipeAll(ctx); err != nil {
		return DecisionSkip, fmt.Errorf("wipe store: %w", err)
	}
	return DecisionReingest, nil
}
