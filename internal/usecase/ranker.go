package usecase

import (
	"context"
	"log/slog"
	"time"

	"CampusFeed/internal/domain"
	"CampusFeed/internal/metrics"
	"CampusFeed/internal/ports"
)

// RankerConfig bounds the personalized ordering.
type RankerConfig struct {
	Timeout    time.Duration
	PrefixSize int
}

// Ranker reorders the head of a feed page for one viewer within a fixed budget.
type Ranker struct {
	completer ports.Completer
	cfg       RankerConfig
	logger    *slog.Logger
	metrics   *metrics.Collector
}

// NewRanker constructs the ranking orchestrator. A nil completer disables ranking.
func NewRanker(completer ports.Completer, cfg RankerConfig, logger *slog.Logger, m *metrics.Collector) *Ranker {
	if cfg.PrefixSize <= 0 {
		cfg.PrefixSize = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2500 * time.Millisecond
	}
	return &Ranker{completer: completer, cfg: cfg, logger: orDiscard(logger), metrics: m}
}

type rankResult struct {
	ids []int64
	err error
}

// Rank returns items reordered for profile. It always returns a permutation of
// items; any failure yields the original order.
func (r *Ranker) Rank(ctx context.Context, profile domain.UserProfile, registered, items []domain.ContentItem) []domain.ContentItem {
	if r == nil || r.completer == nil || len(items) == 0 {
		return items
	}

	n := min(r.cfg.PrefixSize, len(items))
	prefix, rest := items[:n], items[n:]
	prompt := rankPrompt(profile, registered, prefix)

	// Single slot: a late result lands in the buffer and is dropped with it.
	results := make(chan rankResult, 1)
	go func() {
		raw, err := r.completer.Complete(ctx, prompt)
		if err != nil {
			results <- rankResult{err: err}
			return
		}
		ids, err := decodeIDs(raw)
		results <- rankResult{ids: ids, err: err}
	}()

	timer := time.NewTimer(r.cfg.Timeout)
	defer timer.Stop()
	started := time.Now()

	var res rankResult
	select {
	case res = <-results:
	case <-timer.C:
		r.metrics.ObserveRanking(metrics.RankingTimeout, time.Since(started))
		r.logger.Warn("ranking timed out", "user_id", profile.ID, "timeout", r.cfg.Timeout)
		return items
	case <-ctx.Done():
		r.metrics.ObserveRanking(metrics.RankingFailed, time.Since(started))
		return items
	}

	elapsed := time.Since(started)
	if res.err != nil {
		r.metrics.ObserveRanking(metrics.RankingFailed, elapsed)
		r.logger.Warn("ranking failed", "user_id", profile.ID, "error", res.err)
		return items
	}
	if len(res.ids) == 0 {
		r.metrics.ObserveRanking(metrics.RankingEmpty, elapsed)
		r.logger.Info("ranking returned no ids", "user_id", profile.ID)
		return items
	}

	r.metrics.ObserveRanking(metrics.RankingRanked, elapsed)
	ordered := Merge(prefix, res.ids)
	return append(ordered, rest...)
}

// Merge moves every id of ranked still present in items to the front, in
// ranked order, then appends the remaining items in their original order.
// Unknown and repeated ids are ignored, so the result is a permutation of items.
func Merge(items []domain.ContentItem, ranked []int64) []domain.ContentItem {
	pool := make(map[int64]int, len(items))
	for i, item := range items {
		if _, dup := pool[item.ID]; !dup {
			pool[item.ID] = i
		}
	}

	out := make([]domain.ContentItem, 0, len(items))
	taken := make([]bool, len(items))
	for _, id := range ranked {
		idx, ok := pool[id]
		if !ok {
			continue
		}
		delete(pool, id)
		taken[idx] = true
		out = append(out, items[idx])
	}

	for i, item := range items {
		if !taken[i] {
			out = append(out, item)
		}
	}
	return out
}

type rankProfile struct {
	University string        `json:"university"`
	Program    string        `json:"program"`
	Year       int           `json:"year"`
	Interests  []string      `json:"interests"`
	Registered []rankHistory `json:"registeredEvents"`
}

type rankHistory struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

type rankItem struct {
	ID      int64    `json:"id"`
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
	Type    string   `json:"type"`
	Date    string   `json:"date"`
}

func rankPrompt(profile domain.UserProfile, registered, items []domain.ContentItem) string {
	p := rankProfile{
		University: profile.University,
		Program:    profile.StudyProgram,
		Year:       profile.StudyYear,
		Interests:  profile.Interests,
		Registered: make([]rankHistory, 0, len(registered)),
	}
	for _, item := range registered {
		p.Registered = append(p.Registered, rankHistory{Title: item.Title, Tags: item.Tags})
	}

	payload := make([]rankItem, 0, len(items))
	for _, item := range items {
		payload = append(payload, rankItem{
			ID:      item.ID,
			Title:   item.Title,
			Summary: item.Summary,
			Tags:    item.Tags,
			Type:    string(item.Type),
			Date:    item.RelevantDate().Format(time.DateOnly),
		})
	}

	return "You order a university news and activities feed for one student.\n" +
		"Student profile: " + mustJSON(p) + "\n" +
		"Items: " + mustJSON(payload) + "\n" +
		"Reply only with a JSON array of the item ids, most relevant first."
}
