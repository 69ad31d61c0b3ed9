package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"CampusFeed/internal/ports"
	"CampusFeed/internal/source"
)

// RefreshReport counts what one refresh pass changed.
type RefreshReport struct {
	Scanned   int
	Fetched   int
	Images    int
	Summaries int
	Failed    int
}

// Refresher revisits persisted items, pulling images and better summaries
// from their original article pages.
type Refresher struct {
	content  ports.ContentRepository
	fetcher  ports.PageFetcher
	enricher *Enricher
	pacer    *Pacer
	minText  int
	logger   *slog.Logger
}

// NewRefresher constructs the refresh pass. pacer spaces page fetches; minText
// is the readable text length above which a summary is regenerated.
func NewRefresher(content ports.ContentRepository, fetcher ports.PageFetcher, enricher *Enricher, pacer *Pacer, minText int, logger *slog.Logger) *Refresher {
	return &Refresher{
		content:  content,
		fetcher:  fetcher,
		enricher: enricher,
		pacer:    pacer,
		minText:  minText,
		logger:   orDiscard(logger),
	}
}

// Run processes every stored item that links to an article page.
func (r *Refresher) Run(ctx context.Context) (RefreshReport, error) {
	var report RefreshReport
	if r.fetcher == nil {
		return report, fmt.Errorf("refresher requires a page fetcher")
	}

	items, err := r.content.All(ctx)
	if err != nil {
		return report, fmt.Errorf("load items: %w", err)
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		link := source.LinkFromBody(item.Body)
		if link == "" {
			continue
		}
		report.Scanned++

		page, err := r.fetch(ctx, link)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, ctxErr
			}
			r.logger.Warn("page fetch failed", "item_id", item.ID, "url", link, "error", err)
			report.Failed++
			continue
		}
		report.Fetched++

		if page.ImageURL != "" && page.ImageURL != item.ImageURL {
			if err := r.content.UpdateImage(ctx, item.ID, page.ImageURL); err != nil {
				r.logger.Warn("image write failed", "item_id", item.ID, "error", err)
			} else {
				report.Images++
			}
		}

		if r.enricher == nil || utf8.RuneCountInString(page.Text) <= r.minText {
			continue
		}
		summary, ok := r.enricher.Summarize(ctx, page.Text)
		if !ok {
			continue
		}
		if err := r.content.UpdateSummary(ctx, item.ID, summary); err != nil {
			r.logger.Warn("summary write failed", "item_id", item.ID, "error", err)
			continue
		}
		report.Summaries++
	}

	r.logger.Info("refresh finished",
		"scanned", report.Scanned,
		"fetched", report.Fetched,
		"images", report.Images,
		"summaries", report.Summaries,
		"failed", report.Failed)
	return report, nil
}

func (r *Refresher) fetch(ctx context.Context, link string) (ports.Page, error) {
	if err := r.pacer.Wait(ctx); err != nil {
		return ports.Page{}, fmt.Errorf("pace: %w", err)
	}
	defer r.pacer.Done()
	return r.fetcher.Fetch(ctx, link)
}
