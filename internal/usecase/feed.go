package usecase

import (
	"context"
	"fmt"
	"math"
	"log/slog"

	"CampusFeed/internal/domain"
	"CampusFeed/internal/ports"
)

// FeedQuery selects one feed page. Zero Page or Limit means the default.
type FeedQuery struct {
	Page   int
	Limit  int
	Type   domain.ContentType
	UserID *int64
}

// FeedPage is one composed page of the feed.
type FeedPage struct {
	Items   []domain.ContentItem `json:"items"`
	Page    int                  `json:"page"`
	Limit   int                  `json:"limit"`
	HasMore bool                 `json:"hasMore"`
}

// FeedComposer serves paginated feed reads, personalized when a viewer is known.
type FeedComposer struct {
	content      ports.ContentRepository
	users        ports.UserRepository
	ranker       *Ranker
	defaultLimit int
	logger       *slog.Logger
}

// NewFeedComposer constructs the composer.
func NewFeedComposer(content ports.ContentRepository, users ports.UserRepository, ranker *Ranker, defaultLimit int, logger *slog.Logger) *FeedComposer {
	if defaultLimit <= 0 {
		defaultLimit = 20
	}
	return &FeedComposer{
		content:      content,
		users:        users,
		ranker:       ranker,
		defaultLimit: defaultLimit,
		logger:       orDiscard(logger),
	}
}

// Compose reads one page and, for a known viewer, personalizes its head.
func (f *FeedComposer) Compose(ctx context.Context, q FeedQuery) (FeedPage, error) {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = f.defaultLimit
	}
	if q.Page < 0 || q.Limit < 0 {
		return FeedPage{}, fmt.Errorf("%w: page and limit must be positive", domain.ErrValidation)
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return FeedPage{}, fmt.Errorf("%w: page %d is out of range", domain.ErrValidation, q.Page)
	}
	if q.Type != "" {
		if err := q.Type.Validate(); err != nil {
			return FeedPage{}, err
		}
	}

	items, err := f.content.List(ctx, ports.ListQuery{
		Offset: (q.Page - 1) * q.Limit,
		Limit:  q.Limit,
		Type:   q.Type,
	})
	if err != nil {
		return FeedPage{}, fmt.Errorf("list feed: %w", err)
	}
	if items == nil {
		items = []domain.ContentItem{}
	}

	page := FeedPage{
		Items: items,
		Page:  q.Page,
		Limit: q.Limit,
		// A page that is exactly full reports more even when nothing follows.
		HasMore: len(items) == q.Limit,
	}

	if q.UserID == nil || f.users == nil || len(items) == 0 {
		return page, nil
	}

	profile, err := f.users.Profile(ctx, *q.UserID)
	if err != nil {
		f.logger.Warn("profile unavailable, serving unranked page", "user_id", *q.UserID, "error", err)
		return page, nil
	}

	registered, err := f.content.GetByIDs(ctx, profile.RegisteredEventIDs())
	if err != nil {
		f.logger.Warn("registered items unavailable", "user_id", *q.UserID, "error", err)
		registered = nil
	}

	page.Items = f.ranker.Rank(ctx, profile, registered, items)
	return page, nil
}
