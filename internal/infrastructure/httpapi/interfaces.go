package httpapi

import (
	"context"

	"CampusFeed/internal/domain"
	"CampusFeed/internal/usecase"
)

// FeedService composes feed pages.
type FeedService interface {
	Compose(ctx context.Context, q usecase.FeedQuery) (usecase.FeedPage, error)
}

// AccountService handles user-owned writes and reads.
type AccountService interface {
	Register(ctx context.Context, userID, eventID int64) (domain.Registration, error)
	AddInterest(ctx context.Context, userID int64, tag string) (domain.Interest, error)
	Registrations(ctx context.Context, userID int64) ([]domain.ContentItem, error)
	SuggestInterests(ctx context.Context, userID int64) ([]string, error)
}

// CatalogService accepts manual content additions.
type CatalogService interface {
	AddItem(ctx context.Context, item domain.ContentItem) (domain.ContentItem, error)
}
