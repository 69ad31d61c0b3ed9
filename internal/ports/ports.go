package ports

import (
	"context"
	"time"

	"CampusFeed/internal/domain"
	"CampusFeed/internal/source"
)

// RecordSource pulls raw tabular records for one ingestion run.
type RecordSource interface {
	Load(ctx context.Context) ([]source.Record, error)
}

// ListQuery selects one page of persisted items.
type ListQuery struct {
	Offset int
	Limit  int
	Type   domain.ContentType
}

// ContentRepository persists content items and their tag associations.
type ContentRepository interface {
	Insert(ctx context.Context, item domain.ContentItem) (int64, error)
	AddTags(ctx context.Context, itemID int64, tags []string) error
	UpdateSummary(ctx context.Context, itemID int64, summary string) error
	UpdateImage(ctx context.Context, itemID int64, imageURL string) error
	List(ctx context.Context, q ListQuery) ([]domain.ContentItem, error)
	GetByIDs(ctx context.Context, ids []int64) ([]domain.ContentItem, error)
	All(ctx context.Context) ([]domain.ContentItem, error)
	Count(ctx context.Context) (int, error)
	CountByType(ctx context.Context, t domain.ContentType) (int, error)
	DeleteMalformed(ctx context.Context) (int, error)
	WipeAll(ctx context.Context) error
}

// UserRepository exposes the collaborator-owned user records the core needs.
type UserRepository interface {
	Profile(ctx context.Context, userID int64) (domain.UserProfile, error)
	AddRegistration(ctx context.Context, userID, eventID int64, at time.Time) (domain.Registration, error)
	AddInterest(ctx context.Context, userID int64, tag string) (domain.Interest, error)
}

// Completer is the inference gateway: one prompt in, generated text out.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Page is the extracted content of a fetched article page.
type Page struct {
	Text     string
	ImageURL string
}

// PageFetcher downloads an article page and extracts its readable parts.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (Page, error)
}

// Notifier publishes short operational reports (Telegram, etc.).
type Notifier interface {
	PublishReport(ctx context.Context, report string) error
}

// Scheduler controls when background jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(context.Context)) error
	Stop(ctx context.Context) error
}
