package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"CampusFeed/internal/domain"
	"CampusFeed/internal/ports"
	"CampusFeed/internal/source"
)

// Catalog handles manual content additions.
type Catalog struct {
	content    ports.ContentRepository
	vocabulary Vocabulary
	clock      func() time.Time
}

// NewCatalog constructs the manual-add use case.
func NewCatalog(content ports.ContentRepository, vocabulary Vocabulary, clock func() time.Time) *Catalog {
	if clock == nil {
		clock = time.Now
	}
	return &Catalog{content: content, vocabulary: vocabulary, clock: clock}
}

// AddItem validates and stores one item. Tags outside the vocabulary are dropped.
func (c *Catalog) AddItem(ctx context.Context, item domain.ContentItem) (domain.ContentItem, error) {
	item.Title = strings.TrimSpace(item.Title)
	if item.Title == "" {
		return domain.ContentItem{}, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if item.Type == "" {
		item.Type = domain.TypeNews
		if item.EventAt != nil {
			item.Type = domain.TypeActivity
		}
	}
	if err := item.Type.Validate(); err != nil {
		return domain.ContentItem{}, err
	}

	if strings.TrimSpace(item.Summary) == "" {
		item.Summary = item.Title
	}
	if strings.TrimSpace(item.Source) == "" {
		item.Source = source.DefaultSourceLabel
	}
	if item.PublishedAt.IsZero() {
		item.PublishedAt = c.clock()
	}
	item.Tags = c.vocabulary.Filter(item.Tags)

	id, err := c.content.Insert(ctx, item)
	if err != nil {
		return domain.ContentItem{}, fmt.Errorf("add item: %w", err)
	}
	item.ID = id
	return item, nil
}
