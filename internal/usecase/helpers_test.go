package usecase

import (
	"context"
	"sync/atomic"
	"time"

	"CampusFeed/internal/domain"
	"CampusFeed/internal/infrastructure/storage"
	"CampusFeed/internal/source"
)

type completerFunc func(ctx context.Context, prompt string) (string, error)

func (f completerFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// countingCompleter answers every prompt with the same text and counts calls.
type countingCompleter struct {
	reply string
	err   error
	calls atomic.Int32
}

func (c *countingCompleter) Complete(_ context.Context, _ string) (string, error) {
	c.calls.Add(1)
	return c.reply, c.err
}

type staticSource []source.Record

func (s staticSource) Load(context.Context) ([]source.Record, error) {
	return s, nil
}

var testNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func testVocabulary() Vocabulary {
	return NewVocabulary([]string{"Urgent", "Academic", "Social", "Career", "Arts & Culture", "Dining", "Technology"}, "General")
}

func seedItems(store *storage.MemoryStore, n int, activities int) {
	for i := 0; i < n; i++ {
		typ := domain.TypeNews
		var eventAt *time.Time
		if i < activities {
			typ = domain.TypeActivity
			at := testNow.AddDate(0, 0, 5)
			eventAt = &at
		}
		_, _ = store.Insert(context.Background(), domain.ContentItem{
			Title:       "item",
			PublishedAt: testNow.Add(-time.Duration(i) * time.Hour),
			EventAt:     eventAt,
			Type:        typ,
		})
	}
}

func ids(items []domain.ContentItem) []int64 {
	out := make([]int64, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func sameIDs(got []domain.ContentItem, want ...int64) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i].ID != want[i] {
			return false
		}
	}
	return true
}
