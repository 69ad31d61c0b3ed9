package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"CampusFeed/internal/domain"
)

func page(n int) []domain.ContentItem {
	items := make([]domain.ContentItem, n)
	for i := range items {
		items[i] = domain.ContentItem{ID: int64(i + 1), Title: "item", Type: domain.TypeNews, PublishedAt: testNow}
	}
	return items
}

func TestMergeIsLosslessUnderGarbage(t *testing.T) {
	t.Parallel()

	items := page(5)
	cases := []struct {
		name   string
		ranked []int64
		want   []int64
	}{
		{name: "full permutation", ranked: []int64{5, 4, 3, 2, 1}, want: []int64{5, 4, 3, 2, 1}},
		{name: "partial", ranked: []int64{3}, want: []int64{3, 1, 2, 4, 5}},
		{name: "unknown and repeated", ranked: []int64{42, 2, 2, -1, 5, 2}, want: []int64{2, 5, 1, 3, 4}},
		{name: "empty", ranked: nil, want: []int64{1, 2, 3, 4, 5}},
		{name: "all unknown", ranked: []int64{9, 8}, want: []int64{1, 2, 3, 4, 5}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Merge(items, tc.ranked)
			if !sameIDs(got, tc.want...) {
				t.Fatalf("Merge(%v) = %v, want %v", tc.ranked, ids(got), tc.want)
			}
		})
	}
}

func TestRankReordersOnlyThePrefix(t *testing.T) {
	t.Parallel()

	var prompt string
	c := completerFunc(func(_ context.Context, p string) (string, error) {
		prompt = p
		return "```\n[3, 12, 1, \"oops\", 3]\n```", nil
	})
	r := NewRanker(c, RankerConfig{Timeout: time.Second, PrefixSize: 3}, nil, nil)

	got := r.Rank(context.Background(), domain.UserProfile{ID: 1, Interests: []string{"Robotics"}}, nil, page(6))
	if !sameIDs(got, 3, 1, 2, 4, 5, 6) {
		t.Fatalf("unexpected order %v", ids(got))
	}
	if strings.Contains(prompt, `"id":4`) {
		t.Fatalf("items beyond the prefix must not be sent: %s", prompt)
	}
	if !strings.Contains(prompt, "Robotics") {
		t.Fatalf("profile interests missing from prompt")
	}
}

func TestRankTimeoutKeepsOriginalOrder(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	defer close(release)
	c := completerFunc(func(ctx context.Context, _ string) (string, error) {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return "[2, 1]", nil
	})
	r := NewRanker(c, RankerConfig{Timeout: 50 * time.Millisecond, PrefixSize: 10}, nil, nil)

	start := time.Now()
	got := r.Rank(context.Background(), domain.UserProfile{ID: 1}, nil, page(3))
	elapsed := time.Since(start)

	if !sameIDs(got, 1, 2, 3) {
		t.Fatalf("expected original order, got %v", ids(got))
	}
	if elapsed > 500*time.Millisecond {
		t.Fatalf("rank waited %v past a 50ms budget", elapsed)
	}
}

func TestRankFallbacks(t *testing.T) {
	t.Parallel()

	cases := map[string]*countingCompleter{
		"error":      {err: errors.New("unavailable")},
		"empty":      {reply: "[]"},
		"unparsable": {reply: "the best item is 2"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r := NewRanker(c, RankerConfig{Timeout: time.Second}, nil, nil)
			got := r.Rank(context.Background(), domain.UserProfile{ID: 1}, nil, page(4))
			if !sameIDs(got, 1, 2, 3, 4) {
				t.Fatalf("expected original order, got %v", ids(got))
			}
			if c.calls.Load() != 1 {
				t.Fatalf("expected exactly one gateway call, got %d", c.calls.Load())
			}
		})
	}
}

func TestRankEmptyPageMakesNoCall(t *testing.T) {
	t.Parallel()

	c := &countingCompleter{reply: "[1]"}
	r := NewRanker(c, RankerConfig{}, nil, nil)
	if got := r.Rank(context.Background(), domain.UserProfile{}, nil, nil); len(got) != 0 {
		t.Fatalf("unexpected items %v", got)
	}
	if c.calls.Load() != 0 {
		t.Fatalf("no call expected for an empty page")
	}
}
