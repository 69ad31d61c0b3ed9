package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"CampusFeed/internal/domain"
	"CampusFeed/internal/infrastructure/storage"
	"CampusFeed/internal/ports"
)

type mapFetcher map[string]ports.Page

func (m mapFetcher) Fetch(_ context.Context, url string) (ports.Page, error) {
	page, ok := m[url]
	if !ok {
		return ports.Page{}, errors.New("404")
	}
	return page, nil
}

func TestRefresherUpdatesImagesAndSummaries(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryStore()
	ctx := context.Background()
	insert := func(title, body string) int64 {
		id, err := store.Insert(ctx, domain.ContentItem{Title: title, Summary: title, Body: body, Type: domain.TypeNews, PublishedAt: testNow})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		return id
	}

	long := insert("long", "Full article: https://uc.cl/long")
	short := insert("short", "intro\n\nFull article: https://uc.cl/short")
	broken := insert("broken", "Full article: https://uc.cl/missing")
	insert("nolink", "plain body")

	fetcher := mapFetcher{
		"https://uc.cl/long":  {Text: strings.Repeat("texto ", 50), ImageURL: "https://uc.cl/long.jpg"},
		"https://uc.cl/short": {Text: "breve", ImageURL: "https://uc.cl/short.jpg"},
	}
	enricher := newTestEnricher(&countingCompleter{reply: "Resumen nuevo."}, true)

	report, err := NewRefresher(store, fetcher, enricher, nil, 200, nil).Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Scanned != 3 || report.Fetched != 2 || report.Failed != 1 || report.Images != 2 || report.Summaries != 1 {
		t.Fatalf("unexpected report %+v", report)
	}

	items, _ := store.GetByIDs(ctx, []int64{long, short, broken})
	if items[0].Summary != "Resumen nuevo." || items[0].ImageURL != "https://uc.cl/long.jpg" {
		t.Fatalf("long item not refreshed: %+v", items[0])
	}
	if items[1].Summary != "short" || items[1].ImageURL != "https://uc.cl/short.jpg" {
		t.Fatalf("short item should only get an image: %+v", items[1])
	}
	if items[2].ImageURL != "" {
		t.Fatalf("broken item should be untouched")
	}
}

func TestRefresherPacesPageFetches(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryStore()
	ctx := context.Background()
	fetcher := mapFetcher{}
	for _, slug := range []string{"a", "b", "c"} {
		link := "https://uc.cl/" + slug
		if _, err := store.Insert(ctx, domain.ContentItem{Title: slug, Body: "Full article: " + link, Type: domain.TypeNews, PublishedAt: testNow}); err != nil {
			t.Fatalf("insert: %v", err)
		}
		fetcher[link] = ports.Page{Text: "corto"}
	}

	start := time.Now()
	report, err := NewRefresher(store, fetcher, nil, NewPacer(30*time.Millisecond), 200, nil).Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Fetched != 3 {
		t.Fatalf("unexpected report %+v", report)
	}
	if elapsed := time.Since(start); elapsed < 55*time.Millisecond {
		t.Fatalf("fetches not spaced: %v", elapsed)
	}
}
