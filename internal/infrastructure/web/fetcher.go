package web

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"CampusFeed/internal/ports"
)

const maxPageBytes = 5 << 20

var imageSelectors = []string{
	`meta[property="og:image"]`,
	`meta[name="og:image"]`,
	`meta[name="twitter:image"]`,
	`meta[property="twitter:image"]`,
}

// PageFetcher downloads article pages and extracts readable text and a lead image.
type PageFetcher struct {
	client *http.Client
	logger *slog.Logger
}

var _ ports.PageFetcher = (*PageFetcher)(nil)

// NewPageFetcher builds a fetcher with a bounded request timeout.
func NewPageFetcher(timeout time.Duration, logger *slog.Logger) *PageFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PageFetcher{client: &http.Client{Timeout: timeout}, logger: logger}
}

// Fetch downloads pageURL and extracts its parts.
func (f *PageFetcher) Fetch(ctx context.Context, pageURL string) (ports.Page, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Host == "" {
		return ports.Page{}, fmt.Errorf("invalid page url %q", pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return ports.Page{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "CampusFeed/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return ports.Page{}, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ports.Page{}, fmt.Errorf("page returned %s", resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return ports.Page{}, fmt.Errorf("read page: %w", err)
	}

	return f.extract(raw, parsed)
}

func (f *PageFetcher) extract(raw []byte, pageURL *url.URL) (ports.Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return ports.Page{}, fmt.Errorf("parse document: %w", err)
	}

	page := ports.Page{ImageURL: leadImage(doc, pageURL)}

	article, err := readability.FromReader(bytes.NewReader(raw), pageURL)
	if err == nil {
		page.Text = collapseSpaces(article.TextContent)
		if page.ImageURL == "" && article.Image != "" {
			page.ImageURL = resolve(pageURL, article.Image)
		}
	} else {
		f.logger.Debug("readability failed, using paragraphs", "url", pageURL.String(), "error", err)
	}

	if page.Text == "" {
		page.Text = collapseSpaces(doc.Find("article p, main p").Text())
	}

	return page, nil
}

func leadImage(doc *goquery.Document, pageURL *url.URL) string {
	for _, selector := range imageSelectors {
		if content, ok := doc.Find(selector).First().Attr("content"); ok && strings.TrimSpace(content) != "" {
			return resolve(pageURL, strings.TrimSpace(content))
		}
	}
	return ""
}

func resolve(base *url.URL, ref string) string {
	parsed, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(parsed).String()
}

func collapseSpaces(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
