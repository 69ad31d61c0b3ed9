package domain

import (
	"fmt"
	"time"
)

// ContentType is the closed set of feed item kinds.
type ContentType string

const (
	TypeNews     ContentType = "news"
	TypeActivity ContentType = "activity"
)

// ParseContentType accepts the wire representation of a content type.
func ParseContentType(value string) (ContentType, error) {
	t := ContentType(value)
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}

// Validate rejects types outside the closed set.
func (t ContentType) Validate() error {
	switch t {
	case TypeNews, TypeActivity:
		return nil
	default:
		return fmt.Errorf("%w: invalid type %q, must be %q or %q", ErrValidation, string(t), TypeNews, TypeActivity)
	}
}

// ContentItem is a single news or activity record exposed in the feed.
type ContentItem struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Summary     string      `json:"summary"`
	Body        string      `json:"content"`
	Source      string      `json:"source"`
	PublishedAt time.Time   `json:"publicationDate"`
	EventAt     *time.Time  `json:"eventDate"`
	ImageURL    string      `json:"imageUrl"`
	Type        ContentType `json:"type"`
	Tags        []string    `json:"tags"`
}

// RelevantDate is the event date for activities and the publication date otherwise.
func (c ContentItem) RelevantDate() time.Time {
	if c.EventAt != nil {
		return *c.EventAt
	}
	return c.PublishedAt
}

// EnrichmentStatus describes what happened to one item during enrichment.
type EnrichmentStatus string

const (
	StatusEnriched EnrichmentStatus = "enriched"
	StatusFallback EnrichmentStatus = "fallback"
	StatusSkipped  EnrichmentStatus = "skipped"
)

// EnrichmentOutcome is the ephemeral result of one enrichment pass over one item.
type EnrichmentOutcome struct {
	Tags    []string
	Summary string
	Status  EnrichmentStatus
}

// HasSummary reports whether the pass produced a replacement summary.
func (o EnrichmentOutcome) HasSummary() bool {
	return o.Summary != ""
}
