package source

import (
	"errors"
	"math/rand/v2"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/araddon/dateparse"

	"CampusFeed/internal/domain"
)

const (
	// DefaultActivitySampleRate is the probability that an undated record
	// becomes an activity. Keeps a minimum activity population in the feed.
	DefaultActivitySampleRate = 0.3
	// DefaultSourceLabel is used when a record names no origin.
	DefaultSourceLabel = "UC"
	// LinkMarker prefixes the original link appended to the body.
	LinkMarker = "Full article: "

	syntheticEventWindowDays = 90
)

var (
	// ErrEmptyRecord marks a record without any usable field.
	ErrEmptyRecord = errors.New("empty record")
	// ErrMissingTitle marks a record whose title cannot be recovered.
	ErrMissingTitle = errors.New("record has no title and no link to derive one")
)

var linkExpr = regexp.MustCompile(`Full article: (https?://\S+)`)

// LinkFromBody returns the original link appended by the normalizer, if any.
func LinkFromBody(body string) string {
	m := linkExpr.FindStringSubmatch(body)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// Sampler is the random source behind activity sampling and image picks.
// *rand.Rand from math/rand/v2 satisfies it.
type Sampler interface {
	Float64() float64
	IntN(n int) int
}

type globalSampler struct{}

func (globalSampler) Float64() float64 { return rand.Float64() }
func (globalSampler) IntN(n int) int   { return rand.IntN(n) }

// Policy parameterizes record normalization.
type Policy struct {
	ActivitySampleRate float64
	DefaultSource      string
	PlaceholderTitles  []string
	FallbackImages     []string
	Location           *time.Location
}

// Normalizer turns raw records into canonical content drafts.
type Normalizer struct {
	policy  Policy
	sampler Sampler
}

// NewNormalizer wires a policy with a random source; nil uses math/rand/v2.
func NewNormalizer(policy Policy, sampler Sampler) *Normalizer {
	if sampler == nil {
		sampler = globalSampler{}
	}
	if policy.DefaultSource == "" {
		policy.DefaultSource = DefaultSourceLabel
	}
	if policy.Location == nil {
		policy.Location = time.UTC
	}
	return &Normalizer{policy: policy, sampler: sampler}
}

// Normalize applies the loader policy to one record. now is the ingestion time.
func (n *Normalizer) Normalize(rec Record, now time.Time) (domain.ContentItem, error) {
	if rec.IsEmpty() {
		return domain.ContentItem{}, ErrEmptyRecord
	}

	link := Clean(rec.Link)
	title := Clean(rec.Title)
	if title == "" || n.isPlaceholder(title) {
		title = titleFromLink(link)
	}
	if title == "" {
		return domain.ContentItem{}, ErrMissingTitle
	}

	eventAt := n.eventDate(Clean(rec.EventAt), now)
	itemType := domain.TypeNews
	if eventAt != nil {
		itemType = domain.TypeActivity
	}

	summary := Clean(rec.Summary)
	if summary == "" {
		summary = title
	}

	src := Clean(rec.Source)
	if src == "" {
		src = n.policy.DefaultSource
	}

	publishedAt := now
	if raw := Clean(rec.PublishedAt); raw != "" {
		if parsed, err := dateparse.ParseIn(raw, n.policy.Location); err == nil {
			publishedAt = parsed
		}
	}

	return domain.ContentItem{
		Title:       title,
		Summary:     summary,
		Body:        buildBody(Clean(rec.Body), link),
		Source:      src,
		PublishedAt: publishedAt,
		EventAt:     eventAt,
		ImageURL:    n.pickImage(),
		Type:        itemType,
	}, nil
}

// eventDate keeps a declared date that is not in the past, otherwise samples a synthetic one.
func (n *Normalizer) eventDate(raw string, now time.Time) *time.Time {
	today := startOfDay(now.In(n.policy.Location))
	if raw != "" {
		if parsed, err := dateparse.ParseIn(raw, n.policy.Location); err == nil && !parsed.Before(today) {
			return &parsed
		}
	}

	if n.policy.ActivitySampleRate <= 0 || n.sampler.Float64() >= n.policy.ActivitySampleRate {
		return nil
	}
	synthetic := today.AddDate(0, 0, 1+n.sampler.IntN(syntheticEventWindowDays))
	return &synthetic
}

func (n *Normalizer) isPlaceholder(title string) bool {
	for _, marker := range n.policy.PlaceholderTitles {
		if marker != "" && strings.Contains(title, marker) {
			return true
		}
	}
	return false
}

func (n *Normalizer) pickImage() string {
	if len(n.policy.FallbackImages) == 0 {
		return ""
	}
	return n.policy.FallbackImages[n.sampler.IntN(len(n.policy.FallbackImages))]
}

func buildBody(text, link string) string {
	if link == "" {
		return text
	}
	if text == "" {
		return LinkMarker + link
	}
	return text + "\n\n" + LinkMarker + link
}

// titleFromLink turns ".../cine-recobrado" into "Cine Recobrado".
func titleFromLink(link string) string {
	if link == "" {
		return ""
	}
	parsed, err := url.Parse(link)
	if err != nil {
		return ""
	}
	segments := strings.FieldsFunc(parsed.Path, func(r rune) bool { return r == '/' })
	if len(segments) == 0 {
		return ""
	}
	words := strings.Fields(strings.NewReplacer("-", " ", "_", " ").Replace(segments[len(segments)-1]))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
