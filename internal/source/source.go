package source

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// MissingSentinel is the export's marker for an absent value.
const MissingSentinel = "N/A"

// Record is one row of a bulk import. Every field is optional.
type Record struct {
	Title       string
	Summary     string
	Body        string
	PublishedAt string
	EventAt     string
	Source      string
	Link        string
}

// IsEmpty reports whether no field carries a usable value.
func (r Record) IsEmpty() bool {
	for _, v := range []string{r.Title, r.Summary, r.Body, r.PublishedAt, r.EventAt, r.Source, r.Link} {
		if Clean(v) != "" {
			return false
		}
	}
	return true
}

// Clean trims a raw value and maps the missing sentinel to "".
func Clean(value string) string {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, MissingSentinel) {
		return ""
	}
	return value
}

// Columns maps record fields to header names of the tabular export.
type Columns struct {
	Title       string `yaml:"title"`
	Summary     string `yaml:"summary"`
	Body        string `yaml:"body"`
	PublishedAt string `yaml:"publishedAt"`
	EventAt     string `yaml:"eventAt"`
	Source      string `yaml:"source"`
	Link        string `yaml:"link"`
}

// DefaultColumns are the headers of the university news export.
func DefaultColumns() Columns {
	return Columns{
		Title:       "Titulo",
		Summary:     "Resumen breve",
		Body:        "Contenido completo",
		PublishedAt: "Fecha publicación",
		EventAt:     "Fecha del evento",
		Source:      "Fuentes/origen",
		Link:        "Link original",
	}
}

// Request carries everything a format reader needs to decode one input.
type Request struct {
	Input   io.Reader
	Columns Columns
}

// Reader decodes a single tabular format (CSV, TSV, ...).
type Reader interface {
	Name() string
	Read(ctx context.Context, req Request) ([]Record, error)
}

// Registry keeps a mapping from format names to their readers.
type Registry struct {
	readers map[string]Reader
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{readers: map[string]Reader{}}
}

// Register adds or replaces a reader implementation.
func (r *Registry) Register(reader Reader) {
	if r.readers == nil {
		r.readers = map[string]Reader{}
	}
	r.readers[reader.Name()] = reader
}

// Resolve returns a reader by format name or an error if it is absent.
func (r *Registry) Resolve(name string) (Reader, error) {
	if reader, ok := r.readers[strings.ToLower(name)]; ok {
		return reader, nil
	}
	return nil, fmt.Errorf("format %s is not registered", name)
}
