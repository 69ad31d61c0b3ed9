package parser

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"CampusFeed/internal/source"
)

const utf8BOM = "\ufeff"

// CSVReader decodes delimiter-separated exports with a header row.
type CSVReader struct {
	name  string
	comma rune
}

var _ source.Reader = (*CSVReader)(nil)

// NewCSVReader reads comma-separated files.
func NewCSVReader() *CSVReader {
	return &CSVReader{name: "csv", comma: ','}
}

// NewTSVReader reads tab-separated files.
func NewTSVReader() *CSVReader {
	return &CSVReader{name: "tsv", comma: '\t'}
}

// Name identifies the format inside the registry.
func (c *CSVReader) Name() string {
	return c.name
}

// Read maps every non-blank row onto a record using the configured header names.
func (c *CSVReader) Read(ctx context.Context, req source.Request) ([]source.Record, error) {
	if req.Input == nil {
		return nil, fmt.Errorf("%s reader: no input", c.name)
	}

	r := csv.NewReader(req.Input)
	r.Comma = c.comma
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := headerIndex(header)
	if _, ok := index[req.Columns.Title]; !ok {
		return nil, fmt.Errorf("missing title column %q", req.Columns.Title)
	}

	var records []source.Record
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		if blankRow(row) {
			continue
		}

		field := func(column string) string {
			i, ok := index[column]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}

		records = append(records, source.Record{
			Title:       field(req.Columns.Title),
			Summary:     field(req.Columns.Summary),
			Body:        field(req.Columns.Body),
			PublishedAt: field(req.Columns.PublishedAt),
			EventAt:     field(req.Columns.EventAt),
			Source:      field(req.Columns.Source),
			Link:        field(req.Columns.Link),
		})
	}

	return records, nil
}

func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		index[strings.TrimSpace(name)] = i
	}
	return index
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
