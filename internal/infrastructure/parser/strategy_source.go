package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"CampusFeed/internal/config"
	"CampusFeed/internal/ports"
	"CampusFeed/internal/source"
)

// FileSource implements RecordSource over the configured import files.
type FileSource struct {
	registry *source.Registry
	imports  []config.ImportConfig
	columns  source.Columns
	logger   *slog.Logger
}

var _ ports.RecordSource = (*FileSource)(nil)

// NewFileSource wires the format registry with config-defined imports.
func NewFileSource(reg *source.Registry, imports []config.ImportConfig, columns source.Columns, log *slog.Logger) *FileSource {
	return &FileSource{
		registry: reg,
		imports:  imports,
		columns:  columns,
		logger:   log,
	}
}

// Load reads every import in order. A missing or unreadable import is logged
// and skipped; Load fails only when no import could be read at all.
func (s *FileSource) Load(ctx context.Context) ([]source.Record, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("format registry is not configured")
	}

	s.debug("load imports", "imports", len(s.imports))

	var (
		aggregated []source.Record
		failures   []error
		succeeded  int
	)
	for _, imp := range s.imports {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		records, err := s.loadOne(ctx, imp)
		switch {
		case errors.Is(err, os.ErrNotExist):
			s.warn("import file not found", "path", imp.Path)
			continue
		case err != nil:
			s.warn("import skipped", "path", imp.Path, "error", err)
			failures = append(failures, err)
			continue
		}

		succeeded++
		aggregated = append(aggregated, records...)
	}

	if succeeded == 0 && len(failures) > 0 {
		return nil, errors.Join(failures...)
	}

	s.debug("file source done", "total_records", len(aggregated), "failed_imports", len(failures))
	return aggregated, nil
}

func (s *FileSource) loadOne(ctx context.Context, imp config.ImportConfig) ([]source.Record, error) {
	format := imp.Format
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(imp.Path), ".")
	}
	reader, err := s.registry.Resolve(format)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", imp.Path, err)
	}

	f, err := os.Open(imp.Path)
	if err != nil {
		return nil, fmt.Errorf("open import %s: %w", imp.Path, err)
	}
	defer f.Close()

	records, err := reader.Read(ctx, source.Request{Input: f, Columns: s.columns})
	if err != nil {
		return nil, fmt.Errorf("read import %s: %w", imp.Path, err)
	}

	s.debug("import produced records", "path", imp.Path, "format", reader.Name(), "count", len(records))
	return records, nil
}

func (s *FileSource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *FileSource) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
