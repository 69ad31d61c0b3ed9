package logger

import (
	"fmt"
	"log"
	"log/slog"
)

// New returns a *log.Logger that forwards lines into slog at the given level,
// tagged with the component name. Used where libraries only accept *log.Logger.
func New(base *slog.Logger, component string, level slog.Level) *log.Logger {
	if base == nil {
		base = slog.Default()
	}
	return slog.NewLogLogger(base.With("component", component).Handler(), level)
}

// Migrate adapts slog to the Printf/Verbose logger golang-migrate expects.
type Migrate struct {
	logger *slog.Logger
}

// NewMigrate wraps base for migration progress output.
func NewMigrate(base *slog.Logger) *Migrate {
	if base == nil {
		base = slog.Default()
	}
	return &Migrate{logger: base.With("component", "migrate")}
}

// Printf logs one migration progress line.
func (m *Migrate) Printf(format string, v ...interface{}) {
	m.logger.Info(fmt.Sprintf(format, v...))
}

// Verbose enables migrate's per-step output.
func (m *Migrate) Verbose() bool {
	return true
}
