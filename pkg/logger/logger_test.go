package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewForwardsToSlog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	New(base, "http", slog.LevelWarn).Printf("tls handshake error from %s", "10.0.0.1")

	out := buf.String()
	if !strings.Contains(out, "component=http") || !strings.Contains(out, "tls handshake error from 10.0.0.1") {
		t.Fatalf("unexpected output: %s", out)
	}
	if !strings.Contains(out, "level=WARN") {
		t.Fatalf("expected warn level, got %s", out)
	}
}

func TestMigratePrintf(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	m := NewMigrate(slog.New(slog.NewTextHandler(&buf, nil)))
	m.Printf("1/u init (%dms)", 12)

	if !m.Verbose() {
		t.Fatalf("migrate logger should be verbose")
	}
	if !strings.Contains(buf.String(), "1/u init (12ms)") {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}
