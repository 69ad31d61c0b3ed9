package source

import (
	"context"
	"testing"
)

type namedReader string

func (n namedReader) Name() string { return string(n) }
func (n namedReader) Read(context.Context, Request) ([]Record, error) {
	return []Record{{Title: string(n)}}, nil
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(namedReader("csv"))

	reader, err := reg.Resolve("CSV")
	if err != nil {
		t.Fatalf("resolve csv: %v", err)
	}
	if reader.Name() != "csv" {
		t.Fatalf("unexpected reader: %s", reader.Name())
	}

	if _, err := reg.Resolve("xlsx"); err == nil {
		t.Fatalf("expected error for unregistered format")
	}
}

func TestCleanAndIsEmpty(t *testing.T) {
	t.Parallel()

	if got := Clean("  n/a "); got != "" {
		t.Fatalf("sentinel should be missing, got %q", got)
	}
	if got := Clean(" Robotics "); got != "Robotics" {
		t.Fatalf("unexpected clean value: %q", got)
	}
	if !(Record{Title: "N/A", Link: " "}).IsEmpty() {
		t.Fatalf("record with only sentinels should be empty")
	}
	if (Record{Source: "UC"}).IsEmpty() {
		t.Fatalf("record with a source is not empty")
	}
}
