package usecase

import "testing"

func TestDecodeStringsUnwrapsFences(t *testing.T) {
	t.Parallel()

	raw := "```json\n[\"Academic\", \"Career\"]\n```"
	tags, err := decodeStrings(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(tags) != 2 || tags[1] != "Career" {
		t.Fatalf("unexpected tags: %v", tags)
	}

	tags, err = decodeStrings(`Sure! Here you go: ["Social"] hope it helps`)
	if err != nil || len(tags) != 1 {
		t.Fatalf("unexpected result: %v %v", tags, err)
	}

	if _, err := decodeStrings("no json here"); err == nil {
		t.Fatalf("expected error for prose")
	}
}

func TestDecodeIDsDropsNonIntegers(t *testing.T) {
	t.Parallel()

	got, err := decodeIDs(`[3, "7", 2.5, "abc", null, {"id": 1}, 9]`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []int64{3, 7, 9}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	if _, err := decodeIDs(`[1, 2`); err == nil {
		t.Fatalf("expected error for truncated array")
	}
}

func TestTruncateRunes(t *testing.T) {
	t.Parallel()

	if got := truncateRunes("señales", 4); got != "seña" {
		t.Fatalf("unexpected truncation: %q", got)
	}
	if got := truncateRunes("abc", 0); got != "abc" {
		t.Fatalf("zero limit should keep text, got %q", got)
	}
}
