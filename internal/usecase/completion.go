package usecase

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"
)

var errNoJSONArray = errors.New("completion carries no JSON array")

// unwrapArray strips markdown fences and returns the outermost JSON array.
func unwrapArray(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if nl := strings.IndexByte(text, '\n'); nl >= 0 {
			text = text[nl+1:]
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}

	start := strings.IndexByte(text, '[')
	end := strings.LastIndexByte(text, ']')
	if start < 0 || end <= start {
		return "", errNoJSONArray
	}
	return text[start : end+1], nil
}

// decodeStrings parses a completion holding a JSON array of strings.
func decodeStrings(raw string) ([]string, error) {
	body, err := unwrapArray(raw)
	if err != nil {
		return nil, err
	}

	var out []string
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return nil, fmt.Errorf("decode string array: %w", err)
	}
	return out, nil
}

// decodeIDs parses a completion holding a JSON array of identifiers.
// Entries that are not integers (or integer strings) are dropped.
func decodeIDs(raw string) ([]int64, error) {
	body, err := unwrapArray(raw)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	dec.UseNumber()

	var values []any
	if err := dec.Decode(&values); err != nil {
		return nil, fmt.Errorf("decode id array: %w", err)
	}

	ids := make([]int64, 0, len(values))
	for _, v := range values {
		switch val := v.(type) {
		case json.Number:
			if id, err := val.Int64(); err == nil {
				ids = append(ids, id)
			}
		case string:
			if id, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64); err == nil {
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

func truncateRunes(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit])
}

func mustJSON(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(raw)
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
