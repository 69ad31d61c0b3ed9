package usecase

import "strings"

// Vocabulary is the closed tag set plus the fallback tag.
type Vocabulary struct {
	terms     []string
	canonical map[string]string
	fallback  string
}

// NewVocabulary indexes terms case-insensitively.
func NewVocabulary(terms []string, fallback string) Vocabulary {
	v := Vocabulary{canonical: make(map[string]string, len(terms)), fallback: fallback}
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		key := strings.ToLower(term)
		if _, dup := v.canonical[key]; dup {
			continue
		}
		v.canonical[key] = term
		v.terms = append(v.terms, term)
	}
	return v
}

// Terms lists the vocabulary in configured order.
func (v Vocabulary) Terms() []string {
	return append([]string(nil), v.terms...)
}

// Filter keeps tags inside the vocabulary, in canonical spelling, without duplicates.
func (v Vocabulary) Filter(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		term, ok := v.canonical[strings.ToLower(strings.TrimSpace(tag))]
		if !ok || seen[term] {
			continue
		}
		seen[term] = true
		out = append(out, term)
	}
	return out
}

// Fallback is the single-tag set used when tagging fails.
func (v Vocabulary) Fallback() []string {
	return []string{v.fallback}
}
