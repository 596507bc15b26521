// Package filter computes the visible subset of a record set from a free-text
// search and a category selection. It is pure: the same inputs always give
// the same output, in input order.
package filter

import (
	"strings"
)

// All is the category that matches every record.
const All = "All"

// Criteria is the active search text and selected category.
type Criteria struct {
	Search   string
	Category string
}

// IsAll reports whether the category predicate is a no-op.
func (c Criteria) IsAll() bool {
	cat := strings.TrimSpace(c.Category)
	return cat == "" || strings.EqualFold(cat, All)
}

// Predicate is an extra condition ANDed with the text and category predicates.
type Predicate[T any] func(T) bool

// Spec describes how one page's records are searched and categorized.
type Spec[T any] struct {
	// Fields returns the values the search text is matched against.
	Fields func(T) []string
	// Category returns the value the category predicate tests.
	Category func(T) string
	// Keywords maps a category to the substrings that place a record in it.
	// Categories without an entry fall back to case-insensitive equality.
	Keywords map[string][]string
}

// Apply returns the records that match c and every extra predicate.
// The result is a new slice; records is never modified.
func Apply[T any](records []T, c Criteria, s Spec[T], extra ...Predicate[T]) []T {
	search := normalize(c.Search)
	out := make([]T, 0, len(records))
	for _, r := range records {
		if !s.matchesSearch(r, search) {
			continue
		}
		if !s.matchesCategory(r, c) {
			continue
		}
		if !matchesAll(r, extra) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (s Spec[T]) matchesSearch(r T, search string) bool {
	if search == "" || s.Fields == nil {
		return true
	}
	for _, f := range s.Fields(r) {
		if strings.Contains(normalize(f), search) {
			return true
		}
	}
	return false
}

func (s Spec[T]) matchesCategory(r T, c Criteria) bool {
	if c.IsAll() || s.Category == nil {
		return true
	}
	value := normalize(s.Category(r))
	keywords, ok := s.keywords(c.Category)
	if !ok {
		return value == normalize(c.Category)
	}
	for _, kw := range keywords {
		if strings.Contains(value, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// keywords finds the keyword list for category, ignoring case and
// surrounding space.
func (s Spec[T]) keywords(category string) ([]string, bool) {
	if kw, ok := s.Keywords[category]; ok {
		return kw, true
	}
	category = strings.TrimSpace(category)
	for name, kw := range s.Keywords {
		if strings.EqualFold(name, category) {
			return kw, true
		}
	}
	return nil, false
}

func matchesAll[T any](r T, preds []Predicate[T]) bool {
	for _, p := range preds {
		if p != nil && !p(r) {
			return false
		}
	}
	return true
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
