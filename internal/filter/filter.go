// Package filter holds the pure dedup, exclusion, recency and ranking rules
// shared by every collector.
package filter

import (
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"

	"daily-intel/internal/types"
)

// SimilarityKey lowercases title, drops punctuation, keeps the first k words
// and joins them sorted, so reordered openings share a key. k <= 0 keeps
// every word.
func SimilarityKey(title string, k int) string {
	words := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if k > 0 && len(words) > k {
		words = words[:k]
	}
	sort.Strings(words)
	return strings.Join(words, " ")
}

// Dedupe keeps the first item for each similarity key, preserving order.
func Dedupe[T any](items []T, title func(T) string, k int) []T {
	seen := make(map[string]bool, len(items))
	out := make([]T, 0, len(items))
	for _, it := range items {
		key := SimilarityKey(title(it), k)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, it)
	}
	return out
}

// Matcher finds whole-word keyword hits regardless of case.
type Matcher struct {
	re *regexp.Regexp
}

func NewMatcher(keywords []string) *Matcher {
	parts := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw != "" {
			parts = append(parts, regexp.QuoteMeta(strings.ToLower(kw)))
		}
	}
	if len(parts) == 0 {
		return &Matcher{}
	}
	// (^|[^\pL\pN]) instead of \b so keywords like "s/4hana" still anchor
	re := regexp.MustCompile(`(?i)(^|[^\pL\pN])(` + strings.Join(parts, "|") + `)($|[^\pL\pN])`)
	return &Matcher{re: re}
}

func (m *Matcher) Match(texts ...string) bool {
	if m == nil || m.re == nil {
		return false
	}
	for _, t := range texts {
		if m.re.MatchString(t) {
			return true
		}
	}
	return false
}

// Excluded reports whether an item hits an exclusion keyword in its title or
// its description.
func (m *Matcher) Excluded(item types.ContentItem) bool {
	return m.Match(item.Title, item.Description)
}

// Within reports whether published lies inside window ending at now. The
// boundary is inclusive and timestamps after now count as fresh.
func Within(published, now time.Time, window time.Duration) bool {
	if window <= 0 {
		return true
	}
	return now.Sub(published) <= window
}

// Recent filters items to the window ending at now.
func Recent[T any](items []T, at func(T) time.Time, now time.Time, window time.Duration) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if Within(at(it), now, window) {
			out = append(out, it)
		}
	}
	return out
}

// Top returns at most n items.
func Top[T any](items []T, n int) []T {
	if n <= 0 || len(items) <= n {
		return items
	}
	return items[:n]
}

// NewestFirst sorts items by publish time, newest first, stable on ties.
func NewestFirst(items []types.ContentItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})
}

func ItemTitle(it types.ContentItem) string { return it.Title }

func ItemTime(it types.ContentItem) time.Time { return it.PublishedAt }
