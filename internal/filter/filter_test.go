package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"daily-intel/internal/types"
)

func item(title, desc string) types.ContentItem {
	return types.ContentItem{Title: title, Description: desc}
}

func TestSimilarityKey(t *testing.T) {
	assert.Equal(t, "cut markets on rally rate", SimilarityKey("Markets rally on rate cut hopes!", 5))
	assert.Equal(t, SimilarityKey("Rate cut on, markets rally today", 5), SimilarityKey("Markets rally on rate cut hopes", 5))
	assert.NotEqual(t, SimilarityKey("Rate cut hopes: markets rally on", 5), SimilarityKey("Markets rally on rate cut hopes", 5))
	assert.Equal(t, "a b c", SimilarityKey("c b a", 0))
	assert.Equal(t, "", SimilarityKey("  ...  ", 5))
}

func TestDedupeIgnoresWordsPastTheFifth(t *testing.T) {
	// the differing trailing words sort ahead of the shared ones
	items := []types.ContentItem{
		item("Zonal yields widen over trade apple", "first"),
		item("Zonal yields widen over trade banana", "second"),
	}

	out := Dedupe(items, ItemTitle, 5)

	assert.Len(t, out, 1)
	assert.Equal(t, "first", out[0].Description)
	assert.Equal(t, SimilarityKey(items[0].Title, 5), SimilarityKey(items[1].Title, 5))
}

func TestDedupeCollapsesSharedFirstFiveSortedWords(t *testing.T) {
	items := []types.ContentItem{
		item("alpha beta gamma delta epsilon zeta", "first"),
		item("Epsilon, delta; gamma BETA alpha omega", "second"),
		item("something else entirely", "third"),
	}

	out := Dedupe(items, ItemTitle, 5)

	assert.Len(t, out, 2)
	assert.Equal(t, "first", out[0].Description)
	assert.Equal(t, "third", out[1].Description)
}

func TestExclusionIsSymmetricAndCaseInsensitive(t *testing.T) {
	m := NewMatcher([]string{"cricket", "Bollywood"})

	assert.True(t, m.Excluded(item("CRICKET final tonight", "")))
	assert.True(t, m.Excluded(item("Final tonight", "a cricket special")))
	assert.True(t, m.Excluded(item("Weekend", "bollywood box office")))
	assert.False(t, m.Excluded(item("Cricketers union meets", "")), "whole words only")
	assert.False(t, m.Excluded(item("Budget session", "fiscal deficit")))
}

func TestMatcherHandlesPunctuatedKeywords(t *testing.T) {
	m := NewMatcher([]string{"s/4hana"})

	assert.True(t, m.Match("SAP S/4HANA Finance Lead"))
	assert.False(t, m.Match("SAP ECC consultant"))
	assert.False(t, NewMatcher(nil).Match("anything"))
}

func TestWithinBoundaryIsInclusive(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	window := 24 * time.Hour

	assert.True(t, Within(now.Add(-window), now, window), "exactly at the boundary is kept")
	assert.False(t, Within(now.Add(-window-time.Second), now, window))
	assert.True(t, Within(now.Add(time.Hour), now, window), "future timestamps are kept")
	assert.True(t, Within(now.Add(-1000*time.Hour), now, 0), "zero window disables the filter")
}

func TestRecentAndTop(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	items := []types.ContentItem{
		{Title: "old", PublishedAt: now.Add(-48 * time.Hour)},
		{Title: "mid", PublishedAt: now.Add(-2 * time.Hour)},
		{Title: "new", PublishedAt: now.Add(-time.Hour)},
	}

	recent := Recent(items, ItemTime, now, 24*time.Hour)
	NewestFirst(recent)

	assert.Equal(t, []string{"new", "mid"}, []string{recent[0].Title, recent[1].Title})
	assert.Len(t, Top(recent, 1), 1)
	assert.Len(t, Top(recent, 0), 2)
}

func TestCategorize(t *testing.T) {
	exclude := NewMatcher([]string{"sports", "cricket", "entertainment"})

	assert.Equal(t, CategoryMarkets, Categorize(item("Important Business Update", "Stock market news"), exclude))
	assert.Equal(t, CategoryExcluded, Categorize(item("Sports Update", "Cricket match results"), exclude))
	assert.Equal(t, CategoryGeneral, Categorize(item("Local library extends hours", "Readers welcome"), exclude))
}
