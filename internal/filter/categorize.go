package filter

import "daily-intel/internal/types"

const (
	CategoryExcluded   = "Excluded"
	CategoryMarkets    = "Markets"
	CategoryBusiness   = "Business"
	CategoryTechnology = "Technology"
	CategoryPolitics   = "Politics"
	CategoryWorld      = "World"
	CategoryGeneral    = "General"
)

var categoryKeywords = []struct {
	name    string
	matcher *Matcher
}{
	{CategoryMarkets, NewMatcher([]string{"stock", "stocks", "market", "markets", "sensex", "nifty", "shares", "ipo", "equity", "rupee", "bond", "bonds"})},
	{CategoryBusiness, NewMatcher([]string{"business", "economy", "gdp", "inflation", "rbi", "earnings", "profit", "startup", "company", "bank"})},
	{CategoryTechnology, NewMatcher([]string{"technology", "tech", "ai", "software", "cloud", "cyber", "semiconductor", "digital"})},
	{CategoryPolitics, NewMatcher([]string{"election", "minister", "parliament", "government", "policy", "party", "modi", "congress"})},
	{CategoryWorld, NewMatcher([]string{"war", "un", "global", "china", "us", "russia", "ukraine", "israel", "summit"})},
}

// Categorize labels an item. Exclusion wins over every topic.
func Categorize(item types.ContentItem, exclude *Matcher) string {
	if exclude.Excluded(item) {
		return CategoryExcluded
	}
	for _, c := range categoryKeywords {
		if c.matcher.Match(item.Title, item.Description) {
			return c.name
		}
	}
	return CategoryGeneral
}
