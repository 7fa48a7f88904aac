package news

import (
	"time"

	"daily-intel/internal/types"
)

var fallbackByCategory = map[string][]types.ContentItem{
	"global": {
		{Title: "World headlines from BBC News", Description: "Latest international coverage from the BBC world desk.", URL: "https://www.bbc.com/news/world", Source: "BBC News"},
		{Title: "Reuters world news roundup", Description: "Top global stories from Reuters correspondents.", URL: "https://www.reuters.com/world/", Source: "Reuters"},
		{Title: "Al Jazeera live international coverage", Description: "Breaking news and analysis from around the world.", URL: "https://www.aljazeera.com/news/", Source: "Al Jazeera"},
	},
	"india": {
		{Title: "National news from The Hindu", Description: "Top stories from across India.", URL: "https://www.thehindu.com/news/national/", Source: "The Hindu"},
		{Title: "India news from NDTV", Description: "Latest developments from around the country.", URL: "https://www.ndtv.com/india", Source: "NDTV"},
		{Title: "Indian Express national coverage", Description: "Politics, policy and governance updates.", URL: "https://indianexpress.com/section/india/", Source: "The Indian Express"},
	},
	"business": {
		{Title: "Markets live from Economic Times", Description: "Sensex, Nifty and sector moves through the session.", URL: "https://economictimes.indiatimes.com/markets", Source: "Economic Times"},
		{Title: "Business Standard markets desk", Description: "Corporate results, IPOs and economy updates.", URL: "https://www.business-standard.com/markets", Source: "Business Standard"},
		{Title: "Mint markets coverage", Description: "Stocks, mutual funds and policy analysis.", URL: "https://www.livemint.com/market", Source: "Mint"},
	},
	"regional": {
		{Title: "Bengaluru city updates", Description: "Local infrastructure and development news.", URL: "https://www.thehindu.com/news/cities/bangalore/", Source: "The Hindu"},
		{Title: "Hyderabad city updates", Description: "Civic, transport and development news.", URL: "https://www.thehindu.com/news/cities/Hyderabad/", Source: "The Hindu"},
		{Title: "Andhra Pradesh regional roundup", Description: "State governance and regional development news.", URL: "https://www.thehindu.com/news/national/andhra-pradesh/", Source: "The Hindu"},
	},
}

// fallbackItems returns the curated list for a category stamped at now
func fallbackItems(category string, now time.Time) []types.ContentItem {
	src, ok := fallbackByCategory[category]
	if !ok {
		src = fallbackByCategory["global"]
	}
	out := make([]types.ContentItem, len(src))
	for i, it := range src {
		it.PublishedAt = now
		out[i] = it
	}
	return out
}
