package store

import "time"

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/116.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/116.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Edge/116.0.1938.69",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/117.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.5.2 Safari/605.1.15",
}

var headlineSelectors = []string{
	"h2.title a",
	"div.story-card h3 a",
	"article h2",
	"h3 a",
	"h2 a",
}

// Default returns the built-in configuration. config.yaml overrides it.
func Default() *Config {
	c := &Config{
		Timezone:     "Asia/Kolkata",
		RequestDelay: 1500 * time.Millisecond,
	}

	c.HTTP.ConnectTimeout = 5 * time.Second
	c.HTTP.ReadTimeout = 15 * time.Second
	c.HTTP.MaxRetries = 3
	c.HTTP.BackoffInitial = time.Second
	c.HTTP.BackoffMax = 8 * time.Second
	c.HTTP.RetryStatusCodes = []int{429, 500, 502, 503, 504}
	c.HTTP.UserAgents = append([]string(nil), defaultUserAgents...)

	c.Filters.SimilarityWords = 5
	c.Filters.DescriptionLimit = 200
	c.Filters.ExcludeKeywords = []string{
		"entertainment", "bollywood", "hollywood", "celebrity", "gossip",
		"sports", "cricket", "football", "ipl", "movie", "horoscope", "fashion",
	}

	c.News = NewsConfig{
		Window:     24 * time.Hour,
		MinItems:   3,
		NewsAPIURL: "https://newsapi.org/v2/top-headlines",
		Country:    "in",
		Categories: []NewsCategory{
			{
				Name:         "global",
				MaxItems:     10,
				PerFeedLimit: 5,
				UseNewsAPI:   true,
				Feeds: []string{
					"http://rss.cnn.com/rss/edition.rss",
					"http://feeds.bbci.co.uk/news/world/rss.xml",
					"https://www.reuters.com/rss/world",
					"https://feeds.npr.org/1004/rss.xml",
					"https://www.aljazeera.com/xml/rss/all.xml",
				},
			},
			{
				Name:         "india",
				MaxItems:     10,
				PerFeedLimit: 4,
				Feeds: []string{
					"https://feeds.feedburner.com/ndtvnews-india-news",
					"https://www.thehindu.com/news/national/feeder/default.rss",
					"https://timesofindia.indiatimes.com/rssfeeds/296589292.cms",
					"https://www.hindustantimes.com/feeds/rss/india-news/rssfeed.xml",
					"https://indianexpress.com/feed/",
				},
			},
			{
				Name:         "business",
				MaxItems:     8,
				PerFeedLimit: 4,
				Feeds: []string{
					"https://feeds.feedburner.com/ndtvprofit-latest",
					"https://www.business-standard.com/rss/latest.rss",
					"https://economictimes.indiatimes.com/markets/rssfeeds/1977021501.cms",
					"https://www.livemint.com/rss/markets",
					"https://feeds.feedburner.com/moneycontrol/rss/buzzingstocks.xml",
					"https://www.thehindubusinessline.com/markets/stock-markets/feeder/default.rss",
				},
			},
			{
				Name:         "regional",
				MaxItems:     8,
				PerFeedLimit: 4,
				Feeds: []string{
					"https://www.thehindu.com/news/cities/bangalore/feeder/default.rss",
					"https://www.thehindu.com/news/cities/Hyderabad/feeder/default.rss",
					"https://timesofindia.indiatimes.com/rssfeeds/-2128936835.cms",
					"https://timesofindia.indiatimes.com/rssfeeds/-2128816011.cms",
				},
				Pages: []PageSource{
					{Name: "Deccan Herald Bengaluru", URL: "https://www.deccanherald.com/india/karnataka/bengaluru", Selectors: headlineSelectors},
					{Name: "The Hans India Hyderabad", URL: "https://www.thehansindia.com/telangana/hyderabad", Selectors: headlineSelectors},
				},
			},
		},
	}

	c.Stocks = StocksConfig{
		Buckets: []CapBucket{
			{
				Name:            "large_cap",
				Count:           6,
				MoneyControlURL: "https://www.moneycontrol.com/stocks/marketstats/indexcomp.php?optex=NSE&opttopic=indexcomp&index=9",
				ScreenerURL:     "https://www.screener.in/screens/71/large-cap/",
				Fallback: []FallbackQuote{
					{Symbol: "RELIANCE", Name: "Reliance Industries", Price: 2450},
					{Symbol: "TCS", Name: "Tata Consultancy Services", Price: 3550},
					{Symbol: "INFY", Name: "Infosys", Price: 1480},
					{Symbol: "HDFCBANK", Name: "HDFC Bank", Price: 1530},
					{Symbol: "ICICIBANK", Name: "ICICI Bank", Price: 980},
					{Symbol: "HINDUNILVR", Name: "Hindustan Unilever", Price: 2520},
				},
			},
			{
				Name:            "mid_cap",
				Count:           4,
				MoneyControlURL: "https://www.moneycontrol.com/stocks/marketstats/indexcomp.php?optex=NSE&opttopic=indexcomp&index=124",
				ScreenerURL:     "https://www.screener.in/screens/72/mid-cap/",
				Fallback: []FallbackQuote{
					{Symbol: "TATAMOTORS", Name: "Tata Motors", Price: 640},
					{Symbol: "BAJFINANCE", Name: "Bajaj Finance", Price: 7150},
					{Symbol: "M&M", Name: "Mahindra & Mahindra", Price: 1580},
					{Symbol: "SUNPHARMA", Name: "Sun Pharmaceutical", Price: 1170},
					{Symbol: "TECHM", Name: "Tech Mahindra", Price: 1230},
					{Symbol: "TITAN", Name: "Titan Company", Price: 3200},
				},
			},
			{
				Name:            "small_cap",
				Count:           2,
				MoneyControlURL: "https://www.moneycontrol.com/stocks/marketstats/indexcomp.php?optex=NSE&opttopic=indexcomp&index=135",
				ScreenerURL:     "https://www.screener.in/screens/73/small-cap/",
				Fallback: []FallbackQuote{
					{Symbol: "ZEEL", Name: "Zee Entertainment", Price: 265},
					{Symbol: "IDEA", Name: "Vodafone Idea", Price: 13},
					{Symbol: "SAIL", Name: "Steel Authority of India", Price: 95},
					{Symbol: "COALINDIA", Name: "Coal India", Price: 280},
					{Symbol: "NMDC", Name: "NMDC", Price: 150},
					{Symbol: "VEDL", Name: "Vedanta", Price: 240},
				},
			},
		},
		GainersURL:       "https://www.moneycontrol.com/stocks/marketstats/nsegainer/index.php",
		LosersURL:        "https://www.moneycontrol.com/stocks/marketstats/nseloser/index.php",
		GainersCount:     5,
		LosersCount:      3,
		ChartURL:         "https://query1.finance.yahoo.com/v8/finance/chart/%s?range=1mo&interval=1d",
		IndexSymbol:      "^NSEI",
		IndexName:        "Nifty 50",
		SymbolSuffix:     ".NS",
		Exchange:         "NSE",
		FundsURL:         "https://www.valueresearchonline.com/funds/selector/category/16/%s/",
		FundCategories:   []string{"large_cap", "mid_cap", "small_cap", "flexi_cap"},
		FundsPerCategory: 3,
	}

	c.Jobs = JobsConfig{
		Feeds: []string{
			"https://www.indeed.co.in/rss?q=SAP+Finance+Architect&l=India",
			"https://www.indeed.co.in/rss?q=SAP+S%2F4HANA+Finance+Lead&l=India",
		},
		Pages: []PageSource{
			{
				Name:      "Naukri",
				URL:       "https://www.naukri.com/sap-finance-architect-jobs",
				Selectors: []string{"article.jobTuple a.title", "div.srp-jobtuple-wrapper a.title", "a.title"},
			},
		},
		Keywords:          []string{"architect", "lead", "manager", "director", "finance", "s/4hana"},
		TitleWeight:       2,
		DescriptionWeight: 1,
		Employers: []string{
			"SAP", "Accenture", "Deloitte", "IBM", "Infosys", "TCS", "Capgemini",
			"PwC", "EY", "KPMG", "Wipro",
		},
		EmployerBonus:     1,
		SeniorityKeywords: []string{"senior", "principal", "head", "vp", "program lead"},
		SeniorityBonus:    1,
		PackageTiers: []PackageTier{
			{MinLPA: 25, Bonus: 3},
			{MinLPA: 20, Bonus: 2},
			{MinLPA: 15, Bonus: 1},
		},
		MinScore: 1,
		MaxItems: 10,
		MinItems: 3,
		Window:   7 * 24 * time.Hour,
	}

	c.SAP = SAPConfig{
		Feeds: []string{
			"https://news.sap.com/feed/",
			"https://blogs.sap.com/feed/",
		},
		Keywords: []string{"ai", "joule", "btp", "business ai", "generative", "s/4hana", "copilot", "machine learning"},
		MaxItems: 6,
		MinItems: 2,
		Window:   7 * 24 * time.Hour,
	}

	c.Summary = SummaryConfig{
		Provider:    "NONE",
		Model:       "gpt-4o-mini",
		MaxTokens:   400,
		Temperature: 0.3,
		System:      "You write a short executive summary of a daily news and markets digest for a senior SAP finance professional in India. Plain text, at most five sentences.",
	}

	c.Report = ReportConfig{
		Title:         "Daily Intelligence Report",
		AttachPDF:     true,
		ArchiveDir:    "reports",
		RetentionDays: 14,
	}

	return c
}
