package types

import "time"

// ContentItem is a normalized news or content record. URL is always absolute
// and PublishedAt is never zero once it leaves a parser.
type ContentItem struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	Category    string    `json:"category"`
}

type Recommendation string

const (
	StrongBuy Recommendation = "Strong Buy"
	Buy       Recommendation = "Buy"
	Hold      Recommendation = "Hold"
	Sell      Recommendation = "Sell"
)

type StockQuote struct {
	Symbol         string         `json:"symbol"`
	Name           string         `json:"name"`
	CurrentPrice   float64        `json:"current_price"`
	Change         float64        `json:"change"`
	ChangePercent  float64        `json:"change_percent"`
	Volume         int64          `json:"volume"`
	MarketCap      string         `json:"market_cap"`
	PERatio        float64        `json:"pe_ratio"`
	Score          float64        `json:"score"`
	Recommendation Recommendation `json:"recommendation"`
	Source         string         `json:"source"`
}

type MutualFund struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	NAV      float64 `json:"nav"`
	Return1Y float64 `json:"return_1y"`
	Rating   int     `json:"rating"`
	Source   string  `json:"source"`
}

type MarketSummary struct {
	Index         string  `json:"index"`
	Value         float64 `json:"value"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Status        string  `json:"status"`
}

type MarketAnalysis struct {
	Sentiment     string  `json:"sentiment"`
	PositiveRatio float64 `json:"positive_ratio"`
	Trend         string  `json:"trend"`
	Advancers     int     `json:"advancers"`
	Decliners     int     `json:"decliners"`
}

type Outlook struct {
	Themes []Theme  `json:"themes"`
	Risks  []string `json:"risks"`
}

type Theme struct {
	Name    string   `json:"name"`
	Sectors []string `json:"sectors"`
	Note    string   `json:"note"`
}

// StockReport is everything the stocks collector produces for one run.
type StockReport struct {
	LargeCap    []StockQuote            `json:"large_cap"`
	MidCap      []StockQuote            `json:"mid_cap"`
	SmallCap    []StockQuote            `json:"small_cap"`
	Gainers     []StockQuote            `json:"gainers"`
	Losers      []StockQuote            `json:"losers"`
	Market      MarketSummary           `json:"market"`
	Analysis    MarketAnalysis          `json:"analysis"`
	Outlook     Outlook                 `json:"outlook"`
	MutualFunds map[string][]MutualFund `json:"mutual_funds,omitempty"`
}

// JobListing carries a heuristic RelevanceScore: higher is more relevant,
// nothing more.
type JobListing struct {
	Title          string    `json:"title"`
	Company        string    `json:"company"`
	Location       string    `json:"location"`
	PackageRange   string    `json:"package_range"`
	Experience     string    `json:"experience"`
	Requirements   []string  `json:"requirements"`
	Description    string    `json:"description"`
	URL            string    `json:"url"`
	Source         string    `json:"source"`
	PostedAt       time.Time `json:"posted_at"`
	RelevanceScore float64   `json:"relevance_score"`
}

type SAPInsight struct {
	Title       string    `json:"title" yaml:"title"`
	Summary     string    `json:"summary" yaml:"summary"`
	Category    string    `json:"category" yaml:"category"`
	Relevance   string    `json:"relevance" yaml:"relevance"`
	Impact      string    `json:"impact" yaml:"impact"`
	KeyFeatures []string  `json:"key_features" yaml:"key_features"`
	URL         string    `json:"url" yaml:"url"`
	PublishedAt time.Time `json:"published_at" yaml:"-"`
}

type InsightSection struct {
	Heading string   `json:"heading" yaml:"heading"`
	Points  []string `json:"points" yaml:"points"`
}

type SAPReport struct {
	News     []SAPInsight     `json:"news"`
	Sections []InsightSection `json:"sections"`
}

type CareerReport struct {
	Skills      []InsightSection `json:"skills" yaml:"skills"`
	Paths       []InsightSection `json:"paths" yaml:"paths"`
	Roadmap     []InsightSection `json:"roadmap" yaml:"roadmap"`
	Predictions []InsightSection `json:"predictions" yaml:"predictions"`
}

// SourceStatus records what happened to one upstream during a collection.
type SourceStatus struct {
	Name  string `json:"name"`
	Items int    `json:"items"`
	Err   string `json:"error,omitempty"`
}

// Result wraps collector output with the path that produced it.
type Result[T any] struct {
	Data         T              `json:"data"`
	UsedFallback bool           `json:"used_fallback"`
	Sources      []SourceStatus `json:"sources,omitempty"`
}

// Failed reports how many upstreams returned an error.
func (r Result[T]) Failed() int {
	n := 0
	for _, s := range r.Sources {
		if s.Err != "" {
			n++
		}
	}
	return n
}

type NewsReport map[string][]ContentItem

// ReportBundle is the merged, renderable output of one run.
type ReportBundle struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Date        string    `json:"date"`
	Day         string    `json:"day"`
	Time        string    `json:"time"`

	News    NewsReport    `json:"news"`
	Stocks  *StockReport  `json:"stocks,omitempty"`
	Jobs    []JobListing  `json:"jobs,omitempty"`
	SAP     *SAPReport    `json:"sap,omitempty"`
	Career  *CareerReport `json:"career,omitempty"`
	Summary string        `json:"summary,omitempty"`

	HasNews        bool `json:"has_news"`
	HasMarketData  bool `json:"has_market_data"`
	HasMutualFunds bool `json:"has_mutual_funds"`
	HasJobs        bool `json:"has_jobs"`
	HasSAPInsights bool `json:"has_sap_insights"`
	HasCareer      bool `json:"has_career"`
	HasSummary     bool `json:"has_summary"`

	Fallbacks []string `json:"fallbacks,omitempty"`
}
