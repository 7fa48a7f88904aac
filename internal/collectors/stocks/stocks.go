package stocks

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"daily-intel/internal/api"
	"daily-intel/internal/logger"
	"daily-intel/internal/store"
	"daily-intel/internal/types"
)

// IndexSource is satisfied by *YahooProvider
type IndexSource interface {
	Chart(ctx context.Context, ticker string) (*Chart, error)
}

// Collector builds the market section: cap buckets from scraped index pages
// topped up with quotes, movers, the index summary and optionally funds.
type Collector struct {
	cfg    store.StocksConfig
	pages  PageReader
	quotes QuoteProvider
	index  IndexSource
	pacer  *api.Pacer
}

func New(cfg *store.Config, pages PageReader, quotes QuoteProvider, index IndexSource) *Collector {
	return &Collector{
		cfg:    cfg.Stocks,
		pages:  pages,
		quotes: quotes,
		index:  index,
		pacer:  api.NewPacer(cfg.RequestDelay),
	}
}

type run struct {
	sources  []types.SourceStatus
	fallback bool
}

func (r *run) record(ctx context.Context, name string, items int, err error) {
	st := types.SourceStatus{Name: name, Items: items}
	if err != nil {
		st.Err = err.Error()
		logger.Warn(ctx, "Market source failed", "source", name, "error", err)
	}
	r.sources = append(r.sources, st)
}

func (c *Collector) CollectStocks(ctx context.Context, withFunds bool) types.Result[*types.StockReport] {
	r := &run{}
	report := &types.StockReport{
		LargeCap: []types.StockQuote{},
		MidCap:   []types.StockQuote{},
		SmallCap: []types.StockQuote{},
		Outlook:  defaultOutlook(),
	}

	for _, bucket := range c.cfg.Buckets {
		quotes := c.collectBucket(ctx, r, bucket)
		switch bucket.Name {
		case "large_cap":
			report.LargeCap = quotes
		case "mid_cap":
			report.MidCap = quotes
		case "small_cap":
			report.SmallCap = quotes
		default:
			logger.Warn(ctx, "Unknown stock bucket ignored", "bucket", bucket.Name)
		}
	}

	report.Gainers = c.movers(ctx, r, c.cfg.GainersURL, c.cfg.GainersCount)
	report.Losers = c.movers(ctx, r, c.cfg.LosersURL, c.cfg.LosersCount)
	report.Market = c.marketSummary(ctx, r)
	report.Analysis = Analyze(report.LargeCap, report.MidCap, report.SmallCap)

	if withFunds {
		report.MutualFunds = c.collectFunds(ctx, r)
	}

	return types.Result[*types.StockReport]{Data: report, UsedFallback: r.fallback, Sources: r.sources}
}

// collectBucket tries MoneyControl, then Screener, prices any row the page
// left without one, and finally fills from the bucket's fallback symbols.
// Every returned quote has a positive price.
func (c *Collector) collectBucket(ctx context.Context, r *run, b store.CapBucket) []types.StockQuote {
	rows := []types.StockQuote{}

	if b.MoneyControlURL != "" && c.wait(ctx) {
		var parsed []types.StockQuote
		err := c.pages.Document(ctx, b.MoneyControlURL, func(doc *goquery.Selection, _ *url.URL) {
			parsed = ParseMoneyControl(doc, b.Count)
		})
		r.record(ctx, b.MoneyControlURL, len(parsed), err)
		rows = append(rows, parsed...)
	}

	if len(rows) < b.Count && b.ScreenerURL != "" && c.wait(ctx) {
		var parsed []types.StockQuote
		err := c.pages.Document(ctx, b.ScreenerURL, func(doc *goquery.Selection, _ *url.URL) {
			parsed = ParseScreener(doc, b.Count-len(rows))
		})
		r.record(ctx, b.ScreenerURL, len(parsed), err)
		rows = append(rows, parsed...)
	}

	seen := map[string]bool{}
	priced := make([]types.StockQuote, 0, b.Count)
	for _, row := range rows {
		if seen[row.Symbol] {
			continue
		}
		if row.CurrentPrice <= 0 {
			if !c.enhance(ctx, r, &row) {
				continue
			}
		}
		seen[row.Symbol] = true
		priced = append(priced, row)
	}

	if len(priced) < b.Count {
		logger.Warn(ctx, "Stock bucket short, using fallback symbols", "bucket", b.Name, "have", len(priced), "want", b.Count)
		for _, fb := range b.Fallback {
			if len(priced) >= b.Count {
				break
			}
			if seen[fb.Symbol] {
				continue
			}
			seen[fb.Symbol] = true
			priced = append(priced, c.fallbackQuote(ctx, r, fb))
			r.fallback = true
		}
	}

	if b.Count > 0 && len(priced) > b.Count {
		priced = priced[:b.Count]
	}
	return priced
}

// enhance fills price fields from the quote chain, keeping the scraped name
func (c *Collector) enhance(ctx context.Context, r *run, row *types.StockQuote) bool {
	if c.quotes == nil || !c.wait(ctx) {
		return false
	}
	q, err := c.quotes.Quote(ctx, row.Symbol)
	if err != nil {
		r.record(ctx, "quote:"+row.Symbol, 0, err)
		return false
	}

	row.CurrentPrice = q.CurrentPrice
	row.Change = q.Change
	row.ChangePercent = q.ChangePercent
	row.Volume = q.Volume
	row.Score = q.Score
	row.Recommendation = q.Recommendation
	if row.MarketCap == "" {
		row.MarketCap = q.MarketCap
	}
	if row.PERatio == 0 {
		row.PERatio = q.PERatio
	}
	row.Source = row.Source + " + " + q.Source
	return true
}

func (c *Collector) fallbackQuote(ctx context.Context, r *run, fb store.FallbackQuote) types.StockQuote {
	if c.quotes != nil && c.wait(ctx) {
		q, err := c.quotes.Quote(ctx, fb.Symbol)
		if err == nil {
			if q.Name == "" || q.Name == fb.Symbol {
				q.Name = fb.Name
			}
			return q
		}
		r.record(ctx, "quote:"+fb.Symbol, 0, err)
	}

	return types.StockQuote{
		Symbol:         fb.Symbol,
		Name:           fb.Name,
		CurrentPrice:   fb.Price,
		Score:          5,
		Recommendation: types.Hold,
		Source:         "Reference price",
	}
}

func (c *Collector) movers(ctx context.Context, r *run, pageURL string, count int) []types.StockQuote {
	out := []types.StockQuote{}
	if pageURL == "" || count <= 0 || !c.wait(ctx) {
		return out
	}
	err := c.pages.Document(ctx, pageURL, func(doc *goquery.Selection, _ *url.URL) {
		out = ParseMoneyControl(doc, count)
	})
	r.record(ctx, pageURL, len(out), err)
	return out
}

func (c *Collector) marketSummary(ctx context.Context, r *run) types.MarketSummary {
	m := types.MarketSummary{Index: c.cfg.IndexName, Status: "Unavailable"}
	if c.index == nil || c.cfg.IndexSymbol == "" || !c.wait(ctx) {
		return m
	}

	chart, err := c.index.Chart(ctx, c.cfg.IndexSymbol)
	r.record(ctx, "index:"+c.cfg.IndexSymbol, boolToInt(err == nil), err)
	if err != nil {
		return m
	}

	m.Value = round2(chart.Price)
	if chart.PrevClose > 0 {
		m.Change = round2(chart.Price - chart.PrevClose)
		m.ChangePercent = round2((chart.Price - chart.PrevClose) / chart.PrevClose * 100)
	}
	switch {
	case m.Change > 0:
		m.Status = "Up"
	case m.Change < 0:
		m.Status = "Down"
	default:
		m.Status = "Flat"
	}
	return m
}

func (c *Collector) collectFunds(ctx context.Context, r *run) map[string][]types.MutualFund {
	out := make(map[string][]types.MutualFund, len(c.cfg.FundCategories))
	per := c.cfg.FundsPerCategory

	for _, cat := range c.cfg.FundCategories {
		funds := []types.MutualFund{}
		if c.cfg.FundsURL != "" && c.wait(ctx) {
			pageURL := c.cfg.FundsURL
			if strings.Contains(pageURL, "%s") {
				pageURL = fmt.Sprintf(pageURL, fundSlug(cat))
			}
			err := c.pages.Document(ctx, pageURL, func(doc *goquery.Selection, _ *url.URL) {
				funds = ParseFunds(doc, cat, per)
			})
			r.record(ctx, pageURL, len(funds), err)
		}

		if len(funds) < per {
			have := map[string]bool{}
			for _, f := range funds {
				have[f.Name] = true
			}
			for _, f := range fallbackFunds(cat, 0) {
				if len(funds) >= per {
					break
				}
				if !have[f.Name] {
					funds = append(funds, f)
				}
			}
			r.fallback = true
		}
		out[cat] = funds
	}
	return out
}

func (c *Collector) wait(ctx context.Context) bool {
	if err := c.pacer.Wait(ctx); err != nil {
		logger.Warn(ctx, "Market collection interrupted", "error", err)
		return false
	}
	return true
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
