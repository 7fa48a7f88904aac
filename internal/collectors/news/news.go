package news

import (
	"context"
	"time"

	"daily-intel/internal/api"
	"daily-intel/internal/filter"
	"daily-intel/internal/logger"
	"daily-intel/internal/store"
	"daily-intel/internal/types"
)

// FeedParser is satisfied by *feed.Parser
type FeedParser interface {
	ParseFeed(ctx context.Context, feedURL string, limit int) ([]types.ContentItem, error)
}

// PageScraper is satisfied by *scrape.Scraper
type PageScraper interface {
	ScrapeHeadlines(ctx context.Context, pageURL string, candidates []string, limit int) ([]types.ContentItem, error)
}

// HeadlineAPI is an optional keyed news API, satisfied by *NewsAPI
type HeadlineAPI interface {
	TopHeadlines(ctx context.Context, limit int) ([]types.ContentItem, error)
}

// Collector gathers news per configured category from feeds, an optional
// headline API and scraped pages.
type Collector struct {
	cfg      store.NewsConfig
	simWords int
	exclude  *filter.Matcher
	parser   FeedParser
	scraper  PageScraper
	headline HeadlineAPI
	pacer    *api.Pacer
	now      func() time.Time
}

type Option func(*Collector)

func WithHeadlineAPI(h HeadlineAPI) Option {
	return func(c *Collector) {
		c.headline = h
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Collector) {
		c.now = now
	}
}

func WithPacer(p *api.Pacer) Option {
	return func(c *Collector) {
		c.pacer = p
	}
}

func New(cfg *store.Config, parser FeedParser, scraper PageScraper, opts ...Option) *Collector {
	c := &Collector{
		cfg:      cfg.News,
		simWords: cfg.Filters.SimilarityWords,
		exclude:  filter.NewMatcher(cfg.Filters.ExcludeKeywords),
		parser:   parser,
		scraper:  scraper,
		pacer:    api.NewPacer(cfg.RequestDelay),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CollectNews runs every configured category in order
func (c *Collector) CollectNews(ctx context.Context) types.Result[types.NewsReport] {
	out := types.Result[types.NewsReport]{Data: types.NewsReport{}}

	for _, cat := range c.cfg.Categories {
		res := c.CollectCategory(ctx, cat)
		out.Data[cat.Name] = res.Data
		out.Sources = append(out.Sources, res.Sources...)
		if res.UsedFallback {
			out.UsedFallback = true
		}
		logger.Debug(ctx, "News category collected", "category", cat.Name, "items", len(res.Data), "used_fallback", res.UsedFallback)
	}
	return out
}

// CollectCategory queries a category's sources sequentially and applies
// exclusion, recency, dedup, ordering and the item cap.
func (c *Collector) CollectCategory(ctx context.Context, cat store.NewsCategory) types.Result[[]types.ContentItem] {
	res := types.Result[[]types.ContentItem]{}
	raw := []types.ContentItem{}

	record := func(name string, items []types.ContentItem, err error) {
		st := types.SourceStatus{Name: name, Items: len(items)}
		if err != nil {
			st.Err = err.Error()
			logger.Warn(ctx, "News source failed", "category", cat.Name, "source", name, "error", err)
		}
		res.Sources = append(res.Sources, st)
		raw = append(raw, items...)
	}

	if cat.UseNewsAPI && c.headline != nil {
		if c.wait(ctx) {
			items, err := c.headline.TopHeadlines(ctx, cat.MaxItems)
			record("newsapi", items, err)
		}
	}

	for _, feedURL := range cat.Feeds {
		if !c.wait(ctx) {
			break
		}
		items, err := c.parser.ParseFeed(ctx, feedURL, perFeed(cat))
		record(feedURL, items, err)
	}

	items := c.process(raw, cat.MaxItems)

	if len(items) < c.cfg.MinItems && c.scraper != nil {
		for _, page := range cat.Pages {
			if !c.wait(ctx) {
				break
			}
			scraped, err := c.scraper.ScrapeHeadlines(ctx, page.URL, page.Selectors, perFeed(cat))
			for i := range scraped {
				if page.Name != "" {
					scraped[i].Source = page.Name
				}
			}
			record(page.URL, scraped, err)
		}
		items = c.process(raw, cat.MaxItems)
	}

	if len(items) < c.cfg.MinItems {
		logger.Warn(ctx, "Too few news items, adding fallback", "category", cat.Name, "items", len(items), "min", c.cfg.MinItems)
		items = c.process(append(raw, fallbackItems(cat.Name, c.now())...), cat.MaxItems)
		res.UsedFallback = true
	}

	res.Data = items
	return res
}

// process is the pure part of a category collection
func (c *Collector) process(raw []types.ContentItem, max int) []types.ContentItem {
	now := c.now()
	kept := make([]types.ContentItem, 0, len(raw))
	for _, it := range raw {
		category := filter.Categorize(it, c.exclude)
		if category == filter.CategoryExcluded {
			continue
		}
		if !filter.Within(it.PublishedAt, now, c.cfg.Window) {
			continue
		}
		it.Category = category
		kept = append(kept, it)
	}

	filter.NewestFirst(kept)
	kept = filter.Dedupe(kept, filter.ItemTitle, c.simWords)
	return filter.Top(kept, max)
}

func (c *Collector) wait(ctx context.Context) bool {
	if err := c.pacer.Wait(ctx); err != nil {
		logger.Warn(ctx, "News collection interrupted", "error", err)
		return false
	}
	return true
}

func perFeed(cat store.NewsCategory) int {
	if cat.PerFeedLimit > 0 {
		return cat.PerFeedLimit
	}
	return cat.MaxItems
}
