package jobs

import (
	"context"
	"sort"
	"strings"
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

type Collector struct {
	cfg     store.JobsConfig
	scorer  *Scorer
	parser  FeedParser
	scraper PageScraper
	pacer   *api.Pacer
	now     func() time.Time
}

type Option func(*Collector)

func WithClock(now func() time.Time) Option {
	return func(c *Collector) {
		c.now = now
	}
}

func New(cfg *store.Config, parser FeedParser, scraper PageScraper, opts ...Option) *Collector {
	c := &Collector{
		cfg:     cfg.Jobs,
		scorer:  NewScorer(cfg.Jobs),
		parser:  parser,
		scraper: scraper,
		pacer:   api.NewPacer(cfg.RequestDelay),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Collector) CollectJobs(ctx context.Context) types.Result[[]types.JobListing] {
	res := types.Result[[]types.JobListing]{}
	raw := []types.JobListing{}

	record := func(name string, items []types.ContentItem, err error, source string) {
		st := types.SourceStatus{Name: name, Items: len(items)}
		if err != nil {
			st.Err = err.Error()
			logger.Warn(ctx, "Job source failed", "source", name, "error", err)
		}
		res.Sources = append(res.Sources, st)
		for _, it := range items {
			raw = append(raw, fromItem(it, source))
		}
	}

	for _, feedURL := range c.cfg.Feeds {
		if !c.wait(ctx) {
			break
		}
		items, err := c.parser.ParseFeed(ctx, feedURL, c.cfg.MaxItems)
		record(feedURL, items, err, "")
	}

	if c.scraper != nil {
		for _, page := range c.cfg.Pages {
			if !c.wait(ctx) {
				break
			}
			items, err := c.scraper.ScrapeHeadlines(ctx, page.URL, page.Selectors, c.cfg.MaxItems)
			record(page.URL, items, err, page.Name)
		}
	}

	jobs := c.Rank(raw)
	if len(jobs) < c.cfg.MinItems {
		logger.Warn(ctx, "Too few job listings, adding curated openings", "have", len(jobs), "min", c.cfg.MinItems)
		jobs = c.Rank(append(raw, sampleListings(c.now())...))
		res.UsedFallback = true
	}

	res.Data = jobs
	return res
}

// Rank scores, filters and orders listings. It is pure apart from the clock.
func (c *Collector) Rank(listings []types.JobListing) []types.JobListing {
	now := c.now()
	kept := make([]types.JobListing, 0, len(listings))
	for _, job := range listings {
		if !filter.Within(job.PostedAt, now, c.cfg.Window) {
			continue
		}
		job.RelevanceScore = c.scorer.Score(job)
		if job.RelevanceScore < c.cfg.MinScore {
			continue
		}
		kept = append(kept, job)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].RelevanceScore > kept[j].RelevanceScore
	})
	kept = filter.Dedupe(kept, func(j types.JobListing) string {
		return j.Title + " " + j.Company
	}, 0)
	return filter.Top(kept, c.cfg.MaxItems)
}

// fromItem maps a feed or scraped entry onto a listing. Aggregator feeds
// title entries "Role - Company - City".
func fromItem(it types.ContentItem, source string) types.JobListing {
	job := types.JobListing{
		Title:       it.Title,
		Description: it.Description,
		URL:         it.URL,
		Source:      it.Source,
		PostedAt:    it.PublishedAt,
	}
	if source != "" {
		job.Source = source
	}

	parts := strings.Split(it.Title, " - ")
	if len(parts) >= 3 {
		n := len(parts)
		job.Title = strings.TrimSpace(strings.Join(parts[:n-2], " - "))
		job.Company = strings.TrimSpace(parts[n-2])
		job.Location = strings.TrimSpace(parts[n-1])
	}
	return job
}

func (c *Collector) wait(ctx context.Context) bool {
	if err := c.pacer.Wait(ctx); err != nil {
		logger.Warn(ctx, "Job collection interrupted", "error", err)
		return false
	}
	return true
}
