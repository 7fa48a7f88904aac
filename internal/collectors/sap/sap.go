package sap

import (
	"context"
	_ "embed"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"daily-intel/internal/api"
	"daily-intel/internal/errs"
	"daily-intel/internal/filter"
	"daily-intel/internal/logger"
	"daily-intel/internal/store"
	"daily-intel/internal/types"
)

//go:embed curated.yaml
var curatedYAML []byte

type curatedContent struct {
	News     []types.SAPInsight     `yaml:"news"`
	Sections []types.InsightSection `yaml:"sections"`
	Career   types.CareerReport     `yaml:"career"`
}

var loadCurated = sync.OnceValues(func() (*curatedContent, error) {
	var c curatedContent
	if err := yaml.Unmarshal(curatedYAML, &c); err != nil {
		return nil, errs.Malformed("parse curated SAP content", err)
	}
	return &c, nil
})

// FeedParser is satisfied by *feed.Parser
type FeedParser interface {
	ParseFeed(ctx context.Context, feedURL string, limit int) ([]types.ContentItem, error)
}

// categories maps tracked topics to the label shown in the report, first
// match wins
var categories = []struct {
	match *filter.Matcher
	label string
}{
	{filter.NewMatcher([]string{"joule", "copilot"}), "AI Assistant"},
	{filter.NewMatcher([]string{"btp"}), "Platform"},
	{filter.NewMatcher([]string{"s/4hana"}), "Finance AI"},
	{filter.NewMatcher([]string{"generative"}), "Generative AI"},
	{filter.NewMatcher([]string{"ai", "business ai", "machine learning"}), "Business AI"},
}

type Collector struct {
	cfg      store.SAPConfig
	simWords int
	relevant *filter.Matcher
	exclude  *filter.Matcher
	parser   FeedParser
	pacer    *api.Pacer
	now      func() time.Time
}

type Option func(*Collector)

func WithClock(now func() time.Time) Option {
	return func(c *Collector) {
		c.now = now
	}
}

func New(cfg *store.Config, parser FeedParser, opts ...Option) *Collector {
	c := &Collector{
		cfg:      cfg.SAP,
		simWords: cfg.Filters.SimilarityWords,
		relevant: filter.NewMatcher(cfg.SAP.Keywords),
		exclude:  filter.NewMatcher(cfg.Filters.ExcludeKeywords),
		parser:   parser,
		pacer:    api.NewPacer(cfg.RequestDelay),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CollectInsights reads the SAP feeds, keeps recent items that mention a
// tracked topic and tops up from curated news when too few remain.
func (c *Collector) CollectInsights(ctx context.Context) types.Result[*types.SAPReport] {
	res := types.Result[*types.SAPReport]{Data: &types.SAPReport{News: []types.SAPInsight{}}}
	raw := []types.ContentItem{}

	for _, feedURL := range c.cfg.Feeds {
		if err := c.pacer.Wait(ctx); err != nil {
			logger.Warn(ctx, "SAP collection interrupted", "error", err)
			break
		}
		items, err := c.parser.ParseFeed(ctx, feedURL, c.cfg.MaxItems*2)
		st := types.SourceStatus{Name: feedURL, Items: len(items)}
		if err != nil {
			st.Err = err.Error()
			logger.Warn(ctx, "SAP feed failed", "feed", feedURL, "error", err)
		}
		res.Sources = append(res.Sources, st)
		raw = append(raw, items...)
	}

	insights := c.Select(raw)

	curated, err := loadCurated()
	if err != nil {
		logger.ErrorWithErr(ctx, "Curated SAP content unavailable", err)
		res.Sources = append(res.Sources, types.SourceStatus{Name: "curated", Err: err.Error()})
		res.Data.News = insights
		return res
	}

	if len(insights) < c.cfg.MinItems {
		logger.Warn(ctx, "Too few SAP items, adding curated news", "have", len(insights), "min", c.cfg.MinItems)
		now := c.now()
		seen := map[string]bool{}
		for _, in := range insights {
			seen[filter.SimilarityKey(in.Title, c.simWords)] = true
		}
		for i, in := range curated.News {
			if len(insights) >= c.cfg.MaxItems {
				break
			}
			if seen[filter.SimilarityKey(in.Title, c.simWords)] {
				continue
			}
			in.PublishedAt = now.Add(-time.Duration(i) * 24 * time.Hour)
			insights = append(insights, in)
		}
		res.UsedFallback = true
	}

	res.Data.News = insights
	res.Data.Sections = curated.Sections
	return res
}

// Select is the pure filtering step over raw feed items
func (c *Collector) Select(items []types.ContentItem) []types.SAPInsight {
	now := c.now()
	kept := make([]types.ContentItem, 0, len(items))
	for _, it := range items {
		if !filter.Within(it.PublishedAt, now, c.cfg.Window) {
			continue
		}
		if c.exclude.Excluded(it) || !c.relevant.Match(it.Title, it.Description) {
			continue
		}
		kept = append(kept, it)
	}

	filter.NewestFirst(kept)
	kept = filter.Dedupe(kept, filter.ItemTitle, c.simWords)
	kept = filter.Top(kept, c.cfg.MaxItems)

	out := make([]types.SAPInsight, 0, len(kept))
	for _, it := range kept {
		out = append(out, types.SAPInsight{
			Title:       it.Title,
			Summary:     it.Description,
			Category:    categorize(it),
			Relevance:   c.relevance(it),
			URL:         it.URL,
			PublishedAt: it.PublishedAt,
		})
	}
	return out
}

// relevance is High when a tracked topic is in the headline itself
func (c *Collector) relevance(it types.ContentItem) string {
	if c.relevant.Match(it.Title) {
		return "High"
	}
	return "Medium"
}

func categorize(it types.ContentItem) string {
	for _, cat := range categories {
		if cat.match.Match(it.Title, it.Description) {
			return cat.label
		}
	}
	return "SAP News"
}

// CareerAnalysis returns the curated career guidance. It only degrades if
// the embedded content is broken.
func (c *Collector) CareerAnalysis(ctx context.Context) types.Result[*types.CareerReport] {
	curated, err := loadCurated()
	if err != nil {
		logger.ErrorWithErr(ctx, "Curated career content unavailable", err)
		return types.Result[*types.CareerReport]{
			Data:         &types.CareerReport{},
			UsedFallback: true,
			Sources:      []types.SourceStatus{{Name: "curated", Err: err.Error()}},
		}
	}

	report := curated.Career
	return types.Result[*types.CareerReport]{
		Data:    &report,
		Sources: []types.SourceStatus{{Name: "curated", Items: len(report.Skills) + len(report.Paths) + len(report.Roadmap) + len(report.Predictions)}},
	}
}
