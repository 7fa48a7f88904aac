package feed

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"daily-intel/internal/api"
	"daily-intel/internal/errs"
	"daily-intel/internal/logger"
	"daily-intel/internal/types"
)

const defaultSource = "RSS Feed"

// Fetcher is the slice of api.Client the parser needs
type Fetcher interface {
	Fetch(ctx context.Context, url string, headers ...map[string]string) ([]byte, error)
}

// Parser fetches syndication feeds and normalizes their entries
type Parser struct {
	fetcher   Fetcher
	descLimit int
	now       func() time.Time
}

type Option func(*Parser)

// WithClock injects the fallback "now" used for undated entries
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		p.now = now
	}
}

// WithDescriptionLimit sets the rune limit for descriptions
func WithDescriptionLimit(n int) Option {
	return func(p *Parser) {
		p.descLimit = n
	}
}

func NewParser(fetcher Fetcher, opts ...Option) *Parser {
	p := &Parser{
		fetcher:   fetcher,
		descLimit: 200,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseFeed fetches feedURL and returns up to limit normalized items. An
// invalid URL or a failed fetch is an error; unparseable content is not and
// yields an empty list.
func (p *Parser) ParseFeed(ctx context.Context, feedURL string, limit int) ([]types.ContentItem, error) {
	if !ValidURL(feedURL) {
		return nil, errs.Malformed(fmt.Sprintf("invalid feed URL %q", feedURL), nil)
	}

	body, err := p.fetcher.Fetch(ctx, feedURL, api.FeedHeaders())
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", feedURL, err)
	}

	return p.Parse(ctx, body, feedURL, limit), nil
}

// Parse normalizes an already fetched feed document
func (p *Parser) Parse(ctx context.Context, body []byte, feedURL string, limit int) []types.ContentItem {
	items := []types.ContentItem{}

	if len(bytes.TrimSpace(body)) == 0 {
		logger.Warn(ctx, "Empty feed document", "url", feedURL)
		return items
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		logger.Warn(ctx, "Malformed feed, skipping", "url", feedURL, "error", err)
		return items
	}

	source := strings.TrimSpace(parsed.Title)
	if source == "" {
		source = defaultSource
	}

	base := feedURL
	if ValidURL(parsed.Link) {
		base = parsed.Link
	}

	now := p.now()
	for i, entry := range parsed.Items {
		if limit > 0 && len(items) >= limit {
			break
		}
		if entry == nil {
			continue
		}

		item, ok := p.normalize(entry, source, base, feedURL, now)
		if !ok {
			logger.Warn(ctx, "Skipping feed entry without title", "url", feedURL, "index", i)
			continue
		}
		items = append(items, item)
	}

	logger.Debug(ctx, "Feed parsed", "url", feedURL, "entries", len(parsed.Items), "items", len(items))
	return items
}

func (p *Parser) normalize(entry *gofeed.Item, source, base, feedURL string, now time.Time) (types.ContentItem, bool) {
	title := StripHTML(entry.Title)
	if title == "" {
		return types.ContentItem{}, false
	}

	desc := entry.Description
	if strings.TrimSpace(desc) == "" {
		desc = entry.Content
	}

	link := ResolveURL(base, entry.Link)
	if !ValidURL(link) {
		link = feedURL
	}

	return types.ContentItem{
		Title:       title,
		Description: Truncate(StripHTML(desc), p.descLimit),
		URL:         link,
		Source:      source,
		PublishedAt: entryTime(entry, now),
	}, true
}

// entryTime resolves an entry timestamp: published, updated, raw strings
// against the layout list, then now. Future timestamps are clamped to now.
func entryTime(entry *gofeed.Item, now time.Time) time.Time {
	var t time.Time
	switch {
	case entry.PublishedParsed != nil:
		t = *entry.PublishedParsed
	case entry.UpdatedParsed != nil:
		t = *entry.UpdatedParsed
	default:
		t = ParseTimestamp(entry.Published)
		if t.IsZero() {
			t = ParseTimestamp(entry.Updated)
		}
	}

	if t.IsZero() || t.After(now) {
		return now
	}
	return t
}
