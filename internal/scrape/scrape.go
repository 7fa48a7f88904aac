package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"daily-intel/internal/api"
	"daily-intel/internal/errs"
	"daily-intel/internal/feed"
	"daily-intel/internal/logger"
	"daily-intel/internal/types"
)

// Scraper fetches HTML pages through colly and evaluates selectors with goquery
type Scraper struct {
	transport http.RoundTripper
	userAgent func() string
	timeout   time.Duration
	now       func() time.Time
}

type Option func(*Scraper)

func WithClock(now func() time.Time) Option {
	return func(s *Scraper) {
		s.now = now
	}
}

// WithUserAgents sets the per-request user agent source
func WithUserAgents(next func() string) Option {
	return func(s *Scraper) {
		s.userAgent = next
	}
}

// New builds a Scraper. transport is normally the shared *api.Transport so
// page fetches get the same retry policy as everything else.
func New(transport http.RoundTripper, timeout time.Duration, opts ...Option) *Scraper {
	s := &Scraper{
		transport: transport,
		timeout:   timeout,
		now:       time.Now,
	}
	if t, ok := transport.(*api.Transport); ok {
		s.userAgent = t.NextUserAgent
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scraper) collector(ctx context.Context) *colly.Collector {
	c := colly.NewCollector(
		colly.MaxDepth(1),
		colly.Async(false),
		colly.StdlibContext(ctx),
	)
	if s.transport != nil {
		c.WithTransport(s.transport)
	}
	if s.timeout > 0 {
		c.SetRequestTimeout(s.timeout)
	}

	c.OnRequest(func(r *colly.Request) {
		for k, v := range api.BrowserHeaders() {
			r.Headers.Set(k, v)
		}
		if s.userAgent != nil {
			if ua := s.userAgent(); ua != "" {
				r.Headers.Set("User-Agent", ua)
			}
		}
	})
	return c
}

// Document visits pageURL and hands the parsed document root to fn.
func (s *Scraper) Document(ctx context.Context, pageURL string, fn func(doc *goquery.Selection, base *url.URL)) error {
	if !feed.ValidURL(pageURL) {
		return errs.Malformed(fmt.Sprintf("invalid page URL %q", pageURL), nil)
	}

	c := s.collector(ctx)

	seen := false
	c.OnHTML("html", func(e *colly.HTMLElement) {
		seen = true
		fn(e.DOM, e.Request.URL)
	})

	var visitErr error
	c.OnError(func(r *colly.Response, err error) {
		visitErr = err
		logger.Warn(ctx, "Scraping error", "url", r.Request.URL.String(), "status", r.StatusCode, "error", err)
	})

	if err := c.Visit(pageURL); err != nil {
		if visitErr != nil {
			return errs.Transient("visit "+pageURL, visitErr)
		}
		return errs.Transient("visit "+pageURL, err)
	}
	c.Wait()

	if visitErr != nil {
		return errs.Transient("visit "+pageURL, visitErr)
	}
	if !seen {
		return errs.Malformed("no HTML document at "+pageURL, nil)
	}
	return nil
}

// ScrapeHeadlines evaluates candidates in order and returns items from the
// first one that yields any titled element. Fetch and parse failures degrade
// to an empty list; only an invalid URL is an error.
func (s *Scraper) ScrapeHeadlines(ctx context.Context, pageURL string, candidates []string, limit int) ([]types.ContentItem, error) {
	if !feed.ValidURL(pageURL) {
		return nil, errs.Malformed(fmt.Sprintf("invalid page URL %q", pageURL), nil)
	}

	items := []types.ContentItem{}
	err := s.Document(ctx, pageURL, func(doc *goquery.Selection, base *url.URL) {
		items = Headlines(doc, base, candidates, limit, s.now())
	})
	if err != nil {
		logger.Warn(ctx, "Headline scrape degraded to empty", "url", pageURL, "error", err)
		return []types.ContentItem{}, nil
	}

	logger.Debug(ctx, "Headlines scraped", "url", pageURL, "items", len(items))
	return items, nil
}

// Headlines applies the candidate selectors to an already parsed document.
func Headlines(doc *goquery.Selection, base *url.URL, candidates []string, limit int, now time.Time) []types.ContentItem {
	source := base.Hostname()

	for _, sel := range candidates {
		matches := doc.Find(sel)
		if matches.Length() == 0 {
			continue
		}

		items := []types.ContentItem{}
		matches.EachWithBreak(func(_ int, m *goquery.Selection) bool {
			title, href := headline(m)
			if title == "" {
				return true
			}
			items = append(items, types.ContentItem{
				Title:       title,
				URL:         resolve(base, href),
				Source:      source,
				PublishedAt: now,
			})
			return limit <= 0 || len(items) < limit
		})

		if len(items) > 0 {
			return items
		}
	}
	return []types.ContentItem{}
}

// headline pulls a title and link out of a matched element. Anchors use
// their own text; containers prefer a heading, then the first anchor.
func headline(m *goquery.Selection) (string, string) {
	clean := func(s string) string { return strings.Join(strings.Fields(s), " ") }

	if goquery.NodeName(m) == "a" {
		href, _ := m.Attr("href")
		return clean(m.Text()), href
	}

	title := clean(m.Find("h1, h2, h3, h4").First().Text())
	anchor := m.Find("a[href]").First()
	if title == "" {
		title = clean(anchor.Text())
	}
	if title == "" {
		title = clean(m.Text())
	}

	href, ok := m.Attr("href")
	if !ok {
		href, _ = anchor.Attr("href")
	}
	return title, href
}

func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "javascript:") {
		return base.String()
	}
	u, err := url.Parse(href)
	if err != nil {
		return base.String()
	}
	return base.ResolveReference(u).String()
}
