package news

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"daily-intel/internal/api"
	"daily-intel/internal/errs"
	"daily-intel/internal/feed"
	"daily-intel/internal/types"
)

// NewsAPI reads top headlines from a newsapi.org compatible endpoint
type NewsAPI struct {
	client  *api.Client
	baseURL string
	apiKey  string
	country   string
	descLimit int
	now       func() time.Time
}

func NewNewsAPI(client *api.Client, baseURL, apiKey, country string) *NewsAPI {
	return &NewsAPI{
		client:    client,
		baseURL:   baseURL,
		apiKey:    apiKey,
		country:   country,
		descLimit: 200,
		now:       time.Now,
	}
}

// WithDescriptionLimit sets the rune limit for article descriptions
func (n *NewsAPI) WithDescriptionLimit(limit int) *NewsAPI {
	if limit > 0 {
		n.descLimit = limit
	}
	return n
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

func (n *NewsAPI) TopHeadlines(ctx context.Context, limit int) ([]types.ContentItem, error) {
	if n.apiKey == "" {
		return nil, errors.New("news api key not configured")
	}

	q := url.Values{}
	q.Set("country", n.country)
	q.Set("pageSize", strconv.Itoa(limit))

	req := api.NewRequest(http.MethodGet, n.baseURL).
		WithContext(ctx).
		WithQuery(q).
		WithHeader("X-Api-Key", n.apiKey)
	resp, err := n.client.Do(req)
	if err != nil {
		return nil, err
	}

	var body newsAPIResponse
	if err := resp.ParseJSON(&body); err != nil {
		return nil, err
	}
	if body.Status != "ok" {
		return nil, errs.Malformed("news api status "+body.Status+": "+body.Message, nil)
	}

	now := n.now()
	items := make([]types.ContentItem, 0, len(body.Articles))
	for _, a := range body.Articles {
		if a.Title == "" || !feed.ValidURL(a.URL) {
			continue
		}
		published := feed.ParseTimestamp(a.PublishedAt)
		if published.IsZero() || published.After(now) {
			published = now
		}
		desc := feed.StripHTML(a.Description)
		if desc == "" {
			desc = "No description available"
		}
		items = append(items, types.ContentItem{
			Title:       feed.StripHTML(a.Title),
			Description: feed.Truncate(desc, n.descLimit),
			URL:         a.URL,
			Source:      a.Source.Name,
			PublishedAt: published,
		})
	}
	return items, nil
}
