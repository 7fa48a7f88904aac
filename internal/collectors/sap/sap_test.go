package sap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daily-intel/internal/store"
	"daily-intel/internal/types"
)

var fixedNow = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

type fakeParser struct {
	items []types.ContentItem
	err   error
}

func (f *fakeParser) ParseFeed(ctx context.Context, feedURL string, limit int) ([]types.ContentItem, error) {
	return f.items, f.err
}

func newCollector(p FeedParser) *Collector {
	cfg := store.Default()
	cfg.RequestDelay = 0
	cfg.SAP.Feeds = []string{"https://news.sap.example.com/feed"}
	return New(cfg, p, WithClock(func() time.Time { return fixedNow }))
}

func TestCuratedContentParses(t *testing.T) {
	c, err := loadCurated()
	require.NoError(t, err)
	assert.Len(t, c.News, 4)
	assert.NotEmpty(t, c.Sections)
	assert.NotEmpty(t, c.Career.Skills)
	assert.NotEmpty(t, c.Career.Roadmap)
	for _, n := range c.News {
		assert.NotEmpty(t, n.Title)
		assert.NotEmpty(t, n.URL)
		assert.NotEmpty(t, n.KeyFeatures)
	}
}

func TestSelectKeepsRelevantRecentItems(t *testing.T) {
	items := []types.ContentItem{
		{Title: "Joule agents arrive in S/4HANA Cloud", Description: "New finance scenarios", URL: "https://n.example.com/1", PublishedAt: fixedNow.Add(-time.Hour)},
		{Title: "SAP reports quarterly results", Description: "Cloud backlog grows with Business AI demand", URL: "https://n.example.com/2", PublishedAt: fixedNow.Add(-2 * time.Hour)},
		{Title: "Partner summit agenda", Description: "Keynotes and networking", URL: "https://n.example.com/3", PublishedAt: fixedNow},
		{Title: "BTP roadmap from last month", Description: "Old", URL: "https://n.example.com/4", PublishedAt: fixedNow.Add(-30 * 24 * time.Hour)},
		{Title: "Football club signs SAP AI deal", Description: "Sports analytics", URL: "https://n.example.com/5", PublishedAt: fixedNow},
	}

	got := newCollector(&fakeParser{}).Select(items)

	require.Len(t, got, 2)
	assert.Equal(t, "Joule agents arrive in S/4HANA Cloud", got[0].Title)
	assert.Equal(t, "AI Assistant", got[0].Category)
	assert.Equal(t, "High", got[0].Relevance)
	assert.Equal(t, "Business AI", got[1].Category)
	assert.Equal(t, "Medium", got[1].Relevance)
}

func TestCollectInsightsFallsBackToCurated(t *testing.T) {
	res := newCollector(&fakeParser{err: errors.New("timeout")}).CollectInsights(context.Background())

	assert.True(t, res.UsedFallback)
	assert.Equal(t, 1, res.Failed())
	require.Len(t, res.Data.News, 4)
	assert.Equal(t, fixedNow, res.Data.News[0].PublishedAt)
	assert.NotEmpty(t, res.Data.Sections)
}

func TestCareerAnalysis(t *testing.T) {
	res := newCollector(&fakeParser{}).CareerAnalysis(context.Background())

	assert.False(t, res.UsedFallback)
	require.NotNil(t, res.Data)
	assert.NotEmpty(t, res.Data.Paths)
	assert.NotEmpty(t, res.Data.Predictions)
}
