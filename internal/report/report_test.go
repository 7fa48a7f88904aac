package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daily-intel/internal/types"
)

var ist = time.FixedZone("IST", 19800)

func TestPlanForDay(t *testing.T) {
	cases := []struct {
		day  time.Weekday
		want Plan
	}{
		{time.Sunday, Plan{}},
		{time.Monday, Plan{Stocks: true, MutualFunds: true, Career: true}},
		{time.Wednesday, Plan{Stocks: true, MutualFunds: true}},
		{time.Saturday, Plan{Stocks: true, MutualFunds: true, SAPInsights: true, Career: true}},
	}
	for _, tc := range cases {
		t.Run(tc.day.String(), func(t *testing.T) {
			assert.Equal(t, tc.want, PlanForDay(tc.day))
		})
	}

	assert.Equal(t, []string{"news", "jobs"}, PlanForDay(time.Sunday).Sections())
	assert.Equal(t, []string{"news", "stocks", "mutual_funds", "jobs", "sap", "career"}, PlanForDay(time.Saturday).Sections())
}

func sampleInputs() Inputs {
	published := time.Date(2025, 3, 8, 6, 0, 0, 0, ist)
	return Inputs{
		RunID: "run-1",
		News: &types.Result[types.NewsReport]{Data: types.NewsReport{
			"global": {{Title: "Markets rally <b>worldwide</b>", URL: "https://example.com/a", Source: "Wire", PublishedAt: published}},
			"india":  {},
		}},
		Stocks: &types.Result[*types.StockReport]{
			UsedFallback: true,
			Data: &types.StockReport{
				LargeCap: []types.StockQuote{{Symbol: "TCS", Name: "Tata Consultancy", CurrentPrice: 3500, Change: 12.5, ChangePercent: 0.36, MarketCap: "₹14.15 L Cr", PERatio: 28.4, Score: 7.2, Recommendation: types.Buy}},
				Market:   types.MarketSummary{Index: "NIFTY 50", Value: 22000, Change: -40, ChangePercent: -0.18, Status: "Down"},
				MutualFunds: map[string][]types.MutualFund{
					"large_cap": {{Name: "Bluechip Fund", NAV: 80.5, Return1Y: 14.2, Rating: 4}},
				},
			},
		},
		Jobs: &types.Result[[]types.JobListing]{Data: []types.JobListing{
			{Title: "SAP Finance Architect", Company: "Acme", RelevanceScore: 9},
		}},
		SAP: &types.Result[*types.SAPReport]{Data: &types.SAPReport{
			News: []types.SAPInsight{{Title: "Joule expands", Category: "AI Assistant", Relevance: "High"}},
		}},
		Career: &types.Result[*types.CareerReport]{UsedFallback: true, Data: &types.CareerReport{
			Skills: []types.InsightSection{{Heading: "Core", Points: []string{"S/4HANA Finance"}}},
		}},
		Summary: "  Markets were mixed.\n\nJobs look strong.  ",
	}
}

func TestAssembleSetsFlagsAndStamp(t *testing.T) {
	now := time.Date(2025, 3, 8, 5, 7, 0, 0, ist)
	b := Assemble(sampleInputs(), now)

	assert.Equal(t, "run-1", b.RunID)
	assert.Equal(t, "March 08, 2025", b.Date)
	assert.Equal(t, "Saturday", b.Day)
	assert.Equal(t, "05:07 AM IST", b.Time)
	assert.True(t, b.HasNews)
	assert.True(t, b.HasMarketData)
	assert.True(t, b.HasMutualFunds)
	assert.True(t, b.HasJobs)
	assert.True(t, b.HasSAPInsights)
	assert.True(t, b.HasCareer)
	assert.True(t, b.HasSummary)
	assert.Equal(t, "Markets were mixed.\n\nJobs look strong.", b.Summary)
	assert.Equal(t, []string{"stocks", "career"}, b.Fallbacks)
}

func TestAssembleUnplannedSections(t *testing.T) {
	now := time.Date(2025, 3, 9, 5, 0, 0, 0, ist)
	b := Assemble(Inputs{
		RunID: "run-2",
		News:  &types.Result[types.NewsReport]{Data: types.NewsReport{"global": {}}},
		Jobs:  &types.Result[[]types.JobListing]{Data: []types.JobListing{}},
	}, now)

	assert.False(t, b.HasNews)
	assert.False(t, b.HasMarketData)
	assert.False(t, b.HasMutualFunds)
	assert.False(t, b.HasJobs)
	assert.False(t, b.HasSAPInsights)
	assert.False(t, b.HasCareer)
	assert.False(t, b.HasSummary)
	assert.Nil(t, b.Stocks)
	assert.Empty(t, b.Fallbacks)
	assert.Equal(t, "Sunday", b.Day)
}

func TestRenderHTML(t *testing.T) {
	b := Assemble(sampleInputs(), time.Date(2025, 3, 8, 5, 7, 0, 0, ist))

	out, err := RenderHTML("Morning Brief", b)
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "<title>Morning Brief - March 08, 2025</title>")
	assert.Contains(t, html, "Executive Summary")
	assert.Contains(t, html, "<p>Jobs look strong.</p>")
	assert.Contains(t, html, "Market Overview")
	assert.Contains(t, html, "Tata Consultancy")
	assert.Contains(t, html, "<td>₹14.15 L Cr</td>")
	assert.Contains(t, html, "<td>28.4</td>")
	assert.Contains(t, html, "Bluechip Fund")
	assert.Contains(t, html, "SAP Finance Architect")
	assert.Contains(t, html, "Joule expands")
	assert.Contains(t, html, "S/4HANA Finance")
	assert.Contains(t, html, "Curated or reference data was used for: stocks, career.")
	assert.Contains(t, html, "Markets rally &lt;b&gt;worldwide&lt;/b&gt;")
	assert.NotContains(t, html, "<h3>India</h3>")
}

func TestRenderHTMLOmitsAbsentSections(t *testing.T) {
	b := Assemble(Inputs{
		RunID: "run-3",
		News: &types.Result[types.NewsReport]{Data: types.NewsReport{
			"india": {{Title: "Monsoon arrives early", URL: "https://example.com/m", Source: "Desk"}},
		}},
	}, time.Date(2025, 3, 9, 5, 0, 0, 0, ist))

	out, err := RenderHTML("", b)
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "Daily Intelligence Report")
	assert.Contains(t, html, "Monsoon arrives early")
	assert.NotContains(t, html, "Market Overview")
	assert.NotContains(t, html, "Mutual Funds")
	assert.NotContains(t, html, "Job Opportunities")
	assert.NotContains(t, html, "Career Analysis")
	assert.NotContains(t, html, "Executive Summary")
}

func TestRenderPDF(t *testing.T) {
	b := Assemble(sampleInputs(), time.Date(2025, 3, 8, 5, 7, 0, 0, ist))

	out, err := RenderPDF("Morning Brief", b)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Greater(t, len(out), 1000)
}

func TestSubject(t *testing.T) {
	b := &types.ReportBundle{Date: "March 08, 2025"}
	assert.Equal(t, "Morning Brief - March 08, 2025", Subject("Morning Brief", b))
	assert.Equal(t, "Daily Intelligence Report - March 08, 2025", Subject("", b))
}

func TestOrdered(t *testing.T) {
	got := ordered([]string{"tech", "regional", "global", "alpha", "india"}, newsOrder)
	assert.Equal(t, []string{"global", "india", "regional", "alpha", "tech"}, got)
	assert.Equal(t, "Large Cap", label("large_cap"))
}
