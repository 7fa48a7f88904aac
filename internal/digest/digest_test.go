package digest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daily-intel/internal/archive"
	"daily-intel/internal/errs"
	"daily-intel/internal/mailer"
	"daily-intel/internal/store"
	"daily-intel/internal/types"
)

var ist = time.FixedZone("IST", 19800)

// 2025-03-08 is a Saturday, 2025-03-09 a Sunday, 2025-03-12 a Wednesday
var (
	saturday  = time.Date(2025, 3, 8, 5, 0, 0, 0, ist)
	sunday    = time.Date(2025, 3, 9, 5, 0, 0, 0, ist)
	wednesday = time.Date(2025, 3, 12, 5, 0, 0, 0, ist)
)

type fakeNews struct{ calls atomic.Int32 }

func (f *fakeNews) CollectNews(context.Context) types.Result[types.NewsReport] {
	f.calls.Add(1)
	return types.Result[types.NewsReport]{Data: types.NewsReport{
		"global": {{Title: "Central banks hold rates", URL: "https://example.com/n", Source: "Wire", PublishedAt: saturday}},
	}}
}

type fakeStocks struct {
	calls     atomic.Int32
	withFunds atomic.Bool
}

func (f *fakeStocks) CollectStocks(_ context.Context, withFunds bool) types.Result[*types.StockReport] {
	f.calls.Add(1)
	f.withFunds.Store(withFunds)
	return types.Result[*types.StockReport]{UsedFallback: true, Data: &types.StockReport{
		LargeCap: []types.StockQuote{{Symbol: "TCS", Name: "TCS", CurrentPrice: 3500, Score: 6, Recommendation: types.Buy}},
	}}
}

type fakeJobs struct{ panics bool }

func (f *fakeJobs) CollectJobs(context.Context) types.Result[[]types.JobListing] {
	if f.panics {
		panic("selector exploded")
	}
	return types.Result[[]types.JobListing]{Data: []types.JobListing{{Title: "SAP Finance Architect", RelevanceScore: 9}}}
}

type fakeSAP struct{ insights, career atomic.Int32 }

func (f *fakeSAP) CollectInsights(context.Context) types.Result[*types.SAPReport] {
	f.insights.Add(1)
	return types.Result[*types.SAPReport]{Data: &types.SAPReport{News: []types.SAPInsight{{Title: "Joule expands"}}}}
}

func (f *fakeSAP) CareerAnalysis(context.Context) types.Result[*types.CareerReport] {
	f.career.Add(1)
	return types.Result[*types.CareerReport]{Data: &types.CareerReport{Skills: []types.InsightSection{{Heading: "Core"}}}}
}

type fakeSummarizer struct{ err error }

func (f fakeSummarizer) Summarize(context.Context, *types.ReportBundle) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "Markets steady.", nil
}

type fakeMailer struct {
	ok       bool
	docs     []mailer.Document
	failures []mailer.Failure
}

func (f *fakeMailer) Deliver(_ context.Context, doc mailer.Document, _ []string) bool {
	f.docs = append(f.docs, doc)
	return f.ok
}

func (f *fakeMailer) Notify(_ context.Context, _ []string, fl mailer.Failure) error {
	f.failures = append(f.failures, fl)
	return nil
}

func validCreds() store.Credentials {
	return store.Credentials{
		EmailFrom:     "bot@example.com",
		EmailPassword: "app-password",
		EmailTo:       []string{"me@example.com"},
		SMTPHost:      "smtp.example.com",
		SMTPPort:      587,
	}
}

type harness struct {
	news   *fakeNews
	stocks *fakeStocks
	jobs   *fakeJobs
	sap    *fakeSAP
	mail   *fakeMailer
	comps  Components
	cfg    *store.Config
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		news:   &fakeNews{},
		stocks: &fakeStocks{},
		jobs:   &fakeJobs{},
		sap:    &fakeSAP{},
		mail:   &fakeMailer{ok: true},
		cfg:    store.Default(),
	}
	h.cfg.Report.AttachPDF = true
	h.comps = Components{
		News:       h.news,
		Stocks:     h.stocks,
		Jobs:       h.jobs,
		SAP:        h.sap,
		Summarizer: fakeSummarizer{},
		Mailer:     h.mail,
		Archive:    archive.New(t.TempDir(), 14, ist),
	}
	return h
}

func (h *harness) runner(now time.Time, creds store.Credentials) *Runner {
	r := New(h.cfg, creds, h.comps, WithClock(func() time.Time { return now }))
	r.newID = func() string { return "run-test" }
	return r
}

func TestRunOnceSaturdayDeliversFullReport(t *testing.T) {
	h := newHarness(t)

	out, err := h.runner(saturday, validCreds()).RunOnce(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.True(t, out.Delivered)
	assert.Equal(t, "run-test", out.RunID)
	assert.EqualValues(t, 1, h.news.calls.Load())
	assert.EqualValues(t, 1, h.stocks.calls.Load())
	assert.True(t, h.stocks.withFunds.Load())
	assert.EqualValues(t, 1, h.sap.insights.Load())
	assert.EqualValues(t, 1, h.sap.career.Load())

	b := out.Bundle
	assert.True(t, b.HasNews)
	assert.True(t, b.HasMarketData)
	assert.True(t, b.HasJobs)
	assert.True(t, b.HasSAPInsights)
	assert.True(t, b.HasCareer)
	assert.True(t, b.HasSummary)
	assert.Equal(t, []string{"stocks"}, b.Fallbacks)

	require.Len(t, h.mail.docs, 1)
	doc := h.mail.docs[0]
	assert.Equal(t, "Daily Intelligence Report - March 08, 2025", doc.Subject)
	assert.Equal(t, "intelligence-report-2025-03-08.pdf", doc.PDFName)
	assert.NotEmpty(t, doc.PDF)
	assert.Contains(t, string(doc.HTML), "Central banks hold rates")
	assert.Contains(t, doc.Text, "- Career analysis")
	assert.Empty(t, h.mail.failures)

	assert.FileExists(t, out.ArchivePath)
	assert.Equal(t, "2025-03-08.html", filepath.Base(out.ArchivePath))
}

func TestRunOnceSundaySkipsMarketsAndSAP(t *testing.T) {
	h := newHarness(t)

	out, err := h.runner(sunday, validCreds()).RunOnce(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.EqualValues(t, 0, h.stocks.calls.Load())
	assert.EqualValues(t, 0, h.sap.insights.Load())
	assert.EqualValues(t, 0, h.sap.career.Load())
	assert.False(t, out.Bundle.HasMarketData)
	assert.Nil(t, out.Bundle.Stocks)
	assert.NotContains(t, string(out.HTML), "Market Overview")
}

func TestRunOnceExcludedDay(t *testing.T) {
	h := newHarness(t)
	h.cfg.ExcludeDays = []string{"Wednesday"}

	out, err := h.runner(wednesday, validCreds()).RunOnce(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.True(t, out.Skipped)
	assert.EqualValues(t, 0, h.news.calls.Load())
	assert.Empty(t, h.mail.docs)

	out, err = h.runner(wednesday, validCreds()).RunOnce(context.Background(), RunOptions{Force: true})
	require.NoError(t, err)
	assert.False(t, out.Skipped)
	assert.True(t, out.Delivered)
}

func TestRunOnceInvalidCredentialsIsFatalBeforeCollection(t *testing.T) {
	h := newHarness(t)
	creds := validCreds()
	creds.EmailTo = nil

	_, err := h.runner(saturday, creds).RunOnce(context.Background(), RunOptions{})

	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindConfig))
	assert.EqualValues(t, 0, h.news.calls.Load())
	assert.Empty(t, h.mail.docs)
}

func TestRunOnceDeliveryFailure(t *testing.T) {
	h := newHarness(t)
	h.mail.ok = false

	out, err := h.runner(wednesday, validCreds()).RunOnce(context.Background(), RunOptions{})

	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindDelivery))
	assert.False(t, out.Delivered)
	assert.Len(t, h.mail.docs, 1)
	assert.Empty(t, h.mail.failures, "the mailer owns the failure notice")
}

func TestRunOnceSurvivesCollectorPanicAndSummaryError(t *testing.T) {
	h := newHarness(t)
	h.jobs.panics = true
	h.comps.Summarizer = fakeSummarizer{err: errors.New("429 rate limited")}

	out, err := h.runner(wednesday, validCreds()).RunOnce(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.True(t, out.Delivered)
	assert.False(t, out.Bundle.HasJobs)
	assert.False(t, out.Bundle.HasSummary)
	assert.True(t, out.Bundle.HasNews)
}

func TestRunOnceDryRun(t *testing.T) {
	h := newHarness(t)

	// credentials are not needed when nothing is sent
	out, err := h.runner(wednesday, store.Credentials{}).RunOnce(context.Background(), RunOptions{DryRun: true})
	require.NoError(t, err)

	assert.False(t, out.Delivered)
	assert.Empty(t, h.mail.docs)
	body, err := os.ReadFile(out.ArchivePath)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Central banks hold rates")
}

// rendezvous releases every caller once n of them have arrived, or after a
// timeout so a sequential caller fails instead of hanging.
type rendezvous struct {
	arrived atomic.Int32
	n       int32
	all     chan struct{}
	met     atomic.Bool
}

func newRendezvous(n int32) *rendezvous {
	return &rendezvous{n: n, all: make(chan struct{})}
}

func (r *rendezvous) wait() {
	if r.arrived.Add(1) == r.n {
		r.met.Store(true)
		close(r.all)
		return
	}
	select {
	case <-r.all:
	case <-time.After(2 * time.Second):
	}
}

type meetingNews struct {
	fakeNews
	r *rendezvous
}

func (m *meetingNews) CollectNews(ctx context.Context) types.Result[types.NewsReport] {
	m.r.wait()
	return m.fakeNews.CollectNews(ctx)
}

type meetingStocks struct {
	fakeStocks
	r *rendezvous
}

func (m *meetingStocks) CollectStocks(ctx context.Context, withFunds bool) types.Result[*types.StockReport] {
	m.r.wait()
	return m.fakeStocks.CollectStocks(ctx, withFunds)
}

type meetingJobs struct {
	fakeJobs
	r *rendezvous
}

func (m *meetingJobs) CollectJobs(ctx context.Context) types.Result[[]types.JobListing] {
	m.r.wait()
	return m.fakeJobs.CollectJobs(ctx)
}

type meetingSAP struct {
	fakeSAP
	r *rendezvous
}

func (m *meetingSAP) CollectInsights(ctx context.Context) types.Result[*types.SAPReport] {
	m.r.wait()
	return m.fakeSAP.CollectInsights(ctx)
}

// Run with -race: every section writes its own slot of the inputs while the
// others are still collecting.
func TestCollectRunsSectionsConcurrently(t *testing.T) {
	h := newHarness(t)
	r := newRendezvous(4)
	h.comps.News = &meetingNews{r: r}
	h.comps.Stocks = &meetingStocks{r: r}
	h.comps.Jobs = &meetingJobs{r: r}
	h.comps.SAP = &meetingSAP{r: r}

	for i := 0; i < 3; i++ {
		b := h.runner(saturday, validCreds()).Collect(context.Background(), "run-test", saturday)

		assert.True(t, b.HasNews)
		assert.True(t, b.HasMarketData)
		assert.True(t, b.HasJobs)
		assert.True(t, b.HasSAPInsights)
		assert.True(t, b.HasCareer)
		assert.True(t, b.HasSummary)
	}
	assert.True(t, r.met.Load(), "all four sections were in flight at once")
}
