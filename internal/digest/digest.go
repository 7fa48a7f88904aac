package digest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"daily-intel/internal/archive"
	"daily-intel/internal/errs"
	"daily-intel/internal/interfaces"
	"daily-intel/internal/logger"
	"daily-intel/internal/mailer"
	"daily-intel/internal/report"
	"daily-intel/internal/store"
	"daily-intel/internal/types"
)

// Deliverer is satisfied by *mailer.Mailer
type Deliverer interface {
	Deliver(ctx context.Context, doc mailer.Document, recipients []string) bool
	Notify(ctx context.Context, recipients []string, f mailer.Failure) error
}

// Components are the wired, already decorated parts of a run. Summarizer
// and Archive may be nil.
type Components struct {
	News       interfaces.NewsCollector
	Stocks     interfaces.StockCollector
	Jobs       interfaces.JobsCollector
	SAP        interfaces.SAPCollector
	Summarizer interfaces.Summarizer
	Mailer     Deliverer
	Archive    *archive.Archive
}

type RunOptions struct {
	// Force runs on an excluded weekday.
	Force bool
	// DryRun renders and archives but does not send.
	DryRun bool
}

// Outcome is what one run produced.
type Outcome struct {
	RunID       string
	Skipped     bool
	Delivered   bool
	Bundle      *types.ReportBundle
	HTML        []byte
	PDF         []byte
	ArchivePath string
}

type Runner struct {
	cfg   *store.Config
	creds store.Credentials
	c     Components
	now   func() time.Time
	newID func() string
}

type Option func(*Runner)

func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

func New(cfg *store.Config, creds store.Credentials, c Components, opts ...Option) *Runner {
	r := &Runner{
		cfg:   cfg,
		creds: creds,
		c:     c,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunOnce performs a single collect, render and deliver cycle. Only config,
// render and delivery problems are returned as errors; source failures are
// absorbed by the collectors.
func (r *Runner) RunOnce(ctx context.Context, opts RunOptions) (*Outcome, error) {
	runID := r.newID()
	op := logger.StartOperation(ctx, "digest.RunOnce", "run_id", runID, "dry_run", opts.DryRun)
	ctx = op.GetContext()
	out := &Outcome{RunID: runID}

	if !opts.DryRun {
		if err := r.creds.Validate(); err != nil {
			op.EndWithError(err)
			return out, err
		}
	}

	now := r.now().In(r.cfg.Location())
	if r.cfg.Excluded(now.Weekday()) && !opts.Force {
		logger.Info(ctx, "Skipping report on excluded day", "day", now.Weekday().String())
		out.Skipped = true
		op.End("skipped", true)
		return out, nil
	}

	out.Bundle = r.Collect(ctx, runID, now)

	if err := r.render(ctx, out); err != nil {
		r.notify(ctx, opts, mailer.Failure{RunID: runID, Type: "Report Rendering Error", Message: err.Error()})
		op.EndWithError(err)
		return out, err
	}

	r.archive(ctx, out)

	if opts.DryRun {
		logger.Info(ctx, "Dry run, report not sent", "archive", out.ArchivePath)
		op.End("delivered", false)
		return out, nil
	}

	doc := mailer.Document{
		RunID:   runID,
		Subject: report.Subject(r.cfg.Report.Title, out.Bundle),
		HTML:    out.HTML,
		Text:    plainText(r.cfg.Report.Title, out.Bundle),
		PDF:     out.PDF,
		PDFName: fmt.Sprintf("intelligence-report-%s.pdf", out.Bundle.GeneratedAt.Format("2006-01-02")),
	}
	if !r.c.Mailer.Deliver(ctx, doc, r.creds.EmailTo) {
		err := errs.Delivery("report not delivered", nil)
		op.EndWithError(err)
		return out, err
	}

	out.Delivered = true
	op.End("delivered", true, "fallbacks", strings.Join(out.Bundle.Fallbacks, ","))
	return out, nil
}

// Collect runs the collectors planned for now's weekday and assembles the
// bundle. Independent sections run concurrently.
func (r *Runner) Collect(ctx context.Context, runID string, now time.Time) *types.ReportBundle {
	plan := report.PlanForDay(now.Weekday())
	logger.Info(ctx, "Collecting report sections", "day", now.Weekday().String(), "sections", strings.Join(plan.Sections(), ","))

	var (
		in report.Inputs
		wg sync.WaitGroup
	)
	in.RunID = runID

	spawn := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	if r.c.News != nil {
		spawn(func() {
			res := guard(ctx, "news", func() types.Result[types.NewsReport] { return r.c.News.CollectNews(ctx) })
			in.News = &res
		})
	}
	if plan.Stocks && r.c.Stocks != nil {
		spawn(func() {
			res := guard(ctx, "stocks", func() types.Result[*types.StockReport] {
				return r.c.Stocks.CollectStocks(ctx, plan.MutualFunds)
			})
			in.Stocks = &res
		})
	}
	if r.c.Jobs != nil {
		spawn(func() {
			res := guard(ctx, "jobs", func() types.Result[[]types.JobListing] { return r.c.Jobs.CollectJobs(ctx) })
			in.Jobs = &res
		})
	}
	if r.c.SAP != nil && (plan.SAPInsights || plan.Career) {
		spawn(func() {
			if plan.SAPInsights {
				res := guard(ctx, "sap", func() types.Result[*types.SAPReport] { return r.c.SAP.CollectInsights(ctx) })
				in.SAP = &res
			}
			if plan.Career {
				res := guard(ctx, "career", func() types.Result[*types.CareerReport] { return r.c.SAP.CareerAnalysis(ctx) })
				in.Career = &res
			}
		})
	}
	wg.Wait()

	bundle := report.Assemble(in, now)

	if r.c.Summarizer != nil {
		sctx, cancel := context.WithTimeout(ctx, 90*time.Second)
		summary, err := r.c.Summarizer.Summarize(sctx, bundle)
		cancel()
		if err != nil {
			logger.Warn(ctx, "Executive summary unavailable", "error", err)
		} else if s := strings.TrimSpace(summary); s != "" {
			bundle.Summary = s
			bundle.HasSummary = true
		}
	}
	return bundle
}

func (r *Runner) render(ctx context.Context, out *Outcome) error {
	html, err := report.RenderHTML(r.cfg.Report.Title, out.Bundle)
	if err != nil {
		return err
	}
	out.HTML = html

	if r.cfg.Report.AttachPDF {
		pdf, err := report.RenderPDF(r.cfg.Report.Title, out.Bundle)
		if err != nil {
			// the HTML body still carries the full report
			logger.Warn(ctx, "PDF attachment skipped", "error", err)
		} else {
			out.PDF = pdf
		}
	}
	logger.Debug(ctx, "Report rendered", "html_bytes", len(out.HTML), "pdf_bytes", len(out.PDF))
	return nil
}

func (r *Runner) archive(ctx context.Context, out *Outcome) {
	if r.c.Archive == nil {
		return
	}
	p, err := r.c.Archive.Save(out.Bundle, out.HTML)
	if err != nil {
		logger.Warn(ctx, "Report not archived", "error", err)
		return
	}
	out.ArchivePath = p
	if n, err := r.c.Archive.CompressOlder(); err != nil {
		logger.Warn(ctx, "Failed to compress old reports", "error", err)
	} else if n > 0 {
		logger.Debug(ctx, "Compressed old reports", "count", n)
	}
}

func (r *Runner) notify(ctx context.Context, opts RunOptions, f mailer.Failure) {
	if opts.DryRun || r.c.Mailer == nil {
		return
	}
	if err := r.c.Mailer.Notify(ctx, r.creds.EmailTo, f); err != nil {
		logger.ErrorWithErr(ctx, "Failure notification not sent", err, "run_id", f.RunID)
	}
}

// guard turns a collector panic into an empty section with a failed source.
func guard[T any](ctx context.Context, section string, fn func() types.Result[T]) (res types.Result[T]) {
	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "Collector panicked", "section", section, "panic", fmt.Sprint(p))
			res = types.Result[T]{Sources: []types.SourceStatus{{Name: section, Err: fmt.Sprintf("panic: %v", p)}}}
		}
	}()
	return fn()
}

func plainText(title string, b *types.ReportBundle) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n%s, %s at %s\n\n", report.Subject(title, b), b.Day, b.Date, b.Time)
	if b.HasSummary {
		sb.WriteString(b.Summary)
		sb.WriteString("\n\n")
	}
	sb.WriteString("Included today:\n")
	for _, s := range []struct {
		on   bool
		name string
	}{
		{b.HasNews, "News"},
		{b.HasMarketData, "Market overview"},
		{b.HasMutualFunds, "Mutual funds"},
		{b.HasJobs, "Job opportunities"},
		{b.HasSAPInsights, "SAP & AI insights"},
		{b.HasCareer, "Career analysis"},
	} {
		if s.on {
			fmt.Fprintf(&sb, "- %s\n", s.name)
		}
	}
	sb.WriteString("\nThe full report is in the HTML part of this message")
	if len(b.Fallbacks) > 0 {
		fmt.Fprintf(&sb, ". Curated data was used for: %s", strings.Join(b.Fallbacks, ", "))
	}
	sb.WriteString(".\n")
	return sb.String()
}
