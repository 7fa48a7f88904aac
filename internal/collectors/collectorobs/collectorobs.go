package collectorobs

import (
	"context"
	"time"

	"daily-intel/internal/interfaces"
	"daily-intel/internal/logger"
	"daily-intel/internal/trace"
	"daily-intel/internal/types"
)

// Collectors never fail outright, so the decorators log how a section was
// produced rather than whether it was.

type observableNews struct {
	collector interfaces.NewsCollector
}

var _ interfaces.NewsCollector = (*observableNews)(nil)

func WrapNews(c interfaces.NewsCollector) interfaces.NewsCollector {
	return &observableNews{collector: c}
}

func (o *observableNews) CollectNews(ctx context.Context) types.Result[types.NewsReport] {
	ctx, span := trace.StartSpan(ctx, "news.CollectNews")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Collecting news")
	start := time.Now()

	res := o.collector.CollectNews(ctx)

	total := 0
	for _, items := range res.Data {
		total += len(items)
	}
	logger.Section(ctx, "news", total, res.UsedFallback,
		"categories", len(res.Data),
		"failed_sources", res.Failed(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res
}

type observableStocks struct {
	collector interfaces.StockCollector
}

var _ interfaces.StockCollector = (*observableStocks)(nil)

func WrapStocks(c interfaces.StockCollector) interfaces.StockCollector {
	return &observableStocks{collector: c}
}

func (o *observableStocks) CollectStocks(ctx context.Context, withFunds bool) types.Result[*types.StockReport] {
	ctx, span := trace.StartSpan(ctx, "stocks.CollectStocks")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Collecting market data", "with_funds", withFunds)
	start := time.Now()

	res := o.collector.CollectStocks(ctx, withFunds)

	quotes, funds := 0, 0
	if r := res.Data; r != nil {
		quotes = len(r.LargeCap) + len(r.MidCap) + len(r.SmallCap)
		for _, f := range r.MutualFunds {
			funds += len(f)
		}
	}
	logger.Section(ctx, "stocks", quotes, res.UsedFallback,
		"funds", funds,
		"failed_sources", res.Failed(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res
}

type observableJobs struct {
	collector interfaces.JobsCollector
}

var _ interfaces.JobsCollector = (*observableJobs)(nil)

func WrapJobs(c interfaces.JobsCollector) interfaces.JobsCollector {
	return &observableJobs{collector: c}
}

func (o *observableJobs) CollectJobs(ctx context.Context) types.Result[[]types.JobListing] {
	ctx, span := trace.StartSpan(ctx, "jobs.CollectJobs")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Collecting job listings")
	start := time.Now()

	res := o.collector.CollectJobs(ctx)

	logger.Section(ctx, "jobs", len(res.Data), res.UsedFallback,
		"failed_sources", res.Failed(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res
}

type observableSAP struct {
	collector interfaces.SAPCollector
}

var _ interfaces.SAPCollector = (*observableSAP)(nil)

func WrapSAP(c interfaces.SAPCollector) interfaces.SAPCollector {
	return &observableSAP{collector: c}
}

func (o *observableSAP) CollectInsights(ctx context.Context) types.Result[*types.SAPReport] {
	ctx, span := trace.StartSpan(ctx, "sap.CollectInsights")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Collecting SAP insights")

	res := o.collector.CollectInsights(ctx)

	items := 0
	if res.Data != nil {
		items = len(res.Data.News)
	}
	logger.Section(ctx, "sap", items, res.UsedFallback, "failed_sources", res.Failed())
	return res
}

func (o *observableSAP) CareerAnalysis(ctx context.Context) types.Result[*types.CareerReport] {
	ctx, span := trace.StartSpan(ctx, "sap.CareerAnalysis")
	defer span.End()

	res := o.collector.CareerAnalysis(ctx)

	items := 0
	if r := res.Data; r != nil {
		items = len(r.Skills) + len(r.Paths) + len(r.Roadmap) + len(r.Predictions)
	}
	logger.Section(ctx, "career", items, res.UsedFallback)
	return res
}
