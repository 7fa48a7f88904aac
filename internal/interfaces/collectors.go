package interfaces

import (
	"context"

	"daily-intel/internal/types"
)

// Collectors never return errors: failed upstreams are absorbed into the
// Result's Sources and, when too little survives, fallback data.

type NewsCollector interface {
	CollectNews(ctx context.Context) types.Result[types.NewsReport]
}

type StockCollector interface {
	CollectStocks(ctx context.Context, withFunds bool) types.Result[*types.StockReport]
}

type JobsCollector interface {
	CollectJobs(ctx context.Context) types.Result[[]types.JobListing]
}

type SAPCollector interface {
	CollectInsights(ctx context.Context) types.Result[*types.SAPReport]
	CareerAnalysis(ctx context.Context) types.Result[*types.CareerReport]
}

type Summarizer interface {
	Summarize(ctx context.Context, bundle *types.ReportBundle) (string, error)
}
