package summaryobs

import (
	"context"

	"daily-intel/internal/interfaces"
	"daily-intel/internal/logger"
	"daily-intel/internal/trace"
	"daily-intel/internal/types"
)

// observableSummarizer wraps a Summarizer with logging and tracing
type observableSummarizer struct {
	summarizer interfaces.Summarizer
}

var _ interfaces.Summarizer = (*observableSummarizer)(nil)

func Wrap(s interfaces.Summarizer) interfaces.Summarizer {
	return &observableSummarizer{summarizer: s}
}

func (o *observableSummarizer) Summarize(ctx context.Context, bundle *types.ReportBundle) (string, error) {
	ctx, span := trace.StartSpan(ctx, "summary.Summarize")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Requesting report summary", "date", bundle.Date)

	out, err := o.summarizer.Summarize(ctx, bundle)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Report summary failed", err, "date", bundle.Date)
		return "", err
	}

	logger.InfoSkip(ctx, 1, "Report summary received", "chars", len(out))
	return out, nil
}
