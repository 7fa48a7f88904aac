package noop

import (
	"context"

	"daily-intel/internal/logger"
	"daily-intel/internal/types"
)

// Summarizer is used when no model provider is configured. The report then
// renders without a summary block.
type Summarizer struct{}

func New() *Summarizer {
	return &Summarizer{}
}

func (s *Summarizer) Summarize(ctx context.Context, bundle *types.ReportBundle) (string, error) {
	logger.Debug(ctx, "Noop summarizer called - no summary produced")
	return "", nil
}
