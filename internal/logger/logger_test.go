package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, detailed bool) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prevLogger, prevDetailed := globalLogger, detailedLogging
	globalLogger = zap.New(core).Sugar()
	detailedLogging = detailed
	t.Cleanup(func() {
		globalLogger = prevLogger
		detailedLogging = prevDetailed
	})
	return logs
}

func TestErrorWithErrAddsErrorField(t *testing.T) {
	logs := observe(t, false)

	ErrorWithErr(context.Background(), "Feed fetch failed", errors.New("boom"), "source", "bbc")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "Feed fetch failed", entry.Message)
	ctxMap := entry.ContextMap()
	assert.Equal(t, "boom", ctxMap["error"])
	assert.Equal(t, "bbc", ctxMap["source"])
}

func TestDebugSuppressedUnlessDetailed(t *testing.T) {
	logs := observe(t, false)
	Debug(context.Background(), "hidden")
	assert.Equal(t, 0, logs.Len())

	detailedLogging = true
	Debug(context.Background(), "shown")
	assert.Equal(t, 1, logs.FilterMessage("shown").Len())
}

func TestSectionAndOperationTimer(t *testing.T) {
	logs := observe(t, false)
	ctx := context.Background()

	Section(ctx, "news.global", 7, true)
	op := StartOperation(ctx, "collect.jobs", "sources", 3)
	op.EndWithError(errors.New("no sources"))

	section := logs.FilterMessage("Section collected").All()
	require.Len(t, section, 1)
	assert.Equal(t, true, section[0].ContextMap()["used_fallback"])

	failed := logs.FilterMessage("Operation failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "collect.jobs", failed[0].ContextMap()["operation"])
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, parseLogLevel("warn"))
	assert.Equal(t, zapcore.InfoLevel, parseLogLevel("verbose"))
}
