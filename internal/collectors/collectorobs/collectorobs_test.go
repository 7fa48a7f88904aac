package collectorobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"daily-intel/internal/types"
)

type stubNews struct{ called bool }

func (s *stubNews) CollectNews(ctx context.Context) types.Result[types.NewsReport] {
	s.called = true
	return types.Result[types.NewsReport]{
		Data:         types.NewsReport{"global": {{Title: "a"}}, "india": {}},
		UsedFallback: true,
	}
}

type stubStocks struct{}

func (stubStocks) CollectStocks(ctx context.Context, withFunds bool) types.Result[*types.StockReport] {
	return types.Result[*types.StockReport]{}
}

func TestWrapNewsPassesResultThrough(t *testing.T) {
	inner := &stubNews{}
	res := WrapNews(inner).CollectNews(context.Background())

	assert.True(t, inner.called)
	assert.True(t, res.UsedFallback)
	assert.Len(t, res.Data["global"], 1)
}

func TestWrapStocksToleratesNilReport(t *testing.T) {
	res := WrapStocks(stubStocks{}).CollectStocks(context.Background(), true)
	assert.Nil(t, res.Data)
}
