package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daily-intel/internal/errs"
)

func testTransportConfig() TransportConfig {
	return TransportConfig{
		ConnectTimeout:   time.Second,
		ReadTimeout:      time.Second,
		MaxRetries:       3,
		BackoffInitial:   time.Millisecond,
		BackoffMax:       4 * time.Millisecond,
		RetryStatusCodes: []int{429, 500, 502, 503, 504},
		UserAgents:       []string{"ua-one", "ua-two", "ua-three"},
	}
}

func newTestClient(t *testing.T) (*Client, *Transport) {
	t.Helper()
	tr := NewTransport(testTransportConfig(), nil)
	return NewClient(WithTransport(tr), WithLogging(false)), tr
}

func TestFetchRetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client, _ := newTestClient(t)
	body, err := client.Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client, _ := newTestClient(t)
	_, err := client.Fetch(context.Background(), srv.URL)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, _ := newTestClient(t)
	_, err := client.Fetch(context.Background(), srv.URL)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.Code)
	// one initial attempt plus three retries
	assert.Equal(t, int32(4), calls.Load())
}

func TestUserAgentRotates(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("User-Agent"))
		mu.Unlock()
	}))
	defer srv.Close()

	client, _ := newTestClient(t)
	for i := 0; i < 4; i++ {
		_, err := client.Fetch(context.Background(), srv.URL)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"ua-one", "ua-two", "ua-three", "ua-one"}, seen)
}

func TestCallerUserAgentIsKept(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	client, _ := newTestClient(t)
	_, err := client.Fetch(context.Background(), srv.URL, map[string]string{"User-Agent": "custom"})

	require.NoError(t, err)
	assert.Equal(t, "custom", got)
}

func TestConnectionFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client, _ := newTestClient(t)
	_, err := client.Fetch(context.Background(), url)

	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindTransient))
}

func TestHungUpstreamGetsEveryRetry(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-release:
		case <-r.Context().Done():
		case <-time.After(300 * time.Millisecond):
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg := testTransportConfig()
	cfg.ConnectTimeout = 50 * time.Millisecond
	cfg.ReadTimeout = 100 * time.Millisecond
	cfg.AttemptTimeout = cfg.ConnectTimeout + cfg.ReadTimeout*2
	tr := NewTransport(cfg, nil)
	client := NewClient(WithTransport(tr), WithLogging(false))

	_, err := client.Fetch(context.Background(), srv.URL)

	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindTransient))
	assert.Equal(t, int32(4), calls.Load())
}

func TestAttemptTimeoutBoundsSlowBody(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Content-Length", "10")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("slow"))
			w.(http.Flusher).Flush()
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	cfg := testTransportConfig()
	cfg.AttemptTimeout = 100 * time.Millisecond
	client := NewClient(WithTransport(NewTransport(cfg, nil)), WithLogging(false))

	start := time.Now()
	_, err := client.Fetch(context.Background(), srv.URL)

	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindTransient))
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestBudgetCoversEveryAttempt(t *testing.T) {
	cfg := testTransportConfig()
	cfg.AttemptTimeout = time.Second
	tr := NewTransport(cfg, nil)

	// four attempts plus three capped backoffs
	assert.Equal(t, 4*time.Second+3*4*time.Millisecond, tr.Budget())

	cfg.AttemptTimeout = 0
	assert.Zero(t, NewTransport(cfg, nil).Budget())
}

func TestBackoffIsCapped(t *testing.T) {
	tr := NewTransport(testTransportConfig(), nil)

	assert.Equal(t, time.Millisecond, tr.backoff(0, ""))
	assert.Equal(t, 2*time.Millisecond, tr.backoff(1, ""))
	assert.Equal(t, 4*time.Millisecond, tr.backoff(2, ""))
	assert.Equal(t, 4*time.Millisecond, tr.backoff(10, ""))
	assert.Equal(t, time.Duration(0), tr.backoff(1, "0"))
	// a Retry-After beyond the cap is ignored
	assert.Equal(t, 2*time.Millisecond, tr.backoff(1, "60"))
}

func TestPacerSpacesCalls(t *testing.T) {
	p := NewPacer(20 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, p.Wait(ctx))
	require.NoError(t, p.Wait(ctx))
	require.NoError(t, p.Wait(ctx))

	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
}

func TestPacerHonoursContext(t *testing.T) {
	p := NewPacer(time.Hour)
	require.NoError(t, p.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, p.Wait(ctx))
}

func TestQueryParametersAreMerged(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	client, _ := newTestClient(t)
	req := NewRequest(http.MethodGet, srv.URL+"?a=1").
		WithContext(context.Background()).
		WithQuery(map[string][]string{"b": {"2"}})
	resp, err := client.Do(req)
	require.NoError(t, err)

	var out struct {
		Status string `json:"status"`
	}
	require.NoError(t, resp.ParseJSON(&out))
	assert.Equal(t, "ok", out.Status)
	assert.Equal(t, "a=1&b=2", query)
}
