package api

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"daily-intel/internal/logger"
	"daily-intel/internal/store"
)

// TransportConfig configures timeouts, retries and user agent rotation
type TransportConfig struct {
	ConnectTimeout   time.Duration
	ReadTimeout      time.Duration
	MaxRetries       int
	BackoffInitial   time.Duration
	BackoffMax       time.Duration
	// AttemptTimeout bounds one attempt, body read included. Zero means
	// only the dial and response header timeouts apply.
	AttemptTimeout   time.Duration
	RetryStatusCodes []int
	UserAgents       []string
}

// TransportConfigFrom lifts the http section of the run configuration
func TransportConfigFrom(cfg *store.Config) TransportConfig {
	return TransportConfig{
		ConnectTimeout:   cfg.HTTP.ConnectTimeout,
		ReadTimeout:      cfg.HTTP.ReadTimeout,
		MaxRetries:       cfg.HTTP.MaxRetries,
		BackoffInitial:   cfg.HTTP.BackoffInitial,
		BackoffMax:       cfg.HTTP.BackoffMax,
		AttemptTimeout:   cfg.HTTP.ConnectTimeout + cfg.HTTP.ReadTimeout*2,
		RetryStatusCodes: cfg.HTTP.RetryStatusCodes,
		UserAgents:       cfg.HTTP.UserAgents,
	}
}

// Transport is an http.RoundTripper that rotates user agents and retries
// transient failures with capped exponential backoff. Every upstream client
// in the process shares one instance.
type Transport struct {
	base      http.RoundTripper
	cfg       TransportConfig
	retryable map[int]bool
	next      atomic.Uint64
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewTransport builds a Transport over base. A nil base gets a tuned
// http.Transport using the configured connect and read timeouts.
func NewTransport(cfg TransportConfig, base http.RoundTripper) *Transport {
	if base == nil {
		dialer := &net.Dialer{
			Timeout:   cfg.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}
		base = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			TLSHandshakeTimeout:   cfg.ConnectTimeout,
			ResponseHeaderTimeout: cfg.ReadTimeout,
			MaxIdleConns:          20,
			IdleConnTimeout:       90 * time.Second,
		}
	}

	retryable := make(map[int]bool, len(cfg.RetryStatusCodes))
	for _, code := range cfg.RetryStatusCodes {
		retryable[code] = true
	}

	return &Transport{
		base:      base,
		cfg:       cfg,
		retryable: retryable,
		sleep:     sleepContext,
	}
}

// NextUserAgent returns the next user agent in round-robin order
func (t *Transport) NextUserAgent() string {
	if len(t.cfg.UserAgents) == 0 {
		return ""
	}
	i := t.next.Add(1) - 1
	return t.cfg.UserAgents[i%uint64(len(t.cfg.UserAgents))]
}

// Client returns an *http.Client using this transport. It has no overall
// timeout; every attempt is bounded on its own.
func (t *Transport) Client() *http.Client {
	return &http.Client{Transport: t}
}

// Budget is the longest one RoundTrip can take with every retry used, for
// callers such as colly that insist on a whole-request timeout.
func (t *Transport) Budget() time.Duration {
	if t.cfg.AttemptTimeout <= 0 {
		return 0
	}
	budget := time.Duration(t.cfg.MaxRetries+1) * t.cfg.AttemptTimeout
	for attempt := 0; attempt < t.cfg.MaxRetries; attempt++ {
		budget += max(t.backoff(attempt, ""), t.cfg.BackoffMax)
	}
	return budget
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	ua := req.Header.Get("User-Agent")

	var lastErr error
	for attempt := 0; attempt <= t.cfg.MaxRetries; attempt++ {
		attemptCtx, cancel := t.attemptContext(ctx)
		attemptReq, err := t.prepare(attemptCtx, req, attempt, ua)
		if err != nil {
			cancel()
			return nil, err
		}

		resp, err := t.base.RoundTrip(attemptReq)
		final := attempt == t.cfg.MaxRetries

		switch {
		case err != nil:
			cancel()
			if ctx.Err() != nil || !isTransientNetErr(err) {
				return nil, err
			}
			lastErr = err
			if final {
				break
			}
			logger.Warn(ctx, "Transient request failure, retrying",
				"url", req.URL.String(), "attempt", attempt+1, "error", err)

		case t.retryable[resp.StatusCode]:
			if final {
				resp.Body = &cancelBody{ReadCloser: resp.Body, cancel: cancel}
				return resp, nil
			}
			wait := t.backoff(attempt, resp.Header.Get("Retry-After"))
			drain(resp)
			cancel()
			logger.Warn(ctx, "Retryable status, backing off",
				"url", req.URL.String(), "status", resp.StatusCode, "attempt", attempt+1, "wait", wait.String())
			if err := t.sleep(ctx, wait); err != nil {
				return nil, err
			}
			continue

		default:
			resp.Body = &cancelBody{ReadCloser: resp.Body, cancel: cancel}
			return resp, nil
		}

		if final {
			break
		}
		if err := t.sleep(ctx, t.backoff(attempt, "")); err != nil {
			return nil, err
		}
	}

	return nil, lastErr
}

func (t *Transport) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.cfg.AttemptTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, t.cfg.AttemptTimeout)
}

func (t *Transport) prepare(ctx context.Context, req *http.Request, attempt int, ua string) (*http.Request, error) {
	r := req.Clone(ctx)
	if attempt > 0 && req.Body != nil {
		if req.GetBody == nil {
			return nil, errors.New("request body cannot be replayed for retry")
		}
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		r.Body = body
	}
	if ua == "" {
		r.Header.Set("User-Agent", t.NextUserAgent())
	}
	return r, nil
}

// backoff doubles from BackoffInitial per attempt, capped at BackoffMax.
// A numeric Retry-After header wins when it is shorter than the cap.
func (t *Transport) backoff(attempt int, retryAfter string) time.Duration {
	if secs, err := strconv.Atoi(retryAfter); err == nil && secs >= 0 {
		d := time.Duration(secs) * time.Second
		if t.cfg.BackoffMax <= 0 || d <= t.cfg.BackoffMax {
			return d
		}
	}

	wait := t.cfg.BackoffInitial << attempt
	if t.cfg.BackoffMax > 0 && (wait > t.cfg.BackoffMax || wait <= 0) {
		wait = t.cfg.BackoffMax
	}
	return wait
}

func isTransientNetErr(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF)
}

// cancelBody releases the attempt context once the caller is done reading.
type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
