// Package dispatch is the single entry point for outbound catalog calls.
package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-training/miurev/pkg/auth"
	"github.com/go-training/miurev/pkg/cache"
	"github.com/go-training/miurev/pkg/core"
	"github.com/go-training/miurev/pkg/metrics"
	"github.com/go-training/miurev/pkg/observability"
	"github.com/go-training/miurev/pkg/ratelimit"

	"go.opentelemetry.io/otel/attribute"
)

// DefaultBaseURL is the catalog resource API root.
const DefaultBaseURL = "https://api.spotify.com/v1"

// maxBodySize caps how much of an upstream body is read into memory.
const maxBodySize = 10 << 20

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options wires a Dispatcher. Gate, Authority and Acquire are required.
type Options struct {
	Gate      *ratelimit.Gate
	Authority *auth.Authority
	Acquire   auth.AcquireFunc
	Cache     *cache.Cache
	Client    Doer
	BaseURL   string
	Metrics   *metrics.Collector
	Logger    *slog.Logger
}

// Dispatcher runs every outbound call through the cooldown gate, the token
// authority and the response cache, in that order.
type Dispatcher struct {
	gate      *ratelimit.Gate
	authority *auth.Authority
	acquire   auth.AcquireFunc
	cache     *cache.Cache
	client    Doer
	baseURL   string
	metrics   *metrics.Collector
	logger    *slog.Logger
}

// New creates a Dispatcher from opts, filling in defaults for the optional parts.
func New(opts Options) *Dispatcher {
	d := &Dispatcher{
		gate:      opts.Gate,
		authority: opts.Authority,
		acquire:   opts.Acquire,
		cache:     opts.Cache,
		client:    opts.Client,
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		metrics:   opts.Metrics,
		logger:    opts.Logger,
	}
	if d.gate == nil {
		d.gate = ratelimit.NewGate()
	}
	if d.cache == nil {
		d.cache = cache.New(cache.NewMemoryBackend(0))
	}
	if d.client == nil {
		d.client = &http.Client{Timeout: 10 * time.Second}
	}
	if d.baseURL == "" {
		d.baseURL = DefaultBaseURL
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Execute performs one catalog call.
//
// While the upstream cooldown is active it returns a busy response and a nil
// error without touching the token, the cache or the network. Non-2xx
// upstream responses come back as *core.UpstreamError and are not cached.
func (d *Dispatcher) Execute(ctx context.Context, cfg core.RequestConfig) (*core.Response, error) {
	if d.gate.CheckCooldown() {
		retryAfter := d.gate.RetryAfter()
		d.metrics.RecordDispatch(metrics.OutcomeBusy)
		observability.AddRequestAttributes(ctx,
			attribute.String("dispatch.outcome", metrics.OutcomeBusy),
			attribute.Float64("dispatch.retry_after_s", retryAfter.Seconds()),
		)
		return core.BusyResponse(retryAfter), nil
	}

	if d.authority == nil {
		return nil, fmt.Errorf("%w: no token authority configured", auth.ErrAuthorization)
	}
	record, err := d.authority.Authorize(ctx, d.acquire)
	if err != nil {
		d.metrics.RecordDispatch(metrics.OutcomeUnauthorized)
		return nil, err
	}

	method := strings.ToUpper(cfg.Method)
	if method == "" {
		method = http.MethodGet
	}
	target := d.resolve(cfg.URL)

	header := cfg.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	header.Set("Authorization", "Bearer "+record.AccessToken)
	header.Set("Accept", "application/json")
	if len(cfg.Body) > 0 && header.Get("Content-Type") == "" {
		header.Set("Content-Type", "application/json")
	}

	key := cache.Fingerprint(method, target, cfg.Params)
	resp, err := d.cache.GetOrCompute(ctx, key, func(ctx context.Context) (*core.Response, error) {
		return d.send(ctx, method, target, cfg, header)
	})

	outcome := metrics.OutcomeMiss
	switch {
	case err != nil:
		outcome = metrics.OutcomeError
	case resp != nil && resp.FromCache:
		outcome = metrics.OutcomeHit
	}
	d.metrics.RecordDispatch(outcome)
	observability.AddRequestAttributes(ctx,
		attribute.String("dispatch.outcome", outcome),
		attribute.String("dispatch.method", method),
		attribute.String("dispatch.url", target),
	)

	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (d *Dispatcher) resolve(raw string) string {
	if u, err := url.Parse(raw); err == nil && u.IsAbs() {
		return raw
	}
	return d.baseURL + "/" + strings.TrimLeft(raw, "/")
}

// send performs the round trip on a cache miss. The gate observes the outcome
// before send returns, whatever it was.
func (d *Dispatcher) send(ctx context.Context, method, target string, cfg core.RequestConfig, header http.Header) (*core.Response, error) {
	logger := core.LoggerFromCtx(ctx)

	var body io.Reader
	if len(cfg.Body) > 0 {
		body = bytes.NewReader(cfg.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream request: %w", err)
	}
	req.Header = header
	if len(cfg.Params) > 0 {
		query := req.URL.Query()
		for k, vs := range cfg.Params {
			for _, v := range vs {
				query.Add(k, v)
			}
		}
		req.URL.RawQuery = query.Encode()
	}

	start := time.Now()
	httpResp, err := d.client.Do(req)
	if err != nil {
		d.gate.Observe(nil)
		d.metrics.ObserveUpstream(0, time.Since(start))
		logger.Error("Upstream request failed", "method", method, "url", req.URL.String(), "error", err)
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer httpResp.Body.Close()

	d.gate.Observe(httpResp)
	d.metrics.ObserveUpstream(httpResp.StatusCode, time.Since(start))

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodySize))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read upstream response: %w", err)
	}

	resp := &core.Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header.Clone(),
		Body:       data,
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		logger.Warn("Upstream returned error status",
			"method", method,
			"url", req.URL.String(),
			"status", httpResp.StatusCode,
			"retry_after", httpResp.Header.Get("Retry-After"),
		)
		return nil, &core.UpstreamError{StatusCode: httpResp.StatusCode, Response: resp}
	}

	logger.Debug("Upstream request succeeded", "method", method, "url", req.URL.String(), "status", httpResp.StatusCode)
	return resp, nil
}
