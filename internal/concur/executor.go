package concur

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/concur-accruals/internal/metrics"
)

const (
	defaultRequestTimeout = 30 * time.Second
	maxResponseBytes      = 64 << 20
	tracerName            = "github.com/donaldgifford/concur-accruals/internal/concur"
)

// Request describes one upstream call.
type Request struct {
	Where   string // operation name carried into errors, logs, and metrics
	Method  string // defaults to GET
	URL     string
	Params  url.Values
	Timeout time.Duration // defaults to the executor timeout
}

// Executor implements RequestExecutor against the Concur REST APIs.
type Executor struct {
	tokens  TokenProvider
	client  *http.Client
	limiter *RateLimiter
	timeout time.Duration
	logger  *slog.Logger
	tracer  trace.Tracer
	latency metric.Float64Histogram
	nowFunc func() time.Time
}

// ExecutorOption configures the Executor.
type ExecutorOption func(*Executor)

// WithExecutorHTTPClient overrides the default HTTP client.
func WithExecutorHTTPClient(hc *http.Client) ExecutorOption {
	return func(e *Executor) {
		e.client = hc
	}
}

// WithRateLimiter injects a rate limiter. When set, every call goes through
// Wait() first and 429 responses open a backoff window.
func WithRateLimiter(r *RateLimiter) ExecutorOption {
	return func(e *Executor) {
		e.limiter = r
	}
}

// WithRequestTimeout sets the default per-call timeout.
func WithRequestTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithExecutorLogger sets the logger.
func WithExecutorLogger(l *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = l
	}
}

// NewExecutor creates an executor that authenticates with tokens.
func NewExecutor(tokens TokenProvider, opts ...ExecutorOption) *Executor {
	e := &Executor{
		tokens:  tokens,
		client:  &http.Client{},
		timeout: defaultRequestTimeout,
		logger:  slog.Default(),
		tracer:  otel.Tracer(tracerName),
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	latency, err := otel.Meter(tracerName).Float64Histogram("concur.client.request.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of Concur API calls."),
	)
	if err == nil {
		e.latency = latency
	}
	return e
}

// Execute performs req and decodes a JSON object body. Empty bodies yield an
// empty Payload. Failures are always returned as *Error.
func (e *Executor) Execute(ctx context.Context, req Request) (payload Payload, err error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	params := cloneParams(req.Params)

	ctx, span := e.tracer.Start(ctx, "concur."+req.Where,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("concur.where", req.Where),
			attribute.String("http.request.method", method),
			attribute.String("url.full", req.URL),
		),
	)
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
			if ce, ok := AsError(err); ok {
				outcome = string(ce.Kind)
				if ce.Status != 0 {
					span.SetAttributes(attribute.Int("http.response.status_code", ce.Status))
				}
			}
			span.SetStatus(codes.Error, err.Error())
		}
		metrics.ConcurRequestsTotal.WithLabelValues(req.Where, outcome).Inc()
		elapsed := time.Since(start).Seconds()
		metrics.ConcurRequestDuration.WithLabelValues(req.Where).Observe(elapsed)
		if e.latency != nil {
			e.latency.Record(ctx, elapsed, metric.WithAttributes(
				attribute.String("concur.where", req.Where),
				attribute.String("concur.outcome", outcome),
			))
		}
		span.End()
	}()

	fail := func(kind Kind, status int, body string, cause error) *Error {
		return &Error{
			Where:    req.Where,
			Kind:     kind,
			Status:   status,
			URL:      req.URL,
			Params:   params,
			Response: truncate(body, maxResponseSnippet),
			Err:      cause,
		}
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = e.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			if errors.Is(err, ErrDailyLimitReached) {
				metrics.ConcurDailyLimitHits.Inc()
			}
			return nil, fail(KindRequestFailed, 0, "", fmt.Errorf("rate limit: %w", err))
		}
		metrics.ConcurDailyUsage.Set(float64(e.limiter.DailyCount()))
	}

	token, err := e.tokens.Token(ctx)
	if err != nil {
		if ce, ok := AsError(err); ok {
			return nil, ce
		}
		if errors.Is(err, ErrInvalidCredential) {
			return nil, err
		}
		return nil, fail(KindRequestFailed, 0, "", fmt.Errorf("getting auth token: %w", err))
	}

	target, err := buildURL(req.URL, params)
	if err != nil {
		return nil, fail(KindRequestFailed, 0, "", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, http.NoBody)
	if err != nil {
		return nil, fail(KindRequestFailed, 0, "", fmt.Errorf("creating HTTP request: %w", err))
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fail(KindRequestFailed, 0, "", fmt.Errorf("executing request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fail(KindRequestFailed, resp.StatusCode, "", fmt.Errorf("reading response body: %w", err))
	}

	e.logger.DebugContext(ctx, "concur request",
		"where", req.Where,
		"method", method,
		"url", req.URL,
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(start),
	)

	if resp.StatusCode == http.StatusTooManyRequests {
		metrics.ConcurThrottledTotal.Inc()
		if e.limiter != nil {
			e.limiter.RecordThrottle(ParseRetryAfter(resp.Header, e.nowFunc()))
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fail(KindUpstreamRejected, resp.StatusCode, string(body), nil)
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return Payload{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, fail(KindUnexpectedShape, resp.StatusCode, string(body),
			fmt.Errorf("decoding response: %w", err))
	}
	obj, ok := decoded.(map[string]any)
	if !ok {
		return nil, fail(KindUnexpectedShape, resp.StatusCode, string(body),
			errors.New("response is not a JSON object"))
	}

	return Payload(obj), nil
}

func buildURL(raw string, params url.Values) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing URL %q: %w", raw, err)
	}
	if len(params) == 0 {
		return u.String(), nil
	}
	q := u.Query()
	for k, v := range params {
		q[k] = v
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
