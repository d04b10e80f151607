package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/revelare/revelare-web/pkg/logger"
	"github.com/revelare/revelare-web/pkg/metrics"
	"golang.org/x/time/rate"
)

const maxBodyBytes = 4 << 20

type Options struct {
	Timeout          time.Duration
	RPS              float64
	Burst            int
	BreakerThreshold int
	BreakerTimeout   time.Duration
	HTTPClient       *http.Client
	Logger           *logger.Logger
}

// Client talks to the Revelare API. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	breaker *CircuitBreaker
	log     *logger.Logger
}

// NewClient builds a client for baseURL. An empty baseURL yields a client
// whose every call fails with ErrNotConfigured.
func NewClient(baseURL string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	limit := rate.Inf
	if opts.RPS > 0 {
		limit = rate.Limit(opts.RPS)
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = 30 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
		limiter: rate.NewLimiter(limit, opts.Burst),
		breaker: NewCircuitBreaker(opts.BreakerThreshold, opts.BreakerTimeout, tripsBreaker),
		log:     log.WithContext("component", "upstream"),
	}
	c.breaker.OnStateChange(func(s CircuitState) {
		metrics.SetBreakerOpen(s == StateOpen)
		c.log.Warn("upstream_breaker_state_changed", "state", s.String())
	})
	return c
}

func (c *Client) Configured() bool { return c.baseURL != "" }

func (c *Client) BreakerState() CircuitState { return c.breaker.GetState() }

// tripsBreaker counts transport failures and 5xx answers. Client errors and
// cancelled requests say nothing about the API's health.
func tripsBreaker(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500
	}
	return !errors.Is(err, ErrUnauthorized)
}

type request struct {
	endpoint    string
	method      string
	path        string
	query       url.Values
	token       string
	bearer      bool
	body        []byte
	contentType string
}

func jsonBody(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return b, nil
}

type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) do(ctx context.Context, r request, out interface{}) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}
	if r.bearer && r.token == "" {
		return ErrUnauthorized
	}
	if err := c.limiter.Wait(ctx); err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(r.endpoint, "rate_limited").Inc()
		return fmt.Errorf("%s: rate limit: %w", r.endpoint, err)
	}

	start := time.Now()
	err := c.breaker.Call(func() error {
		return c.send(ctx, r, out)
	})
	metrics.UpstreamRequestDuration.WithLabelValues(r.endpoint).Observe(time.Since(start).Seconds())
	metrics.UpstreamRequestsTotal.WithLabelValues(r.endpoint, outcome(err)).Inc()

	if err != nil {
		if errors.Is(err, ErrUnauthorized) || errors.Is(err, context.Canceled) {
			c.log.Debug("upstream_request_ended", "endpoint", r.endpoint, "error", err.Error())
		} else {
			c.log.Warn("upstream_request_failed", "endpoint", r.endpoint, "error", err.Error())
		}
		return err
	}
	c.log.Debug("upstream_request_ok", "endpoint", r.endpoint, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (c *Client) send(ctx context.Context, r request, out interface{}) error {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", r.endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "revelare-web/1.0")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.bearer {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", r.endpoint, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%s: read body: %w", r.endpoint, err)
	}

	if res.StatusCode == http.StatusUnauthorized && r.bearer {
		return ErrUnauthorized
	}

	var env envelope
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &env)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &APIError{Endpoint: r.endpoint, Status: res.StatusCode, Message: firstNonEmpty(env.Message, env.Error)}
	}
	if env.Status == "error" {
		return &APIError{Endpoint: r.endpoint, Status: res.StatusCode, Message: firstNonEmpty(env.Message, env.Error)}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", r.endpoint, err)
	}
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status >= 500 {
			return "server_error"
		}
		return "client_error"
	}
	return "transport_error"
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
