package fetcher

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/ballotwatch/candidate-sync/internal/resilience"
)

// Options configures an HTTP client for one provider. The inter-request
// delay and backoff strategy are explicit construction parameters; there
// is no process-global pacing state.
type Options struct {
	// Source names the provider in retry logs (e.g. "fec").
	Source string

	// UserAgent identifies the pipeline to the provider.
	UserAgent string

	// Timeout bounds a single request/response exchange. Default: 30s.
	Timeout time.Duration

	// RequestDelay is the fixed minimum delay between consecutive
	// requests. Default: 500ms.
	RequestDelay time.Duration

	// MaxAttempts is the total attempt ceiling per fetch, including the
	// first try. Default: 3.
	MaxAttempts int

	// Backoff selects linear or exponential retry backoff growth.
	Backoff resilience.Strategy

	// BackoffBase is the backoff unit. Defaults to RequestDelay.
	BackoffBase time.Duration
}

// Client is a rate-limited HTTP fetcher with retry on transient
// failures. One Client serves one provider; the limiter paces every
// attempt, which also covers the inter-page delay during pagination.
type Client struct {
	http    *http.Client
	opts    Options
	limiter *rate.Limiter
}

// New creates a Client for a provider.
func New(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestDelay == 0 {
		opts.RequestDelay = 500 * time.Millisecond
	}
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = 3
	}
	if opts.BackoffBase == 0 {
		opts.BackoffBase = opts.RequestDelay
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "candidate-sync/1.0"
	}
	return &Client{
		http: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:    opts,
		limiter: rate.NewLimiter(rate.Every(opts.RequestDelay), 1),
	}
}

// Get fetches the URL, waiting for the rate limiter before every attempt
// and retrying rate-limit statuses, server errors, and network failures
// up to the attempt ceiling. Exhausted retries surface the last error.
// Retry logs and error messages carry a credential-redacted form of the
// URL; the full URL goes only into the request itself.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	label := redactURL(url)

	cfg := resilience.RetryConfig{
		MaxAttempts: c.opts.MaxAttempts,
		BaseDelay:   c.opts.BackoffBase,
		Strategy:    c.opts.Backoff,
		OnRetry:     resilience.RetryLogger(c.opts.Source, label),
	}

	err := resilience.Do(ctx, cfg, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "fetcher: rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return eris.Wrap(err, "fetcher: create request")
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("Accept", "application/json, text/html")

		resp, err := c.http.Do(req)
		if err != nil {
			return resilience.NewTransientError(eris.Wrapf(err, "fetcher: %s", label), 0)
		}
		defer func() { _ = resp.Body.Close() }()

		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return resilience.NewTransientError(eris.Errorf("fetcher: http %d from %s", resp.StatusCode, label), resp.StatusCode)
		}
		if resp.StatusCode >= 400 {
			return eris.Errorf("fetcher: http %d from %s", resp.StatusCode, label)
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, 8<<20))
		if err != nil {
			return resilience.NewTransientError(eris.Wrap(err, "fetcher: read body"), 0)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// GetJSON fetches the URL and unmarshals the response into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	body, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return eris.Wrapf(err, "fetcher: decode json from %s", redactURL(url))
	}
	return nil
}

// redactURL masks credential-bearing query parameter values so the URL
// is safe for logs, error messages, and the run ledger's error list.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	q := u.Query()
	redacted := false
	for name := range q {
		switch strings.ToLower(name) {
		case "api_key", "apikey", "key", "token", "access_token":
			q.Set(name, "REDACTED")
			redacted = true
		}
	}
	if redacted {
		u.RawQuery = q.Encode()
	}
	return u.String()
}
