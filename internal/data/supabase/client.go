// Package supabase talks to a Supabase project over HTTP: PostgREST for table
// access and the Edge Function gateway for server-side actions.
package supabase

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

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/colonyops/runway/internal/core/logging"
)

const (
	DefaultTimeout = 10 * time.Second
	defaultBackoff = 200 * time.Millisecond
	maxErrorBody   = 4 << 10
)

// ErrStatus matches every *StatusError.
var ErrStatus = errors.New("supabase: unexpected status")

// StatusError is returned for non-2xx responses. Code, Message and Hint are
// filled from a PostgREST error body when one is present.
type StatusError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
	Hint       string `json:"hint"`
	Body       string `json:"-"`
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = strings.TrimSpace(e.Body)
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("supabase: status %d: %s", e.StatusCode, msg)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrStatus
}

// Temporary reports whether retrying the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Config configures a Client.
type Config struct {
	URL string
	Key string
	// Schema selects a non-default Postgres schema through the profile
	// headers.
	Schema  string
	Timeout time.Duration
	// RateLimit is requests per second; zero disables limiting.
	RateLimit float64
	Burst     int
	// Retries is the number of extra attempts for idempotent reads.
	Retries    int
	HTTPClient *http.Client
}

// Client is a minimal Supabase HTTP client. It is safe for concurrent use.
type Client struct {
	base    *url.URL
	key     string
	schema  string
	timeout time.Duration
	retries int
	backoff time.Duration
	http    *http.Client
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewClient validates cfg and creates a client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("supabase: url is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("supabase: parse url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("supabase: url must be http or https, got %q", cfg.URL)
	}
	if cfg.Key == "" {
		return nil, errors.New("supabase: key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := max(cfg.Burst, 1)

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		base:    base,
		key:     cfg.Key,
		schema:  cfg.Schema,
		timeout: timeout,
		retries: max(cfg.Retries, 0),
		backoff: defaultBackoff,
		http:    httpClient,
		limiter: rate.NewLimiter(limit, burst),
		logger:  logging.Component("supabase"),
	}, nil
}

// request describes one HTTP call.
type request struct {
	method string
	path   string
	query  url.Values
	header http.Header
	body   any
	// idempotent requests are retried on network errors and temporary
	// statuses.
	idempotent bool
}

// do sends req and decodes a JSON response into out when out is non-nil.
func (c *Client) do(ctx context.Context, req request, out any) error {
	var payload []byte
	if req.body != nil {
		var err error
		payload, err = json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	attempts := 1
	if req.idempotent {
		attempts += c.retries
	}

	wait := c.backoff
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = c.once(ctx, req, payload, out)
		if lastErr == nil || !retryable(lastErr) || attempt == attempts {
			break
		}

		c.logger.Debug().
			Err(lastErr).
			Str("method", req.method).
			Str("path", req.path).
			Int("attempt", attempt).
			Msg("retrying request")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return lastErr
}

func (c *Client) once(ctx context.Context, req request, payload []byte, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.base.JoinPath(req.path)
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for k, vs := range req.header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("apikey", c.key)
	httpReq.Header.Set("Authorization", "Bearer "+c.key)
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.schema != "" {
		httpReq.Header.Set("Accept-Profile", c.schema)
		httpReq.Header.Set("Content-Profile", c.schema)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		serr := &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
		_ = json.Unmarshal(raw, serr)
		return serr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.path, err)
	}
	return nil
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var serr *StatusError
	if errors.As(err, &serr) {
		return serr.Temporary()
	}
	return true
}

// Invoke calls the Edge Function name with body and decodes its JSON reply
// into out. Functions are not assumed idempotent and are never retried.
func (c *Client) Invoke(ctx context.Context, name string, body any, out any) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "functions/v1/" + name,
		body:   body,
	}, out)
}
