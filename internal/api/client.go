// Package api is the REST adapter for the task manager backend. It owns
// request construction, bearer authentication, error normalization and the
// decoding of the several response envelopes the backend produces.
package api

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
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/taskdeck/internal/core/logging"
)

// DefaultTimeout bounds every request when Config.Timeout is zero.
const DefaultTimeout = 15 * time.Second

// Config configures a Client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Client talks to the backend. It is safe for concurrent use.
type Client struct {
	base      *url.URL
	http      *http.Client
	userAgent string
	log       zerolog.Logger

	mu             sync.RWMutex
	token          func() string
	onUnauthorized func(error)
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its timeout is kept.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New builds a client for cfg.BaseURL, e.g. "http://localhost:8080/api".
func New(cfg Config, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("parse base url: unsupported scheme %q", base.Scheme)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "taskdeck"
	}

	c := &Client{
		base:      base,
		http:      &http.Client{Timeout: timeout},
		userAgent: userAgent,
		log:       zerolog.Nop(),
		token:     func() string { return "" },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string { return c.base.String() }

// SetTokenSource installs the function that supplies the bearer token for
// authenticated requests.
func (c *Client) SetTokenSource(fn func() string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fn == nil {
		fn = func() string { return "" }
	}
	c.token = fn
}

// OnUnauthorized installs the hook invoked when the backend answers 401 to a
// request that carried a bearer token.
func (c *Client) OnUnauthorized(fn func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	// public requests never carry the session token and never trigger the
	// 401 hook.
	public bool
	// bearer, when set, is sent instead of the session token.
	bearer string
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// send performs r and returns the successful response. The caller closes
// the body.
func (c *Client) send(ctx context.Context, r request) (*http.Response, error) {
	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.endpoint(r.path, r.query), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := logging.GetRequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	authenticated := false
	switch {
	case r.bearer != "":
		req.Header.Set("Authorization", "Bearer "+r.bearer)
	case !r.public:
		c.mu.RLock()
		source := c.token
		c.mu.RUnlock()
		if token := source(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
			authenticated = true
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s %s: %w", r.method, r.path, ctxErr)
		}
		c.log.Debug().Err(err).Str("method", r.method).Str("path", r.path).Msg("request failed")
		return nil, fmt.Errorf("%s %s: %w: %w", r.method, r.path, ErrNetwork, err)
	}

	c.log.Debug().
		Str("method", r.method).
		Str("path", r.path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request")

	if resp.StatusCode < 400 {
		return resp, nil
	}

	defer c.closeBody(resp)
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	apiErr := parseError(resp.StatusCode, raw)

	if resp.StatusCode == http.StatusUnauthorized && authenticated {
		c.mu.RLock()
		hook := c.onUnauthorized
		c.mu.RUnlock()
		if hook != nil {
			hook(apiErr)
		}
	}

	return nil, apiErr
}

// do performs r and decodes the body with decode when it is non-nil.
func (c *Client) do(ctx context.Context, r request, decode func([]byte) error) error {
	resp, err := c.send(ctx, r)
	if err != nil {
		return err
	}
	defer c.closeBody(resp)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w: %w", r.method, r.path, ErrNetwork, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if rejected(raw) {
		return parseError(rejectedStatus(resp.StatusCode), raw)
	}
	if decode == nil {
		return nil
	}
	if err := decode(raw); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", r.method, r.path, err)
	}
	return nil
}

func (c *Client) closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		c.log.Debug().Err(err).Msg("close response body")
	}
}

// IsTransient reports whether err is a failure to reach the backend or a
// server side error, as opposed to a definitive rejection.
func IsTransient(err error) bool {
	if errors.Is(err, ErrNetwork) {
		return true
	}
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status >= 500
}
