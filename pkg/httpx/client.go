// Package httpx is the outbound HTTP client shared by the API wrappers.
// It adds per-service rate limiting, retries with exponential backoff on
// transient failures, JSON decoding and latency metrics.
package httpx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/metrics"
	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

// ErrNotFound is returned for 404 responses.
const ErrNotFound = errors.Sentinel("recurso no encontrado")

// DefaultUserAgent identifies the bot to third-party APIs.
const DefaultUserAgent = "CogsBotGo (+https://github.com/PancyStudios/CogsBotGo)"

// StatusError is returned for non-2xx responses that are not 404.
type StatusError struct {
	Service string
	Code    int
	Body    string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Service, e.Code, body)
}

// Temporary reports whether retrying may succeed.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Client talks to one third-party service.
type Client struct {
	service    string
	baseURL    string
	http       *http.Client
	limiter    *rate.Limiter
	userAgent  string
	maxRetries uint64
	headers    http.Header
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL prefixes relative paths.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient swaps the underlying client, mostly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithRateLimit caps requests per second with the given burst.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

// WithRetries sets how many times transient failures are retried.
func WithRetries(n uint64) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers.Set(key, value) }
}

// WithUserAgent overrides the default user agent.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a client for service. Defaults: 15s timeout, 5 req/s, 2 retries.
func New(service string, opts ...Option) *Client {
	c := &Client{
		service:    service,
		http:       &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(5, 5),
		userAgent:  DefaultUserAgent,
		maxRetries: 2,
		headers:    http.Header{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Service returns the name used in errors and metrics.
func (c *Client) Service() string { return c.service }

// HTTPClient exposes the underlying client.
func (c *Client) HTTPClient() *http.Client { return c.http }

// URL resolves path against the base URL and appends query.
func (c *Client) URL(path string, query url.Values) string {
	u := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		u = c.baseURL + "/" + strings.TrimLeft(path, "/")
	}
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(u, "?") {
			sep = "&"
		}
		u += sep + query.Encode()
	}
	return u
}

// Do sends a request built by build, retrying transient failures.
// build is called once per attempt so request bodies can be replayed.
func (c *Client) Do(ctx context.Context, build func() (*http.Request, error)) (*http.Response, error) {
	var resp *http.Response
	op := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		req, err := build()
		if err != nil {
			return backoff.Permanent(err)
		}
		req = req.WithContext(ctx)
		if req.Header.Get("User-Agent") == "" {
			req.Header.Set("User-Agent", c.userAgent)
		}
		for k, v := range c.headers {
			req.Header[k] = v
		}

		start := time.Now()
		r, err := c.http.Do(req)
		status := "error"
		if r != nil {
			status = strconv.Itoa(r.StatusCode)
		}
		metrics.Get().APILatency.WithLabelValues(c.service, status).Observe(time.Since(start).Seconds())
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		if r.StatusCode == http.StatusTooManyRequests || r.StatusCode >= 500 {
			body, _ := io.ReadAll(io.LimitReader(r.Body, 4096))
			r.Body.Close()
			return &StatusError{Service: c.service, Code: r.StatusCode, Body: string(body)}
		}
		resp = r
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 300 * time.Millisecond
	b.MaxElapsedTime = 20 * time.Second
	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx))
	if err != nil {
		return nil, errors.WrapIf(err, c.service)
	}
	return resp, nil
}

// checkStatus turns non-2xx responses into errors and closes their body.
func (c *Client) checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return errors.WithStack(ErrNotFound)
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &StatusError{Service: c.service, Code: resp.StatusCode, Body: string(body)}
}

// GetBytes fetches a URL and returns its body.
func (c *Client) GetBytes(ctx context.Context, path string, query url.Values) ([]byte, error) {
	resp, err := c.Do(ctx, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, c.URL(path, query), nil)
	})
	if err != nil {
		return nil, err
	}
	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// GetJSON fetches a URL and decodes its JSON body into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	data, err := c.GetBytes(ctx, path, query)
	if err != nil {
		return err
	}
	return c.decode(data, out)
}

// PostJSON sends body as JSON and decodes the response into out (when non-nil).
func (c *Client) PostJSON(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.WrapIf(err, "encode request")
	}
	return c.post(ctx, path, "application/json", payload, out)
}

// PostForm sends an urlencoded form and decodes the response into out (when non-nil).
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, out interface{}) error {
	return c.post(ctx, path, "application/x-www-form-urlencoded", []byte(form.Encode()), out)
}

func (c *Client) post(ctx context.Context, path, contentType string, payload []byte, out interface{}) error {
	resp, err := c.Do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodPost, c.URL(path, nil), bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)
		return req, nil
	})
	if err != nil {
		return err
	}
	if err := c.checkStatus(resp); err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapIf(err, c.service)
	}
	if out == nil {
		return nil
	}
	return c.decode(data, out)
}

func (c *Client) decode(data []byte, out interface{}) error {
	if err := json.Unmarshal(data, out); err != nil {
		return errors.WrapIf(err, c.service+": respuesta JSON inválida")
	}
	return nil
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StatusCode extracts the HTTP status from err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	if IsNotFound(err) {
		return http.StatusNotFound
	}
	return 0
}
