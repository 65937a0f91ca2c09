package wikiapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/valyala/fasthttp"

	"github.com/mwnav/mediawikinav/internal/adapters/logger"
	"github.com/mwnav/mediawikinav/internal/ports"
)

// Relative endpoints under the wiki base URL.
const (
	APIPath   = "/api.php"
	IndexPath = "/index.php"
)

// Default client settings.
const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryBase  = 200 * time.Millisecond
	DefaultUserAgent  = "mediawikinav/1.0"
	DefaultSummary    = "#mn-edit"
)

// Doer is the part of *fasthttp.Client used by the wiki client.
type Doer interface {
	DoDeadline(req *fasthttp.Request, resp *fasthttp.Response, deadline time.Time) error
}

// Config holds the client settings.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries uint64
	RetryBase  time.Duration
	UserAgent  string
}

// Option defines a functional option for configuring the client.
type Option func(*Client)

// WithTimeout sets the per-request timeout. Zero or less keeps DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.cfg.Timeout = d
	}
}

// WithRetries sets how many times a failed request is retried and the
// initial backoff. A zero or negative base keeps DefaultRetryBase.
func WithRetries(max uint64, base time.Duration) Option {
	return func(c *Client) {
		c.cfg.MaxRetries = max
		c.cfg.RetryBase = base
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.cfg.UserAgent = ua
	}
}

// WithDoer replaces the underlying fasthttp client.
func WithDoer(d Doer) Option {
	return func(c *Client) {
		c.http = d
	}
}

// WithLogger sets the logger.
func WithLogger(l ports.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

var _ ports.Wiki = (*Client)(nil)

// Client talks to the api.php and index.php endpoints of one wiki. It keeps
// the session cookies and the page in use; it is safe for concurrent use.
type Client struct {
	cfg    Config
	http   Doer
	logger ports.Logger

	mu        sync.Mutex
	cookies   map[string]string
	cookieKey []string
	pageInUse string
}

// New creates a client for the wiki at baseURL, e.g. "https://wiki.example.org/w".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		cfg: Config{
			BaseURL:    strings.TrimRight(baseURL, "/"),
			Timeout:    DefaultTimeout,
			MaxRetries: DefaultMaxRetries,
			RetryBase:  DefaultRetryBase,
			UserAgent:  DefaultUserAgent,
		},
		cookies: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cfg.Timeout <= 0 {
		c.cfg.Timeout = DefaultTimeout
	}
	if c.cfg.RetryBase <= 0 {
		c.cfg.RetryBase = DefaultRetryBase
	}
	if c.cfg.UserAgent == "" {
		c.cfg.UserAgent = DefaultUserAgent
	}
	if c.http == nil {
		c.http = &fasthttp.Client{
			Name:                c.cfg.UserAgent,
			ReadTimeout:         c.cfg.Timeout,
			WriteTimeout:        c.cfg.Timeout,
			MaxIdleConnDuration: time.Minute,
		}
	}
	if c.logger == nil {
		c.logger = logger.Nop()
	}
	return c
}

// NewWithLogin creates a client and logs in. A login failure is returned to
// the caller together with the unauthenticated client.
func NewWithLogin(ctx context.Context, baseURL, user, password string, opts ...Option) (*Client, error) {
	c := New(baseURL, opts...)
	if user == "" {
		return c, nil
	}
	if err := c.Login(ctx, user, password); err != nil {
		return c, err
	}
	return c, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

// Cookies returns a copy of the session cookies.
func (c *Client) Cookies() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.cookies))
	for k, v := range c.cookies {
		out[k] = v
	}
	return out
}

func (c *Client) resetCookies() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cookies = make(map[string]string)
	c.cookieKey = nil
}

func (c *Client) setCookie(key, value string) {
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.cookies[key]; !ok {
		c.cookieKey = append(c.cookieKey, key)
	}
	c.cookies[key] = value
}

func (c *Client) applyCookies(req *fasthttp.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range c.cookieKey {
		req.Header.SetCookie(k, c.cookies[k])
	}
}

func (c *Client) absorbCookies(resp *fasthttp.Response) {
	resp.Header.VisitAllCookie(func(_, value []byte) {
		ck := fasthttp.AcquireCookie()
		defer fasthttp.ReleaseCookie(ck)
		if err := ck.ParseBytes(value); err != nil {
			return
		}
		c.setCookie(string(ck.Key()), string(ck.Value()))
	})
}

// Get performs a GET on a URL relative to the base URL and returns the body.
func (c *Client) Get(ctx context.Context, relURL string) ([]byte, error) {
	return c.do(ctx, relURL, nil)
}

// Post performs a form-encoded POST on a URL relative to the base URL.
func (c *Client) Post(ctx context.Context, relURL string, form *fasthttp.Args) ([]byte, error) {
	if form == nil {
		form = &fasthttp.Args{}
	}
	return c.do(ctx, relURL, form)
}

// do sends one request with retries. A nil form means GET.
func (c *Client) do(ctx context.Context, relURL string, form *fasthttp.Args) ([]byte, error) {
	url := c.cfg.BaseURL + relURL
	method := fasthttp.MethodGet
	if form != nil {
		method = fasthttp.MethodPost
	}

	var body []byte
	backoff := retry.WithMaxRetries(c.cfg.MaxRetries, retry.NewExponential(c.cfg.RetryBase))
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		b, status, err := c.once(ctx, method, url, form)
		if err != nil {
			c.logger.Warn("Request failed", "method", method, "url", url, "attempt", attempt, "error", err)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return retry.RetryableError(err)
		}
		if status >= 500 {
			c.logger.Warn("Server error", "method", method, "url", url, "attempt", attempt, "status", status)
			return retry.RetryableError(fmt.Errorf("%w: %d from %s", ErrHTTPStatus, status, url))
		}
		if status < 200 || status > 299 {
			return fmt.Errorf("%w: %d from %s", ErrHTTPStatus, status, url)
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.logger.Debug("Request processed", "method", method, "url", url, "bytes", len(body), "attempts", attempt)
	return body, nil
}

func (c *Client) once(ctx context.Context, method, url string, form *fasthttp.Args) ([]byte, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(method)
	req.Header.SetUserAgent(c.cfg.UserAgent)
	if form != nil {
		req.Header.SetContentType("application/x-www-form-urlencoded")
		req.SetBody(form.QueryString())
	}
	c.applyCookies(req)

	deadline := time.Now().Add(c.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return nil, 0, err
	}
	c.absorbCookies(resp)

	body := append([]byte(nil), resp.Body()...)
	return body, resp.StatusCode(), nil
}
