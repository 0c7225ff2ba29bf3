// Package fetch downloads web resources for wget and the text browser.
package fetch

import (
	"context"
	"net/http"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	errs "github.com/jmgilman/go/errors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Defaults for a Client
const (
	DefaultTimeout   = 15 * time.Second
	DefaultUserAgent = "Noodlix/1.0 (Bashimi Shell)"
	DefaultRetries   = 2
)

// Fetcher retrieves a URL. Non-2xx responses are returned as pages, not
// errors; an error means nothing usable came back.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// Page is a fetched response
type Page struct {
	URL         string
	Status      int
	StatusText  string
	ContentType string // as sent by the server
	MIME        string // sniffed from the body
	Body        []byte
}

// OK reports a 2xx status
func (p *Page) OK() bool {
	return p.Status >= 200 && p.Status < 300
}

// IsText reports whether the body sniffs as some kind of text
func (p *Page) IsText() bool {
	return IsText(p.Body)
}

// IsText reports whether data sniffs as text. Empty data counts as text.
func IsText(data []byte) bool {
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

// Client is a rate limited HTTP client with retries
type Client struct {
	resty   *resty.Client
	limiter *rate.Limiter
	retries int
	logger  zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithTimeout bounds every request
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.resty.SetTimeout(d) }
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.resty.SetHeader("User-Agent", ua) }
}

// WithRateLimit allows rps requests per second; zero or less is unlimited
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRetries sets how often failed and 5xx requests are retried
func WithRetries(n int) Option {
	return func(c *Client) { c.retries = n }
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a client
func New(opts ...Option) *Client {
	c := &Client{
		resty:   resty.New(),
		limiter: rate.NewLimiter(rate.Inf, 0),
		retries: DefaultRetries,
		logger:  zerolog.Nop(),
	}
	c.resty.SetTimeout(DefaultTimeout).SetHeader("User-Agent", DefaultUserAgent)
	for _, opt := range opts {
		opt(c)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = c.retries
	retryClient.RetryWaitMin = 200 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.Logger = nil
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	c.resty.SetTransport(&retryablehttp.RoundTripper{Client: retryClient})
	return c
}

// Fetch downloads url
func (c *Client) Fetch(ctx context.Context, url string) (*Page, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errs.Wrap(err, errs.CodeRateLimit, "rate limit exceeded")
	}

	start := time.Now()
	resp, err := c.resty.R().SetContext(ctx).Get(url)
	if err != nil {
		c.logger.Debug().Str("url", url).Err(err).Msg("fetch failed")
		return nil, errs.Wrap(err, errs.CodeNetwork, err.Error())
	}

	page := &Page{
		URL:         url,
		Status:      resp.StatusCode(),
		StatusText:  http.StatusText(resp.StatusCode()),
		ContentType: resp.Header().Get("Content-Type"),
		Body:        resp.Body(),
	}
	page.MIME = mimetype.Detect(page.Body).String()

	c.logger.Debug().
		Str("url", url).
		Int("status", page.Status).
		Int("bytes", len(page.Body)).
		Dur("duration", time.Since(start)).
		Msg("fetched")
	return page, nil
}
