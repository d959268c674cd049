// Package nasdaq downloads the daily short sale restriction list published by
// NASDAQ Trader.
package nasdaq

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/etnz/ssrwatch"
	"github.com/etnz/ssrwatch/date"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

const (
	// PrimeURL is the page describing the list. NASDAQ refuses direct
	// downloads that did not visit it first.
	PrimeURL = "https://www.nasdaqtrader.com/trader.aspx?id=ShortSaleCircuitBreaker"
	// BaseURL is the directory holding one list per day.
	BaseURL = "https://www.nasdaqtrader.com/dynamic/symdir/shorthalts/"

	userAgent = "ssrwatch/1.0 (+https://github.com/etnz/ssrwatch)"
)

// Client downloads lists. The zero value is not usable, use New.
type Client struct {
	primeURL string
	baseURL  string
	http     *retryablehttp.Client
}

// Option configures a Client.
type Option func(*Client)

// WithURLs overrides the prime page and the list directory.
func WithURLs(prime, base string) Option {
	return func(c *Client) {
		if prime != "" {
			c.primeURL = prime
		}
		if base != "" {
			c.baseURL = base
		}
	}
}

// WithRetry sets the number of retries after the first attempt and the wait
// bounds between attempts.
func WithRetry(max int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.http.RetryMax = max
		c.http.RetryWaitMin = waitMin
		c.http.RetryWaitMax = waitMax
	}
}

// WithTimeout bounds each attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.HTTPClient.Timeout = d }
}

// New returns a Client making 3 attempts of at most 30s each.
func New(logger zerolog.Logger, opts ...Option) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 1 * time.Second
	rc.RetryWaitMax = 5 * time.Second
	rc.HTTPClient.Timeout = 30 * time.Second
	// cookies set by the prime page are sent with the download.
	jar, _ := cookiejar.New(nil)
	rc.HTTPClient.Jar = jar
	rc.Logger = leveledLogger{logger.With().Str("component", "nasdaq").Logger()}

	c := &Client{primeURL: PrimeURL, baseURL: BaseURL, http: rc}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListURL returns the address of the list published for day.
func (c *Client) ListURL(day date.Date) string {
	return strings.TrimSuffix(c.baseURL, "/") + "/" + ssrwatch.ListFileName(day)
}

// Prime visits the prime page once, without retries.
func (c *Client) Prime(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.primeURL, nil)
	if err != nil {
		return fmt.Errorf("cannot create http request %q: %w", c.primeURL, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("cannot http GET %s: %w", c.primeURL, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("cannot http GET %s: %s", c.primeURL, resp.Status)
	}
	return nil
}

// Download returns the list published for day.
//
// Transport failures and 5xx answers are retried. When attempts are exhausted
// or the final answer is not a success, the error wraps ssrwatch.ErrTransport.
// A successful but blank answer wraps ssrwatch.ErrEmptyList.
func (c *Client) Download(ctx context.Context, day date.Date) ([]byte, error) {
	addr := c.ListURL(day)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot create http request %q: %w", ssrwatch.ErrTransport, addr, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", c.primeURL)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ssrwatch.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: GET %s: %s", ssrwatch.ErrTransport, addr, resp.Status)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return nil, fmt.Errorf("%w: cannot read http body: %w", ssrwatch.ErrTransport, err)
	}
	if len(bytes.TrimSpace(buf.Bytes())) == 0 {
		return nil, fmt.Errorf("%w: GET %s returned %d bytes", ssrwatch.ErrEmptyList, addr, buf.Len())
	}
	return buf.Bytes(), nil
}
