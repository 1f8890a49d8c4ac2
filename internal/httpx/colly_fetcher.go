package httpx

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"golang.org/x/time/rate"
)

const DefaultUserAgent = "lunch-menu-bot/1.0"

// FetchError reports a request that did not produce a usable page. Status is
// zero when no response arrived.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch %s failed (status %d)", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s failed (status %d): %v", e.URL, e.Status, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// CollyFetcher loads HTML pages through a fresh Colly collector per request
// and lets the caller parse them with OnHTML callbacks. robots.txt is
// honoured and requests are paced at one per second.
type CollyFetcher struct {
	userAgent string
	timeout   time.Duration
	attempts  int
	limiter   *rate.Limiter
}

func NewCollyFetcher(userAgent string) *CollyFetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &CollyFetcher{
		userAgent: userAgent,
		timeout:   15 * time.Second,
		attempts:  1,
		limiter:   newLimiter(),
	}
}

// SetTimeout sets the per-request timeout. Non-positive values are ignored.
func (f *CollyFetcher) SetTimeout(d time.Duration) {
	if d > 0 {
		f.timeout = d
	}
}

// SetAttempts sets how many times a request is tried when the server answers
// 429 or 5xx. Values below 1 are clamped to 1.
func (f *CollyFetcher) SetAttempts(n int) {
	f.attempts = clampAttempts(n)
}

// Fetch requests rawURL and lets register attach OnHTML or OnResponse
// callbacks before the request is sent. Any failure is a *FetchError.
func (f *CollyFetcher) Fetch(ctx context.Context, rawURL string, register func(*colly.Collector)) error {
	target, err := normalizeURL(rawURL)
	if err != nil {
		return &FetchError{URL: rawURL, Err: err}
	}

	for attempt := 1; ; attempt++ {
		if err := f.limiter.Wait(ctx); err != nil {
			return &FetchError{URL: target, Err: err}
		}
		status, err := f.visit(ctx, target, register)
		if err == nil {
			return nil
		}
		if attempt >= f.attempts || !retryable(status) {
			return &FetchError{URL: target, Status: status, Err: err}
		}
		if err := sleepWithContext(ctx, backoffDelay(attempt-1)); err != nil {
			return &FetchError{URL: target, Status: status, Err: err}
		}
	}
}

func (f *CollyFetcher) visit(ctx context.Context, target string, register func(*colly.Collector)) (int, error) {
	c := colly.NewCollector(colly.UserAgent(f.userAgent), colly.AllowURLRevisit())
	c.IgnoreRobotsTxt = false
	c.SetRequestTimeout(f.timeout)
	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	var (
		status int
		cbErr  error
	)
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		cbErr = err
	})
	if register != nil {
		register(c)
	}

	if err := c.Request(http.MethodGet, target, nil, colly.NewContext(), nil); err != nil {
		return status, err
	}
	if cbErr != nil {
		return status, cbErr
	}
	if err := ctx.Err(); err != nil {
		return status, err
	}
	if status >= 300 {
		return status, fmt.Errorf("unexpected status %d", status)
	}
	return status, nil
}
