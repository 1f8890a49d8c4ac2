package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"golang.org/x/time/rate"
)

var ErrDisallowed = errors.New("blocked by robots.txt")

// PoliteClient downloads raw resources such as script payloads while
// honouring robots.txt and the same one-request-per-second pace as
// CollyFetcher.
type PoliteClient struct {
	client   *http.Client
	ua       string
	attempts int
	limiter  *rate.Limiter

	mu     sync.Mutex
	robots map[string]*robotstxt.RobotsData
}

func NewPoliteClient(userAgent string) *PoliteClient {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &PoliteClient{
		client:   &http.Client{Timeout: 15 * time.Second},
		ua:       userAgent,
		attempts: 1,
		limiter:  newLimiter(),
		robots:   map[string]*robotstxt.RobotsData{},
	}
}

func (p *PoliteClient) SetTimeout(d time.Duration) {
	if d > 0 {
		p.client.Timeout = d
	}
}

// SetAttempts sets how many times a request is tried when the server answers
// 429 or 5xx. Values below 1 are clamped to 1.
func (p *PoliteClient) SetAttempts(n int) {
	p.attempts = clampAttempts(n)
}

// Get downloads rawURL and returns the body. Any failure, including a
// non-2xx answer or a robots.txt block, is a *FetchError.
func (p *PoliteClient) Get(ctx context.Context, rawURL string) ([]byte, error) {
	target, err := normalizeURL(rawURL)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	u, err := url.Parse(target)
	if err != nil {
		return nil, &FetchError{URL: target, Err: err}
	}
	if !p.allowed(ctx, u) {
		return nil, &FetchError{URL: target, Err: ErrDisallowed}
	}

	for attempt := 1; ; attempt++ {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, &FetchError{URL: target, Err: err}
		}
		body, status, err := p.get(ctx, target)
		if err == nil {
			return body, nil
		}
		if attempt >= p.attempts || !retryable(status) {
			return nil, &FetchError{URL: target, Status: status, Err: err}
		}
		if err := sleepWithContext(ctx, backoffDelay(attempt-1)); err != nil {
			return nil, &FetchError{URL: target, Status: status, Err: err}
		}
	}
}

func (p *PoliteClient) get(ctx context.Context, target string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", p.ua)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

// allowed fails open: an unreachable or broken robots.txt permits the fetch.
func (p *PoliteClient) allowed(ctx context.Context, u *url.URL) bool {
	data, err := p.robotsFor(ctx, u)
	if err != nil {
		return true
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return data.TestAgent(path, p.ua)
}

func (p *PoliteClient) robotsFor(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	key := strings.ToLower(u.Host)
	p.mu.Lock()
	data, ok := p.robots[key]
	p.mu.Unlock()
	if ok {
		return data, nil
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.Scheme+"://"+u.Host+"/robots.txt", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", p.ua)
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err = robotstxt.FromResponse(resp)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.robots[key] = data
	p.mu.Unlock()
	return data, nil
}
