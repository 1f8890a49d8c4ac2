package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// one request per second, burst of two
func newLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(time.Second), 2)
}

func clampAttempts(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || (status >= 500 && status <= 599)
}

// backoffDelay doubles from 500ms: 0.5s, 1s, 2s, ...
func backoffDelay(retry int) time.Duration {
	if retry < 0 {
		retry = 0
	}
	return time.Duration(500*(1<<retry)) * time.Millisecond
}

func normalizeURL(rawURL string) (string, error) {
	if rawURL == "" {
		return "", errors.New("empty url")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	return u.String(), nil
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
