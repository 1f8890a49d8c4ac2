package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gocolly/colly/v2"
)

func newTestSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: *\nDisallow: /private\n"))
	})
	mux.HandleFunc("/menu", func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != DefaultUserAgent {
			http.Error(w, "bad agent "+ua, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><body><div id="post-22"><p>POLÉVKY</p></div></body></html>`))
	})
	mux.HandleFunc("/private/menu", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("secret"))
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCollyFetcher_Fetch(t *testing.T) {
	srv := newTestSite(t)
	f := NewCollyFetcher("")

	var text string
	err := f.Fetch(context.Background(), srv.URL+"/menu", func(c *colly.Collector) {
		c.OnHTML("div#post-22", func(e *colly.HTMLElement) {
			text = strings.TrimSpace(e.Text)
		})
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if text != "POLÉVKY" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestCollyFetcher_RetriesServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body><p>ok</p></body></html>"))
	}))
	defer srv.Close()

	f := NewCollyFetcher("")
	f.SetAttempts(2)
	var text string
	err := f.Fetch(context.Background(), srv.URL+"/menu", func(c *colly.Collector) {
		c.OnHTML("p", func(e *colly.HTMLElement) { text = e.Text })
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if text != "ok" || calls.Load() != 2 {
		t.Fatalf("got %q after %d calls", text, calls.Load())
	}
}

func TestCollyFetcher_CancelledContext(t *testing.T) {
	srv := newTestSite(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewCollyFetcher("").Fetch(ctx, srv.URL+"/menu", nil)
	var fe *FetchError
	if !errors.As(err, &fe) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled FetchError, got %v", err)
	}
}

func TestCollyFetcher_NotFound(t *testing.T) {
	srv := newTestSite(t)
	err := NewCollyFetcher("").Fetch(context.Background(), srv.URL+"/gone", nil)

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.Status != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", fe.Status)
	}
}

func TestCollyFetcher_RobotsDisallow(t *testing.T) {
	srv := newTestSite(t)
	err := NewCollyFetcher("").Fetch(context.Background(), srv.URL+"/private/menu", nil)
	if err == nil {
		t.Fatalf("expected robots.txt to block the request")
	}
}

func TestPoliteClient_Get(t *testing.T) {
	srv := newTestSite(t)
	body, err := NewPoliteClient("").Get(context.Background(), srv.URL+"/menu")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !strings.Contains(string(body), "POLÉVKY") {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestPoliteClient_NotFound(t *testing.T) {
	srv := newTestSite(t)
	_, err := NewPoliteClient("").Get(context.Background(), srv.URL+"/gone")

	var fe *FetchError
	if !errors.As(err, &fe) || fe.Status != http.StatusNotFound {
		t.Fatalf("expected 404 FetchError, got %v", err)
	}
}

func TestPoliteClient_RobotsDisallow(t *testing.T) {
	srv := newTestSite(t)
	_, err := NewPoliteClient("").Get(context.Background(), srv.URL+"/private/menu")
	if !errors.Is(err, ErrDisallowed) {
		t.Fatalf("expected robots.txt block, got %v", err)
	}
}

func TestPoliteClient_RetriesUnavailable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	p := NewPoliteClient("")
	p.SetAttempts(2)
	body, err := p.Get(context.Background(), srv.URL+"/script.js")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != "ok" || calls.Load() != 2 {
		t.Fatalf("got %q after %d calls", body, calls.Load())
	}
}

func TestPoliteClient_SingleAttemptByDefault(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewPoliteClient("").Get(context.Background(), srv.URL+"/script.js")
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Status != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 FetchError, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single request, got %d", calls.Load())
	}
}

func TestRetryable(t *testing.T) {
	for status, want := range map[int]bool{0: false, 200: false, 404: false, 429: true, 500: true, 503: true} {
		if got := retryable(status); got != want {
			t.Fatalf("retryable(%d) = %v", status, got)
		}
	}
}

func TestBackoffDelay(t *testing.T) {
	if backoffDelay(0) != 500*time.Millisecond || backoffDelay(2) != 2*time.Second {
		t.Fatalf("unexpected delays %v %v", backoffDelay(0), backoffDelay(2))
	}
	if backoffDelay(-1) != backoffDelay(0) {
		t.Fatalf("negative attempt should clamp")
	}
}
