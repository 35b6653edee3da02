package fetcher

import (
	"compress/gzip"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/IshaanNene/BreedStalk/internal/config"
	"github.com/IshaanNene/BreedStalk/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const listingHTML = `<html><body>
<div class="callout-bd"><a class="link" href="/dogs/beagle">Beagle</a></div>
</body></html>`

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Fetcher.Type = "http"
	cfg.Engine.RequestTimeout = 5 * time.Second
	return cfg
}

func newHTTPFetcher(t *testing.T) *HTTPFetcher {
	t.Helper()
	f, err := NewHTTPFetcher(testConfig(), testLogger)
	if err != nil {
		t.Fatalf("new fetcher: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func assertListing(t *testing.T, page types.Page) {
	t.Helper()
	links, err := page.Find(".callout-bd .link")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(links))
	}
	href, ok, _ := links[0].Attr("href")
	if !ok || href != "/dogs/beagle" {
		t.Errorf("unexpected href %q", href)
	}
}

func TestHTTPFetcherOpen(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected a User-Agent header")
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(listingHTML))
	}))
	defer server.Close()

	page, err := newHTTPFetcher(t).Open(context.Background(), server.URL+"/dogs/dog-breeds")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer page.Close()

	if page.URL() != server.URL+"/dogs/dog-breeds" {
		t.Errorf("unexpected URL %q", page.URL())
	}
	assertListing(t, page)
}

func TestHTTPFetcherBrotli(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "br")
		bw := brotli.NewWriter(w)
		bw.Write([]byte(listingHTML))
		bw.Close()
	}))
	defer server.Close()

	page, err := newHTTPFetcher(t).Open(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	assertListing(t, page)
}

func TestHTTPFetcherGzip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gw := gzip.NewWriter(w)
		gw.Write([]byte(listingHTML))
		gw.Close()
	}))
	defer server.Close()

	page, err := newHTTPFetcher(t).Open(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	assertListing(t, page)
}

func TestHTTPFetcherStatusErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		retryAfter string
		retryable  bool
		wantAfter  time.Duration
	}{
		{"rate limited", http.StatusTooManyRequests, "3", true, 3 * time.Second},
		{"server error", http.StatusBadGateway, "", true, 0},
		{"not found", http.StatusNotFound, "", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.retryAfter != "" {
					w.Header().Set("Retry-After", tt.retryAfter)
				}
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			_, err := newHTTPFetcher(t).Open(context.Background(), server.URL)
			var fe *types.FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("expected FetchError, got %v", err)
			}
			if fe.StatusCode != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, fe.StatusCode)
			}
			if types.IsRetryable(err) != tt.retryable {
				t.Errorf("expected retryable=%v", tt.retryable)
			}
			if fe.RetryAfter != tt.wantAfter {
				t.Errorf("expected retry after %s, got %s", tt.wantAfter, fe.RetryAfter)
			}
		})
	}
}

func TestHTTPFetcherEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	_, err := newHTTPFetcher(t).Open(context.Background(), server.URL)
	if !errors.Is(err, types.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestHTTPFetcherCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listingHTML))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newHTTPFetcher(t).Open(ctx, server.URL)
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
	if types.IsRetryable(err) {
		t.Error("canceled fetch must not be retryable")
	}
}

func TestUserAgentRotation(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[string]bool)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen[r.Header.Get("User-Agent")] = true
		mu.Unlock()
		w.Write([]byte(listingHTML))
	}))
	defer server.Close()

	f := newHTTPFetcher(t)
	for i := 0; i < 4; i++ {
		if _, err := f.Open(context.Background(), server.URL); err != nil {
			t.Fatalf("open: %v", err)
		}
	}
	if len(seen) != len(testConfig().Engine.UserAgents) {
		t.Errorf("expected %d distinct agents, got %d", len(testConfig().Engine.UserAgents), len(seen))
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := map[string]time.Duration{
		"":        5 * time.Second,
		"10":      10 * time.Second,
		"600":     120 * time.Second,
		"garbage": 5 * time.Second,
	}
	for in, want := range tests {
		if got := parseRetryAfter(in); got != want {
			t.Errorf("parseRetryAfter(%q) = %s, want %s", in, got, want)
		}
	}
}

type countingFetcher struct {
	mu     sync.Mutex
	opens  []time.Time
	closed bool
}

func (f *countingFetcher) Open(_ context.Context, url string) (types.Page, error) {
	f.mu.Lock()
	f.opens = append(f.opens, time.Now())
	f.mu.Unlock()
	return nil, nil
}

func (f *countingFetcher) Close() error { f.closed = true; return nil }

func (f *countingFetcher) Type() string { return "counting" }

func TestThrottled(t *testing.T) {
	inner := &countingFetcher{}
	delay := 50 * time.Millisecond
	f := NewThrottled(inner, delay, testLogger)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := f.Open(context.Background(), "http://example.com"); err != nil {
			t.Fatalf("open: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 2*delay-10*time.Millisecond {
		t.Errorf("expected opens to be spaced by %s, total %s", delay, elapsed)
	}
	if f.Type() != "counting" {
		t.Errorf("expected wrapped type, got %q", f.Type())
	}
	f.Close()
	if !inner.closed {
		t.Error("expected inner fetcher closed")
	}
}

func TestThrottledCanceled(t *testing.T) {
	f := NewThrottled(&countingFetcher{}, time.Hour, testLogger)
	f.Open(context.Background(), "http://example.com") // consumes the burst

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := f.Open(ctx, "http://example.com"); err == nil {
		t.Fatal("expected limiter wait to fail")
	}
}

func TestNewUnknownType(t *testing.T) {
	cfg := testConfig()
	cfg.Fetcher.Type = "carrier-pigeon"
	if _, err := New(cfg, testLogger); err == nil {
		t.Fatal("expected error for unknown fetcher type")
	}
}

func TestNewWrapsThrottle(t *testing.T) {
	cfg := testConfig()
	cfg.Engine.PolitenessDelay = 10 * time.Millisecond
	f, err := New(cfg, testLogger)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer f.Close()
	if _, ok := f.(*Throttled); !ok {
		t.Errorf("expected throttled fetcher, got %T", f)
	}
	if f.Type() != "http" {
		t.Errorf("expected http type, got %q", f.Type())
	}
}

// TestBrowserFetcher drives a real Chromium; it runs only when
// BREEDSTALK_BROWSER_TEST is set.
func TestBrowserFetcher(t *testing.T) {
	if os.Getenv("BREEDSTALK_BROWSER_TEST") == "" {
		t.Skip("BREEDSTALK_BROWSER_TEST not set")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listingHTML))
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.Fetcher.Type = "browser"
	f, err := NewBrowserFetcher(cfg, testLogger)
	if err != nil {
		t.Fatalf("new browser fetcher: %v", err)
	}
	defer f.Close()

	page, err := f.Open(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer page.Close()

	assertListing(t, page)

	links, err := page.Find("xpath://a[@class='link']")
	if err != nil || len(links) != 1 {
		t.Fatalf("xpath find: %d links, %v", len(links), err)
	}
}

const styledHTML = `<html><body>
<span class="value" style="text-transform: uppercase">Medium</span>
<span class="note" style="display: none">Rarely seen</span>
</body></html>`

func assertTextContent(t *testing.T, page types.Page) {
	t.Helper()
	for sel, want := range map[string]string{".value": "Medium", ".note": "Rarely seen"} {
		nodes, err := page.Find(sel)
		if err != nil || len(nodes) != 1 {
			t.Fatalf("find %s: %d nodes, %v", sel, len(nodes), err)
		}
		got, err := nodes[0].Text()
		if err != nil {
			t.Fatalf("text %s: %v", sel, err)
		}
		if got != want {
			t.Errorf("%s text = %q, want %q", sel, got, want)
		}
	}
}

func TestElementTextIgnoresStyle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(styledHTML))
	}))
	defer server.Close()

	cfg := testConfig()
	httpFetcher, err := NewHTTPFetcher(cfg, testLogger)
	if err != nil {
		t.Fatalf("new http fetcher: %v", err)
	}
	defer httpFetcher.Close()

	page, err := httpFetcher.Open(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	assertTextContent(t, page)
	page.Close()

	if os.Getenv("BREEDSTALK_BROWSER_TEST") == "" {
		return
	}

	cfg.Fetcher.Type = "browser"
	browser, err := NewBrowserFetcher(cfg, testLogger)
	if err != nil {
		t.Fatalf("new browser fetcher: %v", err)
	}
	defer browser.Close()

	page, err = browser.Open(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("browser open: %v", err)
	}
	defer page.Close()
	assertTextContent(t, page)
}
