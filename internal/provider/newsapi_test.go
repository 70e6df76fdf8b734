package provider

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
)

func newTestNewsAPI(apiKey string, transport roundTripFunc) *NewsAPIProvider {
	p := NewNewsAPIProvider(trace.NewNoopTracerProvider().Tracer("test"), apiKey)
	p.baseURL = "http://example"
	p.client = &http.Client{Transport: transport}
	return p
}

func TestNewsAPIFetchEverything(t *testing.T) {
	t.Parallel()

	provider := newTestNewsAPI("secret", func(req *http.Request) (*http.Response, error) {
		if !strings.Contains(req.URL.Path, "/everything") {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		q := req.URL.Query()
		if q.Get("q") != "cryptocurrency" || q.Get("sortBy") != "publishedAt" || q.Get("apiKey") != "secret" {
			t.Fatalf("unexpected query: %s", req.URL.RawQuery)
		}
		payload := `{
			"status": "ok",
			"articles": [
				{"title": "Bitcoin hits a new all-time high!", "source": {"name": "Crypto News"}, "publishedAt": "2025-08-30T12:00:00Z", "url": "https://example.com/a"},
				{"title": "Ethereum struggles as prices drop", "source": {"name": "Blockchain Today"}, "publishedAt": "2025-08-30T11:00:00Z", "url": "https://example.com/b"}
			]
		}`
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(payload)),
			Header:     make(http.Header),
		}, nil
	})

	items, err := provider.FetchEverything(context.Background(), "cryptocurrency")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	first := items[0]
	if first.Title != "Bitcoin hits a new all-time high!" || first.Source != "Crypto News" {
		t.Fatalf("unexpected first item: %+v", first)
	}
	if !first.PublishedAt.Equal(time.Date(2025, 8, 30, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected published time: %v", first.PublishedAt)
	}
	if first.Sentiment != "" {
		t.Fatalf("provider must not attach sentiment, got %q", first.Sentiment)
	}
	// Provider ordering preserved: most recent first, not re-sorted.
	if !items[0].PublishedAt.After(items[1].PublishedAt) {
		t.Fatalf("provider order not preserved: %+v", items)
	}
}

func TestNewsAPIFetchEverythingMissingKey(t *testing.T) {
	t.Parallel()

	provider := newTestNewsAPI("", func(req *http.Request) (*http.Response, error) {
		t.Fatal("no request expected without an api key")
		return nil, nil
	})

	_, err := provider.FetchEverything(context.Background(), "cryptocurrency")
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestNewsAPIFetchEverythingProviderError(t *testing.T) {
	t.Parallel()

	provider := newTestNewsAPI("secret", func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusUnauthorized,
			Body:       io.NopCloser(strings.NewReader(`{"status":"error"}`)),
			Header:     make(http.Header),
		}, nil
	})

	if _, err := provider.FetchEverything(context.Background(), "cryptocurrency"); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestParseNewsDate(t *testing.T) {
	t.Parallel()

	got := parseNewsDate("2025-08-30T12:00:00Z")
	if got.IsZero() {
		t.Fatal("expected parsed time")
	}
	if !parseNewsDate("not a date").IsZero() {
		t.Fatal("expected zero time for garbage input")
	}
	if !parseNewsDate("").IsZero() {
		t.Fatal("expected zero time for empty input")
	}
}
