package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(t *testing.T, payload interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewReader(data)),
		Header:     make(http.Header),
	}
}

func newTestCoinGecko(transport roundTripFunc) *CoinGeckoProvider {
	p := NewCoinGeckoProvider(trace.NewNoopTracerProvider().Tracer("test"))
	p.baseURL = "http://example"
	p.client = &http.Client{Transport: transport}
	p.bucket = newTokenBucket(100, time.Millisecond)
	return p
}

func TestCoinGeckoFetchMarkets(t *testing.T) {
	t.Parallel()

	provider := newTestCoinGecko(func(req *http.Request) (*http.Response, error) {
		if !strings.Contains(req.URL.Path, "/coins/markets") {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		q := req.URL.Query()
		if q.Get("vs_currency") != "usd" || q.Get("order") != "market_cap_desc" ||
			q.Get("per_page") != "10" || q.Get("page") != "1" {
			t.Fatalf("unexpected query: %s", req.URL.RawQuery)
		}
		return jsonResponse(t, []map[string]interface{}{
			{
				"id": "bitcoin", "name": "Bitcoin", "symbol": "btc",
				"current_price": 50000.0, "market_cap": 1000000000.0,
				"price_change_percentage_24h": 5.0, "total_volume": 9e9,
			},
			{
				"id": "ethereum", "name": "Ethereum", "symbol": "eth",
				"current_price": 4000.0, "market_cap": 500000000.0,
				"price_change_percentage_24h": -3.0, "total_volume": 4e9,
			},
		}), nil
	})

	rows, err := provider.FetchMarkets(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	first := rows[0]
	if first.AssetID != "bitcoin" || first.Name != "Bitcoin" || first.Price != 50000 ||
		first.MarketCap != 1000000000 || first.Change24hPct != 5 {
		t.Fatalf("unexpected first row: %+v", first)
	}
	if rows[1].AssetID != "ethereum" || rows[1].Price != 4000 {
		t.Fatalf("unexpected second row: %+v", rows[1])
	}
}

func TestCoinGeckoFetchMarketsProviderError(t *testing.T) {
	t.Parallel()

	provider := newTestCoinGecko(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusTooManyRequests,
			Body:       io.NopCloser(strings.NewReader("rate limited")),
			Header:     make(http.Header),
		}, nil
	})

	if _, err := provider.FetchMarkets(context.Background()); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestCoinGeckoFetchMarketsBadPayload(t *testing.T) {
	t.Parallel()

	provider := newTestCoinGecko(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"not":"an array"}`)),
			Header:     make(http.Header),
		}, nil
	})

	if _, err := provider.FetchMarkets(context.Background()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestCoinGeckoFetchHistory(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	provider := newTestCoinGecko(func(req *http.Request) (*http.Response, error) {
		if !strings.Contains(req.URL.Path, "/coins/bitcoin/market_chart") {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		if req.URL.Query().Get("days") != "30" {
			t.Fatalf("unexpected days: %s", req.URL.RawQuery)
		}
		// Out of order on purpose: FetchHistory must sort ascending.
		return jsonResponse(t, map[string]interface{}{
			"prices": [][]float64{
				{float64(base.Add(24 * time.Hour).UnixMilli()), 101},
				{float64(base.UnixMilli()), 100},
			},
		}), nil
	})

	points, err := provider.FetchHistory(context.Background(), "bitcoin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if !points[0].Timestamp.Equal(base) || points[0].Price != 100 {
		t.Fatalf("unexpected first point: %+v", points[0])
	}
	if !points[1].Timestamp.After(points[0].Timestamp) {
		t.Fatalf("points not ascending: %+v", points)
	}
}

func TestCoinGeckoFetchHistoryEmptyAsset(t *testing.T) {
	t.Parallel()

	provider := newTestCoinGecko(func(req *http.Request) (*http.Response, error) {
		t.Fatal("no request expected for empty asset id")
		return nil, nil
	})

	points, err := provider.FetchHistory(context.Background(), "  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 0 {
		t.Fatalf("expected empty series, got %d points", len(points))
	}
}
