package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"coindeck/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const (
	coingeckoBaseURL = "https://api.coingecko.com/api/v3"
	marketPageSize   = 10
	historyDays      = 30
)

// CoinGeckoProvider fetches market and historical price data from the
// CoinGecko free API.
type CoinGeckoProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	bucket  *tokenBucket
}

// NewCoinGeckoProvider creates a provider with built-in rate limiting.
// The free tier allows roughly 8 requests per minute.
func NewCoinGeckoProvider(tracer trace.Tracer) *CoinGeckoProvider {
	return &CoinGeckoProvider{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: coingeckoBaseURL,
		tracer:  tracer,
		bucket:  newTokenBucket(8, 7500*time.Millisecond),
	}
}

// FetchMarkets returns the top page of assets by market capitalization,
// projected down to the five dashboard columns in provider order.
func (p *CoinGeckoProvider) FetchMarkets(ctx context.Context) ([]domain.MarketRow, error) {
	_, span := p.tracer.Start(ctx, "coingecko.fetch-markets")
	defer span.End()

	url := fmt.Sprintf("%s/coins/markets?vs_currency=usd&order=market_cap_desc&per_page=%d&page=1",
		p.baseURL, marketPageSize)

	body, err := p.doRequest(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch markets: %w", err)
	}

	var raw []struct {
		ID           string  `json:"id"`
		Name         string  `json:"name"`
		CurrentPrice float64 `json:"current_price"`
		MarketCap    float64 `json:"market_cap"`
		Change24h    float64 `json:"price_change_percentage_24h"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse markets: %w", err)
	}

	rows := make([]domain.MarketRow, 0, len(raw))
	for _, entry := range raw {
		rows = append(rows, domain.MarketRow{
			AssetID:      entry.ID,
			Name:         entry.Name,
			Price:        entry.CurrentPrice,
			MarketCap:    entry.MarketCap,
			Change24hPct: entry.Change24h,
		})
	}
	return rows, nil
}

// FetchHistory returns the trailing 30-day price series for one asset,
// ordered ascending by timestamp. An empty asset id yields an empty
// series without touching the API.
func (p *CoinGeckoProvider) FetchHistory(ctx context.Context, assetID string) ([]domain.PricePoint, error) {
	assetID = strings.TrimSpace(assetID)
	if assetID == "" {
		return nil, nil
	}

	_, span := p.tracer.Start(ctx, "coingecko.fetch-history")
	defer span.End()

	url := fmt.Sprintf("%s/coins/%s/market_chart?vs_currency=usd&days=%d",
		p.baseURL, assetID, historyDays)

	body, err := p.doRequest(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch history for %s: %w", assetID, err)
	}

	var raw struct {
		Prices [][]float64 `json:"prices"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse history for %s: %w", assetID, err)
	}

	points := make([]domain.PricePoint, 0, len(raw.Prices))
	for _, pt := range raw.Prices {
		if len(pt) < 2 {
			continue
		}
		points = append(points, domain.PricePoint{
			Timestamp: time.UnixMilli(int64(pt[0])).UTC(),
			Price:     pt[1],
		})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
	return points, nil
}

func (p *CoinGeckoProvider) doRequest(ctx context.Context, url string) ([]byte, error) {
	if err := p.bucket.wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("coingecko API error %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
