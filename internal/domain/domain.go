package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sentiment is the polarity label attached to a news headline.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
)

// MarketRow is one asset from the top-of-market page, projected down to
// the five columns the dashboard displays.
type MarketRow struct {
	AssetID      string  `json:"id"`
	Name         string  `json:"name"`
	Price        float64 `json:"current_price"`
	MarketCap    float64 `json:"market_cap"`
	Change24hPct float64 `json:"price_change_percentage_24h"`
}

// NewsItem is a normalized news article. Sentiment is attached by the
// classifier after fetch; the provider never supplies it.
type NewsItem struct {
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	URL         string    `json:"url"`
	Sentiment   Sentiment `json:"sentiment,omitempty"`
}

// PricePoint is one sample of an asset's historical price series,
// ordered ascending by timestamp within a series.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}

// Holdings maps an asset id to the quantity held.
type Holdings map[string]decimal.Decimal

// PortfolioValuation is the summed value of priced holdings.
type PortfolioValuation struct {
	TotalValue decimal.Decimal `json:"total_value"`
	Currency   string          `json:"currency"`
}

// SelectableAssets lists the assets offered for historical charting.
var SelectableAssets = []string{"bitcoin", "ethereum", "dogecoin"}

// IsSelectableAsset reports whether id can be charted.
func IsSelectableAsset(id string) bool {
	for _, asset := range SelectableAssets {
		if asset == id {
			return true
		}
	}
	return false
}
