package portfolio

import (
	"errors"
	"fmt"
	"strings"

	"coindeck/internal/domain"

	"github.com/shopspring/decimal"
)

// ErrMarketDataUnavailable is returned when valuation is attempted
// against an empty market table. An empty table means the fetch
// failed; it must not be reported as a zero-value portfolio.
var ErrMarketDataUnavailable = errors.New("portfolio: market data unavailable")

// Value prices holdings against the latest market rows in USD.
// Holdings whose asset id is absent from rows are excluded from the
// total, not valued at zero. The top-of-market page only carries ten
// assets, so a holding can rotate out of it between refreshes.
func Value(holdings domain.Holdings, rows []domain.MarketRow) (domain.PortfolioValuation, error) {
	if len(rows) == 0 {
		return domain.PortfolioValuation{}, ErrMarketDataUnavailable
	}

	prices := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		prices[row.AssetID] = decimal.NewFromFloat(row.Price)
	}

	total := decimal.Zero
	for assetID, quantity := range holdings {
		price, ok := prices[assetID]
		if !ok {
			continue
		}
		total = total.Add(price.Mul(quantity))
	}

	return domain.PortfolioValuation{TotalValue: total, Currency: "USD"}, nil
}

// DefaultHoldings is the built-in holdings table used when no HOLDINGS
// override is configured.
func DefaultHoldings() domain.Holdings {
	return domain.Holdings{
		"bitcoin":  decimal.NewFromInt(2),
		"ethereum": decimal.NewFromInt(5),
		"dogecoin": decimal.NewFromInt(1000),
	}
}

// ParseHoldings parses a "bitcoin=2,ethereum=5" style override. An
// empty input yields the default holdings.
func ParseHoldings(raw string) (domain.Holdings, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultHoldings(), nil
	}

	holdings := make(domain.Holdings)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		assetID, quantity, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("parse holdings: malformed entry %q", pair)
		}
		assetID = strings.TrimSpace(assetID)
		value, err := decimal.NewFromString(strings.TrimSpace(quantity))
		if err != nil {
			return nil, fmt.Errorf("parse holdings: quantity for %s: %w", assetID, err)
		}
		if assetID == "" || value.IsNegative() {
			return nil, fmt.Errorf("parse holdings: invalid entry %q", pair)
		}
		holdings[assetID] = value
	}
	if len(holdings) == 0 {
		return nil, fmt.Errorf("parse holdings: no entries in %q", raw)
	}
	return holdings, nil
}
