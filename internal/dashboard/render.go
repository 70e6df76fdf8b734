package dashboard

import (
	"strings"

	"coindeck/internal/domain"
	"coindeck/internal/portfolio"
)

// Placeholder texts shown instead of blank regions.
const (
	NoNewsMessage          = "No news available."
	MarketErrorMessage     = "Error fetching market data."
	PortfolioStatusMessage = "Market data unavailable."
)

// Render derives the four view fragments from state. It is pure: the
// same state always renders the same fragments, and it never touches
// the network.
func Render(s State) ViewFragments {
	frags := ViewFragments{
		Markets: MarketFragment{Rows: s.Markets},
		News: NewsFragment{
			Items: FilterNews(s.News, s.SearchText),
			Query: strings.TrimSpace(s.SearchText),
		},
		History: HistoryFragment{
			AssetID: s.SelectedAsset,
			Points:  s.History,
		},
	}

	if len(s.Markets) == 0 {
		frags.Markets.Status = MarketErrorMessage
	}
	if len(s.News) == 0 {
		frags.News.Status = NoNewsMessage
	}

	valuation, err := portfolio.Value(s.Holdings, s.Markets)
	if err != nil {
		frags.Portfolio.Status = PortfolioStatusMessage
	} else {
		frags.Portfolio.TotalValue = valuation.TotalValue.StringFixed(2)
		frags.Portfolio.Currency = valuation.Currency
	}

	return frags
}

// FilterNews keeps items whose title contains search, case-insensitively.
// Empty search means no filtering.
func FilterNews(items []domain.NewsItem, search string) []domain.NewsItem {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return items
	}
	out := make([]domain.NewsItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Title), search) {
			out = append(out, item)
		}
	}
	return out
}
