package dashboard

import "coindeck/internal/domain"

// State is everything the views derive from: the latest fetch result
// per fragment plus the two user inputs. Nothing older than the latest
// fetch is kept; a failed fetch leaves its slice empty.
type State struct {
	Markets []domain.MarketRow
	News    []domain.NewsItem
	History []domain.PricePoint

	SearchText    string
	SelectedAsset string

	Holdings domain.Holdings
}

// ViewFragments is the full display-ready output: four independently
// addressable fragments, each renderable on its own.
type ViewFragments struct {
	Markets   MarketFragment    `json:"markets"`
	News      NewsFragment      `json:"news"`
	History   HistoryFragment   `json:"history"`
	Portfolio PortfolioFragment `json:"portfolio"`
}

type MarketFragment struct {
	Rows   []domain.MarketRow `json:"rows"`
	Status string             `json:"status,omitempty"`
}

type NewsFragment struct {
	Items  []domain.NewsItem `json:"items"`
	Query  string            `json:"query,omitempty"`
	Status string            `json:"status,omitempty"`
}

type HistoryFragment struct {
	AssetID string             `json:"asset_id,omitempty"`
	Points  []domain.PricePoint `json:"points"`
}

type PortfolioFragment struct {
	TotalValue string `json:"total_value,omitempty"`
	Currency   string `json:"currency,omitempty"`
	Status     string `json:"status,omitempty"`
}
