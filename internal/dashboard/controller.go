package dashboard

import (
	"context"
	"fmt"
	"log"
	"sync"

	"coindeck/internal/domain"
	"coindeck/internal/sentiment"

	"go.opentelemetry.io/otel/trace"
)

// MarketProvider supplies current market rows and historical series.
type MarketProvider interface {
	FetchMarkets(ctx context.Context) ([]domain.MarketRow, error)
	FetchHistory(ctx context.Context, assetID string) ([]domain.PricePoint, error)
}

// NewsProvider supplies news items matching a query.
type NewsProvider interface {
	FetchEverything(ctx context.Context, query string) ([]domain.NewsItem, error)
}

// Controller owns the dashboard state and recomputes it per event:
// timer ticks refresh markets and news, input changes re-filter the
// news list or re-fetch the history series. Provider failures are
// absorbed here: the fragment goes empty and the failure is logged;
// no error reaches the render layer.
type Controller struct {
	tracer    trace.Tracer
	markets   MarketProvider
	news      NewsProvider
	scorer    sentiment.Scorer
	mirror    *Mirror
	newsQuery string

	mu    sync.Mutex
	state State

	// Per-fragment refresh gates. A tick that fires while the same
	// fragment is still refreshing drops its duplicate work instead
	// of queueing behind it.
	marketsGate sync.Mutex
	newsGate    sync.Mutex
	historyGate sync.Mutex
}

func NewController(
	tracer trace.Tracer,
	markets MarketProvider,
	news NewsProvider,
	scorer sentiment.Scorer,
	holdings domain.Holdings,
	mirror *Mirror,
	newsQuery string,
) *Controller {
	return &Controller{
		tracer:    tracer,
		markets:   markets,
		news:      news,
		scorer:    scorer,
		mirror:    mirror,
		newsQuery: newsQuery,
		state:     State{Holdings: holdings},
	}
}

// WarmStart seeds state from a previously mirrored snapshot so a
// fresh process shows data before its first fetch completes. Only
// empty fields are seeded; anything a local fetch already populated
// wins over mirrored data.
func (c *Controller) WarmStart(frags ViewFragments) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.state.Markets) == 0 {
		c.state.Markets = frags.Markets.Rows
	}
	if len(c.state.News) == 0 {
		c.state.News = frags.News.Items
	}
	if c.state.SelectedAsset == "" && frags.History.AssetID != "" {
		c.state.SelectedAsset = frags.History.AssetID
		c.state.History = frags.History.Points
	}
}

// Snapshot renders the current state into display-ready fragments.
func (c *Controller) Snapshot() ViewFragments {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Render(c.state)
}

// RefreshAll re-fetches the timer-driven fragments: markets (which the
// portfolio fragment derives from) and news. History is selection
// driven and deliberately not refreshed here.
func (c *Controller) RefreshAll(ctx context.Context) {
	c.RefreshMarkets(ctx)
	c.RefreshNews(ctx)
}

// RefreshMarkets replaces the market rows with a fresh fetch. On
// failure the rows go empty; stale rows are never kept.
func (c *Controller) RefreshMarkets(ctx context.Context) {
	if !c.marketsGate.TryLock() {
		log.Println("market refresh already in flight, dropping tick")
		return
	}
	defer c.marketsGate.Unlock()

	ctx, span := c.tracer.Start(ctx, "dashboard.refresh-markets")
	defer span.End()

	rows, err := c.markets.FetchMarkets(ctx)
	if err != nil {
		log.Printf("market fetch failed: %v", err)
		rows = nil
	}

	c.mu.Lock()
	c.state.Markets = rows
	c.mu.Unlock()

	c.publish(ctx)
}

// RefreshNews replaces the news list with a fresh, classified fetch.
// The current search text is reapplied at render time.
func (c *Controller) RefreshNews(ctx context.Context) {
	if !c.newsGate.TryLock() {
		log.Println("news refresh already in flight, dropping tick")
		return
	}
	defer c.newsGate.Unlock()

	ctx, span := c.tracer.Start(ctx, "dashboard.refresh-news")
	defer span.End()

	items, err := c.news.FetchEverything(ctx, c.newsQuery)
	if err != nil {
		log.Printf("news fetch failed: %v", err)
		items = nil
	}
	items = sentiment.Classify(c.scorer, items)

	c.mu.Lock()
	c.state.News = items
	c.mu.Unlock()

	c.publish(ctx)
}

// SetSearch updates the news filter input and returns the recomputed
// fragments. No fetch happens; filtering is a pure re-derivation. The
// mirror write goes to a goroutine: SetSearch runs on UI event loops
// and must not wait on Redis.
func (c *Controller) SetSearch(text string) ViewFragments {
	c.mu.Lock()
	c.state.SearchText = text
	frags := Render(c.state)
	c.mu.Unlock()

	go c.publish(context.Background())
	return frags
}

// SelectAsset updates the charted asset and re-fetches its 30-day
// series. An empty id clears the selection and the chart without a
// provider call.
func (c *Controller) SelectAsset(ctx context.Context, assetID string) error {
	if assetID != "" && !domain.IsSelectableAsset(assetID) {
		return fmt.Errorf("unsupported asset: %s", assetID)
	}

	if !c.historyGate.TryLock() {
		log.Printf("history refresh already in flight, dropping selection %q", assetID)
		return nil
	}
	defer c.historyGate.Unlock()

	ctx, span := c.tracer.Start(ctx, "dashboard.select-asset")
	defer span.End()

	var points []domain.PricePoint
	if assetID != "" {
		var err error
		points, err = c.markets.FetchHistory(ctx, assetID)
		if err != nil {
			log.Printf("history fetch failed for %s: %v", assetID, err)
			points = nil
		}
	}

	c.mu.Lock()
	c.state.SelectedAsset = assetID
	c.state.History = points
	c.mu.Unlock()

	c.publish(ctx)
	return nil
}

// SearchText returns the current search input.
func (c *Controller) SearchText() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.SearchText
}

// SelectedAsset returns the currently charted asset id.
func (c *Controller) SelectedAsset() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.SelectedAsset
}

func (c *Controller) publish(ctx context.Context) {
	if c.mirror == nil {
		return
	}
	if err := c.mirror.Publish(ctx, c.Snapshot()); err != nil {
		log.Printf("snapshot mirror write failed: %v", err)
	}
}
