package handler

import (
	"net/http"
	"strings"

	"coindeck/internal/dashboard"
	"coindeck/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetDashboard godoc
// @Summary      Get the full dashboard snapshot
// @Description  Returns all four view fragments rendered from the latest state
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  dashboard.ViewFragments
// @Router       /api/dashboard [get]
func (h *Handler) GetDashboard(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-dashboard")
	defer span.End()

	c.JSON(http.StatusOK, h.dashboard.Snapshot())
}

// GetMarkets godoc
// @Summary      Get the market fragment
// @Description  Returns the top assets by market cap from the latest refresh
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  dashboard.MarketFragment
// @Router       /api/markets [get]
func (h *Handler) GetMarkets(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-markets")
	defer span.End()

	c.JSON(http.StatusOK, h.dashboard.Snapshot().Markets)
}

// GetNews godoc
// @Summary      Get the news fragment
// @Description  Returns classified headlines with the current search filter applied. An optional q parameter narrows this response only; it does not change the stored filter.
// @Tags         dashboard
// @Produce      json
// @Param        q  query  string  false  "Per-request title filter"
// @Success      200  {object}  dashboard.NewsFragment
// @Router       /api/news [get]
func (h *Handler) GetNews(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-news")
	defer span.End()

	frag := h.dashboard.Snapshot().News
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		span.SetAttributes(attribute.String("q", q))
		frag.Items = dashboard.FilterNews(frag.Items, q)
		frag.Query = q
	}
	c.JSON(http.StatusOK, frag)
}

// GetHistory godoc
// @Summary      Get the historical chart fragment
// @Description  Returns the 30-day price series for the selected asset
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  dashboard.HistoryFragment
// @Router       /api/history [get]
func (h *Handler) GetHistory(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-history")
	defer span.End()

	c.JSON(http.StatusOK, h.dashboard.Snapshot().History)
}

// GetPortfolio godoc
// @Summary      Get the portfolio fragment
// @Description  Returns the holdings valuation against the latest market data
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  dashboard.PortfolioFragment
// @Router       /api/portfolio [get]
func (h *Handler) GetPortfolio(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-portfolio")
	defer span.End()

	c.JSON(http.StatusOK, h.dashboard.Snapshot().Portfolio)
}

type searchRequest struct {
	Query string `json:"q"`
}

// PutSearch godoc
// @Summary      Set the news search text
// @Description  Updates the search filter and returns the recomputed news fragment
// @Tags         inputs
// @Accept       json
// @Produce      json
// @Param        request  body  searchRequest  true  "Search text (empty clears the filter)"
// @Success      200  {object}  dashboard.NewsFragment
// @Failure      400  {object}  map[string]string
// @Router       /api/search [put]
func (h *Handler) PutSearch(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.put-search")
	defer span.End()

	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	span.SetAttributes(attribute.String("search", req.Query))

	frags := h.dashboard.SetSearch(req.Query)
	c.JSON(http.StatusOK, frags.News)
}

type selectRequest struct {
	Asset string `json:"asset"`
}

// PutSelect godoc
// @Summary      Select the charted asset
// @Description  Updates the selection and re-fetches its 30-day series; an empty asset clears the chart
// @Tags         inputs
// @Accept       json
// @Produce      json
// @Param        request  body  selectRequest  true  "Asset id (e.g. bitcoin)"
// @Success      200  {object}  dashboard.HistoryFragment
// @Failure      400  {object}  map[string]interface{}
// @Router       /api/select [put]
func (h *Handler) PutSelect(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.put-select")
	defer span.End()

	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	span.SetAttributes(attribute.String("asset", req.Asset))

	if err := h.dashboard.SelectAsset(ctx, req.Asset); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":            err.Error(),
			"supported_assets": domain.SelectableAssets,
		})
		return
	}
	c.JSON(http.StatusOK, h.dashboard.Snapshot().History)
}
