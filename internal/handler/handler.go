package handler

import (
	"coindeck/internal/dashboard"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	tracer    trace.Tracer
	dashboard *dashboard.Controller
}

func New(tracer trace.Tracer, ctrl *dashboard.Controller) *Handler {
	return &Handler{
		tracer:    tracer,
		dashboard: ctrl,
	}
}

// RegisterRoutes wires the fragment and input routes. The two
// input-mutating routes sit behind the optional API key gate.
func (h *Handler) RegisterRoutes(r *gin.Engine, apiKey string) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.GET("/dashboard", h.GetDashboard)
	api.GET("/markets", h.GetMarkets)
	api.GET("/news", h.GetNews)
	api.GET("/history", h.GetHistory)
	api.GET("/portfolio", h.GetPortfolio)

	inputs := api.Group("", APIKeyAuth(apiKey))
	inputs.PUT("/search", h.PutSearch)
	inputs.PUT("/select", h.PutSelect)
}
