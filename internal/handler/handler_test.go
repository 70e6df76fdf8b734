package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"coindeck/internal/dashboard"
	"coindeck/internal/domain"
	"coindeck/internal/sentiment"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

type stubMarkets struct {
	rows   []domain.MarketRow
	points []domain.PricePoint
}

func (s *stubMarkets) FetchMarkets(ctx context.Context) ([]domain.MarketRow, error) {
	return s.rows, nil
}

func (s *stubMarkets) FetchHistory(ctx context.Context, assetID string) ([]domain.PricePoint, error) {
	return s.points, nil
}

type stubNews struct {
	items []domain.NewsItem
}

func (s *stubNews) FetchEverything(ctx context.Context, query string) ([]domain.NewsItem, error) {
	return s.items, nil
}

func newTestRouter(t *testing.T, ctrl *dashboard.Controller, apiKey string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	New(testTracer, ctrl).RegisterRoutes(r, apiKey)
	return r
}

func newTestController(markets *stubMarkets, news *stubNews) *dashboard.Controller {
	holdings := domain.Holdings{"bitcoin": decimal.NewFromInt(2)}
	return dashboard.NewController(testTracer, markets, news,
		sentiment.NewLexiconScorer(), holdings, nil, "cryptocurrency")
}

func TestHealth(t *testing.T) {
	ctrl := newTestController(&stubMarkets{}, &stubNews{})
	r := newTestRouter(t, ctrl, "")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "healthy") {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestGetDashboard(t *testing.T) {
	markets := &stubMarkets{rows: []domain.MarketRow{{AssetID: "bitcoin", Name: "Bitcoin", Price: 50000}}}
	ctrl := newTestController(markets, &stubNews{})
	ctrl.RefreshAll(context.Background())
	r := newTestRouter(t, ctrl, "")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/dashboard", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var frags dashboard.ViewFragments
	if err := json.Unmarshal(w.Body.Bytes(), &frags); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(frags.Markets.Rows) != 1 || frags.Markets.Rows[0].AssetID != "bitcoin" {
		t.Fatalf("unexpected markets fragment: %+v", frags.Markets)
	}
	if frags.Portfolio.TotalValue != "100000.00" {
		t.Fatalf("unexpected portfolio fragment: %+v", frags.Portfolio)
	}
	if frags.News.Status != dashboard.NoNewsMessage {
		t.Fatalf("expected news placeholder, got %+v", frags.News)
	}
}

func TestGetMarketsEmpty(t *testing.T) {
	ctrl := newTestController(&stubMarkets{}, &stubNews{})
	r := newTestRouter(t, ctrl, "")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/markets", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var frag dashboard.MarketFragment
	if err := json.Unmarshal(w.Body.Bytes(), &frag); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if frag.Status != dashboard.MarketErrorMessage {
		t.Fatalf("expected market placeholder, got %+v", frag)
	}
}

func TestPutSearch(t *testing.T) {
	news := &stubNews{items: []domain.NewsItem{
		{Title: "Bitcoin hits a new all-time high!"},
		{Title: "Ethereum struggles as prices drop"},
	}}
	ctrl := newTestController(&stubMarkets{}, news)
	ctrl.RefreshAll(context.Background())
	r := newTestRouter(t, ctrl, "")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/search", strings.NewReader(`{"q":"ethereum"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var frag dashboard.NewsFragment
	if err := json.Unmarshal(w.Body.Bytes(), &frag); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(frag.Items) != 1 || !strings.Contains(frag.Items[0].Title, "Ethereum") {
		t.Fatalf("unexpected filtered fragment: %+v", frag)
	}
}

func TestGetNewsQueryParamIsEphemeral(t *testing.T) {
	news := &stubNews{items: []domain.NewsItem{
		{Title: "Bitcoin hits a new all-time high!"},
		{Title: "Ethereum struggles as prices drop"},
	}}
	ctrl := newTestController(&stubMarkets{}, news)
	ctrl.RefreshAll(context.Background())
	r := newTestRouter(t, ctrl, "")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/news?q=ethereum", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var frag dashboard.NewsFragment
	if err := json.Unmarshal(w.Body.Bytes(), &frag); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(frag.Items) != 1 || !strings.Contains(frag.Items[0].Title, "Ethereum") {
		t.Fatalf("unexpected filtered fragment: %+v", frag)
	}

	// The q parameter narrows one response; the stored filter is untouched.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/news", nil)
	r.ServeHTTP(w, req)

	frag = dashboard.NewsFragment{}
	if err := json.Unmarshal(w.Body.Bytes(), &frag); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(frag.Items) != 2 || frag.Query != "" {
		t.Fatalf("ephemeral query leaked into state: %+v", frag)
	}
}

func TestPutSearchBadBody(t *testing.T) {
	ctrl := newTestController(&stubMarkets{}, &stubNews{})
	r := newTestRouter(t, ctrl, "")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/search", strings.NewReader("not json"))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestPutSelect(t *testing.T) {
	markets := &stubMarkets{points: []domain.PricePoint{{Price: 50000}}}
	ctrl := newTestController(markets, &stubNews{})
	r := newTestRouter(t, ctrl, "")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/select", strings.NewReader(`{"asset":"bitcoin"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var frag dashboard.HistoryFragment
	if err := json.Unmarshal(w.Body.Bytes(), &frag); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if frag.AssetID != "bitcoin" || len(frag.Points) != 1 {
		t.Fatalf("unexpected history fragment: %+v", frag)
	}
}

func TestPutSelectUnsupported(t *testing.T) {
	ctrl := newTestController(&stubMarkets{}, &stubNews{})
	r := newTestRouter(t, ctrl, "")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/select", strings.NewReader(`{"asset":"solana"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "supported_assets") {
		t.Fatalf("expected supported assets in body: %s", w.Body.String())
	}
}

func TestAPIKeyAuth(t *testing.T) {
	ctrl := newTestController(&stubMarkets{}, &stubNews{})
	r := newTestRouter(t, ctrl, "sekrit")

	// Reads stay open.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/dashboard", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected open read, got %d", w.Code)
	}

	// Writes need the key.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("PUT", "/api/search", strings.NewReader(`{"q":""}`))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("PUT", "/api/search", strings.NewReader(`{"q":""}`))
	req.Header.Set("X-API-Key", "wrong")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 with wrong key, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("PUT", "/api/search", strings.NewReader(`{"q":""}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", "sekrit")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with key, got %d", w.Code)
	}
}
