package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"coindeck/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const newsAPIBaseURL = "https://newsapi.org/v2"

// ErrMissingAPIKey is returned when no NewsAPI key is configured.
// The provider fails closed: no request is issued without a key.
var ErrMissingAPIKey = errors.New("newsapi: api key not configured")

// NewsAPIProvider fetches news articles from newsapi.org.
type NewsAPIProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	tracer  trace.Tracer
}

func NewNewsAPIProvider(tracer trace.Tracer, apiKey string) *NewsAPIProvider {
	return &NewsAPIProvider{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: newsAPIBaseURL,
		apiKey:  strings.TrimSpace(apiKey),
		tracer:  tracer,
	}
}

// FetchEverything returns articles matching query, most recent first.
// The provider's publishedAt ordering is preserved, never re-sorted.
func (p *NewsAPIProvider) FetchEverything(ctx context.Context, query string) ([]domain.NewsItem, error) {
	if p.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	_, span := p.tracer.Start(ctx, "newsapi.fetch-everything")
	defer span.End()

	endpoint := fmt.Sprintf("%s/everything?q=%s&sortBy=publishedAt&apiKey=%s",
		p.baseURL, url.QueryEscape(query), url.QueryEscape(p.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
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
		return nil, fmt.Errorf("newsapi error %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Articles []struct {
			Title  string `json:"title"`
			Source struct {
				Name string `json:"name"`
			} `json:"source"`
			PublishedAt string `json:"publishedAt"`
			URL         string `json:"url"`
		} `json:"articles"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse news payload: %w", err)
	}

	items := make([]domain.NewsItem, 0, len(raw.Articles))
	for _, article := range raw.Articles {
		title := strings.TrimSpace(article.Title)
		if title == "" {
			continue
		}
		items = append(items, domain.NewsItem{
			Title:       title,
			Source:      strings.TrimSpace(article.Source.Name),
			PublishedAt: parseNewsDate(article.PublishedAt),
			URL:         strings.TrimSpace(article.URL),
		})
	}
	return items, nil
}

func parseNewsDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	layouts := []string{time.RFC3339, "2006-01-02T15:04:05Z", time.RFC1123Z, time.RFC1123}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
