package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coindeck/internal/bot"
	"coindeck/internal/cache"
	"coindeck/internal/config"
	"coindeck/internal/dashboard"
	"coindeck/internal/handler"
	"coindeck/internal/job"
	"coindeck/internal/portfolio"
	"coindeck/internal/provider"
	"coindeck/internal/sentiment"
	"coindeck/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "coindeck/docs"
)

var (
	loadEnvFunc              = godotenv.Load
	loadConfigFunc           = config.Load
	initTracerFunc           = tracing.InitTracer
	connectRedisFunc         = cache.Connect
	newCoinGeckoProviderFunc = func(tracer trace.Tracer) dashboard.MarketProvider {
		return provider.NewCoinGeckoProvider(tracer)
	}
	newNewsAPIProviderFunc = func(tracer trace.Tracer, apiKey string) dashboard.NewsProvider {
		return provider.NewNewsAPIProvider(tracer, apiKey)
	}
	newScorerFunc            = sentiment.NewScorerFromConfig
	newControllerFunc        = dashboard.NewController
	newRefresherFunc         = job.NewRefresher
	startRefresherFunc       = func(r *job.Refresher, ctx context.Context) { go r.Start(ctx) }
	startTelegramBotFunc     = bot.StartTelegramBot
	newHandlerFunc           = handler.New
	newRouterFunc            = gin.Default
	setupSignalNotify        = signal.Notify
	waitForSignalFunc        = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc      = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc   = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Coindeck API
// @version         1.0
// @description     Crypto market, news and portfolio dashboard API.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx, "coindeck")
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Redis is optional; without it the snapshot mirror is disabled.
	var mirror *dashboard.Mirror
	if rdb := connectRedisFunc(ctx, cfg.RedisURL); rdb != nil {
		mirror = dashboard.NewMirror(rdb, time.Duration(cfg.RefreshSecs)*time.Second)
	}

	holdings := portfolio.DefaultHoldings()
	if cfg.Holdings != "" {
		parsed, err := portfolio.ParseHoldings(cfg.Holdings)
		if err != nil {
			log.Fatalf("invalid HOLDINGS: %v", err)
		}
		holdings = parsed
	}

	// Providers, classifier and the dashboard controller
	cgProvider := newCoinGeckoProviderFunc(tracer)
	newsProvider := newNewsAPIProviderFunc(tracer, cfg.NewsAPIKey)
	scorer := newScorerFunc(cfg.OpenAIAPIKey, cfg.OpenAIModel)

	ctrl := newControllerFunc(tracer, cgProvider, newsProvider, scorer, holdings, mirror, cfg.NewsQuery)

	// Start the refresher (background goroutine, stopped by ctx cancel)
	refresher := newRefresherFunc(tracer, ctrl, cfg.RefreshSecs)
	startRefresherFunc(refresher, ctx)

	// Start Telegram bot
	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	startTelegramBotFunc(ctrl)

	// Create handlers and routes
	h := newHandlerFunc(tracer, ctrl)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("coindeck"))

	h.RegisterRoutes(r, cfg.DashboardAPIKey)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
