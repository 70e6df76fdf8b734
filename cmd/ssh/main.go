package main

import (
	"context"
	"fmt"
	"log"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"coindeck/internal/cache"
	"coindeck/internal/config"
	"coindeck/internal/dashboard"
	"coindeck/internal/job"
	"coindeck/internal/portfolio"
	"coindeck/internal/provider"
	"coindeck/internal/sentiment"
	"coindeck/internal/tui"
	"coindeck/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"
	gossh "golang.org/x/crypto/ssh"
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
	newControllerFunc  = dashboard.NewController
	newRefresherFunc   = job.NewRefresher
	startRefresherFunc = func(r *job.Refresher, ctx context.Context) { go r.Start(ctx) }
	newWishServerFunc  = wish.NewServer
	setupSignalNotify  = ossignal.Notify
	waitForSignalFunc  = func(quit <-chan os.Signal) { <-quit }
)

func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx, "coindeck-ssh")
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

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

	// One controller shared by every SSH session; the refresher keeps it
	// warm so a new session sees data immediately.
	cgProvider := newCoinGeckoProviderFunc(tracer)
	newsProvider := newNewsAPIProviderFunc(tracer, cfg.NewsAPIKey)
	scorer := sentiment.NewScorerFromConfig(cfg.OpenAIAPIKey, cfg.OpenAIModel)

	ctrl := newControllerFunc(tracer, cgProvider, newsProvider, scorer, holdings, mirror, cfg.NewsQuery)

	// Warm-start from the snapshot the HTTP server last mirrored, so
	// sessions opened before our first fetch completes still see data.
	if mirror != nil {
		if frags, err := mirror.Load(ctx); err != nil {
			log.Printf("snapshot mirror read failed: %v", err)
		} else if frags != nil {
			ctrl.WarmStart(*frags)
		}
	}

	refresher := newRefresherFunc(tracer, ctrl, cfg.RefreshSecs)
	startRefresherFunc(refresher, ctx)

	// Build Wish SSH server
	addr := fmt.Sprintf("0.0.0.0:%d", cfg.SSHPort)

	srv, err := newWishServerFunc(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
		wish.WithPublicKeyAuth(func(ctx ssh.Context, key ssh.PublicKey) bool {
			// The dashboard is read-only, so any key gets in; the
			// fingerprint is logged for the session trail.
			log.Printf("SSH session: user=%s fingerprint=%s", ctx.User(), gossh.FingerprintSHA256(key))
			return true
		}),
		wish.WithMiddleware(
			bubbletea.Middleware(func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
				model := tui.NewAppModel(ctrl, time.Duration(cfg.RefreshSecs)*time.Second)
				pty, _, _ := s.Pty()
				model.SetSize(pty.Window.Width, pty.Window.Height)

				return model, []tea.ProgramOption{tea.WithAltScreen()}
			}),
			logging.Middleware(),
		),
	)
	if err != nil {
		log.Fatalf("failed to create SSH server: %v", err)
	}

	if srv != nil {
		go func() {
			log.Printf("SSH server listening on %s", addr)
			if err := srv.ListenAndServe(); err != nil {
				log.Printf("SSH server stopped: %v", err)
			}
		}()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down SSH server...")

	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("SSH server shutdown error: %v", err)
		}
	}

	log.Println("SSH server exited")
}
