package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	NewsAPIKey string
	NewsQuery  string

	RefreshSecs int
	HTTPPort    int

	RedisURL        string
	DashboardAPIKey string
	Holdings        string

	TelegramBotToken string

	OpenAIAPIKey string
	OpenAIModel  string

	SSHPort        int
	SSHHostKeyPath string
}

func Load() *Config {
	cfg := &Config{
		NewsAPIKey:       os.Getenv("NEWS_API_KEY"),
		RedisURL:         os.Getenv("REDIS_URL"),
		DashboardAPIKey:  os.Getenv("DASHBOARD_API_KEY"),
		Holdings:         strings.TrimSpace(os.Getenv("HOLDINGS")),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
	}

	if cfg.NewsAPIKey == "" {
		log.Println("Warning: NEWS_API_KEY not set, news fragment will stay empty")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, snapshot mirror disabled")
	}

	cfg.NewsQuery = strings.TrimSpace(os.Getenv("NEWS_QUERY"))
	if cfg.NewsQuery == "" {
		cfg.NewsQuery = "cryptocurrency"
	}

	cfg.RefreshSecs = 600
	if v := os.Getenv("REFRESH_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RefreshSecs = n
		}
	}

	cfg.HTTPPort = 8080
	if v := strings.TrimSpace(os.Getenv("HTTP_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPPort = n
		}
	}

	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}

	cfg.SSHPort = 2222
	if v := strings.TrimSpace(os.Getenv("SSH_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SSHPort = n
		}
	}

	cfg.SSHHostKeyPath = strings.TrimSpace(os.Getenv("SSH_HOST_KEY_PATH"))
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = ".ssh/coindeck_ed25519"
	}

	return cfg
}
