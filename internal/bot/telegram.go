package bot

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"coindeck/internal/dashboard"

	tele "gopkg.in/telebot.v3"
)

// StartTelegramBot exposes the dashboard fragments over Telegram.
// Skipped entirely when no token is configured.
func StartTelegramBot(ctrl *dashboard.Controller) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/markets", func(c tele.Context) error {
		return c.Send(formatMarkets(ctrl.Snapshot().Markets))
	})

	b.Handle("/portfolio", func(c tele.Context) error {
		return c.Send(formatPortfolio(ctrl.Snapshot().Portfolio))
	})

	b.Handle("/news", func(c tele.Context) error {
		return c.Send(formatNews(ctrl.Snapshot().News))
	})

	log.Println("Telegram bot started")
	go b.Start()
}

func formatMarkets(frag dashboard.MarketFragment) string {
	if len(frag.Rows) == 0 {
		return frag.Status
	}
	var sb strings.Builder
	sb.WriteString("Top assets by market cap\n")
	for _, row := range frag.Rows {
		sb.WriteString(fmt.Sprintf("%s: $%.2f (%+.2f%%)\n", row.Name, row.Price, row.Change24hPct))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatPortfolio(frag dashboard.PortfolioFragment) string {
	if frag.Status != "" {
		return frag.Status
	}
	return fmt.Sprintf("Total Portfolio Value: %s %s", frag.TotalValue, frag.Currency)
}

const (
	maxNewsLines   = 5
	newsDateLayout = "Jan 02, 2006"
)

func formatNews(frag dashboard.NewsFragment) string {
	if len(frag.Items) == 0 {
		return frag.Status
	}
	var sb strings.Builder
	for i, item := range frag.Items {
		if i >= maxNewsLines {
			break
		}
		meta := item.Source
		if !item.PublishedAt.IsZero() {
			meta += ", " + item.PublishedAt.Format(newsDateLayout)
		}
		sb.WriteString(fmt.Sprintf("[%s] %s (%s)\n", item.Sentiment, item.Title, meta))
	}
	return strings.TrimRight(sb.String(), "\n")
}
