package tui

import (
	"fmt"
	"strings"

	"coindeck/internal/domain"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	upStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	downStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

const newsDateLayout = "Jan 02, 2006"

func (m *AppModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("coindeck"))
	b.WriteString("\n\n")

	left := lipgloss.JoinVertical(lipgloss.Left,
		panelStyle.Render(m.marketsView()),
		panelStyle.Render(m.portfolioView()),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		panelStyle.Render(m.newsView()),
		panelStyle.Render(m.historyView()),
	)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(downStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("/: search  tab: chart asset  r: refresh  q: quit"))
	b.WriteString("\n")

	return b.String()
}

func (m *AppModel) marketsView() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Markets"))
	b.WriteString("\n")

	if m.frags.Markets.Status != "" {
		b.WriteString(dimStyle.Render(m.frags.Markets.Status))
		return b.String()
	}

	for _, row := range m.frags.Markets.Rows {
		change := fmt.Sprintf("%+.2f%%", row.Change24hPct)
		if row.Change24hPct < 0 {
			change = downStyle.Render(change)
		} else {
			change = upStyle.Render(change)
		}
		b.WriteString(fmt.Sprintf("%-12s $%-12.2f %s\n", row.Name, row.Price, change))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *AppModel) newsView() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("News"))
	if m.search.Focused() || m.search.Value() != "" {
		b.WriteString("  ")
		b.WriteString(m.search.View())
	}
	b.WriteString("\n")

	if m.frags.News.Status != "" {
		b.WriteString(dimStyle.Render(m.frags.News.Status))
		return b.String()
	}

	for _, item := range m.frags.News.Items {
		meta := item.Source
		if !item.PublishedAt.IsZero() {
			meta += ", " + item.PublishedAt.Format(newsDateLayout)
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n",
			sentimentGlyph(item.Sentiment),
			item.Title,
			dimStyle.Render("("+meta+")")))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *AppModel) historyView() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("History"))
	if m.frags.History.AssetID != "" {
		b.WriteString(dimStyle.Render("  " + m.frags.History.AssetID + " / 30d"))
	}
	b.WriteString("\n")

	if m.frags.History.AssetID == "" {
		b.WriteString(dimStyle.Render("tab to pick an asset"))
		return b.String()
	}
	if len(m.frags.History.Points) == 0 {
		b.WriteString(dimStyle.Render("no data"))
		return b.String()
	}

	b.WriteString(sparkline(m.frags.History.Points))
	b.WriteString("\n")
	first := m.frags.History.Points[0]
	last := m.frags.History.Points[len(m.frags.History.Points)-1]
	b.WriteString(dimStyle.Render(fmt.Sprintf("%.2f → %.2f", first.Price, last.Price)))
	return b.String()
}

func (m *AppModel) portfolioView() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Portfolio"))
	b.WriteString("\n")

	if m.frags.Portfolio.Status != "" {
		b.WriteString(dimStyle.Render(m.frags.Portfolio.Status))
		return b.String()
	}
	b.WriteString(fmt.Sprintf("%s %s", m.frags.Portfolio.TotalValue, m.frags.Portfolio.Currency))
	return b.String()
}

func sentimentGlyph(s domain.Sentiment) string {
	switch s {
	case domain.SentimentPositive:
		return upStyle.Render("▲")
	case domain.SentimentNegative:
		return downStyle.Render("▼")
	default:
		return dimStyle.Render("•")
	}
}

// sparkline renders the series as one row of block runes scaled
// between the series min and max.
func sparkline(points []domain.PricePoint) string {
	const maxWidth = 48

	points = downsample(points, maxWidth)

	lo, hi := points[0].Price, points[0].Price
	for _, p := range points {
		if p.Price < lo {
			lo = p.Price
		}
		if p.Price > hi {
			hi = p.Price
		}
	}

	var b strings.Builder
	for _, p := range points {
		idx := 0
		if hi > lo {
			idx = int((p.Price - lo) / (hi - lo) * float64(len(sparkRunes)-1))
		}
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}

func downsample(points []domain.PricePoint, width int) []domain.PricePoint {
	if len(points) <= width {
		return points
	}
	out := make([]domain.PricePoint, 0, width)
	for i := 0; i < width; i++ {
		out = append(out, points[i*len(points)/width])
	}
	return out
}
