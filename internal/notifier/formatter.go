package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"PairSentinel/internal/model"
)

// FormatComparison renders a comparison result as a Telegram HTML message.
func FormatComparison(stock1, stock2, period string, res *model.ComparisonResult) string {
	var b strings.Builder
	stock1, stock2, period = html.EscapeString(stock1), html.EscapeString(stock2), html.EscapeString(period)

	b.WriteString(fmt.Sprintf("📊 <b>%s / %s</b> | %s\n\n", stock1, stock2, period))
	n := len(res.Dates)
	if n == 0 {
		b.WriteString("No aligned data\n")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("Window: %s → %s (%d days)\n", res.Dates[0], res.Dates[n-1], n))
	b.WriteString(fmt.Sprintf("Last: %s %.2f | %s %.2f\n", stock1, res.Stock1Prices[n-1], stock2, res.Stock2Prices[n-1]))
	b.WriteString(fmt.Sprintf("Correlation: %+.3f\n", res.Correlation))
	b.WriteString(fmt.Sprintf("Spread: %+.2f\n", res.Spread[n-1]))
	b.WriteString(fmt.Sprintf("Z-score: %+.2f\n", res.ZScore[n-1]))

	if res.Signal != nil {
		b.WriteString(fmt.Sprintf("\n🚨 <b>%s</b>\n", html.EscapeString(*res.Signal)))
	} else {
		b.WriteString("\nNo signal\n")
	}
	return b.String()
}

// FormatSignalAlert renders a short watchlist alert.
func FormatSignalAlert(stock1, stock2, period string, latestZ float64, signal string) string {
	return fmt.Sprintf("🚨 <b>Pair signal</b> | %s\n\n%s / %s (%s)\nZ-score: %+.2f\n%s",
		time.Now().Format("2006-01-02"), html.EscapeString(stock1), html.EscapeString(stock2),
		html.EscapeString(period), latestZ, html.EscapeString(signal))
}

// FormatError renders a failed command for the chat.
func FormatError(msg string) string {
	return "❌ " + html.EscapeString(msg)
}

// FormatUsage lists the bot commands.
func FormatUsage() string {
	return "Commands:\n• /compare STOCK1 STOCK2 [period]\n• /watchlist\n• /run"
}
