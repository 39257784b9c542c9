package notifier

import (
	"fmt"
	"strings"

	"StockSentry/internal/model"
)

// displayScale converts profit figures (price unit × shares) into millions
// for display. Only the formatter scales; the valuation engine stays in the
// raw unit.
const displayScale = 1000

func signOf(v float64) string {
	if v >= 0 {
		return "+"
	}
	return ""
}

func colorOf(v float64) string {
	if v >= 0 {
		return "🟢"
	}
	return "🔴"
}

// FormatPortfolioSummary renders the periodic tracker notification: intraday
// P&L, cumulative P&L and the top movers of the session.
func FormatPortfolioSummary(sum model.Summary, movers []model.Snapshot) string {
	var b strings.Builder

	b.WriteString("📊 **Portfolio Summary**\n\n")

	daily := sum.DailyProfit / displayScale
	b.WriteString(fmt.Sprintf("%s **Today:** %s%.2f M (%.1f%%)\n\n",
		colorOf(sum.DailyProfit), signOf(daily), daily, sum.DailyProfitPercent))

	total := sum.TotalProfit / displayScale
	b.WriteString(fmt.Sprintf("%s **Overall:** %s%.2f M (%.1f%%)\n\n",
		colorOf(sum.TotalProfit), signOf(total), total, sum.TotalProfitPercent))

	if len(movers) > 0 {
		b.WriteString(fmt.Sprintf("**Top %d movers:**\n", len(movers)))
		for _, s := range movers {
			arrow := "↑"
			if s.PreviousChangePercent < 0 {
				arrow = "↓"
			}
			b.WriteString(fmt.Sprintf("%s %s: %.2f (%s %.1f%%)\n",
				colorOf(s.PreviousChangePercent), s.Symbol, s.Current, arrow, absVal(s.PreviousChangePercent)))
		}
	}
	return b.String()
}

// FormatBuyAlert renders an entry-point alert for a follow point.
func FormatBuyAlert(symbol string, current float64, p model.FollowPoint) string {
	diff := (current - p.Entry) / p.Entry * 100
	return fmt.Sprintf("🎯 **Buy point reached!**\n📈 %s\n💰 Current: %.2f\n🟢 Entry: %.2f (%+.1f%%)\n🔴 Target: %.2f",
		symbol, current, p.Entry, diff, p.TakeProfit)
}

// FormatSellAlert renders a take-profit alert for a follow point.
func FormatSellAlert(symbol string, current float64, p model.FollowPoint) string {
	diff := (current - p.Entry) / p.Entry * 100
	return fmt.Sprintf("🎯 **Sell point reached!**\n📈 %s\n💰 Current: %.2f\n🟢 Entry: %.2f\n🔴 Target: %.2f (%+.1f%%)",
		symbol, current, p.Entry, p.TakeProfit, diff)
}

// FormatStopLossAlert renders a stop-loss alert for a follow point.
func FormatStopLossAlert(symbol string, current float64, p model.FollowPoint) string {
	diff := (current - p.Entry) / p.Entry * 100
	return fmt.Sprintf("⚠️ **Stop loss reached!**\n📉 %s\n💰 Current: %.2f (%+.1f%%)\n🟢 Entry: %.2f\n🛑 Stop: %.2f",
		symbol, current, diff, p.Entry, p.StopLoss)
}

// FormatPositions renders the raw holdings of a portfolio.
func FormatPositions(p *model.Portfolio) string {
	if len(p.Stocks) == 0 {
		return "Portfolio is empty. Use `!add SYMBOL QTY PRICE` to add a position."
	}
	var b strings.Builder
	b.WriteString("💼 **Positions**\n")
	for _, s := range p.Stocks {
		b.WriteString(fmt.Sprintf("• %s: %.0f @ %.2f (since %s)\n",
			s.Symbol, s.Quantity, s.AvgCost, s.AcquiredAt.Format("2006-01-02")))
	}
	return b.String()
}

// FormatFollowList renders every follow point of a channel.
func FormatFollowList(l *model.FollowList) string {
	if len(l.Stocks) == 0 {
		return "Follow list is empty. Use `!follow SYMBOL ENTRY TP SL [VOL]` to add one."
	}
	var b strings.Builder
	b.WriteString("👀 **Follow list**\n")
	for _, e := range l.Stocks {
		b.WriteString(fmt.Sprintf("• %s\n", e.Symbol))
		for _, p := range e.Points {
			b.WriteString(fmt.Sprintf("   🟢 %.2f | 📈 %.2f | 🛑 %.2f | vol %.0f\n",
				p.Entry, p.TakeProfit, p.StopLoss, p.Volume))
		}
	}
	return b.String()
}

// FormatStatus renders the market and tracking state for the !status command.
func FormatStatus(open, breakTime, tracked bool) string {
	market := "closed"
	if open {
		market = "open"
	}
	if breakTime && open {
		market += " (lunch break)"
	}
	tracking := "off"
	if tracked {
		tracking = "on"
	}
	return fmt.Sprintf("🕒 Market: %s\n📡 Tracking this channel: %s", market, tracking)
}

func absVal(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
