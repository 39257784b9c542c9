package valuation

import (
	"sort"

	"StockSentry/internal/model"
)

// TaxRate is the flat transaction tax applied on the sell side.
const TaxRate = 0.001

// Tax returns the transaction tax for selling volume shares at price.
func Tax(price, volume float64) float64 {
	return price * volume * TaxRate
}

// Profit returns the realizable profit of a position at the current price,
// net of the sell-side tax. With no price movement the profit is exactly
// -Tax(avgCost, volume).
func Profit(current, avgCost, volume float64) float64 {
	return (current-avgCost)*volume - Tax(current, volume)
}

// NewSnapshot values one position at the given current price. A previousClose
// of zero or below means the previous session price was unavailable; the
// change percent is then reported as zero and the current price stands in.
func NewSnapshot(pos model.Position, current, previousClose float64) model.Snapshot {
	snap := model.Snapshot{
		Symbol:        pos.Symbol,
		Volume:        pos.Quantity,
		Current:       current,
		AvgCost:       pos.AvgCost,
		PreviousClose: previousClose,
		MarketValue:   current * pos.Quantity,
		InvestValue:   pos.AvgCost * pos.Quantity,
		Profit:        Profit(current, pos.AvgCost, pos.Quantity),
	}
	if previousClose > 0 {
		snap.PreviousChangePercent = (current - previousClose) / previousClose * 100
	} else {
		snap.PreviousClose = current
	}
	// Per-position percent is net of the sell-side tax; portfolio totals
	// stay gross (TotalProfit = TotalValue - TotalInvestment).
	if snap.InvestValue > 0 {
		snap.ProfitPercent = snap.Profit / snap.InvestValue * 100
	}
	return snap
}

// Summarize aggregates position snapshots into portfolio totals. Positions
// whose quote failed must be dropped before calling; totals reflect only the
// snapshots passed in.
func Summarize(snaps []model.Snapshot) model.Summary {
	sum := model.Summary{Positions: snaps}
	for _, s := range snaps {
		sum.TotalValue += s.MarketValue
		sum.TotalInvestment += s.InvestValue
		sum.DailyProfit += (s.Current - s.PreviousClose) * s.Volume
	}
	sum.TotalProfit = sum.TotalValue - sum.TotalInvestment
	if sum.TotalInvestment > 0 {
		sum.TotalProfitPercent = sum.TotalProfit / sum.TotalInvestment * 100
	}
	if sum.TotalValue > 0 {
		sum.DailyProfitPercent = sum.DailyProfit / sum.TotalValue * 100
	}
	return sum
}

// TopMovers returns the n snapshots with the largest absolute change against
// the previous session, ties keeping their original order.
func TopMovers(snaps []model.Snapshot, n int) []model.Snapshot {
	movers := make([]model.Snapshot, len(snaps))
	copy(movers, snaps)
	sort.SliceStable(movers, func(i, j int) bool {
		return abs(movers[i].PreviousChangePercent) > abs(movers[j].PreviousChangePercent)
	})
	if n > 0 && len(movers) > n {
		movers = movers[:n]
	}
	return movers
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
