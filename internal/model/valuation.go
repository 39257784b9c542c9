package model

// Snapshot is the per-position valuation for one tracking tick. Derived,
// never persisted.
type Snapshot struct {
	Symbol                string
	Volume                float64
	Current               float64
	AvgCost               float64
	PreviousClose         float64
	PreviousChangePercent float64
	MarketValue           float64
	InvestValue           float64
	Profit                float64
	ProfitPercent         float64
}

// Summary aggregates the snapshots of a whole portfolio.
type Summary struct {
	Positions          []Snapshot
	TotalValue         float64
	TotalInvestment    float64
	TotalProfit        float64
	TotalProfitPercent float64
	DailyProfit        float64
	DailyProfitPercent float64
}
