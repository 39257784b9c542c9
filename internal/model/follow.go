package model

// FollowPoint is a standing price alert, independent of any owned position.
// Invariant, enforced on add: StopLoss < Entry < TakeProfit, Volume > 0.
type FollowPoint struct {
	Entry      float64 `json:"entry"`
	TakeProfit float64 `json:"takeProfit"`
	StopLoss   float64 `json:"stopLoss"`
	Volume     float64 `json:"volume"`
}

// FollowEntry groups all follow points for one symbol. A symbol may carry
// several points for different entry strategies.
type FollowEntry struct {
	Symbol string        `json:"symbol"`
	Points []FollowPoint `json:"points"`
}

// FollowList holds the followed symbols of one channel.
type FollowList struct {
	Stocks []FollowEntry `json:"stocks"`
}

// Find returns the index of the entry with the given symbol, or -1.
func (l *FollowList) Find(symbol string) int {
	for i, e := range l.Stocks {
		if e.Symbol == symbol {
			return i
		}
	}
	return -1
}
