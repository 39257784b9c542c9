package model

import "time"

// Position is a single holding: a symbol at an average cost and quantity.
// The JSON layout matches the persisted storage-message format.
type Position struct {
	Symbol     string    `json:"symbol"`
	Quantity   float64   `json:"quantity"`
	AvgCost    float64   `json:"price"`
	AcquiredAt time.Time `json:"date"`
}

// Portfolio holds all positions for one (user, channel) scope.
type Portfolio struct {
	UserID    string     `json:"userId"`
	ChannelID string     `json:"channelId"`
	Stocks    []Position `json:"stocks"`
}

// Find returns the index of the position with the given symbol, or -1.
func (p *Portfolio) Find(symbol string) int {
	for i, s := range p.Stocks {
		if s.Symbol == symbol {
			return i
		}
	}
	return -1
}
