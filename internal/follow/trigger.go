package follow

import "StockSentry/internal/model"

// Trigger is one alert condition a follow point can fire.
type Trigger int

const (
	TriggerBuy Trigger = iota
	TriggerSell
	TriggerStopLoss
)

// Triggers evaluates a follow point against the current price. The checks
// are independent: a price past several thresholds fires every matching
// trigger, one alert per trigger. Firing never disables the point, so a
// sustained breach re-fires on every tick.
//
// Stop-loss fires on current <= stopLoss, mirroring the entry check.
func Triggers(p model.FollowPoint, current float64) []Trigger {
	var out []Trigger
	if current <= p.Entry {
		out = append(out, TriggerBuy)
	}
	if current >= p.TakeProfit {
		out = append(out, TriggerSell)
	}
	if current <= p.StopLoss {
		out = append(out, TriggerStopLoss)
	}
	return out
}
