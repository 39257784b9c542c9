package scheduler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"StockSentry/internal/follow"
	"StockSentry/internal/market"
	"StockSentry/internal/model"
	"StockSentry/internal/notifier"
	"StockSentry/internal/portfolio"
	"StockSentry/internal/store"
)

const helpText = "Available commands:\n" +
	"• `!add SYMBOL QTY PRICE` — add or average into a position\n" +
	"• `!remove SYMBOL` — drop a position\n" +
	"• `!list` — show positions\n" +
	"• `!portfolio` — value the portfolio now\n" +
	"• `!follow SYMBOL ENTRY TP SL [VOL]` — add a price alert\n" +
	"• `!unfollow SYMBOL [ENTRY]` — remove an alert (or all for the symbol)\n" +
	"• `!watchlist` — show follow list\n" +
	"• `!track` / `!untrack` — start/stop tracking this channel\n" +
	"• `!status` — market and tracking state"

// Commander wires the user command surface to the services. Unlike
// background ticks, failures here are reported back to the user.
type Commander struct {
	Scheduler *Scheduler
	Portfolio *portfolio.Service
	Follow    *follow.Service
	Calendar  *market.Calendar
}

// HandleCommand parses one chat command and returns the reply text. It is
// the entry point the transport polling loop dispatches into.
func (c *Commander) HandleCommand(channelID, userID, text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	args := fields[1:]

	switch strings.ToLower(fields[0]) {
	case "!add":
		return c.handleAdd(channelID, userID, args)
	case "!remove":
		return c.handleRemove(channelID, userID, args)
	case "!list":
		return c.handleList(channelID, userID)
	case "!portfolio":
		return c.handlePortfolio(channelID, userID)
	case "!follow":
		return c.handleFollow(channelID, args)
	case "!unfollow":
		return c.handleUnfollow(channelID, args)
	case "!watchlist":
		return c.handleWatchlist(channelID)
	case "!track":
		c.Scheduler.StartChannelTracking(channelID)
		return "✅ Tracking started for this channel."
	case "!untrack":
		c.Scheduler.StopChannelTracking(channelID)
		return "✅ Tracking stopped for this channel."
	case "!status":
		tracked := c.Scheduler.Portfolio.IsTracking(channelID)
		return notifier.FormatStatus(c.Calendar.IsOpen(), c.Calendar.IsBreak(), tracked)
	default:
		return helpText
	}
}

func (c *Commander) handleAdd(channelID, userID string, args []string) string {
	if len(args) != 3 {
		return "Usage: `!add SYMBOL QTY PRICE`"
	}
	symbol := strings.ToUpper(args[0])
	qty, err1 := strconv.ParseFloat(args[1], 64)
	price, err2 := strconv.ParseFloat(args[2], 64)
	if err1 != nil || err2 != nil {
		return "Usage: `!add SYMBOL QTY PRICE`"
	}
	scope := store.Scope{OwnerID: userID, ChannelID: channelID}
	if err := c.Portfolio.AddStock(scope, symbol, qty, price); err != nil {
		return fmt.Sprintf("❌ Could not add %s: %v", symbol, err)
	}
	return fmt.Sprintf("✅ Added %s: %.0f @ %.2f", symbol, qty, price)
}

func (c *Commander) handleRemove(channelID, userID string, args []string) string {
	if len(args) != 1 {
		return "Usage: `!remove SYMBOL`"
	}
	symbol := strings.ToUpper(args[0])
	scope := store.Scope{OwnerID: userID, ChannelID: channelID}
	if err := c.Portfolio.RemoveStock(scope, symbol); err != nil {
		if errors.Is(err, portfolio.ErrNotFound) {
			return fmt.Sprintf("❌ %s is not in the portfolio.", symbol)
		}
		return fmt.Sprintf("❌ Could not remove %s: %v", symbol, err)
	}
	return fmt.Sprintf("✅ Removed %s.", symbol)
}

func (c *Commander) handleList(channelID, userID string) string {
	scope := store.Scope{OwnerID: userID, ChannelID: channelID}
	p, err := c.Portfolio.Get(scope)
	if err != nil {
		return fmt.Sprintf("❌ Could not load the portfolio: %v", err)
	}
	return notifier.FormatPositions(p)
}

func (c *Commander) handlePortfolio(channelID, userID string) string {
	scope := store.Scope{OwnerID: userID, ChannelID: channelID}
	sum, err := c.Portfolio.Details(scope)
	if err != nil {
		return fmt.Sprintf("❌ Could not value the portfolio: %v", err)
	}
	if len(sum.Positions) == 0 {
		return "No positions could be valued right now."
	}
	return notifier.FormatPortfolioSummary(sum, nil)
}

func (c *Commander) handleFollow(channelID string, args []string) string {
	if len(args) != 4 && len(args) != 5 {
		return "Usage: `!follow SYMBOL ENTRY TP SL [VOL]`"
	}
	symbol := strings.ToUpper(args[0])
	nums := make([]float64, 0, 4)
	for _, a := range args[1:] {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return "Usage: `!follow SYMBOL ENTRY TP SL [VOL]`"
		}
		nums = append(nums, v)
	}
	point := model.FollowPoint{Entry: nums[0], TakeProfit: nums[1], StopLoss: nums[2], Volume: 1000}
	if len(nums) == 4 {
		point.Volume = nums[3]
	}
	if err := c.Follow.AddPoint(channelID, symbol, point); err != nil {
		return fmt.Sprintf("❌ Could not follow %s: %v", symbol, err)
	}
	return fmt.Sprintf("✅ Following %s:\n🟢 Entry: %.2f\n📈 Target: %.2f\n🛑 Stop: %.2f\n📊 Volume: %.0f",
		symbol, point.Entry, point.TakeProfit, point.StopLoss, point.Volume)
}

func (c *Commander) handleUnfollow(channelID string, args []string) string {
	if len(args) != 1 && len(args) != 2 {
		return "Usage: `!unfollow SYMBOL [ENTRY]`"
	}
	symbol := strings.ToUpper(args[0])

	var err error
	if len(args) == 2 {
		entry, perr := strconv.ParseFloat(args[1], 64)
		if perr != nil {
			return "Usage: `!unfollow SYMBOL [ENTRY]`"
		}
		err = c.Follow.RemovePoint(channelID, symbol, entry)
	} else {
		err = c.Follow.RemoveSymbol(channelID, symbol)
	}
	if err != nil {
		if errors.Is(err, follow.ErrNotFound) {
			return fmt.Sprintf("❌ %s is not on the follow list.", symbol)
		}
		return fmt.Sprintf("❌ Could not unfollow %s: %v", symbol, err)
	}
	return fmt.Sprintf("✅ Unfollowed %s.", symbol)
}

func (c *Commander) handleWatchlist(channelID string) string {
	l, err := c.Follow.Get(channelID)
	if err != nil {
		return fmt.Sprintf("❌ Could not load the follow list: %v", err)
	}
	return notifier.FormatFollowList(l)
}
