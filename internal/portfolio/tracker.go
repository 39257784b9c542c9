package portfolio

import (
	"log"
	"sync"
	"time"

	"StockSentry/internal/market"
	"StockSentry/internal/notifier"
	"StockSentry/internal/store"
	"StockSentry/internal/valuation"

	"github.com/robfig/cron/v3"
)

// Notifier delivers a finished notification to a channel.
type Notifier interface {
	Notify(channelID, text string) error
}

// Tracker emits a periodic portfolio summary per tracked channel. One timer
// per channel at most: starting an already-tracked channel cancels the old
// timer first. A tick that fails logs and leaves the timer running.
type Tracker struct {
	mu      sync.Mutex
	cron    *cron.Cron
	entries map[string]cron.EntryID

	service  *Service
	calendar *market.Calendar
	notifier Notifier
	ownerID  string
	interval time.Duration
	topN     int
}

// NewTracker creates a portfolio tracker. ownerID is the identity background
// ticks read state under (the bot's own user id). Run must be called before
// any timer fires.
func NewTracker(svc *Service, cal *market.Calendar, n Notifier, ownerID string, interval time.Duration, topN int) *Tracker {
	return &Tracker{
		cron:     cron.New(),
		entries:  make(map[string]cron.EntryID),
		service:  svc,
		calendar: cal,
		notifier: n,
		ownerID:  ownerID,
		interval: interval,
		topN:     topN,
	}
}

// Run starts the timer runtime.
func (t *Tracker) Run() { t.cron.Start() }

// Shutdown stops the timer runtime. In-flight ticks run to completion.
func (t *Tracker) Shutdown() { t.cron.Stop() }

// StartTracking registers the repeating summary tick for a channel,
// replacing any existing timer so a re-entrant start never stacks timers.
func (t *Tracker) StartTracking(channelID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if id, ok := t.entries[channelID]; ok {
		t.cron.Remove(id)
	}
	id := t.cron.Schedule(cron.Every(t.interval), cron.FuncJob(func() {
		t.tick(channelID)
	}))
	t.entries[channelID] = id
	log.Printf("[INFO] portfolio tracking started for channel %s (every %v)", channelID, t.interval)
}

// StopTracking cancels the channel's timer. A no-op for untracked channels.
func (t *Tracker) StopTracking(channelID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id, ok := t.entries[channelID]
	if !ok {
		return
	}
	t.cron.Remove(id)
	delete(t.entries, channelID)
	log.Printf("[INFO] portfolio tracking stopped for channel %s", channelID)
}

// StopAllTracking cancels every active timer.
func (t *Tracker) StopAllTracking() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for channelID, id := range t.entries {
		t.cron.Remove(id)
		log.Printf("[INFO] portfolio tracking stopped for channel %s", channelID)
	}
	t.entries = make(map[string]cron.EntryID)
}

// IsTracking reports whether a timer is registered for the channel.
func (t *Tracker) IsTracking(channelID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[channelID]
	return ok
}

// TrackedChannels returns the ids of all tracked channels.
func (t *Tracker) TrackedChannels() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.entries))
	for id := range t.entries {
		out = append(out, id)
	}
	return out
}

// ActiveTimers reports how many repeating timers are currently registered.
func (t *Tracker) ActiveTimers() int {
	return len(t.cron.Entries())
}

// RunOnce executes one summary tick immediately, outside the schedule.
func (t *Tracker) RunOnce(channelID string) { t.tick(channelID) }

func (t *Tracker) tick(channelID string) {
	if t.calendar.IsBreak() {
		return
	}

	scope := store.Scope{OwnerID: t.ownerID, ChannelID: channelID}
	sum, err := t.service.Details(scope)
	if err != nil {
		log.Printf("[ERROR] portfolio tick for channel %s: %v", channelID, err)
		return
	}
	// Empty portfolio, or every quote failed this tick: nothing to report.
	if len(sum.Positions) == 0 {
		return
	}

	movers := valuation.TopMovers(sum.Positions, t.topN)
	text := notifier.FormatPortfolioSummary(sum, movers)
	if err := t.notifier.Notify(channelID, text); err != nil {
		log.Printf("[ERROR] send portfolio summary to channel %s: %v", channelID, err)
	}
}
