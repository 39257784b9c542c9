package follow

import (
	"log"
	"sync"
	"time"

	"StockSentry/internal/market"
	"StockSentry/internal/notifier"
	"StockSentry/internal/quote"

	"github.com/robfig/cron/v3"
)

// Notifier delivers a finished notification to a channel.
type Notifier interface {
	Notify(channelID, text string) error
}

// Tracker checks each channel's follow list on a repeating timer and fires
// threshold alerts. Same timer discipline as the portfolio tracker: at most
// one timer per channel, tick errors logged and contained.
type Tracker struct {
	mu      sync.Mutex
	cron    *cron.Cron
	entries map[string]cron.EntryID

	service  *Service
	fetcher  quote.Fetcher
	calendar *market.Calendar
	notifier Notifier
	interval time.Duration
}

func NewTracker(svc *Service, fetcher quote.Fetcher, cal *market.Calendar, n Notifier, interval time.Duration) *Tracker {
	return &Tracker{
		cron:     cron.New(),
		entries:  make(map[string]cron.EntryID),
		service:  svc,
		fetcher:  fetcher,
		calendar: cal,
		notifier: n,
		interval: interval,
	}
}

// Run starts the timer runtime.
func (t *Tracker) Run() { t.cron.Start() }

// Shutdown stops the timer runtime. In-flight ticks run to completion.
func (t *Tracker) Shutdown() { t.cron.Stop() }

// StartTracking registers the repeating alert check for a channel, replacing
// any existing timer.
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
	log.Printf("[INFO] follow tracking started for channel %s (every %v)", channelID, t.interval)
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
	log.Printf("[INFO] follow tracking stopped for channel %s", channelID)
}

// StopAllTracking cancels every active timer.
func (t *Tracker) StopAllTracking() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for channelID, id := range t.entries {
		t.cron.Remove(id)
		log.Printf("[INFO] follow tracking stopped for channel %s", channelID)
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

// ActiveTimers reports how many repeating timers are currently registered.
func (t *Tracker) ActiveTimers() int {
	return len(t.cron.Entries())
}

// RunOnce executes one alert check immediately, outside the schedule.
func (t *Tracker) RunOnce(channelID string) { t.tick(channelID) }

func (t *Tracker) tick(channelID string) {
	if t.calendar.IsBreak() {
		return
	}

	list, err := t.service.Get(channelID)
	if err != nil {
		log.Printf("[ERROR] follow tick for channel %s: %v", channelID, err)
		return
	}
	if len(list.Stocks) == 0 {
		return
	}

	for _, entry := range list.Stocks {
		// One fetch per symbol, shared across all of its points this tick.
		current, err := t.fetcher.FetchCurrentPrice(entry.Symbol)
		if err != nil {
			log.Printf("[WARN] price unavailable for %s, skipping this tick: %v", entry.Symbol, err)
			continue
		}
		for _, p := range entry.Points {
			for _, trig := range Triggers(p, current) {
				var text string
				switch trig {
				case TriggerBuy:
					text = notifier.FormatBuyAlert(entry.Symbol, current, p)
				case TriggerSell:
					text = notifier.FormatSellAlert(entry.Symbol, current, p)
				case TriggerStopLoss:
					text = notifier.FormatStopLossAlert(entry.Symbol, current, p)
				}
				if err := t.notifier.Notify(channelID, text); err != nil {
					log.Printf("[ERROR] send follow alert to channel %s: %v", channelID, err)
				}
			}
		}
	}
}
