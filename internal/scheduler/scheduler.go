package scheduler

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"StockSentry/internal/follow"
	"StockSentry/internal/notifier"
	"StockSentry/internal/portfolio"
)

var (
	// ErrAlreadyInitialized is returned when Initialize is called twice
	// without an intervening Destroy.
	ErrAlreadyInitialized = errors.New("scheduler already initialized")
	// ErrNotInitialized is returned when trackers are started before
	// Initialize.
	ErrNotInitialized = errors.New("scheduler not initialized")
)

// Transport is the slice of the chat client the scheduler needs: channel
// enumeration for startup and connection release on destroy.
type Transport interface {
	Channels() ([]notifier.Channel, error)
	Close() error
}

// Scheduler coordinates one portfolio tracker and one follow tracker across
// all channels. It is constructed explicitly and injected into the process
// entry point; there is no package-level instance.
type Scheduler struct {
	mu          sync.Mutex
	initialized bool

	transport Transport
	Portfolio *portfolio.Tracker
	Follow    *follow.Tracker
}

// New creates a scheduler. The scheduler takes ownership of the transport:
// Destroy closes it.
func New(transport Transport, pt *portfolio.Tracker, ft *follow.Tracker) *Scheduler {
	return &Scheduler{
		transport: transport,
		Portfolio: pt,
		Follow:    ft,
	}
}

// Initialize starts the tracker timer runtimes. Must be called exactly once
// before any tracking; calling it again without Destroy is an error.
func (s *Scheduler) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return ErrAlreadyInitialized
	}
	s.Portfolio.Run()
	s.Follow.Run()
	s.initialized = true
	log.Println("[INFO] scheduler initialized")
	return nil
}

// StartAllTrackers enumerates every reachable channel and starts both
// trackers for each. A failure on one channel or one tracker never blocks
// the others.
func (s *Scheduler) StartAllTrackers() error {
	s.mu.Lock()
	initialized := s.initialized
	s.mu.Unlock()
	if !initialized {
		return ErrNotInitialized
	}

	channels, err := s.transport.Channels()
	if err != nil {
		return fmt.Errorf("enumerate channels: %w", err)
	}
	log.Printf("[INFO] starting trackers for %d channels", len(channels))
	for _, ch := range channels {
		s.StartChannelTracking(ch.ID)
	}
	return nil
}

// StartChannelTracking starts both trackers for one channel. Each tracker is
// started independently so one failing start cannot prevent the other.
func (s *Scheduler) StartChannelTracking(channelID string) {
	s.Portfolio.StartTracking(channelID)
	s.Follow.StartTracking(channelID)
}

// StopChannelTracking stops both trackers for one channel. Safe for channels
// that were never tracked.
func (s *Scheduler) StopChannelTracking(channelID string) {
	s.Portfolio.StopTracking(channelID)
	s.Follow.StopTracking(channelID)
}

// Destroy stops every tracker, halts the timer runtimes and releases the
// transport. Idempotent; after Destroy the scheduler may be initialized
// again.
func (s *Scheduler) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Portfolio.StopAllTracking()
	s.Follow.StopAllTracking()
	s.Portfolio.Shutdown()
	s.Follow.Shutdown()
	if s.initialized {
		if err := s.transport.Close(); err != nil {
			log.Printf("[WARN] close transport: %v", err)
		}
	}
	s.initialized = false
	log.Println("[INFO] scheduler destroyed")
}

// RunSummariesNow triggers an immediate portfolio summary tick for every
// tracked channel (manual trigger / RUN_ON_START).
func (s *Scheduler) RunSummariesNow() {
	for _, channelID := range s.Portfolio.TrackedChannels() {
		s.Portfolio.RunOnce(channelID)
	}
}
