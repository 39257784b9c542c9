package scheduler

import (
	"errors"
	"strings"
	"testing"
	"time"

	"StockSentry/internal/follow"
	"StockSentry/internal/market"
	"StockSentry/internal/notifier"
	"StockSentry/internal/portfolio"
	"StockSentry/internal/quote"
	"StockSentry/internal/store"
)

type fakeTransport struct {
	channels    []notifier.Channel
	channelsErr error
	closed      int
}

func (f *fakeTransport) Channels() ([]notifier.Channel, error) {
	return f.channels, f.channelsErr
}

func (f *fakeTransport) Close() error {
	f.closed++
	return nil
}

type nopNotifier struct{}

func (nopNotifier) Notify(channelID, text string) error { return nil }

func testCalendar(t *testing.T) *market.Calendar {
	t.Helper()
	cal, err := market.NewCalendar("Asia/Ho_Chi_Minh", 9, 15)
	if err != nil {
		t.Fatalf("new calendar: %v", err)
	}
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	at := time.Date(2026, 9, 1, 10, 0, 0, 0, loc)
	cal.Now = func() time.Time { return at }
	return cal
}

func newTestScheduler(t *testing.T, transport Transport) *Scheduler {
	t.Helper()
	cal := testCalendar(t)
	st := store.NewMemoryStore()
	fetcher := &quote.MockFetcher{}
	pt := portfolio.NewTracker(portfolio.NewService(st, fetcher), cal, nopNotifier{}, "bot-1", time.Minute, 3)
	ft := follow.NewTracker(follow.NewService(st, "bot-1"), fetcher, cal, nopNotifier{}, time.Minute)
	return New(transport, pt, ft)
}

func TestInitialize_Twice(t *testing.T) {
	s := newTestScheduler(t, &fakeTransport{})
	defer s.Destroy()

	if err := s.Initialize(); err != nil {
		t.Fatalf("first Initialize: %v", err)
	}
	if err := s.Initialize(); !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("second Initialize = %v, want ErrAlreadyInitialized", err)
	}
}

func TestStartAllTrackers_RequiresInitialize(t *testing.T) {
	s := newTestScheduler(t, &fakeTransport{})
	if err := s.StartAllTrackers(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("StartAllTrackers before Initialize = %v, want ErrNotInitialized", err)
	}
}

func TestStartAllTrackers(t *testing.T) {
	ft := &fakeTransport{channels: []notifier.Channel{{ID: "ch1"}, {ID: "ch2"}}}
	s := newTestScheduler(t, ft)
	defer s.Destroy()

	if err := s.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := s.StartAllTrackers(); err != nil {
		t.Fatalf("StartAllTrackers: %v", err)
	}
	for _, ch := range []string{"ch1", "ch2"} {
		if !s.Portfolio.IsTracking(ch) {
			t.Errorf("portfolio tracker not tracking %s", ch)
		}
		if !s.Follow.IsTracking(ch) {
			t.Errorf("follow tracker not tracking %s", ch)
		}
	}
}

func TestStartAllTrackers_EnumerationError(t *testing.T) {
	ft := &fakeTransport{channelsErr: errors.New("api down")}
	s := newTestScheduler(t, ft)
	defer s.Destroy()

	if err := s.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := s.StartAllTrackers(); err == nil {
		t.Error("expected error when channel enumeration fails")
	}
}

func TestStopChannelTracking(t *testing.T) {
	s := newTestScheduler(t, &fakeTransport{})
	defer s.Destroy()

	if err := s.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	s.StartChannelTracking("ch1")
	s.StopChannelTracking("ch1")
	if s.Portfolio.IsTracking("ch1") || s.Follow.IsTracking("ch1") {
		t.Error("channel still tracked after StopChannelTracking")
	}

	// Never-tracked channels are safe to stop.
	s.StopChannelTracking("unknown")
}

func TestDestroy_Idempotent(t *testing.T) {
	ft := &fakeTransport{channels: []notifier.Channel{{ID: "ch1"}}}
	s := newTestScheduler(t, ft)

	if err := s.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := s.StartAllTrackers(); err != nil {
		t.Fatalf("StartAllTrackers: %v", err)
	}

	s.Destroy()
	s.Destroy()
	if ft.closed != 1 {
		t.Errorf("transport closed %d times, want 1", ft.closed)
	}
	if s.Portfolio.IsTracking("ch1") {
		t.Error("channel still tracked after Destroy")
	}
}

func TestDestroy_AllowsReinitialize(t *testing.T) {
	s := newTestScheduler(t, &fakeTransport{})

	if err := s.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	s.Destroy()
	if err := s.Initialize(); err != nil {
		t.Errorf("Initialize after Destroy = %v, want nil", err)
	}
	s.Destroy()
}

func newTestCommander(t *testing.T) (*Commander, *Scheduler) {
	t.Helper()
	cal := testCalendar(t)
	st := store.NewMemoryStore()
	fetcher := &quote.MockFetcher{
		Current:  map[string]float64{"AAA": 22.0},
		Previous: map[string]float64{"AAA": 21.0},
	}
	psvc := portfolio.NewService(st, fetcher)
	fsvc := follow.NewService(st, "bot-1")
	pt := portfolio.NewTracker(psvc, cal, nopNotifier{}, "bot-1", time.Minute, 3)
	ftr := follow.NewTracker(fsvc, fetcher, cal, nopNotifier{}, time.Minute)
	s := New(&fakeTransport{}, pt, ftr)
	return &Commander{Scheduler: s, Portfolio: psvc, Follow: fsvc, Calendar: cal}, s
}

func TestHandleCommand_AddListRemove(t *testing.T) {
	c, _ := newTestCommander(t)

	reply := c.HandleCommand("ch1", "user-1", "!add aaa 100 20")
	if !strings.Contains(reply, "AAA") || !strings.Contains(reply, "✅") {
		t.Errorf("!add reply = %q", reply)
	}

	reply = c.HandleCommand("ch1", "user-1", "!list")
	if !strings.Contains(reply, "AAA") {
		t.Errorf("!list reply = %q, want it to show AAA", reply)
	}

	reply = c.HandleCommand("ch1", "user-1", "!remove AAA")
	if !strings.Contains(reply, "✅") {
		t.Errorf("!remove reply = %q", reply)
	}
	reply = c.HandleCommand("ch1", "user-1", "!remove AAA")
	if !strings.Contains(reply, "not in the portfolio") {
		t.Errorf("!remove missing reply = %q", reply)
	}
}

func TestHandleCommand_AddUsageErrors(t *testing.T) {
	c, _ := newTestCommander(t)

	for _, cmd := range []string{"!add", "!add AAA", "!add AAA x y", "!add AAA 100"} {
		reply := c.HandleCommand("ch1", "user-1", cmd)
		if !strings.Contains(reply, "Usage") {
			t.Errorf("%q reply = %q, want usage", cmd, reply)
		}
	}
}

func TestHandleCommand_FollowUnfollow(t *testing.T) {
	c, _ := newTestCommander(t)

	reply := c.HandleCommand("ch1", "user-1", "!follow aaa 20 25 18")
	if !strings.Contains(reply, "AAA") || !strings.Contains(reply, "✅") {
		t.Errorf("!follow reply = %q", reply)
	}

	reply = c.HandleCommand("ch1", "user-1", "!watchlist")
	if !strings.Contains(reply, "AAA") {
		t.Errorf("!watchlist reply = %q, want it to show AAA", reply)
	}

	reply = c.HandleCommand("ch1", "user-1", "!unfollow AAA")
	if !strings.Contains(reply, "✅") {
		t.Errorf("!unfollow reply = %q", reply)
	}
	reply = c.HandleCommand("ch1", "user-1", "!unfollow AAA")
	if !strings.Contains(reply, "not on the follow list") {
		t.Errorf("!unfollow missing reply = %q", reply)
	}
}

func TestHandleCommand_FollowRejectsBadPoint(t *testing.T) {
	c, _ := newTestCommander(t)

	// Stop loss above entry fails validation.
	reply := c.HandleCommand("ch1", "user-1", "!follow AAA 20 25 21")
	if !strings.Contains(reply, "❌") {
		t.Errorf("invalid !follow reply = %q, want rejection", reply)
	}
}

func TestHandleCommand_TrackUntrack(t *testing.T) {
	c, s := newTestCommander(t)
	defer s.Destroy()
	if err := s.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	c.HandleCommand("ch1", "user-1", "!track")
	if !s.Portfolio.IsTracking("ch1") || !s.Follow.IsTracking("ch1") {
		t.Error("!track did not start both trackers")
	}
	c.HandleCommand("ch1", "user-1", "!untrack")
	if s.Portfolio.IsTracking("ch1") || s.Follow.IsTracking("ch1") {
		t.Error("!untrack did not stop both trackers")
	}
}

func TestHandleCommand_UnknownShowsHelp(t *testing.T) {
	c, _ := newTestCommander(t)

	reply := c.HandleCommand("ch1", "user-1", "!bogus")
	if !strings.Contains(reply, "Available commands") {
		t.Errorf("unknown command reply = %q, want help text", reply)
	}
	if got := c.HandleCommand("ch1", "user-1", "   "); got != "" {
		t.Errorf("blank input reply = %q, want empty", got)
	}
}
