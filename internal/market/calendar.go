package market

import (
	"fmt"
	"time"
)

// Lunch break window, fixed at 11:30-13:00 local market time.
const (
	breakStartMinutes = 11*60 + 30
	breakEndMinutes   = 13 * 60
)

// Calendar answers open/break questions about a single stock market with a
// fixed time zone and fixed daily session hours.
type Calendar struct {
	loc       *time.Location
	openHour  int
	closeHour int

	// Now supplies the wall clock and may be replaced in tests.
	Now func() time.Time
}

// NewCalendar creates a Calendar for the given IANA time zone and session
// hours. Hours are local to the market, not to the process.
func NewCalendar(timezone string, openHour, closeHour int) (*Calendar, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load market timezone %q: %w", timezone, err)
	}
	if openHour < 0 || closeHour > 24 || openHour >= closeHour {
		return nil, fmt.Errorf("invalid market hours [%d, %d)", openHour, closeHour)
	}
	return &Calendar{
		loc:       loc,
		openHour:  openHour,
		closeHour: closeHour,
		Now:       time.Now,
	}, nil
}

// IsOpen reports whether the market is in session: a weekday with the local
// hour inside [open, close).
func (c *Calendar) IsOpen() bool {
	now := c.Now().In(c.loc)
	wd := now.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	h := now.Hour()
	return h >= c.openHour && h < c.closeHour
}

// IsBreak reports whether background polling should pause: weekends, outside
// session hours, and the mid-day lunch window. IsBreak is true whenever
// IsOpen is false; the converse does not hold.
func (c *Calendar) IsBreak() bool {
	now := c.Now().In(c.loc)
	wd := now.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return true
	}
	h := now.Hour()
	if h < c.openHour || h >= c.closeHour {
		return true
	}
	mins := h*60 + now.Minute()
	return mins >= breakStartMinutes && mins < breakEndMinutes
}

// LatestMarketTime returns the most recent in-session instant: now while the
// market is open, otherwise the close time of the latest finished session.
// Weekends and Monday pre-open skip back to Friday.
func (c *Calendar) LatestMarketTime() time.Time {
	now := c.Now().In(c.loc)

	switch now.Weekday() {
	case time.Saturday:
		return c.closeOn(now.AddDate(0, 0, -1))
	case time.Sunday:
		return c.closeOn(now.AddDate(0, 0, -2))
	}

	if now.Hour() < c.openHour {
		if now.Weekday() == time.Monday {
			return c.closeOn(now.AddDate(0, 0, -3))
		}
		return c.closeOn(now.AddDate(0, 0, -1))
	}
	if now.Hour() >= c.closeHour {
		return c.closeOn(now)
	}
	return now
}

func (c *Calendar) closeOn(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.closeHour, 0, 0, 0, c.loc)
}
