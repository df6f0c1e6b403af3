package session

import (
	"time"

	"github.com/scmhub/calendar"

	"stocks-dashboard/src/logger"
	"stocks-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// Market session state
// -----------------------------------------------------------------------------

type State int

const (
	StateOpen State = iota
	StateClosedWeekday
	StateWeekend
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosedWeekday:
		return "closed"
	case StateWeekend:
		return "weekend"
	}
	return "unknown"
}

// MarketStatus is the classification result: the session state plus the
// date (midnight, venue zone) of the most recent completed trading session.
type MarketStatus struct {
	State       State
	LastSession time.Time
}

// -----------------------------------------------------------------------------
// Classifier
// -----------------------------------------------------------------------------

// Classifier maps a wall-clock instant to the session state for a single
// venue with fixed regular hours. Business-day checks use the venue
// calendar when available and degrade to Mon-Fri otherwise.
type Classifier struct {
	Location     *time.Location
	Calendar     *calendar.Calendar
	Fallback     bool
	openMinutes  int
	closeMinutes int
}

// -----------------------------------------------------------------------------

// NewClassifier builds a classifier from the chart settings. US equities:
// XNYS, 9:30-16:00 America/New_York.
func NewClassifier(cfg models.MChartSettings, openMinutes, closeMinutes int, log *logger.Logger) *Classifier {
	c := &Classifier{
		openMinutes:  openMinutes,
		closeMinutes: closeMinutes,
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Warning("Failed to load timezone '%s', falling back to UTC: %v", cfg.Timezone, err)
		loc = time.UTC
	}
	c.Location = loc

	cal := calendar.GetCalendar("xnys")
	if cal == nil {
		log.Warning("Failed to load XNYS calendar. Using simple Mon-Fri fallback.")
		c.Fallback = true
	} else {
		c.Calendar = cal
	}

	return c
}

// -----------------------------------------------------------------------------

// Classify returns the session state at t and the most recent completed
// session's date. Pure: no I/O, always returns a value. The venue time
// zone is applied before reading hour/minute/weekday, never the caller's.
func (c *Classifier) Classify(t time.Time) MarketStatus {
	local := t.In(c.Location)
	day := midnight(local)

	wd := local.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return MarketStatus{State: StateWeekend, LastSession: c.lastBusinessDayBefore(day)}
	}

	// Weekday market holiday behaves like a closed weekday before open:
	// the previous business day is the last completed session.
	if !c.isBusinessDay(day) {
		return MarketStatus{State: StateClosedWeekday, LastSession: c.lastBusinessDayBefore(day)}
	}

	minutes := local.Hour()*60 + local.Minute()
	switch {
	case minutes < c.openMinutes:
		return MarketStatus{State: StateClosedWeekday, LastSession: c.lastBusinessDayBefore(day)}
	case minutes >= c.closeMinutes:
		return MarketStatus{State: StateClosedWeekday, LastSession: day}
	default:
		return MarketStatus{State: StateOpen, LastSession: day}
	}
}

// -----------------------------------------------------------------------------

// IsOpen reports whether the regular session is in progress at t.
func (c *Classifier) IsOpen(t time.Time) bool {
	return c.Classify(t).State == StateOpen
}

// -----------------------------------------------------------------------------

// NextOpen returns the next session open at or after t.
func (c *Classifier) NextOpen(t time.Time) time.Time {
	local := t.In(c.Location)
	day := midnight(local)

	minutes := local.Hour()*60 + local.Minute()
	if c.isBusinessDay(day) && minutes < c.openMinutes {
		return day.Add(time.Duration(c.openMinutes) * time.Minute)
	}

	for {
		day = day.AddDate(0, 0, 1)
		if c.isBusinessDay(day) {
			return day.Add(time.Duration(c.openMinutes) * time.Minute)
		}
	}
}

// -----------------------------------------------------------------------------
// Business day helpers
// -----------------------------------------------------------------------------

func (c *Classifier) isBusinessDay(day time.Time) bool {
	if c.Fallback || c.Calendar == nil {
		wd := day.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	}
	return c.Calendar.IsBusinessDay(day)
}

// lastBusinessDayBefore walks backward from (and excluding) day:
// Saturday and Sunday map to Friday, Monday maps to Friday.
func (c *Classifier) lastBusinessDayBefore(day time.Time) time.Time {
	prev := day.AddDate(0, 0, -1)
	for !c.isBusinessDay(prev) {
		prev = prev.AddDate(0, 0, -1)
	}
	return prev
}

// -----------------------------------------------------------------------------

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
