// Package expiry derives the renewal status of a policy from its end date and
// a reference instant. It is the single place where "days remaining" and
// "expiring soon" are computed; every listing and view routes through it.
//
// All functions are pure. The reference instant is always passed in, so the
// clock can be substituted freely in tests.
package expiry

import (
	"time"
)

// DefaultWindowDays is the look-ahead window used by the dashboard and the
// reminders list.
const DefaultWindowDays = 7

// Status is the derived lifecycle state of a policy.
type Status string

const (
	StatusActive       Status = "active"
	StatusExpiringSoon Status = "expiring_soon"
	StatusExpired      Status = "expired"
)

// Result is the derived state of a single policy at a reference instant.
type Result struct {
	Status        Status `json:"status"`
	DaysRemaining int    `json:"days_remaining"`
}

// Date truncates t to its calendar date in loc and returns that date as
// midnight UTC. A nil loc means UTC. Policy dates are stored in this form.
func Date(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysRemaining returns the whole number of calendar days from the date of
// now (in loc) to the calendar date of end. It is negative once end has passed
// and zero when end is today. End dates are stored as UTC midnights, so end
// is read in UTC whatever Location the driver attached to it.
func DaysRemaining(end, now time.Time, loc *time.Location) int {
	e := Date(end, time.UTC)
	n := Date(now, loc)
	// Both are UTC midnights; whole seconds avoid Duration saturation past ~292 years.
	return int((e.Unix() - n.Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

// Classify maps a days-remaining value to a Status for the given window.
// A negative window is treated as zero.
func Classify(daysRemaining, windowDays int) Status {
	if windowDays < 0 {
		windowDays = 0
	}
	switch {
	case daysRemaining < 0:
		return StatusExpired
	case daysRemaining <= windowDays:
		return StatusExpiringSoon
	default:
		return StatusActive
	}
}

// Evaluate computes the Result for end at now using the default window and UTC.
func Evaluate(end, now time.Time) Result {
	return Calculator{}.Evaluate(end, now)
}

// Calculator bundles the window and time zone used to derive statuses.
// The zero value uses DefaultWindowDays and UTC.
type Calculator struct {
	// WindowDays is the "expiring soon" look-ahead; <= 0 means DefaultWindowDays.
	WindowDays int
	// Location decides which calendar day "now" falls on; nil means UTC.
	Location *time.Location
}

// Window returns the effective look-ahead window in days.
func (c Calculator) Window() int {
	if c.WindowDays <= 0 {
		return DefaultWindowDays
	}
	return c.WindowDays
}

// Evaluate computes status and days remaining for a policy ending on end.
func (c Calculator) Evaluate(end, now time.Time) Result {
	d := DaysRemaining(end, now, c.Location)
	return Result{Status: Classify(d, c.Window()), DaysRemaining: d}
}

// Today returns the calendar date of now in the calculator's location.
func (c Calculator) Today(now time.Time) time.Time {
	return Date(now, c.Location)
}

// Range returns the inclusive [from, to] calendar-date bounds of policies whose
// days remaining fall within [0, days] at now. Callers use it to build store
// filters so that the store and Evaluate agree on the boundaries.
func (c Calculator) Range(now time.Time, days int) (from, to time.Time) {
	from = c.Today(now)
	return from, from.AddDate(0, 0, days)
}

// Midnight returns the instant the calendar date of d (read from its own
// year, month and day fields) begins in the calculator's location. It turns a
// wire date such as "2025-03-10" into an "as of" instant.
func (c Calculator) Midnight(d time.Time) time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}
