// Package biztime provides utilities for business timezone calculations.
// All storage and transport use UTC. The business timezone is only used
// for calculating date boundaries: usage period keys and day-of-month
// projections must be stable for the customer, not the server.
package biztime

import (
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultTimezone is the default business timezone.
	DefaultTimezone = "UTC"
)

var (
	bizLocation     *time.Location
	bizLocationOnce sync.Once
	initErr         error
)

// Init initializes the business timezone. Should be called once at startup.
// If tz is empty, defaults to UTC.
func Init(tz string) error {
	bizLocationOnce.Do(func() {
		if tz == "" {
			tz = DefaultTimezone
		}
		bizLocation, initErr = time.LoadLocation(tz)
	})
	return initErr
}

// MustInit initializes the business timezone and panics on error.
func MustInit(tz string) {
	if err := Init(tz); err != nil {
		panic(fmt.Sprintf("failed to initialize business timezone %q: %v", tz, err))
	}
}

// Location returns the business timezone location, auto-initializing with
// the default timezone when not explicitly initialized.
func Location() *time.Location {
	if bizLocation == nil {
		if err := Init(""); err != nil {
			panic(fmt.Sprintf("biztime: failed to auto-initialize with default timezone: %v", err))
		}
	}
	return bizLocation
}

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// PeriodKey returns the coarse monthly bucket key (YYYY-MM) for t in the
// business timezone. Usage counters reset on this boundary.
func PeriodKey(t time.Time) string {
	return t.In(Location()).Format("2006-01")
}

// CurrentPeriodKey returns the period key for the current wall-clock time.
func CurrentPeriodKey() string {
	return PeriodKey(NowUTC())
}

// DayOfMonth returns the day-of-month of t in the business timezone,
// floored at 1 so it is always safe as a divisor.
func DayOfMonth(t time.Time) int {
	day := t.In(Location()).Day()
	if day < 1 {
		return 1
	}
	return day
}

// MonthStart returns the UTC instant at which the business-timezone month
// containing t begins.
func MonthStart(t time.Time) time.Time {
	local := t.In(Location())
	start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, Location())
	return start.UTC()
}
