package billing

import "time"

// Clock supplies "now" to the layers that need wall-clock time. Core functions
// never read it themselves; they receive today/now as a parameter.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the process clock in Location (UTC when nil).
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now().UTC()
	}
	return time.Now().In(c.Location)
}

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// StartOfDay returns the calendar day of t, as observed in t's location, at
// midnight UTC. Billing dates are civil dates: they are stored in DATE columns
// and must not move when the server or the driver sits in another zone.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddMonths adds n calendar months keeping the day-of-month when it exists in
// the target month and clamping to the month's last day otherwise
// (Jan 31 + 1 => Feb 29 in a leap year).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())

	// day 0 of the following month is the last day of this one
	lastDay := time.Date(first.Year(), first.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// DaysBetween returns the number of calendar days from -> to (negative when to
// is earlier). Only the civil dates matter, so DST shifts do not leak in.
func DaysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// MonthLabel renders the month a payment covers, e.g. "February 2024".
func MonthLabel(t time.Time) string {
	return t.Format("January 2006")
}
