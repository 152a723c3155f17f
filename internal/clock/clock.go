// Package clock supplies the current instant to the bot and the sweeper.
package clock

import "time"

// Clock returns the current UTC instant.
type Clock interface {
	Now() time.Time
}

type system struct{}

// System returns the wall clock.
func System() Clock {
	return system{}
}

func (system) Now() time.Time {
	return time.Now().UTC()
}

// Fixed is a clock frozen at a settable instant.
type Fixed struct {
	T time.Time
}

// Now returns the frozen instant in UTC.
func (f *Fixed) Now() time.Time {
	return f.T.UTC()
}

// Advance moves the frozen instant forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.T = f.T.Add(d)
}

// LocalHour renders t in loc and returns its hour of day.
func LocalHour(t time.Time, loc *time.Location) int {
	return t.In(loc).Hour()
}

// EndOfDay returns the last instant of t's calendar day in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	y, m, d := local.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), loc)
}

// ClockLayout renders a time of day as in "03:04 PM".
const ClockLayout = "03:04 PM"
