package models

import (
	"fmt"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

// Clock is a wall-clock time of day, stored as minutes since midnight
type Clock int

// NewClock builds a Clock from hours and minutes
func NewClock(hour, minute int) Clock {
	return Clock(hour*60 + minute)
}

// ParseClock parses an HH:MM string
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return NewClock(t.Hour(), t.Minute()), nil
}

// String formats the clock as HH:MM
func (c Clock) String() string {
	m := int(c) % minutesPerDay
	if m < 0 {
		m += minutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// Add returns the clock shifted by d minutes
func (c Clock) Add(minutes int) Clock {
	return c + Clock(minutes)
}

// MarshalText implements encoding.TextMarshaler
func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Clock) UnmarshalText(b []byte) error {
	parsed, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// DurationHours returns the hours between start and end. An end earlier
// than the start is read as crossing midnight.
func DurationHours(start, end Clock) float64 {
	d := int(end - start)
	if d < 0 {
		d += minutesPerDay
	}
	return float64(d) / 60.0
}

// Overlap reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// Touching boundaries do not overlap. An interval ending before it starts
// runs past midnight.
func Overlap(aStart, aEnd, bStart, bEnd Clock) bool {
	aEnd, bEnd = pastMidnight(aStart, aEnd), pastMidnight(bStart, bEnd)
	return aStart < bEnd && bStart < aEnd
}

func pastMidnight(start, end Clock) Clock {
	if end < start {
		return end + minutesPerDay
	}
	return end
}
