package core

import "fmt"

// TimeOfDay is minutes since midnight. It orders slots within a day and
// compares against the wall clock without involving dates or zones.
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM" (24h). Any malformed input, including
// out-of-range components, yields midnight. The schedule must keep
// working even when a generated time field is garbage, so this function
// is total by design of the data flow, not as a convenience.
func ParseTimeOfDay(s string) TimeOfDay {
	if len(s) != 5 || s[2] != ':' {
		return 0
	}
	h, ok1 := twoDigits(s[0], s[1])
	m, ok2 := twoDigits(s[3], s[4])
	if !ok1 || !ok2 || h > 23 || m > 59 {
		return 0
	}
	return TimeOfDay(h*60 + m)
}

// MinutesOfDay converts a clock reading to a TimeOfDay.
func MinutesOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// Hour returns the hour component.
func (t TimeOfDay) Hour() int { return int(t) / 60 }

// Minute returns the minute component.
func (t TimeOfDay) Minute() int { return int(t) % 60 }

// String formats the time back to "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}
