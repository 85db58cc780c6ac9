package schedule

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// DefaultTimezone is the single zone all slot arithmetic happens in.
const DefaultTimezone = "America/New_York"

// DayFormat is the wire format for a calendar day.
const DayFormat = "2006-01-02"

// LoadZone resolves the configured calendar timezone. The tzdata import above
// keeps this working on images without a system zone database.
func LoadZone(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

// ParseDay parses a "YYYY-MM-DD" day into midnight of that day in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(DayFormat, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q: want YYYY-MM-DD", s)
	}
	return day, nil
}

// DayBounds returns the start-of-day and end-of-day instants for the day
// containing t, in t's location. The end bound is the next day's midnight,
// so the range stays correct across DST transitions.
func DayBounds(t time.Time) (start, end time.Time) {
	start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	end = time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, t.Location())
	return start, end
}

// StartOfWeek returns midnight of the Monday of t's week, in t's location.
func StartOfWeek(t time.Time) time.Time {
	day, _ := DayBounds(t)
	offset := int(day.Weekday()-time.Monday+7) % 7
	return day.AddDate(0, 0, -offset)
}

// WeekDays returns the seven days starting at anchor.
func WeekDays(anchor time.Time) []time.Time {
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = anchor.AddDate(0, 0, i)
	}
	return days
}
