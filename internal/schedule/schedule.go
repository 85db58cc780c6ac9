package schedule

import (
	"fmt"
	"time"
)

// Event is a busy interval on the remote calendar. Immutable once fetched;
// it lives for the duration of one availability query.
type Event struct {
	ID       string    `json:"id"`
	Summary  string    `json:"summary"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	TimeZone string    `json:"timeZone"`
	Creator  string    `json:"creator"`
	Created  time.Time `json:"created"`
}

// Slot is a 30-minute candidate booking window within working hours.
type Slot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// Working hours: on-the-hour and half-hour starts, no 12:00 hour (lunch).
var workingHours = []int{9, 10, 11, 13, 14, 15, 16, 17}

// SlotDuration is the fixed appointment length.
const SlotDuration = 30 * time.Minute

// Grid returns the candidate start times for any day, in ascending order.
// Two slots per working hour, 16 total.
func Grid() []string {
	grid := make([]string, 0, len(workingHours)*2)
	for _, hour := range workingHours {
		grid = append(grid, fmt.Sprintf("%02d:00", hour))
		grid = append(grid, fmt.Sprintf("%02d:30", hour))
	}
	return grid
}

// Occupied reports whether any event's [start, end) interval intersects the
// slot's [start, end). Half-open convention: a slot starting exactly at an
// event's end is free; a slot starting exactly at an event's start is occupied.
func Occupied(slotStart, slotEnd time.Time, events []Event) bool {
	for _, ev := range events {
		if slotStart.Before(ev.End) && slotEnd.After(ev.Start) {
			return true
		}
	}
	return false
}

// ParseClock validates and splits an "HH:MM" slot label.
func ParseClock(s string) (hour, minute int, err error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	if _, err := fmt.Sscanf(s, "%02d:%02d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return hour, minute, nil
}

// SlotBounds combines a calendar day with an "HH:MM" label into the slot's
// absolute [start, end) pair in day's location, with seconds forced to zero.
func SlotBounds(day time.Time, clock string) (start, end time.Time, err error) {
	hour, minute, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start = time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
	return start, start.Add(SlotDuration), nil
}
