package availability

import (
	"sort"
	"time"

	"daveenci/internal/entities"
)

const (
	DefaultTimezone = "America/Chicago"
	DefaultDuration = 45 * time.Minute
	DefaultBuffer   = 10 * time.Minute
	rangePadDays    = 7
)

var DefaultHours = []int{6, 7, 8, 9, 10, 11}

// Rules describes when the calendar owner takes meetings.
type Rules struct {
	Location *time.Location
	Hours    []int
	Duration time.Duration
	Buffer   time.Duration
}

// AvailabilityRange returns the UTC window covering ref's month padded by a week
// on each side. The upper bound is the last millisecond of its day.
func AvailabilityRange(ref time.Time) (time.Time, time.Time) {
	y, m, _ := ref.Date()
	loc := ref.Location()
	start := time.Date(y, m, 1-rangePadDays, 0, 0, 0, 0, loc)
	// Day 7 of the next month is a week past the last day of this one.
	end := time.Date(y, m+1, rangePadDays, 23, 59, 59, int(999*time.Millisecond), loc)
	return start.UTC(), end.UTC()
}

// SlotsForDate returns hour:00 in loc on day for each hour, as UTC instants in
// ascending order.
func SlotsForDate(day Day, hours []int, loc *time.Location) []time.Time {
	slots := make([]time.Time, 0, len(hours))
	for _, h := range hours {
		slots = append(slots, day.At(h, loc).UTC())
	}
	// DST transitions can map distinct local hours out of order.
	sort.Slice(slots, func(i, j int) bool { return slots[i].Before(slots[j]) })
	return slots
}

// RenderSlot formats t as a viewer-local clock time, e.g. "9:00 AM".
func RenderSlot(t time.Time, viewer *time.Location) string {
	return t.In(viewer).Format("3:04 PM")
}

// BuildDisplaySlots pairs each slot of day with its rendering in viewer's zone.
// Available is left false; see Checker.DaySlots.
func BuildDisplaySlots(day Day, viewer *time.Location, hours []int, loc *time.Location) []entities.Slot {
	instants := SlotsForDate(day, hours, loc)
	slots := make([]entities.Slot, 0, len(instants))
	for _, t := range instants {
		slots = append(slots, entities.Slot{
			Display:   RenderSlot(t, viewer),
			Value:     t.Format(time.RFC3339),
			LocalTime: viewer.String(),
		})
	}
	return slots
}

// CheckSlotAvailability reports whether a meeting starting at start fits between
// busy intervals with buffer on both sides. Slots starting before now never fit.
func CheckSlotAvailability(start time.Time, busy []entities.BusySlot, duration, buffer time.Duration, now time.Time) bool {
	if start.Before(now) {
		return false
	}
	paddedStart := start.Add(-buffer)
	paddedEnd := start.Add(duration + buffer)
	for _, b := range busy {
		if paddedStart.Before(b.End) && paddedEnd.After(b.Start) {
			return false
		}
	}
	return true
}

// MergeBusy concatenates both sources. Overlapping entries are kept: callers
// only ask whether any overlap exists, so duplicates must not be counted.
func MergeBusy(calendar, bookings []entities.BusySlot) []entities.BusySlot {
	merged := make([]entities.BusySlot, 0, len(calendar)+len(bookings))
	merged = append(merged, calendar...)
	return append(merged, bookings...)
}
