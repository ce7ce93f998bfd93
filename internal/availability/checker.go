package availability

import (
	"time"

	"daveenci/internal/entities"
)

// Checker applies Rules against a busy set. Now is injectable for tests.
type Checker struct {
	Rules Rules
	Now   func() time.Time
}

func NewChecker(rules Rules) *Checker {
	return &Checker{Rules: rules, Now: time.Now}
}

func (c *Checker) IsAvailable(start time.Time, busy []entities.BusySlot) bool {
	return CheckSlotAvailability(start, busy, c.Rules.Duration, c.Rules.Buffer, c.Now())
}

// IsDayDisabled is true for days before today and for days with no bookable slot.
func (c *Checker) IsDayDisabled(day, today Day, busy []entities.BusySlot) bool {
	if day.Before(today) {
		return true
	}
	for _, s := range SlotsForDate(day, c.Rules.Hours, c.Rules.Location) {
		if c.IsAvailable(s, busy) {
			return false
		}
	}
	return true
}

// DaySlots renders day for a viewer, flagging each slot's availability.
// Today is taken in the viewer's zone.
func (c *Checker) DaySlots(day Day, viewer *time.Location, busy []entities.BusySlot) entities.DayAvailability {
	today := DayOf(c.Now().In(viewer))
	// Both come from SlotsForDate, so indexes line up.
	instants := SlotsForDate(day, c.Rules.Hours, c.Rules.Location)
	slots := BuildDisplaySlots(day, viewer, c.Rules.Hours, c.Rules.Location)
	for i, t := range instants {
		slots[i].Available = c.IsAvailable(t, busy)
	}
	return entities.DayAvailability{
		Date:     day.String(),
		Disabled: c.IsDayDisabled(day, today, busy),
		Slots:    slots,
	}
}

// Month returns DaySlots for every day of month's calendar month.
func (c *Checker) Month(month Day, viewer *time.Location, busy []entities.BusySlot) []entities.DayAvailability {
	first := Day{Year: month.Year, Month: month.Month, Day: 1}
	var days []entities.DayAvailability
	for d := first; d.Month == first.Month; d = d.AddDays(1) {
		days = append(days, c.DaySlots(d, viewer, busy))
	}
	return days
}
