package entities

import "time"

// BusySlot is an interval during which the calendar owner cannot be booked.
type BusySlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Slot is a candidate meeting start rendered for a viewer.
type Slot struct {
	Display   string `json:"display"`
	Value     string `json:"value"`
	LocalTime string `json:"localTime"`
	Available bool   `json:"available"`
}

type DayAvailability struct {
	Date     string `json:"date"`
	Disabled bool   `json:"disabled"`
	Slots    []Slot `json:"slots"`
}

type AvailabilityResponse struct {
	BusySlots []BusySlot `json:"busySlots"`
}

type MonthAvailabilityResponse struct {
	Month    string            `json:"month"`
	Timezone string            `json:"timezone"`
	Start    time.Time         `json:"start"`
	End      time.Time         `json:"end"`
	Days     []DayAvailability `json:"days"`
}
