package db

import "time"

type Consultation struct {
	ID              int       `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Company         string    `json:"company"`
	Phone           string    `json:"phone"`
	Reason          string    `json:"reason"`
	Notes           string    `json:"notes"`
	BookingType     string    `json:"booking_type"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	CalendarEventID string    `json:"calendar_event_id"`
	CreatedAt       time.Time `json:"created_at"`
}

type EventRegistration struct {
	ID               int       `json:"id"`
	FullName         string    `json:"full_name"`
	Email            string    `json:"email"`
	EventName        string    `json:"event_name"`
	EventDescription string    `json:"event_description"`
	EventTime        time.Time `json:"event_dt_utc"`
	CreatedAt        time.Time `json:"created_at"`
}

type NewsletterSubscription struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type Admin struct {
	ID           int
	Email        string
	PasswordHash string
}
