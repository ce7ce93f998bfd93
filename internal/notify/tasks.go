package notify

import (
	"strconv"
	"time"
)

const (
	TypeBookingCreated    = "notify:booking"
	TypeEventRegistered   = "notify:event"
	TypeNewsletterSignup  = "notify:newsletter"
	defaultHandlerTimeout = 30 * time.Second
)

// Keyed payloads carry the id of the record they announce. AsynqDispatcher
// uses it so a record is announced at most once.
type Keyed interface {
	TaskKey() string
}

type BookingPayload struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Company     string    `json:"company"`
	Phone       string    `json:"phone"`
	Reason      string    `json:"reason"`
	Notes       string    `json:"notes"`
	BookingType string    `json:"booking_type"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	EventID     string    `json:"event_id"`
	MeetLink    string    `json:"meet_link"`
}

type EventPayload struct {
	ID        int       `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	EventName string    `json:"event_name"`
	EventDate time.Time `json:"event_date"`
}

type NewsletterPayload struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

func (p BookingPayload) TaskKey() string { return recordKey(p.ID) }
func (p EventPayload) TaskKey() string { return recordKey(p.ID) }
func (p NewsletterPayload) TaskKey() string { return recordKey(p.ID) }

func recordKey(id int) string {
	if id <= 0 {
		return ""
	}
	return strconv.Itoa(id)
}
