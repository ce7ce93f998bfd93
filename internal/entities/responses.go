package entities

import "time"

// CalendarEvent is the subset of a created calendar event returned to the client.
type CalendarEvent struct {
	ID          string    `json:"id"`
	HTMLLink    string    `json:"htmlLink,omitempty"`
	HangoutLink string    `json:"hangoutLink,omitempty"`
	Summary     string    `json:"summary"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

type BookingResponse struct {
	Success  bool           `json:"success"`
	Event    *CalendarEvent `json:"event"`
	DBRecord any            `json:"dbRecord"`
}

type ResultResponse struct {
	Success bool `json:"success"`
	Result  any  `json:"result"`
}

type AdminUser struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}
