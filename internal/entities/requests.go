package entities

const (
	BookingTypeMeetAstrid   = "meet-astrid"
	BookingTypeScheduleDemo = "schedule-demo"
)

type BookingRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Company     string `json:"company"`
	Phone       string `json:"phone"`
	Reason      string `json:"reason"`
	Notes       string `json:"notes"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	DateTime    string `json:"dateTime"`
	BookingType string `json:"bookingType"`
	Timezone    string `json:"timezone"`
}

type EventRegistrationRequest struct {
	FullName         string `json:"fullName"`
	Email            string `json:"email"`
	EventName        string `json:"eventName"`
	EventDescription string `json:"eventDescription"`
	EventDate        string `json:"eventDate"`
}

type NewsletterRequest struct {
	Email string `json:"email"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
