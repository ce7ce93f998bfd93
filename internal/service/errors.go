package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation            = errors.New("invalid request")
	ErrDuplicateBooking      = errors.New("You already have a meeting scheduled at this time. Check your email for the calendar invite.")
	ErrDuplicateRegistration = errors.New("You are already registered for this event.")
	ErrDuplicateSubscription = errors.New("You are already subscribed to the newsletter.")
	ErrDuplicateAdmin        = errors.New("An admin with this email already exists.")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrDomainNotAllowed      = errors.New("access restricted to the organization domain")
	ErrEmailNotVerified      = errors.New("google account email is not verified")
)

func validationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
