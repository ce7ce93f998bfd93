package errors

import (
	"encoding/json"
	"net/http"
)

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	Code        int
	Message     string
	IsDuplicate bool
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTPError with the given code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

// Helpers for common errors
var (
	ErrUnauthorized = func(msg string) *HTTPError { return NewHTTPError(http.StatusUnauthorized, msg) }
	ErrBadRequest   = func(msg string) *HTTPError { return NewHTTPError(http.StatusBadRequest, msg) }
	ErrInternal     = func(msg string) *HTTPError { return NewHTTPError(http.StatusInternalServerError, msg) }
	ErrDuplicate    = func(msg string) *HTTPError {
		return &HTTPError{Code: http.StatusConflict, Message: msg, IsDuplicate: true}
	}
)

type errorBody struct {
	Success     bool   `json:"success"`
	Error       string `json:"error"`
	IsDuplicate bool   `json:"isDuplicate,omitempty"`
}

// Write sends e as a JSON error body.
func Write(w http.ResponseWriter, e *HTTPError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Code)
	json.NewEncoder(w).Encode(errorBody{Error: e.Message, IsDuplicate: e.IsDuplicate})
}
