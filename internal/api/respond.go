package api

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "daveenci/internal/errors"
	"daveenci/internal/service"
	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeServiceError maps service errors onto the JSON error contract.
// Unknown errors are logged and reported as fallback.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		apperrors.Write(w, apperrors.ErrBadRequest(err.Error()))
	case errors.Is(err, service.ErrDuplicateBooking),
		errors.Is(err, service.ErrDuplicateRegistration),
		errors.Is(err, service.ErrDuplicateSubscription),
		errors.Is(err, service.ErrDuplicateAdmin):
		apperrors.Write(w, apperrors.ErrDuplicate(err.Error()))
	case errors.Is(err, service.ErrInvalidCredentials):
		apperrors.Write(w, apperrors.ErrUnauthorized("Invalid credentials"))
	case errors.Is(err, service.ErrDomainNotAllowed), errors.Is(err, service.ErrEmailNotVerified):
		apperrors.Write(w, apperrors.NewHTTPError(http.StatusForbidden, err.Error()))
	default:
		logger.Error(fallback, zap.Error(err))
		apperrors.Write(w, apperrors.ErrInternal(fallback))
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v)
}
