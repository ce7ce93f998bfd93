package api

import (
	"context"
	"net/http"

	"daveenci/internal/db"
	"daveenci/internal/entities"
	apperrors "daveenci/internal/errors"
	"go.uber.org/zap"
)

type EventRegistrar interface {
	Register(ctx context.Context, req entities.EventRegistrationRequest) (*db.EventRegistration, error)
}

type NewsletterSubscriber interface {
	Subscribe(ctx context.Context, email string) (*db.NewsletterSubscription, error)
}

// UserHandler serves the public signup forms.
type UserHandler struct {
	Events     EventRegistrar
	Newsletter NewsletterSubscriber
	Logger     *zap.Logger
}

func NewUserHandler(events EventRegistrar, newsletter NewsletterSubscriber, logger *zap.Logger) *UserHandler {
	return &UserHandler{Events: events, Newsletter: newsletter, Logger: logger}
}

func (h *UserHandler) RegisterEvent(w http.ResponseWriter, r *http.Request) {
	var req entities.EventRegistrationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apperrors.Write(w, apperrors.ErrBadRequest("Invalid request body"))
		return
	}
	reg, err := h.Events.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.Logger, err, "Failed to register for event")
		return
	}
	writeJSON(w, http.StatusOK, entities.ResultResponse{Success: true, Result: reg})
}

func (h *UserHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req entities.NewsletterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apperrors.Write(w, apperrors.ErrBadRequest("Invalid request body"))
		return
	}
	if req.Email == "" {
		apperrors.Write(w, apperrors.ErrBadRequest("Email is required"))
		return
	}
	sub, err := h.Newsletter.Subscribe(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, h.Logger, err, "Failed to subscribe to newsletter")
		return
	}
	writeJSON(w, http.StatusOK, entities.ResultResponse{Success: true, Result: sub})
}

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "DaVeenci API is running"})
}
