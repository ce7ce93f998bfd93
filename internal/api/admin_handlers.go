package api

import (
	"context"
	"net/http"
	"strconv"

	"daveenci/internal/db"
	apperrors "daveenci/internal/errors"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

type ConsultationLister interface {
	List(ctx context.Context, limit int) ([]db.Consultation, error)
}

type EventLister interface {
	List(ctx context.Context, limit int) ([]db.EventRegistration, error)
}

type SubscriberLister interface {
	List(ctx context.Context, limit int) ([]db.NewsletterSubscription, error)
}

type AdminHandler struct {
	Consultations ConsultationLister
	Events        EventLister
	Subscribers   SubscriberLister
	Logger        *zap.Logger
}

func NewAdminHandler(consultations ConsultationLister, events EventLister, subscribers SubscriberLister, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{Consultations: consultations, Events: events, Subscribers: subscribers, Logger: logger}
}

func (h *AdminHandler) ListConsultations(w http.ResponseWriter, r *http.Request) {
	limit, ok := listLimit(w, r)
	if !ok {
		return
	}
	rows, err := h.Consultations.List(r.Context(), limit)
	if err != nil {
		h.Logger.Error("list consultations failed", zap.Error(err))
		apperrors.Write(w, apperrors.ErrInternal("Database error"))
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *AdminHandler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	limit, ok := listLimit(w, r)
	if !ok {
		return
	}
	rows, err := h.Events.List(r.Context(), limit)
	if err != nil {
		h.Logger.Error("list event registrations failed", zap.Error(err))
		apperrors.Write(w, apperrors.ErrInternal("Database error"))
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *AdminHandler) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	limit, ok := listLimit(w, r)
	if !ok {
		return
	}
	rows, err := h.Subscribers.List(r.Context(), limit)
	if err != nil {
		h.Logger.Error("list newsletter subscribers failed", zap.Error(err))
		apperrors.Write(w, apperrors.ErrInternal("Database error"))
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func listLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultListLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		apperrors.Write(w, apperrors.ErrBadRequest("Invalid limit"))
		return 0, false
	}
	if n > maxListLimit {
		n = maxListLimit
	}
	return n, true
}
