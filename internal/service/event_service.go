package service

import (
	"context"
	"strings"
	"time"

	"daveenci/internal/db"
	"daveenci/internal/entities"
	"daveenci/internal/notify"
	"daveenci/internal/repository"
	"go.uber.org/zap"
)

type EventStore interface {
	Create(ctx context.Context, reg *db.EventRegistration) error
}

type EventService struct {
	store      EventStore
	dispatcher notify.Dispatcher
	logger     *zap.Logger
}

func NewEventService(store EventStore, dispatcher notify.Dispatcher, logger *zap.Logger) *EventService {
	return &EventService{store: store, dispatcher: dispatcher, logger: logger}
}

func (s *EventService) Register(ctx context.Context, req entities.EventRegistrationRequest) (*db.EventRegistration, error) {
	fullName := strings.TrimSpace(req.FullName)
	eventName := strings.TrimSpace(req.EventName)
	if fullName == "" {
		return nil, validationErrorf("fullName is required")
	}
	if eventName == "" {
		return nil, validationErrorf("eventName is required")
	}
	email, err := parseEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if req.EventDate == "" {
		return nil, validationErrorf("eventDate is required")
	}
	eventTime, err := time.Parse(time.RFC3339, req.EventDate)
	if err != nil {
		return nil, validationErrorf("eventDate must be an RFC3339 timestamp")
	}

	reg := &db.EventRegistration{
		FullName:         fullName,
		Email:            email,
		EventName:        eventName,
		EventDescription: strings.TrimSpace(req.EventDescription),
		EventTime:        eventTime.UTC(),
	}
	if err := s.store.Create(ctx, reg); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrDuplicateRegistration
		}
		return nil, err
	}
	s.logger.Info("event registration stored", zap.Int("id", reg.ID), zap.String("event", reg.EventName))

	payload := notify.EventPayload{
		ID:        reg.ID,
		FullName:  reg.FullName,
		Email:     reg.Email,
		EventName: reg.EventName,
		EventDate: reg.EventTime,
	}
	if err := s.dispatcher.Dispatch(ctx, notify.TypeEventRegistered, payload); err != nil {
		s.logger.Error("event notification not queued", zap.Int("id", reg.ID), zap.Error(err))
	}
	return reg, nil
}
