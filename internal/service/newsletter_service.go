package service

import (
	"context"

	"daveenci/internal/db"
	"daveenci/internal/notify"
	"daveenci/internal/repository"
	"go.uber.org/zap"
)

type NewsletterStore interface {
	Exists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, sub *db.NewsletterSubscription) error
}

type NewsletterService struct {
	store      NewsletterStore
	dispatcher notify.Dispatcher
	logger     *zap.Logger
}

func NewNewsletterService(store NewsletterStore, dispatcher notify.Dispatcher, logger *zap.Logger) *NewsletterService {
	return &NewsletterService{store: store, dispatcher: dispatcher, logger: logger}
}

func (s *NewsletterService) Subscribe(ctx context.Context, rawEmail string) (*db.NewsletterSubscription, error) {
	email, err := parseEmail(rawEmail)
	if err != nil {
		return nil, err
	}

	exists, err := s.store.Exists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateSubscription
	}

	sub := &db.NewsletterSubscription{Email: email}
	if err := s.store.Create(ctx, sub); err != nil {
		// Lost a race with a concurrent signup for the same address.
		if repository.IsUniqueViolation(err) {
			return nil, ErrDuplicateSubscription
		}
		return nil, err
	}
	s.logger.Info("newsletter subscription stored", zap.Int("id", sub.ID))

	payload := notify.NewsletterPayload{ID: sub.ID, Email: sub.Email, SubscribedAt: sub.CreatedAt}
	if err := s.dispatcher.Dispatch(ctx, notify.TypeNewsletterSignup, payload); err != nil {
		s.logger.Error("newsletter notification not queued", zap.Int("id", sub.ID), zap.Error(err))
	}
	return sub, nil
}
