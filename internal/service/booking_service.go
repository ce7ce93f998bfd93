package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"daveenci/internal/calendar"
	"daveenci/internal/db"
	"daveenci/internal/entities"
	"daveenci/internal/notify"
	"daveenci/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const compensationTimeout = 10 * time.Second

const (
	meetAstridAgenda = "Proposed Agenda:\n" +
		"• Get to know each other and your business goals.\n" +
		"• Identify potential areas where we can provide value.\n" +
		"• Discuss next steps for working together."
	scheduleDemoAgenda = "Agenda:\n" +
		"• Explore custom AI agents and automation workflows.\n" +
		"• Demo of live pipelines for CRM and Marketing.\n" +
		"• Discuss implementation roadmap and ROI projections."
)

type ConsultationStore interface {
	Exists(ctx context.Context, email string, start time.Time) (bool, error)
	Begin(ctx context.Context) (repository.ConsultationTx, error)
}

type EventCalendar interface {
	CreateEvent(ctx context.Context, in calendar.EventInput) (*entities.CalendarEvent, error)
	DeleteEvent(ctx context.Context, eventID string) error
	CalendarID() string
}

type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

type BookingService struct {
	store      ConsultationStore
	calendar   EventCalendar
	dispatcher notify.Dispatcher
	cache      CacheInvalidator
	duration   time.Duration
	location   *time.Location
	logger     *zap.Logger
	Now        func() time.Time
}

// NewBookingService builds the booking flow. cache may be nil.
func NewBookingService(store ConsultationStore, cal EventCalendar, dispatcher notify.Dispatcher, cache CacheInvalidator, duration time.Duration, loc *time.Location, logger *zap.Logger) *BookingService {
	return &BookingService{
		store:      store,
		calendar:   cal,
		dispatcher: dispatcher,
		cache:      cache,
		duration:   duration,
		location:   loc,
		logger:     logger,
		Now:        time.Now,
	}
}

// Book creates the calendar event and the consultation row together. Either
// both exist afterwards or neither does.
func (s *BookingService) Book(ctx context.Context, req entities.BookingRequest) (*entities.BookingResponse, error) {
	c, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	exists, err := s.store.Exists(ctx, c.Email, c.StartTime)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateBooking
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	var (
		event     *entities.CalendarEvent
		insertErr error
	)
	// Neither side is cancelled when the other fails, so a created event is
	// always known here and can be removed.
	var g errgroup.Group
	g.Go(func() error {
		ev, err := s.calendar.CreateEvent(ctx, s.eventInput(c))
		if err != nil {
			return fmt.Errorf("create calendar event: %w", err)
		}
		event = ev
		return nil
	})
	g.Go(func() error {
		insertErr = tx.Insert(ctx, c)
		return insertErr
	})
	if err := g.Wait(); err != nil {
		if event != nil {
			s.deleteEvent(ctx, event.ID)
		}
		// A duplicate wins over a calendar failure regardless of which finished first.
		if repository.IsUniqueViolation(insertErr) {
			return nil, ErrDuplicateBooking
		}
		return nil, err
	}

	if err := tx.SetCalendarEventID(ctx, c.ID, event.ID); err != nil {
		s.deleteEvent(ctx, event.ID)
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		s.deleteEvent(ctx, event.ID)
		if repository.IsUniqueViolation(err) {
			return nil, ErrDuplicateBooking
		}
		return nil, fmt.Errorf("commit consultation: %w", err)
	}
	committed = true
	c.CalendarEventID = event.ID

	s.logger.Info("consultation booked",
		zap.Int("id", c.ID),
		zap.String("event_id", event.ID),
		zap.Time("start", c.StartTime),
		zap.String("booking_type", c.BookingType),
	)

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("busy cache invalidation failed", zap.Error(err))
		}
	}
	s.notify(ctx, c, event)

	return &entities.BookingResponse{Success: true, Event: event, DBRecord: c}, nil
}

func (s *BookingService) validate(req entities.BookingRequest) (*db.Consultation, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationErrorf("name is required")
	}
	email, err := parseEmail(req.Email)
	if err != nil {
		return nil, err
	}

	start, err := s.startTime(req)
	if err != nil {
		return nil, err
	}
	if start.Before(s.Now()) {
		return nil, validationErrorf("the selected time is in the past")
	}

	bookingType := req.BookingType
	switch bookingType {
	case "":
		bookingType = entities.BookingTypeMeetAstrid
	case entities.BookingTypeMeetAstrid, entities.BookingTypeScheduleDemo:
	default:
		return nil, validationErrorf("unknown booking type %q", req.BookingType)
	}

	return &db.Consultation{
		Name:        name,
		Email:       email,
		Company:     strings.TrimSpace(req.Company),
		Phone:       strings.TrimSpace(req.Phone),
		Reason:      strings.TrimSpace(req.Reason),
		Notes:       strings.TrimSpace(req.Notes),
		BookingType: bookingType,
		StartTime:   start,
		EndTime:     start.Add(s.duration),
	}, nil
}

// startTime prefers the absolute dateTime. Older clients send date and a
// 24h time instead, read in the client's zone or the business zone.
func (s *BookingService) startTime(req entities.BookingRequest) (time.Time, error) {
	if req.DateTime != "" {
		t, err := time.Parse(time.RFC3339, req.DateTime)
		if err != nil {
			return time.Time{}, validationErrorf("dateTime must be an RFC3339 timestamp")
		}
		return t.UTC(), nil
	}
	if req.Date == "" || req.Time == "" {
		return time.Time{}, validationErrorf("dateTime is required")
	}
	loc := s.location
	if req.Timezone != "" {
		l, err := time.LoadLocation(req.Timezone)
		if err != nil {
			return time.Time{}, validationErrorf("unknown timezone %q", req.Timezone)
		}
		loc = l
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", req.Date+" "+req.Time, loc)
	if err != nil {
		return time.Time{}, validationErrorf("invalid date or time")
	}
	return t.UTC(), nil
}

func (s *BookingService) eventInput(c *db.Consultation) calendar.EventInput {
	agenda := meetAstridAgenda
	if c.BookingType == entities.BookingTypeScheduleDemo {
		agenda = scheduleDemoAgenda
	}
	return calendar.EventInput{
		Summary:     fmt.Sprintf("%s | %s", c.Name, notify.BookingLabel(c.BookingType)),
		Description: agenda,
		Start:       c.StartTime,
		End:         c.EndTime,
		Attendees:   []string{c.Email, s.calendar.CalendarID()},
	}
}

func (s *BookingService) deleteEvent(ctx context.Context, eventID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()
	if err := s.calendar.DeleteEvent(ctx, eventID); err != nil {
		s.logger.Error("failed to remove calendar event after booking failure",
			zap.String("event_id", eventID), zap.Error(err))
		return
	}
	s.logger.Info("removed calendar event after booking failure", zap.String("event_id", eventID))
}

func (s *BookingService) notify(ctx context.Context, c *db.Consultation, event *entities.CalendarEvent) {
	payload := notify.BookingPayload{
		ID:          c.ID,
		Name:        c.Name,
		Email:       c.Email,
		Company:     c.Company,
		Phone:       c.Phone,
		Reason:      c.Reason,
		Notes:       c.Notes,
		BookingType: c.BookingType,
		Start:       c.StartTime,
		End:         c.EndTime,
		EventID:     event.ID,
		MeetLink:    event.HangoutLink,
	}
	if err := s.dispatcher.Dispatch(ctx, notify.TypeBookingCreated, payload); err != nil {
		s.logger.Error("booking notification not queued", zap.Int("id", c.ID), zap.Error(err))
	}
}

func parseEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", validationErrorf("email is required")
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return "", validationErrorf("invalid email address")
	}
	return strings.ToLower(addr.Address), nil
}
