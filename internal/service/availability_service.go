package service

import (
	"context"
	"fmt"
	"time"

	"daveenci/internal/availability"
	"daveenci/internal/entities"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type BusySource interface {
	BusySlots(ctx context.Context, start, end time.Time) ([]entities.BusySlot, error)
}

type BookedSlotSource interface {
	BookedSlots(ctx context.Context, start, end time.Time) ([]entities.BusySlot, error)
}

type BusyCache interface {
	Get(ctx context.Context, start, end time.Time) ([]entities.BusySlot, bool, error)
	Set(ctx context.Context, start, end time.Time, slots []entities.BusySlot) error
	Invalidate(ctx context.Context) error
}

type AvailabilityService struct {
	calendar BusySource
	bookings BookedSlotSource
	cache    BusyCache
	checker  *availability.Checker
	logger   *zap.Logger
}

// NewAvailabilityService wires the two busy sources. cache may be nil.
func NewAvailabilityService(calendar BusySource, bookings BookedSlotSource, cache BusyCache, checker *availability.Checker, logger *zap.Logger) *AvailabilityService {
	return &AvailabilityService{
		calendar: calendar,
		bookings: bookings,
		cache:    cache,
		checker:  checker,
		logger:   logger,
	}
}

// BusySlots returns calendar events and stored bookings overlapping
// [start, end]. Either source failing fails the whole call.
func (s *AvailabilityService) BusySlots(ctx context.Context, start, end time.Time) ([]entities.BusySlot, error) {
	if s.cache != nil {
		slots, ok, err := s.cache.Get(ctx, start, end)
		if err != nil {
			s.logger.Warn("busy cache read failed", zap.Error(err))
		} else if ok {
			return slots, nil
		}
	}
	return s.Refresh(ctx, start, end)
}

// Refresh fetches both sources and overwrites the cached entry.
func (s *AvailabilityService) Refresh(ctx context.Context, start, end time.Time) ([]entities.BusySlot, error) {
	if !end.After(start) {
		return nil, validationErrorf("end must be after start")
	}

	var calendarBusy, booked []entities.BusySlot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slots, err := s.calendar.BusySlots(gctx, start, end)
		if err != nil {
			return fmt.Errorf("fetch calendar busy slots: %w", err)
		}
		calendarBusy = slots
		return nil
	})
	g.Go(func() error {
		slots, err := s.bookings.BookedSlots(gctx, start, end)
		if err != nil {
			return fmt.Errorf("fetch booked slots: %w", err)
		}
		booked = slots
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := availability.MergeBusy(calendarBusy, booked)
	if s.cache != nil {
		if err := s.cache.Set(ctx, start, end, merged); err != nil {
			s.logger.Warn("busy cache write failed", zap.Error(err))
		}
	}
	return merged, nil
}

// Invalidate drops cached busy sets after a new booking.
func (s *AvailabilityService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx)
}

// CurrentWindow is the busy window around the current month in the
// business zone. The refresh job keeps it warm.
func (s *AvailabilityService) CurrentWindow() (time.Time, time.Time) {
	return availability.AvailabilityRange(s.checker.Now().In(s.checker.Rules.Location))
}

func (s *AvailabilityService) windowFor(day availability.Day) (time.Time, time.Time) {
	return availability.AvailabilityRange(day.In(s.checker.Rules.Location))
}

// DaySlots renders one day's slots for a viewer.
func (s *AvailabilityService) DaySlots(ctx context.Context, day availability.Day, viewer *time.Location) (entities.DayAvailability, error) {
	start, end := s.windowFor(day)
	busy, err := s.BusySlots(ctx, start, end)
	if err != nil {
		return entities.DayAvailability{}, err
	}
	return s.checker.DaySlots(day, viewer, busy), nil
}

// Month renders every day of month for a viewer.
func (s *AvailabilityService) Month(ctx context.Context, month availability.Day, viewer *time.Location) (*entities.MonthAvailabilityResponse, error) {
	start, end := s.windowFor(month)
	busy, err := s.BusySlots(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return &entities.MonthAvailabilityResponse{
		Month:    fmt.Sprintf("%04d-%02d", month.Year, int(month.Month)),
		Timezone: viewer.String(),
		Start:    start,
		End:      end,
		Days:     s.checker.Month(month, viewer, busy),
	}, nil
}
