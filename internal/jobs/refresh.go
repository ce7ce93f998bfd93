package jobs

import (
	"context"
	"time"

	"daveenci/internal/entities"
	"go.uber.org/zap"
)

const refreshTimeout = 20 * time.Second

type BusyRefresher interface {
	CurrentWindow() (time.Time, time.Time)
	Refresh(ctx context.Context, start, end time.Time) ([]entities.BusySlot, error)
}

// AvailabilityRefresh keeps the current month's busy set cached so page
// loads rarely wait on the calendar API.
type AvailabilityRefresh struct {
	svc    BusyRefresher
	logger *zap.Logger
}

func NewAvailabilityRefresh(svc BusyRefresher, logger *zap.Logger) *AvailabilityRefresh {
	return &AvailabilityRefresh{svc: svc, logger: logger}
}

func (j *AvailabilityRefresh) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	if err := j.RunContext(ctx); err != nil {
		j.logger.Warn("availability refresh failed", zap.Error(err))
	}
}

func (j *AvailabilityRefresh) RunContext(ctx context.Context) error {
	start, end := j.svc.CurrentWindow()
	busy, err := j.svc.Refresh(ctx, start, end)
	if err != nil {
		return err
	}
	j.logger.Debug("availability refreshed",
		zap.Time("start", start), zap.Time("end", end), zap.Int("busy", len(busy)))
	return nil
}
