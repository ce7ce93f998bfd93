package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"daveenci/internal/entities"
	"go.uber.org/zap"
)

type fakeRefresher struct {
	calls int
	start time.Time
	err   error
}

func (f *fakeRefresher) CurrentWindow() (time.Time, time.Time) {
	start := time.Date(2026, 5, 25, 5, 0, 0, 0, time.UTC)
	return start, start.Add(45 * 24 * time.Hour)
}

func (f *fakeRefresher) Refresh(_ context.Context, start, end time.Time) ([]entities.BusySlot, error) {
	f.calls++
	f.start = start
	return nil, f.err
}

func TestAvailabilityRefresh_UsesCurrentWindow(t *testing.T) {
	r := &fakeRefresher{}
	job := NewAvailabilityRefresh(r, zap.NewNop())

	if err := job.RunContext(context.Background()); err != nil {
		t.Fatalf("RunContext failed: %v", err)
	}
	if r.calls != 1 || !r.start.Equal(time.Date(2026, 5, 25, 5, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected refresh %d at %s", r.calls, r.start)
	}
}

func TestAvailabilityRefresh_ErrorsAreLoggedNotFatal(t *testing.T) {
	r := &fakeRefresher{err: errors.New("calendar unavailable")}
	job := NewAvailabilityRefresh(r, zap.NewNop())

	if err := job.RunContext(context.Background()); err == nil {
		t.Fatal("expected RunContext to surface the error")
	}
	job.Run()
	if r.calls != 2 {
		t.Fatalf("expected 2 refresh attempts, got %d", r.calls)
	}
}

type fakePruner struct {
	idle time.Duration
}

func (f *fakePruner) Prune(idle time.Duration) int {
	f.idle = idle
	return 3
}

func TestLimiterPrune(t *testing.T) {
	p := &fakePruner{}
	NewLimiterPrune(p, 10*time.Minute, zap.NewNop()).Run()
	if p.idle != 10*time.Minute {
		t.Fatalf("expected prune with 10m idle, got %s", p.idle)
	}
}

func TestNewScheduler(t *testing.T) {
	refresh := NewAvailabilityRefresh(&fakeRefresher{}, zap.NewNop())
	prune := NewLimiterPrune(&fakePruner{}, time.Minute, zap.NewNop())
	c, err := NewScheduler(zap.NewNop(),
		Entry{Name: "availability refresh", Schedule: "@every 30s", Job: refresh},
		Entry{Name: "limiter prune", Schedule: "@every 1m", Job: prune},
	)
	if err != nil {
		t.Fatalf("NewScheduler failed: %v", err)
	}
	if len(c.Entries()) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(c.Entries()))
	}
	if _, err := NewScheduler(zap.NewNop(), Entry{Name: "availability refresh", Schedule: "every now and then", Job: refresh}); err == nil {
		t.Fatal("expected invalid schedule error")
	}
}
