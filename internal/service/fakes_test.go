package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"daveenci/internal/calendar"
	"daveenci/internal/db"
	"daveenci/internal/entities"
	"daveenci/internal/repository"
)

type fakeTx struct {
	insertErr  error
	commitErr  error
	inserted   *db.Consultation
	linkedID   string
	committed  bool
	rolledBack bool

	// insertAfter holds Insert back until closed, then a little longer.
	insertAfter <-chan struct{}
}

func (t *fakeTx) Insert(_ context.Context, c *db.Consultation) error {
	if t.insertAfter != nil {
		<-t.insertAfter
		time.Sleep(20 * time.Millisecond)
	}
	if t.insertErr != nil {
		return t.insertErr
	}
	c.ID = 42
	c.CreatedAt = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	t.inserted = c
	return nil
}

func (t *fakeTx) SetCalendarEventID(_ context.Context, _ int, eventID string) error {
	t.linkedID = eventID
	return nil
}

func (t *fakeTx) Commit() error {
	if t.commitErr != nil {
		return t.commitErr
	}
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback() error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeConsultations struct {
	exists bool
	tx     *fakeTx
	booked []entities.BusySlot
	err    error
}

func (f *fakeConsultations) Exists(context.Context, string, time.Time) (bool, error) {
	return f.exists, nil
}

func (f *fakeConsultations) Begin(context.Context) (repository.ConsultationTx, error) {
	return f.tx, nil
}

func (f *fakeConsultations) BookedSlots(context.Context, time.Time, time.Time) ([]entities.BusySlot, error) {
	return f.booked, f.err
}

type fakeCalendar struct {
	mu         sync.Mutex
	createErr  error
	createDone chan struct{}
	created    []calendar.EventInput
	deleted    []string
	busy       []entities.BusySlot
	busyErr    error
	busyCalls  int
}

func (f *fakeCalendar) CreateEvent(_ context.Context, in calendar.EventInput) (*entities.CalendarEvent, error) {
	if f.createDone != nil {
		defer close(f.createDone)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, in)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &entities.CalendarEvent{
		ID:          "evt-1",
		Summary:     in.Summary,
		HangoutLink: "https://meet.google.com/abc-defg-hij",
		Start:       in.Start,
		End:         in.End,
	}, nil
}

func (f *fakeCalendar) DeleteEvent(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeCalendar) CalendarID() string { return "owner@daveenci.com" }

func (f *fakeCalendar) BusySlots(context.Context, time.Time, time.Time) ([]entities.BusySlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.busyCalls++
	return f.busy, f.busyErr
}

type dispatched struct {
	taskType string
	payload  any
}

type fakeDispatcher struct {
	calls []dispatched
	err   error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, taskType string, payload any) error {
	f.calls = append(f.calls, dispatched{taskType, payload})
	return f.err
}

type memoryCache struct {
	entries     map[string][]entities.BusySlot
	invalidated int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]entities.BusySlot{}}
}

func cacheKey(start, end time.Time) string {
	return start.UTC().String() + "/" + end.UTC().String()
}

func (c *memoryCache) Get(_ context.Context, start, end time.Time) ([]entities.BusySlot, bool, error) {
	s, ok := c.entries[cacheKey(start, end)]
	return s, ok, nil
}

func (c *memoryCache) Set(_ context.Context, start, end time.Time, slots []entities.BusySlot) error {
	c.entries[cacheKey(start, end)] = slots
	return nil
}

func (c *memoryCache) Invalidate(context.Context) error {
	c.invalidated++
	c.entries = map[string][]entities.BusySlot{}
	return nil
}

var errBoom = errors.New("boom")
