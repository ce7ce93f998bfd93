package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"daveenci/internal/db"
	"daveenci/internal/entities"
	"daveenci/internal/notify"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type bookingFixture struct {
	svc        *BookingService
	store      *fakeConsultations
	cal        *fakeCalendar
	dispatcher *fakeDispatcher
	cache      *memoryCache
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	loc, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	f := &bookingFixture{
		store:      &fakeConsultations{tx: &fakeTx{}},
		cal:        &fakeCalendar{},
		dispatcher: &fakeDispatcher{},
		cache:      newMemoryCache(),
	}
	f.svc = NewBookingService(f.store, f.cal, f.dispatcher, f.cache, 45*time.Minute, loc, zap.NewNop())
	f.svc.Now = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }
	return f
}

func validBooking() entities.BookingRequest {
	return entities.BookingRequest{
		Name:        "Jane Doe",
		Email:       "jane@example.com",
		Reason:      "AI automation",
		DateTime:    "2026-06-10T14:00:00Z",
		BookingType: entities.BookingTypeScheduleDemo,
	}
}

func TestBook_Success(t *testing.T) {
	f := newBookingFixture(t)

	res, err := f.svc.Book(context.Background(), validBooking())
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	if !res.Success || res.Event == nil || res.Event.ID != "evt-1" {
		t.Fatalf("unexpected response %+v", res)
	}
	rec, ok := res.DBRecord.(*db.Consultation)
	if !ok || rec.ID != 42 || rec.CalendarEventID != "evt-1" {
		t.Fatalf("unexpected db record %+v", res.DBRecord)
	}
	if !f.store.tx.committed || f.store.tx.linkedID != "evt-1" {
		t.Fatalf("expected committed tx linked to event, got %+v", f.store.tx)
	}

	in := f.cal.created[0]
	if in.Summary != "Jane Doe | Schedule A Demo" {
		t.Fatalf("unexpected summary %q", in.Summary)
	}
	if in.Description != scheduleDemoAgenda {
		t.Fatalf("unexpected description %q", in.Description)
	}
	if want := time.Date(2026, 6, 10, 14, 45, 0, 0, time.UTC); !in.End.Equal(want) {
		t.Fatalf("expected end %s, got %s", want, in.End)
	}
	if len(in.Attendees) != 2 || in.Attendees[0] != "jane@example.com" || in.Attendees[1] != "owner@daveenci.com" {
		t.Fatalf("unexpected attendees %v", in.Attendees)
	}

	if len(f.dispatcher.calls) != 1 || f.dispatcher.calls[0].taskType != notify.TypeBookingCreated {
		t.Fatalf("expected one booking notification, got %+v", f.dispatcher.calls)
	}
	p := f.dispatcher.calls[0].payload.(notify.BookingPayload)
	if p.ID != 42 || p.EventID != "evt-1" || p.MeetLink == "" {
		t.Fatalf("unexpected payload %+v", p)
	}
	if f.cache.invalidated != 1 {
		t.Fatalf("expected busy cache invalidation, got %d", f.cache.invalidated)
	}
}

func TestBook_DefaultsToMeetAstrid(t *testing.T) {
	f := newBookingFixture(t)
	req := validBooking()
	req.BookingType = ""

	res, err := f.svc.Book(context.Background(), req)
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	if rec := res.DBRecord.(*db.Consultation); rec.BookingType != entities.BookingTypeMeetAstrid {
		t.Fatalf("expected meet-astrid, got %q", rec.BookingType)
	}
	if f.cal.created[0].Summary != "Jane Doe | Meet Astrid" || f.cal.created[0].Description != meetAstridAgenda {
		t.Fatalf("unexpected event %+v", f.cal.created[0])
	}
}

func TestBook_ExistingBookingSkipsCalendar(t *testing.T) {
	f := newBookingFixture(t)
	f.store.exists = true

	_, err := f.svc.Book(context.Background(), validBooking())
	if !errors.Is(err, ErrDuplicateBooking) {
		t.Fatalf("expected ErrDuplicateBooking, got %v", err)
	}
	if len(f.cal.created) != 0 {
		t.Fatal("expected no calendar event for a duplicate")
	}
	if len(f.dispatcher.calls) != 0 {
		t.Fatal("expected no notification for a duplicate")
	}
}

func TestBook_UniqueViolationRemovesEvent(t *testing.T) {
	f := newBookingFixture(t)
	f.store.tx.insertErr = fmt.Errorf("error inserting consultation: %w", &pq.Error{Code: "23505"})

	_, err := f.svc.Book(context.Background(), validBooking())
	if !errors.Is(err, ErrDuplicateBooking) {
		t.Fatalf("expected ErrDuplicateBooking, got %v", err)
	}
	if len(f.cal.deleted) != 1 || f.cal.deleted[0] != "evt-1" {
		t.Fatalf("expected created event to be deleted, got %v", f.cal.deleted)
	}
	if !f.store.tx.rolledBack {
		t.Fatal("expected rollback")
	}
	if len(f.dispatcher.calls) != 0 {
		t.Fatal("expected no notification")
	}
}

func TestBook_DuplicateReportedWhenCalendarFailsFirst(t *testing.T) {
	f := newBookingFixture(t)
	calendarDone := make(chan struct{})
	f.cal.createErr = errBoom
	f.cal.createDone = calendarDone
	f.store.tx.insertAfter = calendarDone
	f.store.tx.insertErr = fmt.Errorf("error inserting consultation: %w", &pq.Error{Code: "23505"})

	_, err := f.svc.Book(context.Background(), validBooking())
	if !errors.Is(err, ErrDuplicateBooking) {
		t.Fatalf("expected ErrDuplicateBooking, got %v", err)
	}
	if len(f.cal.deleted) != 0 {
		t.Fatalf("expected nothing to delete, got %v", f.cal.deleted)
	}
}

func TestBook_DatabaseFailureRemovesEvent(t *testing.T) {
	f := newBookingFixture(t)
	f.store.tx.insertErr = errBoom

	_, err := f.svc.Book(context.Background(), validBooking())
	if !errors.Is(err, errBoom) || errors.Is(err, ErrDuplicateBooking) {
		t.Fatalf("expected underlying error, got %v", err)
	}
	if len(f.cal.deleted) != 1 {
		t.Fatalf("expected compensation delete, got %v", f.cal.deleted)
	}
}

func TestBook_CommitFailureRemovesEvent(t *testing.T) {
	f := newBookingFixture(t)
	f.store.tx.commitErr = errBoom

	if _, err := f.svc.Book(context.Background(), validBooking()); !errors.Is(err, errBoom) {
		t.Fatalf("expected commit error, got %v", err)
	}
	if len(f.cal.deleted) != 1 {
		t.Fatalf("expected compensation delete, got %v", f.cal.deleted)
	}
	if len(f.dispatcher.calls) != 0 {
		t.Fatal("expected no notification before commit")
	}
}

func TestBook_CalendarFailureRollsBack(t *testing.T) {
	f := newBookingFixture(t)
	f.cal.createErr = errBoom

	if _, err := f.svc.Book(context.Background(), validBooking()); !errors.Is(err, errBoom) {
		t.Fatalf("expected calendar error, got %v", err)
	}
	if !f.store.tx.rolledBack || f.store.tx.committed {
		t.Fatalf("expected rollback, got %+v", f.store.tx)
	}
	if len(f.cal.deleted) != 0 {
		t.Fatal("nothing to delete when the event was never created")
	}
}

func TestBook_NotificationFailureKeepsBooking(t *testing.T) {
	f := newBookingFixture(t)
	f.dispatcher.err = errBoom

	res, err := f.svc.Book(context.Background(), validBooking())
	if err != nil {
		t.Fatalf("expected booking to succeed, got %v", err)
	}
	if !res.Success || !f.store.tx.committed || len(f.cal.deleted) != 0 {
		t.Fatal("expected committed booking with its event kept")
	}
}

func TestBook_Validation(t *testing.T) {
	cases := []struct {
		name string
		edit func(r *entities.BookingRequest)
	}{
		{"missing name", func(r *entities.BookingRequest) { r.Name = "  " }},
		{"missing email", func(r *entities.BookingRequest) { r.Email = "" }},
		{"bad email", func(r *entities.BookingRequest) { r.Email = "not-an-email" }},
		{"missing dateTime", func(r *entities.BookingRequest) { r.DateTime = "" }},
		{"bad dateTime", func(r *entities.BookingRequest) { r.DateTime = "tomorrow" }},
		{"past dateTime", func(r *entities.BookingRequest) { r.DateTime = "2026-05-31T14:00:00Z" }},
		{"unknown type", func(r *entities.BookingRequest) { r.BookingType = "coffee" }},
	}
	for _, tc := range cases {
		f := newBookingFixture(t)
		req := validBooking()
		tc.edit(&req)
		_, err := f.svc.Book(context.Background(), req)
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", tc.name, err)
		}
		if len(f.cal.created) != 0 {
			t.Fatalf("%s: expected no calendar call", tc.name)
		}
	}
}

func TestBook_DateAndTimeFallback(t *testing.T) {
	f := newBookingFixture(t)
	req := validBooking()
	req.DateTime = ""
	req.Date = "2026-06-10"
	req.Time = "09:00"
	req.Timezone = "America/New_York"

	res, err := f.svc.Book(context.Background(), req)
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	rec := res.DBRecord.(*db.Consultation)
	if want := time.Date(2026, 6, 10, 13, 0, 0, 0, time.UTC); !rec.StartTime.Equal(want) {
		t.Fatalf("expected start %s, got %s", want, rec.StartTime)
	}
}
