package api

import (
	"context"
	"net/http"
	"time"

	"daveenci/internal/availability"
	"daveenci/internal/entities"
	apperrors "daveenci/internal/errors"
	"daveenci/internal/service"
	"go.uber.org/zap"
)

type AvailabilityService interface {
	BusySlots(ctx context.Context, start, end time.Time) ([]entities.BusySlot, error)
	DaySlots(ctx context.Context, day availability.Day, viewer *time.Location) (entities.DayAvailability, error)
	Month(ctx context.Context, month availability.Day, viewer *time.Location) (*entities.MonthAvailabilityResponse, error)
}

type BookingService interface {
	Book(ctx context.Context, req entities.BookingRequest) (*entities.BookingResponse, error)
}

type CalendarHandler struct {
	Avail        AvailabilityService
	Booking      BookingService
	Location     *time.Location
	Logger       *zap.Logger
	Now          func() time.Time
}

func NewCalendarHandler(avail *service.AvailabilityService, booking *service.BookingService, loc *time.Location, logger *zap.Logger) *CalendarHandler {
	return &CalendarHandler{Avail: avail, Booking: booking, Location: loc, Logger: logger, Now: time.Now}
}

// Availability returns every busy interval between the start and end
// query parameters.
func (h *CalendarHandler) Availability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("start") == "" || q.Get("end") == "" {
		apperrors.Write(w, apperrors.ErrBadRequest("Missing start or end date"))
		return
	}
	start, err := time.Parse(time.RFC3339, q.Get("start"))
	if err != nil {
		apperrors.Write(w, apperrors.ErrBadRequest("start must be an RFC3339 timestamp"))
		return
	}
	end, err := time.Parse(time.RFC3339, q.Get("end"))
	if err != nil {
		apperrors.Write(w, apperrors.ErrBadRequest("end must be an RFC3339 timestamp"))
		return
	}

	busy, err := h.Avail.BusySlots(r.Context(), start, end)
	if err != nil {
		writeServiceError(w, h.Logger, err, "Failed to fetch availability")
		return
	}
	writeJSON(w, http.StatusOK, entities.AvailabilityResponse{BusySlots: busy})
}

func (h *CalendarHandler) Slots(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	day, err := availability.ParseDay(r.URL.Query().Get("date"))
	if err != nil {
		apperrors.Write(w, apperrors.ErrBadRequest("date must be YYYY-MM-DD"))
		return
	}

	res, err := h.Avail.DaySlots(r.Context(), day, viewer)
	if err != nil {
		writeServiceError(w, h.Logger, err, "Failed to fetch availability")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Month defaults to the viewer's current month.
func (h *CalendarHandler) Month(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	month := availability.DayOf(h.Now().In(viewer))
	if raw := r.URL.Query().Get("month"); raw != "" {
		t, err := time.Parse("2006-01", raw)
		if err != nil {
			apperrors.Write(w, apperrors.ErrBadRequest("month must be YYYY-MM"))
			return
		}
		month = availability.DayOf(t)
	}
	month.Day = 1

	res, err := h.Avail.Month(r.Context(), month, viewer)
	if err != nil {
		writeServiceError(w, h.Logger, err, "Failed to fetch availability")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *CalendarHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req entities.BookingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apperrors.Write(w, apperrors.ErrBadRequest("Invalid request body"))
		return
	}
	res, err := h.Booking.Book(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.Logger, err, "Failed to book the call")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// viewer resolves the tz query parameter, defaulting to the business zone.
func (h *CalendarHandler) viewer(w http.ResponseWriter, r *http.Request) (*time.Location, bool) {
	tz := r.URL.Query().Get("tz")
	if tz == "" {
		return h.Location, true
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		apperrors.Write(w, apperrors.ErrBadRequest("unknown timezone "+tz))
		return nil, false
	}
	return loc, true
}
