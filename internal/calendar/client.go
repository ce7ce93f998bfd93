package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"daveenci/internal/entities"
	"github.com/google/uuid"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// EventInput describes a meeting to put on the calendar.
type EventInput struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	Attendees   []string
}

// Client talks to one Google calendar.
type Client struct {
	svc        *gcal.Service
	calendarID string
}

func New(ctx context.Context, creds Credentials, calendarID string) (*Client, error) {
	httpClient, err := creds.HTTPClient(ctx, ScopeCalendar)
	if err != nil {
		return nil, err
	}
	svc, err := gcal.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("error creating calendar service: %w", err)
	}
	return NewWithService(svc, calendarID), nil
}

func NewWithService(svc *gcal.Service, calendarID string) *Client {
	if calendarID == "" {
		calendarID = "primary"
	}
	return &Client{svc: svc, calendarID: calendarID}
}

func (c *Client) CalendarID() string {
	return c.calendarID
}

// BusySlots runs a free/busy query for [start, end].
func (c *Client) BusySlots(ctx context.Context, start, end time.Time) ([]entities.BusySlot, error) {
	req := &gcal.FreeBusyRequest{
		TimeMin: start.UTC().Format(time.RFC3339),
		TimeMax: end.UTC().Format(time.RFC3339),
		Items:   []*gcal.FreeBusyRequestItem{{Id: c.calendarID}},
	}
	resp, err := c.svc.Freebusy.Query(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("error querying free/busy: %w", err)
	}

	slots := []entities.BusySlot{}
	cal, ok := resp.Calendars[c.calendarID]
	if !ok {
		return slots, nil
	}
	if len(cal.Errors) > 0 {
		reasons := make([]string, 0, len(cal.Errors))
		for _, e := range cal.Errors {
			reasons = append(reasons, e.Reason)
		}
		return nil, fmt.Errorf("free/busy query for %s failed: %s", c.calendarID, strings.Join(reasons, ", "))
	}
	for _, p := range cal.Busy {
		s, err := time.Parse(time.RFC3339, p.Start)
		if err != nil {
			return nil, fmt.Errorf("invalid busy start %q: %w", p.Start, err)
		}
		e, err := time.Parse(time.RFC3339, p.End)
		if err != nil {
			return nil, fmt.Errorf("invalid busy end %q: %w", p.End, err)
		}
		slots = append(slots, entities.BusySlot{Start: s.UTC(), End: e.UTC()})
	}
	return slots, nil
}

// CreateEvent inserts the event with a Meet link and emails every attendee.
func (c *Client) CreateEvent(ctx context.Context, in EventInput) (*entities.CalendarEvent, error) {
	attendees := make([]*gcal.EventAttendee, 0, len(in.Attendees))
	for _, a := range in.Attendees {
		if a != "" {
			attendees = append(attendees, &gcal.EventAttendee{Email: a})
		}
	}
	ev := &gcal.Event{
		Summary:     in.Summary,
		Description: in.Description,
		Start:       &gcal.EventDateTime{DateTime: in.Start.UTC().Format(time.RFC3339), TimeZone: "UTC"},
		End:         &gcal.EventDateTime{DateTime: in.End.UTC().Format(time.RFC3339), TimeZone: "UTC"},
		Attendees:   attendees,
		ConferenceData: &gcal.ConferenceData{
			CreateRequest: &gcal.CreateConferenceRequest{
				RequestId:             uuid.NewString(),
				ConferenceSolutionKey: &gcal.ConferenceSolutionKey{Type: "hangoutsMeet"},
			},
		},
	}

	created, err := c.svc.Events.Insert(c.calendarID, ev).
		ConferenceDataVersion(1).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("error creating calendar event: %w", err)
	}
	return &entities.CalendarEvent{
		ID:          created.Id,
		HTMLLink:    created.HtmlLink,
		HangoutLink: created.HangoutLink,
		Summary:     created.Summary,
		Start:       in.Start.UTC(),
		End:         in.End.UTC(),
	}, nil
}

// DeleteEvent removes an event and notifies attendees of the cancellation.
func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	err := c.svc.Events.Delete(c.calendarID, eventID).SendUpdates("all").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("error deleting calendar event %s: %w", eventID, err)
	}
	return nil
}
