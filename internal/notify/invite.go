package notify

import (
	"time"

	ical "github.com/arran4/golang-ical"
)

// BuildInvite renders a booking as an iCalendar REQUEST so the owner's mail
// client can add it in one click.
func BuildInvite(p BookingPayload, summary, organizer string, now time.Time) []byte {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodRequest)
	cal.SetProductId("-//DaVeenci//Booking//EN")

	uid := p.EventID
	if uid == "" {
		uid = p.Email + "-" + p.Start.UTC().Format("20060102T150405Z")
	}
	ev := cal.AddEvent(uid)
	ev.SetDtStampTime(now)
	ev.SetCreatedTime(now)
	ev.SetStartAt(p.Start)
	ev.SetEndAt(p.End)
	ev.SetSummary(summary)
	ev.SetDescription(p.Reason)
	if p.MeetLink != "" {
		ev.SetURL(p.MeetLink)
		ev.SetLocation(p.MeetLink)
	}
	if organizer != "" {
		ev.SetOrganizer("mailto:"+organizer, ical.WithCN(organizer))
	}
	ev.AddAttendee("mailto:"+p.Email,
		ical.CalendarUserTypeIndividual,
		ical.ParticipationStatusNeedsAction,
		ical.ParticipationRoleReqParticipant,
		ical.WithCN(p.Name),
	)
	return []byte(cal.Serialize())
}
