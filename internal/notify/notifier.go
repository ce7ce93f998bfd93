package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Notifier turns task payloads into owner notifications.
type Notifier struct {
	Email      EmailSender
	SMS        SMSSender
	OwnerEmail string
	OwnerPhone string
	Agent      string
	Location   *time.Location
	Logger     *zap.Logger
	Now        func() time.Time
}

func (n *Notifier) Handle(ctx context.Context, taskType string, payload []byte) error {
	switch taskType {
	case TypeBookingCreated:
		var p BookingPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("invalid %s payload: %w", taskType, err)
		}
		return n.booking(ctx, p)
	case TypeEventRegistered:
		var p EventPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("invalid %s payload: %w", taskType, err)
		}
		return n.event(ctx, p)
	case TypeNewsletterSignup:
		var p NewsletterPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("invalid %s payload: %w", taskType, err)
		}
		return n.newsletter(ctx, p)
	default:
		return fmt.Errorf("unknown notification type %q", taskType)
	}
}

func BookingLabel(bookingType string) string {
	if bookingType == "schedule-demo" {
		return "Schedule A Demo"
	}
	return "Meet Astrid"
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func (n *Notifier) booking(ctx context.Context, p BookingPayload) error {
	subject := fmt.Sprintf("New Booking: %s | %s", p.Name, BookingLabel(p.BookingType))
	when := p.Start.In(n.location()).Format("Monday, January 2, 2006 at 3:04 PM MST")
	body := fmt.Sprintf("Client Details:\nName: %s\nEmail: %s\nCompany: %s\nPhone: %s\nReason: %s\nNotes: %s\n\nAgent: %s\nTime: %s\n",
		p.Name, p.Email, orNA(p.Company), orNA(p.Phone), orNA(p.Reason), orNA(p.Notes), n.Agent, when)
	if p.MeetLink != "" {
		body += "Meet: " + p.MeetLink + "\n"
	}

	msg := n.ownerMessage(subject, body)
	msg.Attachments = []Attachment{{
		Filename:    "booking.ics",
		ContentType: "text/calendar; method=REQUEST",
		Content:     BuildInvite(p, subject, n.OwnerEmail, n.now()),
	}}
	// A retried task resends everything, so the SMS waits for the email.
	if err := n.sendEmail(ctx, msg); err != nil {
		return err
	}
	n.sendSMS(ctx, fmt.Sprintf("New booking: %s (%s) %s", p.Name, BookingLabel(p.BookingType), when))
	return nil
}

func (n *Notifier) event(ctx context.Context, p EventPayload) error {
	subject := fmt.Sprintf("New Event Registration: %s | %s", p.FullName, p.EventName)
	when := p.EventDate.In(n.location()).Format("Monday, January 2, 2006 at 3:04 PM MST")
	body := fmt.Sprintf("New Event Registration Details:\nName: %s\nEmail: %s\nEvent: %s\nDate/Time: %s\n",
		p.FullName, p.Email, p.EventName, when)
	return n.sendEmail(ctx, n.ownerMessage(subject, body))
}

func (n *Notifier) newsletter(ctx context.Context, p NewsletterPayload) error {
	subject := "New Newsletter Subscription: " + p.Email
	body := fmt.Sprintf("A new user has subscribed to the newsletter:\n\nEmail: %s\nSubscription Date: %s UTC\n",
		p.Email, p.SubscribedAt.UTC().Format("1/2/2006, 3:04:05 PM"))
	return n.sendEmail(ctx, n.ownerMessage(subject, body))
}

func (n *Notifier) ownerMessage(subject, body string) Message {
	return Message{
		To:        n.OwnerEmail,
		Subject:   subject,
		PlainText: body,
		HTML:      strings.ReplaceAll(html.EscapeString(body), "\n", "<br>"),
	}
}

func (n *Notifier) sendEmail(ctx context.Context, msg Message) error {
	if n.Email == nil || msg.To == "" {
		n.logger().Warn("email notification skipped, no sender configured", zap.String("subject", msg.Subject))
		return nil
	}
	if err := n.Email.Send(ctx, msg); err != nil {
		return err
	}
	n.logger().Info("owner notified", zap.String("subject", msg.Subject))
	return nil
}

// SMS is a courtesy channel; its failures never fail the task.
func (n *Notifier) sendSMS(ctx context.Context, body string) {
	if n.SMS == nil || n.OwnerPhone == "" {
		return
	}
	if err := n.SMS.SendSMS(ctx, n.OwnerPhone, body); err != nil {
		n.logger().Warn("owner SMS failed", zap.Error(err))
	}
}

func (n *Notifier) location() *time.Location {
	if n.Location == nil {
		return time.UTC
	}
	return n.Location
}

func (n *Notifier) now() time.Time {
	if n.Now == nil {
		return time.Now()
	}
	return n.Now()
}

func (n *Notifier) logger() *zap.Logger {
	if n.Logger == nil {
		return zap.L()
	}
	return n.Logger
}
