package notify

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

type Message struct {
	To          string
	ToName      string
	Subject     string
	PlainText   string
	HTML        string
	Attachments []Attachment
}

type EmailSender interface {
	Send(ctx context.Context, msg Message) error
}

type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewSendGridSender(apiKey, fromEmail, fromName string) *SendGridSender {
	if fromName == "" {
		fromName = "DaVeenci"
	}
	return &SendGridSender{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.To)
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.PlainText, msg.HTML)
	for _, a := range msg.Attachments {
		att := mail.NewAttachment()
		att.SetFilename(a.Filename)
		att.SetType(a.ContentType)
		att.SetDisposition("attachment")
		att.SetContent(base64.StdEncoding.EncodeToString(a.Content))
		message.AddAttachment(att)
	}

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send to %s failed: %w", msg.To, err)
	}
	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
}
