package notify

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"

	"google.golang.org/api/gmail/v1"
)

// GmailSender sends as the delegated calendar owner. Used when SendGrid
// is not configured.
type GmailSender struct {
	svc  *gmail.Service
	from string
}

func NewGmailSender(svc *gmail.Service, from string) *GmailSender {
	return &GmailSender{svc: svc, from: from}
}

func (s *GmailSender) Send(ctx context.Context, msg Message) error {
	raw, err := buildMIME(s.from, msg)
	if err != nil {
		return err
	}
	_, err = s.svc.Users.Messages.Send("me", &gmail.Message{
		Raw: base64.RawURLEncoding.EncodeToString(raw),
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("gmail send to %s failed: %w", msg.To, err)
	}
	return nil
}

func buildMIME(from string, msg Message) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.BEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", mw.Boundary())

	body := msg.HTML
	contentType := "text/html; charset=utf-8"
	if body == "" {
		body = msg.PlainText
		contentType = "text/plain; charset=utf-8"
	}
	part, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {contentType}})
	if err != nil {
		return nil, err
	}
	if _, err := part.Write([]byte(body)); err != nil {
		return nil, err
	}

	for _, a := range msg.Attachments {
		h := textproto.MIMEHeader{
			"Content-Type":              {a.ContentType},
			"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", a.Filename)},
			"Content-Transfer-Encoding": {"base64"},
		}
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write([]byte(base64.StdEncoding.EncodeToString(a.Content))); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
