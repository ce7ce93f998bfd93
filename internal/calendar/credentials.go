package calendar

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/oauth2/google"
	oauthjwt "golang.org/x/oauth2/jwt"
)

const (
	ScopeCalendar  = "https://www.googleapis.com/auth/calendar"
	ScopeGmailSend = "https://www.googleapis.com/auth/gmail.send"
)

// Credentials identify a service account acting on behalf of Subject
// through domain-wide delegation.
type Credentials struct {
	ClientEmail string
	PrivateKey  string
	Subject     string
}

func (c Credentials) Configured() bool {
	return c.ClientEmail != "" && c.PrivateKey != ""
}

// HTTPClient returns a client that authenticates as Subject with scopes.
func (c Credentials) HTTPClient(ctx context.Context, scopes ...string) (*http.Client, error) {
	if !c.Configured() {
		return nil, errors.New("google service account credentials not configured")
	}
	conf := &oauthjwt.Config{
		Email:      c.ClientEmail,
		PrivateKey: []byte(c.PrivateKey),
		Scopes:     scopes,
		TokenURL:   google.JWTTokenURL,
		Subject:    c.Subject,
	}
	return conf.Client(ctx), nil
}
