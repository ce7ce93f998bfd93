package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"daveenci/internal/auth"
	"daveenci/internal/entities"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

// IDTokenValidator verifies a Google ID token for audience.
type IDTokenValidator func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// GoogleAuthService signs admins in with their Google Workspace account.
type GoogleAuthService struct {
	oauth    *oauth2.Config
	domain   string
	sessions *auth.SessionManager
	Validate IDTokenValidator
}

func NewGoogleAuthService(clientID, clientSecret, redirectURL, domain string, sessions *auth.SessionManager) *GoogleAuthService {
	return &GoogleAuthService{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
			Scopes: []string{
				"openid",
				"https://www.googleapis.com/auth/userinfo.profile",
				"https://www.googleapis.com/auth/userinfo.email",
			},
		},
		domain:   strings.ToLower(domain),
		sessions: sessions,
		Validate: idtoken.Validate,
	}
}

// WithEndpoint points token exchange at another OAuth server.
func (s *GoogleAuthService) WithEndpoint(ep oauth2.Endpoint) *GoogleAuthService {
	s.oauth.Endpoint = ep
	return s
}

func (s *GoogleAuthService) Configured() bool {
	return s.oauth.ClientID != "" && s.oauth.ClientSecret != ""
}

// AuthURL is the consent page, limited to accounts of the hosted domain.
func (s *GoogleAuthService) AuthURL(state string) string {
	return s.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("hd", s.domain),
	)
}

// Callback exchanges code, checks the ID token and the account's domain,
// and returns a session token for the admin.
func (s *GoogleAuthService) Callback(ctx context.Context, code string) (string, time.Time, *entities.AdminUser, error) {
	if code == "" {
		return "", time.Time{}, nil, validationErrorf("code is required")
	}
	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return "", time.Time{}, nil, fmt.Errorf("google token exchange failed: %w", err)
	}
	raw, _ := tok.Extra("id_token").(string)
	if raw == "" {
		return "", time.Time{}, nil, errors.New("google token response has no id_token")
	}
	payload, err := s.Validate(ctx, raw, s.oauth.ClientID)
	if err != nil {
		return "", time.Time{}, nil, fmt.Errorf("invalid google id token: %w", err)
	}

	user := entities.AdminUser{
		Email:   claimString(payload, "email"),
		Name:    claimString(payload, "name"),
		Picture: claimString(payload, "picture"),
	}
	if !emailVerified(payload) {
		return "", time.Time{}, nil, ErrEmailNotVerified
	}
	if !s.allowed(claimString(payload, "hd"), user.Email) {
		return "", time.Time{}, nil, ErrDomainNotAllowed
	}

	token, exp, err := s.sessions.Issue(user)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	return token, exp, &user, nil
}

func (s *GoogleAuthService) allowed(hd, email string) bool {
	if s.domain == "" {
		return false
	}
	return strings.EqualFold(hd, s.domain) || strings.HasSuffix(strings.ToLower(email), "@"+s.domain)
}

// Google sends email_verified as a bool, older tokens as the string "true".
func emailVerified(p *idtoken.Payload) bool {
	switch v := p.Claims["email_verified"].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}

func claimString(p *idtoken.Payload, key string) string {
	v, _ := p.Claims[key].(string)
	return v
}
