package auth

import (
	"errors"
	"fmt"
	"time"

	"daveenci/internal/entities"
	"github.com/golang-jwt/jwt/v5"
)

const (
	CookieName = "daveenci_session"
	SessionTTL = 12 * time.Hour
)

// Session is the signed-in admin attached to a request.
type Session struct {
	User      entities.AdminUser
	ExpiresAt time.Time
}

type sessionClaims struct {
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// SessionManager signs and verifies HS256 session tokens.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	Now    func() time.Time
}

func NewSessionManager(secret string, ttl time.Duration) (*SessionManager, error) {
	if secret == "" {
		return nil, errors.New("JWT_SECRET not set")
	}
	if ttl <= 0 {
		ttl = SessionTTL
	}
	return &SessionManager{secret: []byte(secret), ttl: ttl, Now: time.Now}, nil
}

func (m *SessionManager) Issue(user entities.AdminUser) (string, time.Time, error) {
	now := m.Now()
	exp := now.Add(m.ttl)
	claims := sessionClaims{
		Name:    user.Name,
		Picture: user.Picture,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("error signing session: %w", err)
	}
	return token, exp, nil
}

func (m *SessionManager) Parse(token string) (*Session, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid session: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("invalid session: missing subject")
	}
	return &Session{
		User: entities.AdminUser{
			Email:   claims.Subject,
			Name:    claims.Name,
			Picture: claims.Picture,
		},
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
