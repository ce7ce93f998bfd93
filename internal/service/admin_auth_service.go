package service

import (
	"context"
	"strings"
	"time"

	"daveenci/internal/auth"
	"daveenci/internal/entities"
	"daveenci/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

type AdminAuthService interface {
	Login(ctx context.Context, email, password string) (string, time.Time, error)
	CreateAdmin(ctx context.Context, email, password string) error
}

type adminAuthService struct {
	repo     repository.AdminAuthRepository
	sessions *auth.SessionManager
}

func NewAdminAuthService(repo repository.AdminAuthRepository, sessions *auth.SessionManager) AdminAuthService {
	return &adminAuthService{repo: repo, sessions: sessions}
}

// Login checks a password against the stored bcrypt hash and returns a
// signed session token with its expiry.
func (s *adminAuthService) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", time.Time{}, ErrInvalidCredentials
	}
	admin, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return "", time.Time{}, err
	}
	if admin == nil {
		return "", time.Time{}, ErrInvalidCredentials
	}

	err = bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password))
	if err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}

	return s.sessions.Issue(entities.AdminUser{Email: admin.Email})
}

const minPasswordLength = 8

// CreateAdmin provisions a password login for another admin.
func (s *adminAuthService) CreateAdmin(ctx context.Context, email, password string) error {
	email, err := parseEmail(email)
	if err != nil {
		return err
	}
	if len(password) < minPasswordLength {
		return validationErrorf("password must be at least %d characters", minPasswordLength)
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrDuplicateAdmin
	}
	if err := s.repo.CreateNewUser(ctx, email, password); err != nil {
		if repository.IsUniqueViolation(err) {
			return ErrDuplicateAdmin
		}
		return err
	}
	return nil
}
