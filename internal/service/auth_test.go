package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"daveenci/internal/auth"
	"daveenci/internal/db"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
)

type fakeAdminRepo struct {
	admin     *db.Admin
	created   map[string]string
	createErr error
}

func (f *fakeAdminRepo) GetByEmail(_ context.Context, email string) (*db.Admin, error) {
	if f.admin != nil && f.admin.Email == email {
		return f.admin, nil
	}
	return nil, nil
}

func (f *fakeAdminRepo) CreateNewUser(_ context.Context, email, password string) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.created == nil {
		f.created = map[string]string{}
	}
	f.created[email] = password
	return nil
}

func testSessions(t *testing.T) *auth.SessionManager {
	t.Helper()
	m, err := auth.NewSessionManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return m
}

func TestAdminLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	sessions := testSessions(t)
	svc := NewAdminAuthService(&fakeAdminRepo{admin: &db.Admin{ID: 1, Email: "astrid@daveenci.com", PasswordHash: string(hash)}}, sessions)

	token, _, err := svc.Login(context.Background(), "Astrid@daveenci.com", "s3cret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	s, err := sessions.Parse(token)
	if err != nil || s.User.Email != "astrid@daveenci.com" {
		t.Fatalf("expected valid session for astrid, got %+v (%v)", s, err)
	}

	for _, tc := range []struct{ email, password string }{
		{"astrid@daveenci.com", "wrong"},
		{"nobody@daveenci.com", "s3cret"},
		{"", ""},
	} {
		if _, _, err := svc.Login(context.Background(), tc.email, tc.password); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("%s: expected ErrInvalidCredentials, got %v", tc.email, err)
		}
	}
}

func TestCreateAdmin(t *testing.T) {
	repo := &fakeAdminRepo{admin: &db.Admin{ID: 1, Email: "astrid@daveenci.com"}}
	svc := NewAdminAuthService(repo, testSessions(t))

	for _, tc := range []struct{ email, password string }{
		{"", "longenough"},
		{"not-an-email", "longenough"},
		{"new@daveenci.com", "short"},
	} {
		if err := svc.CreateAdmin(context.Background(), tc.email, tc.password); !errors.Is(err, ErrValidation) {
			t.Fatalf("%q/%q: expected ErrValidation, got %v", tc.email, tc.password, err)
		}
	}

	if err := svc.CreateAdmin(context.Background(), " New@daveenci.com", "longenough"); err != nil {
		t.Fatalf("CreateAdmin failed: %v", err)
	}
	if repo.created["new@daveenci.com"] != "longenough" {
		t.Fatalf("unexpected created admins %v", repo.created)
	}

	if err := svc.CreateAdmin(context.Background(), "Astrid@daveenci.com", "longenough"); !errors.Is(err, ErrDuplicateAdmin) {
		t.Fatalf("expected ErrDuplicateAdmin, got %v", err)
	}
}

func TestCreateAdmin_UniqueViolation(t *testing.T) {
	repo := &fakeAdminRepo{createErr: &pq.Error{Code: "23505"}}
	svc := NewAdminAuthService(repo, testSessions(t))
	if err := svc.CreateAdmin(context.Background(), "race@daveenci.com", "longenough"); !errors.Is(err, ErrDuplicateAdmin) {
		t.Fatalf("expected ErrDuplicateAdmin, got %v", err)
	}
}

func TestGoogleAuthURL(t *testing.T) {
	svc := NewGoogleAuthService("client-id", "secret", "http://localhost:8080/api/auth/callback/google", "daveenci.com", testSessions(t))
	u, err := url.Parse(svc.AuthURL("state-1"))
	if err != nil {
		t.Fatalf("invalid url: %v", err)
	}
	q := u.Query()
	if q.Get("hd") != "daveenci.com" || q.Get("access_type") != "offline" || q.Get("prompt") != "consent" || q.Get("state") != "state-1" {
		t.Fatalf("unexpected query %v", q)
	}
	if q.Get("client_id") != "client-id" {
		t.Fatalf("unexpected client id %q", q.Get("client_id"))
	}
}

func newGoogleAuthFixture(t *testing.T, claims map[string]interface{}) *GoogleAuthService {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "at",
			"token_type":   "Bearer",
			"expires_in":   3600,
			"id_token":     "raw-id-token",
		})
	}))
	t.Cleanup(srv.Close)

	svc := NewGoogleAuthService("client-id", "secret", "http://localhost/cb", "daveenci.com", testSessions(t)).
		WithEndpoint(oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token", AuthStyle: oauth2.AuthStyleInParams})
	svc.Validate = func(_ context.Context, token, audience string) (*idtoken.Payload, error) {
		if token != "raw-id-token" || audience != "client-id" {
			return nil, errors.New("bad token")
		}
		return &idtoken.Payload{Audience: audience, Claims: claims}, nil
	}
	return svc
}

func TestGoogleCallback(t *testing.T) {
	svc := newGoogleAuthFixture(t, map[string]interface{}{
		"email":          "astrid@daveenci.com",
		"email_verified": true,
		"name":           "Astrid",
		"hd":             "daveenci.com",
	})

	token, _, user, err := svc.Callback(context.Background(), "good-code")
	if err != nil {
		t.Fatalf("Callback failed: %v", err)
	}
	if user.Email != "astrid@daveenci.com" || user.Name != "Astrid" || token == "" {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestGoogleCallback_Rejections(t *testing.T) {
	outsider := newGoogleAuthFixture(t, map[string]interface{}{"email": "someone@gmail.com", "email_verified": true})
	if _, _, _, err := outsider.Callback(context.Background(), "good-code"); !errors.Is(err, ErrDomainNotAllowed) {
		t.Fatalf("expected ErrDomainNotAllowed, got %v", err)
	}

	// Workspace accounts without an hd claim still pass on their address.
	member := newGoogleAuthFixture(t, map[string]interface{}{"email": "ops@daveenci.com", "email_verified": "true"})
	if _, _, _, err := member.Callback(context.Background(), "good-code"); err != nil {
		t.Fatalf("expected domain address to pass, got %v", err)
	}

	for _, verified := range []interface{}{nil, false, "false"} {
		claims := map[string]interface{}{"email": "ops@daveenci.com", "hd": "daveenci.com"}
		if verified != nil {
			claims["email_verified"] = verified
		}
		unverified := newGoogleAuthFixture(t, claims)
		if _, _, _, err := unverified.Callback(context.Background(), "good-code"); !errors.Is(err, ErrEmailNotVerified) {
			t.Fatalf("email_verified=%v: expected ErrEmailNotVerified, got %v", verified, err)
		}
	}

	if _, _, _, err := member.Callback(context.Background(), "bad-code"); err == nil {
		t.Fatal("expected exchange failure")
	}
	if _, _, _, err := member.Callback(context.Background(), ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for missing code, got %v", err)
	}
}
