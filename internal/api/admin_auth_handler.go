package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"daveenci/internal/auth"
	"daveenci/internal/entities"
	apperrors "daveenci/internal/errors"
	"daveenci/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type GoogleSignIn interface {
	Configured() bool
	AuthURL(state string) string
	Callback(ctx context.Context, code string) (string, time.Time, *entities.AdminUser, error)
}

type AdminAuthHandler struct {
	service      service.AdminAuthService
	google       GoogleSignIn
	frontendURL  string
	secureCookie bool
	logger       *zap.Logger
}

func NewAdminAuthHandler(svc service.AdminAuthService, google GoogleSignIn, frontendURL string, secureCookie bool, logger *zap.Logger) *AdminAuthHandler {
	return &AdminAuthHandler{
		service:      svc,
		google:       google,
		frontendURL:  frontendURL,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *AdminAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req entities.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apperrors.Write(w, apperrors.ErrBadRequest("Invalid request body"))
		return
	}

	token, exp, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to sign in")
		return
	}

	h.setSession(w, token, exp)
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, ExpiresAt: exp})
}

// CreateAdmin lets a signed-in admin provision a password login for someone else.
func (h *AdminAuthHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req entities.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apperrors.Write(w, apperrors.ErrBadRequest("Invalid request body"))
		return
	}

	if err := h.service.CreateAdmin(r.Context(), req.Email, req.Password); err != nil {
		writeServiceError(w, h.logger, err, "Failed to create admin")
		return
	}
	if s, ok := auth.SessionFromContext(r.Context()); ok {
		h.logger.Info("admin created", zap.String("by", s.User.Email))
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "Admin registered successfully"})
}

func (h *AdminAuthHandler) GoogleURL(w http.ResponseWriter, r *http.Request) {
	if h.google == nil || !h.google.Configured() {
		apperrors.Write(w, apperrors.ErrInternal("Failed to generate auth URL"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": h.google.AuthURL(uuid.NewString())})
}

// GoogleCallback finishes sign-in and sends the browser back to the admin
// page, with an error parameter when sign-in was refused.
func (h *AdminAuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		apperrors.Write(w, apperrors.ErrBadRequest("Code is required"))
		return
	}
	if h.google == nil {
		h.redirect(w, r, url.Values{"error": {"Google sign-in is not configured"}})
		return
	}

	token, exp, user, err := h.google.Callback(r.Context(), code)
	if err != nil {
		h.logger.Warn("google sign-in failed", zap.Error(err))
		h.redirect(w, r, url.Values{"error": {err.Error()}})
		return
	}

	h.setSession(w, token, exp)
	h.logger.Info("admin signed in", zap.String("email", user.Email))
	h.redirect(w, r, url.Values{"success": {"true"}})
}

func (h *AdminAuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	s, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]bool{"success": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": s.User})
}

func (h *AdminAuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearCookie(w, h.secureCookie)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AdminAuthHandler) setSession(w http.ResponseWriter, token string, exp time.Time) {
	auth.SetCookie(w, token, h.secureCookie, int(time.Until(exp).Seconds()))
}

func (h *AdminAuthHandler) redirect(w http.ResponseWriter, r *http.Request, params url.Values) {
	http.Redirect(w, r, h.frontendURL+"/admin?"+params.Encode(), http.StatusFound)
}
