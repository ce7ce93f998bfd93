package api

import (
	"net/http"

	"daveenci/internal/auth"
	"github.com/gorilla/mux"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Calendar  *CalendarHandler
	User      *UserHandler
	AdminAuth *AdminAuthHandler
	Admin     *AdminHandler
	Sessions  *auth.SessionManager
	Limiter   *RateLimiter
}

func NewRouter(h Handlers) *mux.Router {
	r := mux.NewRouter()
	limited := func(f http.HandlerFunc) http.Handler {
		if h.Limiter == nil {
			return f
		}
		return h.Limiter.Middleware(f)
	}

	r.HandleFunc("/api", Health).Methods(http.MethodGet)

	// Public endpoints
	r.HandleFunc("/api/calendar/availability", h.Calendar.Availability).Methods(http.MethodGet)
	r.HandleFunc("/api/calendar/slots", h.Calendar.Slots).Methods(http.MethodGet)
	r.HandleFunc("/api/calendar/month", h.Calendar.Month).Methods(http.MethodGet)
	r.Handle("/api/calendar/book", limited(h.Calendar.Book)).Methods(http.MethodPost)
	r.Handle("/api/events/register", limited(h.User.RegisterEvent)).Methods(http.MethodPost)
	r.Handle("/api/newsletter/subscribe", limited(h.User.Subscribe)).Methods(http.MethodPost)

	// Sign-in
	r.HandleFunc("/api/auth/google/url", h.AdminAuth.GoogleURL).Methods(http.MethodGet)
	r.HandleFunc("/api/auth/callback/google", h.AdminAuth.GoogleCallback).Methods(http.MethodGet)
	r.Handle("/api/auth/login", limited(h.AdminAuth.Login)).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/logout", h.AdminAuth.Logout).Methods(http.MethodPost)
	r.Handle("/api/auth/me", h.Sessions.RequireSession(http.HandlerFunc(h.AdminAuth.Me))).Methods(http.MethodGet)

	// Admin endpoints (protected)
	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(h.Sessions.RequireSession)
	admin.HandleFunc("/consultations", h.Admin.ListConsultations).Methods(http.MethodGet)
	admin.HandleFunc("/registrations", h.Admin.ListRegistrations).Methods(http.MethodGet)
	admin.HandleFunc("/subscribers", h.Admin.ListSubscribers).Methods(http.MethodGet)
	admin.HandleFunc("/admins", h.AdminAuth.CreateAdmin).Methods(http.MethodPost)

	return r
}
