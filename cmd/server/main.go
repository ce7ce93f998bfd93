package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"daveenci/internal/api"
	"daveenci/internal/auth"
	"daveenci/internal/availability"
	"daveenci/internal/cache"
	"daveenci/internal/calendar"
	"daveenci/internal/config"
	"daveenci/internal/jobs"
	applog "daveenci/internal/logger"
	"daveenci/internal/notify"
	"daveenci/internal/repository"
	"daveenci/internal/service"
	"github.com/gorilla/handlers"
	"github.com/hibiken/asynq"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, err := applog.New(cfg.IsProduction())
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to open DB", zap.Error(err))
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("Failed to connect to DB", zap.Error(err))
	}

	loc := cfg.Location
	checker := availability.NewChecker(availability.Rules{
		Location: loc,
		Hours:    cfg.Hours,
		Duration: cfg.MeetingDuration,
		Buffer:   cfg.BufferDuration,
	})

	consultationRepo := repository.NewConsultationRepository(db)
	eventRepo := repository.NewEventRepository(db)
	newsletterRepo := repository.NewNewsletterRepository(db)
	adminRepo := repository.NewAdminAuthRepository(db)

	creds := calendar.Credentials{
		ClientEmail: cfg.GoogleClientEmail,
		PrivateKey:  cfg.GooglePrivateKey,
		Subject:     cfg.GoogleCalendarOwnerEmail,
	}
	cal, err := calendar.New(ctx, creds, cfg.GoogleCalendarID)
	if err != nil {
		logger.Fatal("Failed to create calendar client", zap.Error(err))
	}

	var busyCache service.BusyCache
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = cache.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisCacheDB)
		if err != nil {
			logger.Warn("availability cache disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			busyCache = cache.NewBusyCache(rdb, cfg.AvailabilityCacheTTL)
		}
	}

	notifier := &notify.Notifier{
		Email:      emailSender(ctx, cfg, creds, logger),
		OwnerEmail: ownerEmail(cfg),
		OwnerPhone: cfg.OwnerPhone,
		Agent:      cfg.AgentName,
		Location:   loc,
		Logger:     logger,
		Now:        time.Now,
	}
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" && cfg.TwilioFromNumber != "" {
		notifier.SMS = notify.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
	}

	var dispatcher notify.Dispatcher = &notify.InlineDispatcher{Notifier: notifier, Logger: logger}
	if rdb != nil {
		opt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisQueueDB}
		queue := notify.NewAsynqDispatcher(opt)
		defer queue.Close()
		worker, mux := notify.NewAsynqServer(opt, notifier, logger)
		if err := worker.Start(mux); err != nil {
			logger.Fatal("Failed to start notification worker", zap.Error(err))
		}
		defer worker.Shutdown()
		dispatcher = queue
	}

	availabilitySvc := service.NewAvailabilityService(cal, consultationRepo, busyCache, checker, logger)
	bookingSvc := service.NewBookingService(consultationRepo, cal, dispatcher, availabilitySvc, cfg.MeetingDuration, loc, logger)
	eventSvc := service.NewEventService(eventRepo, dispatcher, logger)
	newsletterSvc := service.NewNewsletterService(newsletterRepo, dispatcher, logger)

	sessions, err := auth.NewSessionManager(cfg.JWTSecret, auth.SessionTTL)
	if err != nil {
		logger.Fatal("Failed to set up sessions", zap.Error(err))
	}
	adminAuthSvc := service.NewAdminAuthService(adminRepo, sessions)
	googleAuthSvc := service.NewGoogleAuthService(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI, cfg.AdminDomain, sessions)

	limiter := api.NewRateLimiter(cfg.MaxRequestsPerMin, cfg.TrustedProxyHops, logger)
	router := api.NewRouter(api.Handlers{
		Calendar:  api.NewCalendarHandler(availabilitySvc, bookingSvc, loc, logger),
		User:      api.NewUserHandler(eventSvc, newsletterSvc, logger),
		AdminAuth: api.NewAdminAuthHandler(adminAuthSvc, googleAuthSvc, cfg.FrontendURL, cfg.IsProduction(), logger),
		Admin:     api.NewAdminHandler(consultationRepo, eventRepo, newsletterRepo, logger),
		Sessions:  sessions,
		Limiter:   limiter,
	})

	entries := []jobs.Entry{{
		Name:     "rate limiter prune",
		Schedule: cfg.RateLimitPrune,
		Job:      jobs.NewLimiterPrune(limiter, cfg.RateLimitIdle, logger),
	}}
	if busyCache != nil {
		entries = append(entries, jobs.Entry{
			Name:     "availability refresh",
			Schedule: cfg.AvailabilityRefresh,
			Job:      jobs.NewAvailabilityRefresh(availabilitySvc, logger),
		})
	}
	scheduler, err := jobs.NewScheduler(logger, entries...)
	if err != nil {
		logger.Fatal("Failed to schedule jobs", zap.Error(err))
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	var h http.Handler = router
	h = handlers.CombinedLoggingHandler(applog.Writer{Logger: logger.Named("http")}, h)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(zap.NewStdLog(logger)), handlers.PrintRecoveryStack(true))(h)
	h = handlers.CORS(
		handlers.AllowedOrigins([]string{cfg.FrontendURL}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.AllowCredentials(),
	)(h)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("Server running", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

// emailSender prefers SendGrid and falls back to sending as the calendar
// owner through Gmail. Nil means owner emails are skipped.
func emailSender(ctx context.Context, cfg *config.Config, creds calendar.Credentials, logger *zap.Logger) notify.EmailSender {
	if cfg.SendGridAPIKey != "" && cfg.SendGridFromEmail != "" {
		return notify.NewSendGridSender(cfg.SendGridAPIKey, cfg.SendGridFromEmail, cfg.SendGridFromName)
	}
	if !creds.Configured() || creds.Subject == "" {
		logger.Warn("no email sender configured, owner notifications will be skipped")
		return nil
	}
	httpClient, err := creds.HTTPClient(ctx, calendar.ScopeGmailSend)
	if err != nil {
		logger.Warn("gmail sender disabled", zap.Error(err))
		return nil
	}
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		logger.Warn("gmail sender disabled", zap.Error(err))
		return nil
	}
	return notify.NewGmailSender(svc, creds.Subject)
}

func ownerEmail(cfg *config.Config) string {
	if cfg.GoogleCalendarOwnerEmail != "" {
		return cfg.GoogleCalendarOwnerEmail
	}
	if strings.Contains(cfg.GoogleCalendarID, "@") {
		return cfg.GoogleCalendarID
	}
	return ""
}
