package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	FrontendURL string `mapstructure:"FRONTEND_URL"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`

	// Booking rules.
	BusinessTimezone string        `mapstructure:"BUSINESS_TIMEZONE"`
	BusinessHours    string        `mapstructure:"BUSINESS_HOURS"`
	MeetingDuration  time.Duration `mapstructure:"MEETING_DURATION"`
	BufferDuration   time.Duration `mapstructure:"BUFFER_DURATION"`
	AgentName        string        `mapstructure:"AGENT_NAME"`

	// Google service account with domain-wide delegation.
	GoogleClientEmail        string `mapstructure:"GOOGLE_CLIENT_EMAIL"`
	GooglePrivateKey         string `mapstructure:"GOOGLE_PRIVATE_KEY"`
	GoogleCalendarID         string `mapstructure:"GOOGLE_CALENDAR_ID"`
	GoogleCalendarOwnerEmail string `mapstructure:"GOOGLE_CALENDAR_OWNER_EMAIL"`

	// Google sign-in for the admin page.
	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURI  string `mapstructure:"GOOGLE_REDIRECT_URI"`
	AdminDomain        string `mapstructure:"ADMIN_DOMAIN"`

	SendGridAPIKey    string `mapstructure:"SENDGRID_API_KEY"`
	SendGridFromEmail string `mapstructure:"SENDGRID_FROM_EMAIL"`
	SendGridFromName  string `mapstructure:"SENDGRID_FROM_NAME"`

	TwilioAccountSID string `mapstructure:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `mapstructure:"TWILIO_AUTH_TOKEN"`
	TwilioFromNumber string `mapstructure:"TWILIO_FROM_NUMBER"`
	OwnerPhone       string `mapstructure:"OWNER_PHONE"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	AvailabilityCacheTTL time.Duration `mapstructure:"AVAILABILITY_CACHE_TTL"`
	AvailabilityRefresh  string        `mapstructure:"AVAILABILITY_REFRESH"`
	MaxRequestsPerMin    int           `mapstructure:"MAX_REQUESTS_PER_MIN"`
	TrustedProxyHops     int           `mapstructure:"TRUSTED_PROXY_HOPS"`
	RateLimitIdle        time.Duration `mapstructure:"RATE_LIMIT_IDLE"`
	RateLimitPrune       string        `mapstructure:"RATE_LIMIT_PRUNE"`

	// Parsed from BusinessTimezone and BusinessHours by Load.
	Location *time.Location `mapstructure:"-"`
	Hours    []int          `mapstructure:"-"`
}

var defaults = map[string]any{
	"PORT":                        "8080",
	"ENV":                         "development",
	"FRONTEND_URL":                "http://localhost:3000",
	"BUSINESS_TIMEZONE":           "America/Chicago",
	"BUSINESS_HOURS":              "6,7,8,9,10,11",
	"MEETING_DURATION":            "45m",
	"BUFFER_DURATION":             "10m",
	"AGENT_NAME":                  "Astrid Abrahamyan",
	"GOOGLE_CALENDAR_ID":          "primary",
	"GOOGLE_REDIRECT_URI":         "http://localhost:3000/api/auth/callback/google",
	"ADMIN_DOMAIN":                "daveenci.com",
	"SENDGRID_FROM_NAME":          "DaVeenci",
	"REDIS_CACHE_DB":              0,
	"REDIS_QUEUE_DB":              1,
	"AVAILABILITY_CACHE_TTL":      "30s",
	"AVAILABILITY_REFRESH":        "@every 30s",
	"MAX_REQUESTS_PER_MIN":        30,
	"TRUSTED_PROXY_HOPS":          0,
	"RATE_LIMIT_IDLE":             "10m",
	"RATE_LIMIT_PRUNE":            "@every 1m",
	"DATABASE_URL":                "",
	"JWT_SECRET":                  "",
	"GOOGLE_CLIENT_EMAIL":         "",
	"GOOGLE_PRIVATE_KEY":          "",
	"GOOGLE_CALENDAR_OWNER_EMAIL": "",
	"GOOGLE_CLIENT_ID":            "",
	"GOOGLE_CLIENT_SECRET":        "",
	"SENDGRID_API_KEY":            "",
	"SENDGRID_FROM_EMAIL":         "",
	"TWILIO_ACCOUNT_SID":          "",
	"TWILIO_AUTH_TOKEN":           "",
	"TWILIO_FROM_NUMBER":          "",
	"OWNER_PHONE":                 "",
	"REDIS_ADDR":                  "",
	"REDIS_PASSWORD":              "",
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	// AutomaticEnv only resolves keys viper already knows about, so every key gets a default.
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.GooglePrivateKey = normalizePrivateKey(cfg.GooglePrivateKey)

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL not set")
	}
	loc, err := time.LoadLocation(cfg.BusinessTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid BUSINESS_TIMEZONE %q: %w", cfg.BusinessTimezone, err)
	}
	cfg.Location = loc
	if cfg.Hours, err = ParseHours(cfg.BusinessHours); err != nil {
		return nil, err
	}
	if len(cfg.Hours) == 0 {
		return nil, fmt.Errorf("BUSINESS_HOURS is empty")
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func ParseHours(s string) ([]int, error) {
	var hours []int
	seen := map[int]bool{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		h, err := strconv.Atoi(part)
		if err != nil || h < 0 || h > 23 {
			return nil, fmt.Errorf("invalid business hour %q", part)
		}
		if seen[h] {
			continue
		}
		seen[h] = true
		hours = append(hours, h)
	}
	return hours, nil
}

// Keys pasted into env files usually carry literal "\n" sequences and quotes.
func normalizePrivateKey(key string) string {
	key = strings.ReplaceAll(key, `\n`, "\n")
	return strings.ReplaceAll(key, `"`, "")
}
