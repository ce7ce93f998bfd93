package api

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	apperrors "daveenci/internal/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	limit    rate.Limit
	burst    int
	logger   *zap.Logger

	// TrustedHops is the number of reverse proxies in front of the server.
	// Zero ignores X-Forwarded-For entirely.
	TrustedHops int
	Now         func() time.Time
}

func NewRateLimiter(perMinute, trustedHops int, logger *zap.Logger) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 30
	}
	return &RateLimiter{
		limiters:    make(map[string]*clientLimiter),
		limit:       rate.Every(time.Minute / time.Duration(perMinute)),
		burst:       perMinute,
		logger:      logger,
		TrustedHops: trustedHops,
		Now:         time.Now,
	}
}

func (l *RateLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.limiters[ip]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[ip] = c
	}
	c.lastSeen = l.Now()
	return c.limiter
}

// Prune drops limiters not used within idle and returns how many were removed.
func (l *RateLimiter) Prune(idle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.Now().Add(-idle)
	removed := 0
	for ip, c := range l.limiters {
		if c.lastSeen.Before(cutoff) {
			delete(l.limiters, ip)
			removed++
		}
	}
	return removed
}

// Size is the number of tracked clients.
func (l *RateLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r, l.TrustedHops)
		if !l.get(ip).Allow() {
			l.logger.Warn("rate limit exceeded", zap.String("ip", ip), zap.String("path", r.URL.Path))
			apperrors.Write(w, apperrors.NewHTTPError(http.StatusTooManyRequests, "Rate limit exceeded. Try again later."))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP takes the address appended by the outermost trusted proxy.
// Entries to the left of it are client supplied and ignored.
func clientIP(r *http.Request, trustedHops int) string {
	if trustedHops > 0 {
		var hops []string
		for _, h := range r.Header.Values("X-Forwarded-For") {
			for _, part := range strings.Split(h, ",") {
				if part = strings.TrimSpace(part); part != "" {
					hops = append(hops, part)
				}
			}
		}
		if len(hops) >= trustedHops {
			return hops[len(hops)-trustedHops]
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
