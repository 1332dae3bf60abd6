package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/autodetail/internal/ratelimit"
)

// RateLimitMiddleware limits requests per client IP within a fixed window
type RateLimitMiddleware struct {
	limiter *ratelimit.Window
}

// NewRateLimitMiddleware allows maxRequests per window for each client
func NewRateLimitMiddleware(maxRequests int, window time.Duration) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: ratelimit.New(maxRequests, window)}
}

// RateLimit applies rate limiting based on IP address
func (m *RateLimitMiddleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := getClientIP(r)

		ok, retryAfter := m.limiter.AllowAt(clientIP, time.Now())
		if !ok {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", max(int(retryAfter.Seconds()), 1)))
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", m.limiter.Max()))
			w.Header().Set("X-RateLimit-Window", m.limiter.Length().String())

			log.WithFields(log.Fields{"ip": clientIP, "path": r.URL.Path}).Warn("Rate limit exceeded")
			writeError(w, http.StatusTooManyRequests, "Too many requests from this IP, please try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	// Check for forwarded headers first
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return strings.TrimSpace(strings.Split(ip, ",")[0])
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}

	// Fall back to remote address
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
