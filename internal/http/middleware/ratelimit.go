package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/vedang2003/tax-calculator-form/internal/observability/metrics"
	"github.com/vedang2003/tax-calculator-form/internal/ratelimit"
	"github.com/vedang2003/tax-calculator-form/pkg/logging"
)

// RateLimit returns an HTTP middleware that rejects requests exceeding the
// limiter's sliding window with 429 Too Many Requests. If the limiter itself
// fails (shared Redis store unreachable), the request is admitted: a broken
// throttle must not take down lead capture.
func RateLimit(limiter ratelimit.Limiter, m *metrics.SubmissionMetrics, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := clientIdentifier(r)

			allowed, err := limiter.Allow(r.Context(), clientID)
			if err != nil {
				logger.Error("rate limiter unavailable, admitting request", "error", err, "client_ip", clientID)
				allowed = true
			}
			if !allowed {
				logger.Warn("rate limit exceeded", "client_ip", clientID, "path", r.URL.Path)
				m.ObserveRateLimited()
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"Too many requests. Please try again later."}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIdentifier prefers the first X-Forwarded-For hop, falling back to the
// peer address with the port stripped.
func clientIdentifier(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.SplitN(xff, ",", 2)[0])
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
