package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/tair/stock-ledger/internal/ledger/cache"
	"github.com/tair/stock-ledger/pkg/logger"
)

// RateLimiter decides whether one more request from identifier is admitted
type RateLimiter interface {
	Allow(ctx context.Context, identifier string) (cache.RateDecision, error)
}

// RateLimitMiddleware rejects clients that exceed the limiter's window with 429.
// Limiter failures let the request through.
func RateLimitMiddleware(limiter RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identifier := clientIP(r)

			decision, err := limiter.Allow(r.Context(), identifier)
			if err != nil {
				logger.Error(r.Context()).Err(err).Str("identifier", identifier).Msg("Rate limiter error")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

			if !decision.Allowed {
				retryAfter := time.Until(decision.ResetAt).Round(time.Second)
				logger.Warn(r.Context()).
					Str("identifier", identifier).
					Int("limit", decision.Limit).
					Msg("Rate limit exceeded")

				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
				respondJSON(w, http.StatusTooManyRequests, Response{
					Success: false,
					Error:   fmt.Sprintf("Too many requests. Try again in %v", retryAfter),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
