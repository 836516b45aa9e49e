package ratelimit

import (
	"encoding/json"
	"net/http"

	"github.com/MJServices/neural-admin-panel/internal/clientip"
	"github.com/MJServices/neural-admin-panel/internal/logger"
	"github.com/MJServices/neural-admin-panel/internal/metrics"
)

// retryAfterSeconds is advertised on rejected requests
const retryAfterSeconds = "1"

// Middleware rejects requests over the limit with 429. Clients are keyed
// by clientip.Info.RateLimitKey, so clientip.Middleware must run first.
func Middleware(limiter Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientip.FromRequest(r).RateLimitKey
			if !limiter.Allow(r.Context(), key) {
				metrics.RateLimitRejections.Inc()
				logger.Ctx(r.Context()).Warn("rate limit exceeded", "key", key, "path", r.URL.Path)

				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", retryAfterSeconds)
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Rate limit exceeded. Please try again later.",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
