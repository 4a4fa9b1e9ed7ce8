package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/pairbond/pairbond-server/internal/config"
)

// rateChecker is satisfied by RedisRateLimiter; the IP limiter shares the
// same sliding window backend as the session limiter.
type rateChecker interface {
	Check(ctx context.Context, key string, limit int) (allowed bool, remaining int, resetAt int64)
}

type IPRateLimitMiddleware struct {
	limiter rateChecker
	limit   int
	prefix  string
}

func NewIPRateLimitMiddleware(limiter *RedisRateLimiter, limit int, prefix string) *IPRateLimitMiddleware {
	if limit <= 0 {
		limit = config.DefaultPublicRateLimitPerMin
	}
	return &IPRateLimitMiddleware{
		limiter: limiter,
		limit:   limit,
		prefix:  prefix,
	}
}

// Handler rate-limits by client IP. The public pair endpoints carry the
// passphrase before any session exists, so guessing is throttled here
// rather than by the session limiter.
func (m *IPRateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := fmt.Sprintf("ip:%s:%s", m.prefix, r.RemoteAddr)
		allowed, remaining, resetAt := m.limiter.Check(r.Context(), key, m.limit)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(m.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt, 10))

		if !allowed {
			log.Warn().Str("ip", r.RemoteAddr).Str("scope", m.prefix).Msg("public rate limit exceeded")
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, map[string]string{
				"error": "Too many requests. Please try again later.",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
