package middleware

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	logpkg "github.com/nobetci/eczane/internal/logger"
	"github.com/nobetci/eczane/internal/metrics"
	"github.com/nobetci/eczane/internal/ratelimit"
	"github.com/nobetci/eczane/internal/request"
	"go.uber.org/zap"
)

// RateLimitMessage is the localized body text of a 429 response.
const RateLimitMessage = "Çok fazla istek gönderdiniz. Lütfen biraz bekleyip tekrar deneyin."

// RateLimitResponse is the JSON body sent with a 429.
type RateLimitResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// APIRateLimit applies limiter to requests whose path starts with prefix. Other
// paths pass through untouched. Rejected requests get a 429 with a localized JSON
// error; admitted ones get no-store and anti-sniffing headers before reaching next.
func APIRateLimit(limiter *ratelimit.Limiter, prefix string, m *metrics.Metrics, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}

			key := request.ClientKey(r)
			now := limiter.Now()
			decision, rec, limit := limiter.Check(key, now)
			m.ObserveDecision(decision)
			setRateLimitHeaders(w.Header(), limit, rec)

			if decision == ratelimit.Rejected {
				retryAfter := int(math.Ceil(rec.WindowResetAt.Sub(now).Seconds()))
				if retryAfter < 1 {
					retryAfter = 1
				}
				logger.Debug("rate_limit_rejected",
					zap.String("key", logpkg.SanitizeKey(key)),
					zap.String("path", logpkg.SanitizePath(r.URL.Path)),
					zap.Int("retry_after_s", retryAfter),
				)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				respondRateLimited(w, logger)
				return
			}

			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Cache-Control", "no-store, max-age=0")

			next.ServeHTTP(w, r)
		})
	}
}

func setRateLimitHeaders(h http.Header, maxRequests int, rec ratelimit.Record) {
	remaining := maxRequests - rec.Count
	if remaining < 0 {
		remaining = 0
	}
	h.Set("X-RateLimit-Limit", strconv.Itoa(maxRequests))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(rec.WindowResetAt.Unix(), 10))
}

func respondRateLimited(w http.ResponseWriter, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusTooManyRequests)
	if err := json.NewEncoder(w).Encode(RateLimitResponse{Success: false, Error: RateLimitMessage}); err != nil {
		logger.Error("failed_to_encode_rate_limit_response", zap.Error(err))
	}
}
