package middleware

import (
	"net/http"

	logpkg "github.com/nobetci/eczane/internal/logger"
	"github.com/nobetci/eczane/internal/request"
	"go.uber.org/zap"
)

// Audit logs rate limit violations and oversized requests for abuse monitoring
func Audit(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			switch wrapped.statusCode {
			case http.StatusTooManyRequests:
				logger.Warn("rate_limit_violation",
					zap.String("method", r.Method),
					zap.String("path", logpkg.SanitizePath(r.URL.Path)),
					zap.String("key", logpkg.SanitizeKey(request.ClientKey(r))),
					zap.String("ip", logpkg.SanitizeKey(request.ClientIP(r))),
				)
			case http.StatusRequestEntityTooLarge:
				logger.Warn("request_too_large",
					zap.String("method", r.Method),
					zap.String("path", logpkg.SanitizePath(r.URL.Path)),
					zap.String("ip", logpkg.SanitizeKey(request.ClientIP(r))),
				)
			}
		})
	}
}
