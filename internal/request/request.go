package request

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const requestIDContextKey contextKey = "request_id"

// AnonymousKey is the rate limit key shared by every request without X-Forwarded-For.
const AnonymousKey = "anonymous"

// ClientKey derives the rate limit key: the first X-Forwarded-For entry, or AnonymousKey when absent.
func ClientKey(r *http.Request) string {
	if key := forwardedFor(r); key != "" {
		return key
	}
	return AnonymousKey
}

// ClientIP extracts the client IP from the request, respecting X-Forwarded-For and X-Real-IP.
func ClientIP(r *http.Request) string {
	if ip := forwardedFor(r); ip != "" {
		return ip
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

// forwardedFor returns the trimmed first X-Forwarded-For entry, or "".
func forwardedFor(r *http.Request) string {
	first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ",")
	return strings.TrimSpace(first)
}

// WithRequestID returns a context carrying the request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}

// RequestIDFromContext returns the request ID, or "" if none was set.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}
