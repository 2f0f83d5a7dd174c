package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nobetci/eczane/internal/handlers"
	"github.com/nobetci/eczane/internal/metrics"
	"github.com/nobetci/eczane/internal/middleware"
	"github.com/nobetci/eczane/internal/pharmacy"
	"github.com/nobetci/eczane/internal/ratelimit"
	"go.uber.org/zap"
)

const routesDataset = `
cities:
  - name: İzmir
    pharmacies:
      - name: Alsancak Eczanesi
        district: Konak
        phone: "0232 000 11 22"
`

func newTestHandler(t *testing.T, max int) http.Handler {
	t.Helper()
	src, err := pharmacy.ParseDataset(strings.NewReader(routesDataset))
	if err != nil {
		t.Fatalf("ParseDataset: %v", err)
	}
	return newHandler(appDeps{
		service:        pharmacy.NewService(src),
		limiter:        ratelimit.New(ratelimit.Config{Window: time.Minute, MaxRequests: max}),
		metrics:        metrics.New(),
		health:         handlers.NewHealthChecker(nil),
		logger:         zap.NewNop(),
		baseURL:        "https://eczane.example",
		apiPrefix:      "/api/",
		allowedOrigins: []string{"https://eczane.example"},
		requestTimeout: 5 * time.Second,
	})
}

func get(h http.Handler, path, xff string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if xff != "" {
		req.Header.Set("X-Forwarded-For", xff)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHandler_RateLimitsAPIPrefix(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t, 2)

	for i := 0; i < 2; i++ {
		if w := get(h, "/api/v1/pharmacies/izmir", "203.0.113.7"); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d: %s", i+1, w.Code, w.Body.String())
		}
	}

	w := get(h, "/api/v1/cities", "203.0.113.7")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429, got %d", w.Code)
	}
	var body middleware.RateLimitResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.Success || body.Error != middleware.RateLimitMessage {
		t.Errorf("unexpected body %+v", body)
	}
	if w.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("Expected request ID on rejected response")
	}

	// Another client is unaffected
	if w := get(h, "/api/v1/cities", "198.51.100.1"); w.Code != http.StatusOK {
		t.Errorf("other client: expected 200, got %d", w.Code)
	}
}

func TestHandler_UnmatchedAPIPathsCount(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t, 1)

	if w := get(h, "/api/v2/unknown", ""); w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", w.Code)
	}
	if w := get(h, "/api/v2/unknown", ""); w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429 for anonymous key, got %d", w.Code)
	}
}

func TestHandler_PagesAndProbesBypassLimiter(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t, 1)

	for i := 0; i < 3; i++ {
		w := get(h, "/izmir", "203.0.113.7")
		if w.Code != http.StatusOK {
			t.Fatalf("page request %d: expected 200, got %d", i+1, w.Code)
		}
		if w.Header().Get("Content-Security-Policy") == "" {
			t.Error("Expected Content-Security-Policy on pages")
		}
		if w.Header().Get("X-RateLimit-Limit") != "" {
			t.Error("Pages must not carry rate limit headers")
		}
		if w := get(h, "/healthz", "203.0.113.7"); w.Code != http.StatusOK {
			t.Fatalf("healthz request %d: expected 200, got %d", i+1, w.Code)
		}
	}
}

func TestHandler_MetricsEndpoint(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t, 1)

	get(h, "/api/v1/cities", "")
	get(h, "/api/v1/cities", "")

	w := get(h, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	out := w.Body.String()
	for _, want := range []string{
		`nobetci_rate_limit_decisions_total{decision="admitted"} 1`,
		`nobetci_rate_limit_decisions_total{decision="rejected"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
