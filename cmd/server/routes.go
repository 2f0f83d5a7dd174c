package main

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/nobetci/eczane/internal/handlers"
	"github.com/nobetci/eczane/internal/metrics"
	"github.com/nobetci/eczane/internal/middleware"
	"github.com/nobetci/eczane/internal/pharmacy"
	"github.com/nobetci/eczane/internal/ratelimit"
	"github.com/nobetci/eczane/internal/telemetry"
	"go.uber.org/zap"
)

// appDeps are the collaborators the HTTP surface is built from.
type appDeps struct {
	service        *pharmacy.Service
	limiter        *ratelimit.Limiter
	metrics        *metrics.Metrics
	health         *handlers.HealthChecker
	logger         *zap.Logger
	baseURL        string
	apiPrefix      string
	allowedOrigins []string
	enableHSTS     bool
	requestTimeout time.Duration
	tracing        bool
}

// newHandler builds the router and wraps it in the middleware chain.
//
// The chain sits outside mux so the rate limiter also covers /api/ paths that
// match no route. From the outside in:
// ErrorHandler, RequestID, Logging, Audit, SecurityHeaders, CORS,
// MaxRequestSize, Timeout, APIRateLimit, then the router with tracing and
// per-route metrics.
func newHandler(d appDeps) http.Handler {
	r := mux.NewRouter()

	if d.tracing {
		r.Use(telemetry.Middleware(telemetry.ServiceName, "/healthz", "/metrics"))
		d.logger.Info("otel_middleware_enabled")
	}
	r.Use(middleware.Metrics(d.metrics))

	// Probes and scrapes
	r.HandleFunc("/healthz", d.health.HealthCheck).Methods(http.MethodGet)
	r.Handle("/metrics", d.metrics.Handler()).Methods(http.MethodGet)

	// API v1 routes
	api := handlers.NewPharmacyHandler(d.service, d.metrics, d.logger)
	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.HandleFunc("/cities", api.ListCities).Methods(http.MethodGet)
	apiRouter.HandleFunc("/pharmacies", api.Search).Methods(http.MethodGet)
	apiRouter.HandleFunc("/pharmacies/{city}", api.SearchByCity).Methods(http.MethodGet)

	// Server-rendered pages
	pages := handlers.NewPageHandler(d.service, d.baseURL, d.metrics, d.logger)
	r.HandleFunc("/", pages.Home).Methods(http.MethodGet)
	r.HandleFunc("/{city}", pages.City).Methods(http.MethodGet)
	r.HandleFunc("/{city}/{district}", pages.City).Methods(http.MethodGet)

	var h http.Handler = r
	h = middleware.APIRateLimit(d.limiter, d.apiPrefix, d.metrics, d.logger)(h)
	h = middleware.Timeout(d.requestTimeout)(h)
	h = middleware.MaxRequestSize(middleware.DefaultMaxRequestSize, d.logger)(h)
	h = middleware.CORS(d.allowedOrigins)(h)
	h = middleware.SecurityHeaders(d.enableHSTS)(h)
	h = middleware.Audit(d.logger)(h)
	h = middleware.Logging(d.logger)(h)
	h = middleware.RequestID(h)
	h = middleware.ErrorHandler(d.logger)(h)
	return h
}
