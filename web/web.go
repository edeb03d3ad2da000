// Package web provides the HTTP API for access checks, purchases, offers,
// and grants.
package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/openlearn/coursegate/adapters/metrics"
	"github.com/openlearn/coursegate/app"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Handler provides the API endpoints.
type Handler struct {
	access    *app.AccessService
	purchases *app.PurchaseService
	offers    *app.OfferService
	grants    *app.GrantService
	logger    zerolog.Logger
	metrics   *metrics.Collector
}

// Deps contains dependencies for the API handler.
type Deps struct {
	Access    *app.AccessService
	Purchases *app.PurchaseService
	Offers    *app.OfferService
	Grants    *app.GrantService
	Logger    zerolog.Logger
	Metrics   *metrics.Collector // optional
}

// NewHandler creates a new API handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{
		access:    deps.Access,
		purchases: deps.Purchases,
		offers:    deps.Offers,
		grants:    deps.Grants,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
	}
}

// RouterConfig holds optional configuration for the router.
type RouterConfig struct {
	MetricsPath string // where to expose Prometheus metrics; empty disables
}

// Router returns the API router.
func (h *Handler) Router(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggingMiddleware(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	if h.metrics != nil {
		r.Use(NewMetricsMiddleware(h.metrics))
	}

	r.Get("/healthz", h.Health)
	if cfg.MetricsPath != "" {
		r.Handle(cfg.MetricsPath, promhttp.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/modules/{id}/access", h.ModuleAccess)
		r.Get("/modules/{id}/lessons", h.ModuleLessons)

		r.Post("/purchases/module", h.PurchaseModule)
		r.Post("/purchases/bundle", h.PurchaseBundle)
		r.Post("/purchases/gift", h.PurchaseGift)

		r.Get("/users/{id}/offers", h.UserOffers)
		r.Get("/users/{id}/purchases", h.UserPurchases)

		r.Post("/grants", h.CreateGrant)
		r.Delete("/grants/{id}", h.RevokeGrant)
	})

	return r
}

// Health returns a simple liveness check.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NewLoggingMiddleware creates middleware that logs HTTP requests.
func NewLoggingMiddleware(logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			// Skip logging for health checks and metrics
			if r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
				return
			}

			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("http request")
		})
	}
}

// NewMetricsMiddleware creates middleware that records request metrics.
// The chi route pattern is used as the path label to keep cardinality bounded.
func NewMetricsMiddleware(m *metrics.Collector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			path := chi.RouteContext(r.Context()).RoutePattern()
			if path == "" {
				path = "unmatched"
			}

			m.RequestsTotal.WithLabelValues(r.Method, path, statusLabel(ww.Status())).Inc()
			m.RequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// statusLabel returns a string label for the status code.
func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "other"
	}
}

// userParam reads the optional caller identity from the user query parameter.
// An empty value means an anonymous caller.
func userParam(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("user"))
}
