// Package httptransport assembles the HTTP surface: admin API, health
// checks, and Prometheus metrics.
package httptransport

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminhandler "northstar/internal/admin/handler"
	platformredis "northstar/internal/platform/redis"
	"northstar/pkg/platform/httputil"
	"northstar/pkg/requestcontext"
)

// Deps carries everything the router mounts.
type Deps struct {
	Admin  *adminhandler.Handler
	DB     *sql.DB               // nil when running on memory stores
	Redis  *platformredis.Client // nil when the cache is disabled
	Logger *slog.Logger
}

// NewRouter builds the chi router with shared middleware.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(requestIDMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", healthHandler(deps))
	r.Handle("/metrics", promhttp.Handler())

	deps.Admin.Register(r)

	return r
}

// requestIDMiddleware propagates the chi request ID into our context package
// so services and logs see the same identifier.
func requestIDMiddleware(next http.Handler) http.Handler {
	return middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if reqID := middleware.GetReqID(ctx); reqID != "" {
			ctx = requestcontext.WithRequestID(ctx, reqID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	}))
}

// healthHandler reports liveness plus the state of configured backends.
func healthHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := map[string]string{"server": "ok"}

		if deps.DB != nil {
			if err := deps.DB.PingContext(ctx); err != nil {
				checks["postgres"] = err.Error()
				status = http.StatusServiceUnavailable
			} else {
				checks["postgres"] = "ok"
			}
		}
		if deps.Redis != nil {
			if err := deps.Redis.Health(ctx); err != nil {
				checks["redis"] = err.Error()
				status = http.StatusServiceUnavailable
			} else {
				checks["redis"] = "ok"
			}
		}

		httputil.WriteJSON(w, status, checks)
	}
}
