// Package httpapi assembles the public HTTP surface: shared middleware,
// health and metrics endpoints, and the authenticated module routes.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"slfcert/internal/platform/metrics"
	"slfcert/internal/platform/middleware"
	"slfcert/pkg/platform/httputil"
	"slfcert/pkg/platform/middleware/metadata"
	"slfcert/pkg/platform/middleware/requesttime"
)

// Registrar mounts a module's routes.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck probes one backing dependency.
type HealthCheck func(ctx context.Context) error

// Deps collects what the router needs from main.
type Deps struct {
	Logger        *slog.Logger
	Metrics       *metrics.Metrics
	ActorResolver middleware.ActorResolver
	HealthChecks  map[string]HealthCheck
	Modules       []Registrar
}

const healthTimeout = 2 * time.Second

// NewRouter wires middleware in order: request id, client metadata, panic
// recovery, request time, metrics, access log. Module routes additionally
// require an actor.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(requesttime.Middleware)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}
	r.Use(middleware.Logger(deps.Logger))

	r.Get("/healthz", healthHandler(deps.HealthChecks))
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireActor(deps.ActorResolver, deps.Logger))
		for _, m := range deps.Modules {
			m.Register(r)
		}
	})
	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(names))
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}
		httputil.WriteJSON(w, status, map[string]any{"status": overall, "checks": results})
	}
}
