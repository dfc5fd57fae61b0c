// Package httptransport assembles the service's HTTP surface. Handlers stay
// in their domain packages; this is only the route table.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vigil/internal/platform/httputil"
	"vigil/internal/platform/middleware"
	rescreenhandler "vigil/internal/rescreen/handler"
	screeninghandler "vigil/internal/screening/handler"
)

// Deps collects everything the router mounts.
type Deps struct {
	Screening *screeninghandler.Handler
	Rescreen  *rescreenhandler.Handler

	// RescreenSecret guards the internal batch trigger.
	RescreenSecret string

	// Ready reports dependency health for /healthz; nil means always ready.
	Ready func(ctx context.Context) error

	Logger *slog.Logger
}

// NewRouter wires all endpoints. The rescreen trigger lives in its own route
// group behind the shared-secret middleware; everything else is unguarded
// here because caller-facing auth belongs to the request layer in front of
// this service.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", handleHealth(deps.Ready))
	r.Handle("/metrics", promhttp.Handler())

	deps.Screening.Register(r)

	r.Group(func(gr chi.Router) {
		gr.Use(middleware.RequireInternalSecret(deps.RescreenSecret, deps.Logger))
		deps.Rescreen.Register(gr)
	})
	return r
}

func handleHealth(ready func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			if err := ready(r.Context()); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "degraded",
					"reason": err.Error(),
				})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
