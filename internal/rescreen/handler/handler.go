package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vigil/internal/platform/httputil"
	"vigil/internal/rescreen"
)

// Runner defines the batch operation the handler delegates to.
type Runner interface {
	Run(ctx context.Context) (*rescreen.Report, error)
}

// Handler exposes the internal batch trigger. The route must be mounted
// behind the shared-secret middleware; it is never public.
type Handler struct {
	runner Runner
	logger *slog.Logger
}

// New constructs a rescreen handler.
func New(runner Runner, logger *slog.Logger) *Handler {
	return &Handler{runner: runner, logger: logger}
}

// Register mounts the batch trigger on the (already guarded) router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/internal/rescreen", h.HandleRun)
}

// HandleRun handles POST /internal/rescreen requests.
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	report, err := h.runner.Run(ctx)
	switch {
	case errors.Is(err, rescreen.ErrRunInProgress):
		httputil.WriteError(w, http.StatusConflict, "run_in_progress", err.Error())
		return
	case err != nil:
		h.logger.ErrorContext(ctx, "rescreen run failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}
