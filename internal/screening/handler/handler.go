package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vigil/internal/platform/httputil"
	"vigil/internal/screening"
	id "vigil/pkg/domain"
)

//go:generate mockgen -source=handler.go -destination=mocks/screening-mocks.go -package=mocks Service

// Service defines the screening operation the handler delegates to.
type Service interface {
	Screen(ctx context.Context, subjectID id.SubjectID, identity screening.Identity) (*screening.Assessment, screening.RecordOutcome, error)
}

// Handler wires the screening endpoint to the screening service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a screening handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts screening endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/screening/evaluate", h.HandleEvaluate)
}

// HandleEvaluate handles POST /screening/evaluate requests.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	subjectID, err := req.ParsedSubjectID()
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "bad_request", "subject_id must be a UUID")
		return
	}

	assessment, outcome, err := h.service.Screen(ctx, subjectID, req.Identity())
	switch {
	case errors.Is(err, screening.ErrInvalidIdentity):
		httputil.WriteError(w, http.StatusBadRequest, "invalid_identity", err.Error())
		return
	case errors.Is(err, screening.ErrPersist):
		// The assessment was computed; hand it back so the caller can retry
		// the write without re-screening.
		h.logger.ErrorContext(ctx, "assessment persistence failed",
			"subject_id", subjectID,
			"error", err,
		)
		httputil.WriteJSON(w, http.StatusInternalServerError, PersistFailureResponse{
			Error:      "persistence_failure",
			SubjectID:  subjectID.String(),
			Assessment: assessment,
		})
		return
	case err != nil:
		h.logger.ErrorContext(ctx, "screening failed",
			"subject_id", subjectID,
			"error", err,
		)
		httputil.WriteError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	h.logger.InfoContext(ctx, "screening evaluated",
		"subject_id", subjectID,
		"decision", assessment.Decision,
		"score", assessment.Score,
		"changed", outcome.Changed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, EvaluateResponse{
		SubjectID:        subjectID.String(),
		Assessment:       assessment,
		PreviousDecision: outcome.Previous,
		Changed:          outcome.Changed,
		AlertEmitted:     outcome.Alerted,
	})
}
