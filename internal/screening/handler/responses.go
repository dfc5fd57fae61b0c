package handler

import "vigil/internal/screening"

// EvaluateResponse is the body returned by POST /screening/evaluate.
type EvaluateResponse struct {
	SubjectID string `json:"subject_id"`
	*screening.Assessment
	PreviousDecision screening.Decision `json:"previous_decision"`
	Changed          bool               `json:"changed"`
	AlertEmitted     bool               `json:"alert_emitted"`
}

// PersistFailureResponse is returned when the pipeline completed but the
// disposition write failed. The assessment is included so the caller can
// retry persistence without recomputation.
type PersistFailureResponse struct {
	Error      string                `json:"error"`
	SubjectID  string                `json:"subject_id"`
	Assessment *screening.Assessment `json:"assessment"`
}
