package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/Rohith-G611/civicpulse/internal/api/response"
	"github.com/Rohith-G611/civicpulse/internal/pipeline"
)

// Analyzer defines the interface the analyze handler depends on.
type Analyzer interface {
	AnalyzeAll(ctx context.Context) (*pipeline.AnalyzeResult, error)
}

// NewAnalyzeHandler returns an http.HandlerFunc for POST /api/v1/analyze.
// The run executes synchronously; the response carries the full ordered
// problem list.
func NewAnalyzeHandler(svc Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.AnalyzeAll(r.Context())
		if err != nil {
			var serr *pipeline.StageError
			switch {
			case errors.Is(err, pipeline.ErrRunInProgress):
				response.Error(w, http.StatusConflict, "RUN_IN_PROGRESS",
					"An analysis run is already in progress", nil)
			case errors.As(err, &serr):
				response.Error(w, http.StatusInternalServerError, "STAGE_FAILED",
					serr.Error(), map[string]string{"stage": serr.Stage})
			default:
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"An unexpected error occurred", nil)
			}
			return
		}

		response.JSON(w, result)
	}
}
