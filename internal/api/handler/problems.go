package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/Rohith-G611/civicpulse/internal/api/response"
	"github.com/Rohith-G611/civicpulse/internal/pipeline"
	"github.com/Rohith-G611/civicpulse/internal/store"
	"github.com/Rohith-G611/civicpulse/pkg/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ProblemReader defines the interface the problem handlers depend on.
type ProblemReader interface {
	Problems(ctx context.Context) ([]*models.Problem, error)
	ProblemDetails(ctx context.Context, id uuid.UUID) (*pipeline.ProblemDetails, error)
}

// NewListProblemsHandler returns an http.HandlerFunc for GET /api/v1/problems.
// Problems are ordered by priority score descending.
func NewListProblemsHandler(svc ProblemReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		problems, err := svc.Problems(r.Context())
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}
		if problems == nil {
			problems = []*models.Problem{}
		}
		response.JSON(w, problems)
	}
}

// NewProblemDetailsHandler returns an http.HandlerFunc for
// GET /api/v1/problems/{problemID}.
func NewProblemDetailsHandler(svc ProblemReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "problemID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"problemID must be a valid UUID", nil)
			return
		}

		details, err := svc.ProblemDetails(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "Problem not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		response.JSON(w, details)
	}
}
