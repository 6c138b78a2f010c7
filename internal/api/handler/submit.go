package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Rohith-G611/civicpulse/internal/api/response"
	"github.com/Rohith-G611/civicpulse/internal/pipeline"
	"github.com/Rohith-G611/civicpulse/pkg/models"
)

// Submitter defines the interface the submit handler depends on.
type Submitter interface {
	Submit(ctx context.Context, text, location string) (*models.Complaint, error)
}

// NewSubmitHandler returns an http.HandlerFunc for POST /api/v1/complaints.
func NewSubmitHandler(svc Submitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text     string `json:"text"`
			Location string `json:"location"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if req.Text == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "text is required", nil)
			return
		}

		complaint, err := svc.Submit(r.Context(), req.Text, req.Location)
		if err != nil {
			var verr *pipeline.ValidationError
			if errors.As(err, &verr) {
				response.Error(w, http.StatusUnprocessableEntity, "COMPLAINT_REJECTED", verr.Reason, nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		response.Created(w, submitResponse{
			ComplaintID: complaint.ID.String(),
			Status:      complaint.Status,
		})
	}
}

type submitResponse struct {
	ComplaintID string `json:"complaint_id"`
	Status      string `json:"status"`
}
