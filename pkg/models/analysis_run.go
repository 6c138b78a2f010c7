package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RunStatusProcessing = "processing"
	RunStatusCompleted  = "completed"
	RunStatusFailed     = "failed"
)

// AnalysisRun records one full re-analysis invocation
// (clustering -> priority -> explainability).
type AnalysisRun struct {
	ID                 uuid.UUID  `db:"id"                  json:"id"`
	Status             string     `db:"status"              json:"status"`
	TotalComplaints    int        `db:"total_complaints"    json:"total_complaints"`
	ProblemsDiscovered int        `db:"problems_discovered" json:"problems_discovered"`
	StartedAt          time.Time  `db:"started_at"          json:"started_at"`
	CompletedAt        *time.Time `db:"completed_at"        json:"completed_at,omitempty"`
	ErrorMessage       *string    `db:"error_message"       json:"error_message,omitempty"`
}
