package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Rohith-G611/civicpulse/pkg/models"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("resource not found")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	CreateComplaint(ctx context.Context, c *models.Complaint) error
	GetComplaint(ctx context.Context, id uuid.UUID) (*models.Complaint, error)
	UpdateComplaintFingerprint(ctx context.Context, id uuid.UUID, fingerprint []float64) error
	// ListComplaintsPendingAnalysis returns complaints with status processing
	// that already carry a fingerprint, oldest first.
	ListComplaintsPendingAnalysis(ctx context.Context) ([]*models.Complaint, error)
	ListComplaintsForProblem(ctx context.Context, problemID uuid.UUID) ([]*models.Complaint, error)

	// ReplaceProblems deletes every existing problem and link, inserts the
	// given problems and links, and marks the linked complaints analyzed,
	// all inside a single transaction.
	ReplaceProblems(ctx context.Context, problems []*models.Problem, links []*models.ComplaintProblemLink) error
	ListProblems(ctx context.Context) ([]*models.Problem, error)
	GetProblem(ctx context.Context, id uuid.UUID) (*models.Problem, error)
	UpdateProblemScores(ctx context.Context, id uuid.UUID, priorityScore int, trend string, complaintCount int) error
	UpdateProblemExplanation(ctx context.Context, id uuid.UUID, description string, keywords []string) error

	CreateAgentLog(ctx context.Context, log *models.AgentExecutionLog) error
	CompleteAgentLog(ctx context.Context, id uuid.UUID, status string, output json.RawMessage, durationMS int64) error
	ListAgentLogs(ctx context.Context, limit int) ([]*models.AgentExecutionLog, error)

	CreateAnalysisRun(ctx context.Context, run *models.AnalysisRun) error
	CompleteAnalysisRun(ctx context.Context, id uuid.UUID, totalComplaints, problemsDiscovered int) error
	FailAnalysisRun(ctx context.Context, id uuid.UUID, errorMessage string) error
	// HasProcessingRun reports whether any analysis run is still marked
	// processing. Used as the fallback single-writer guard.
	HasProcessingRun(ctx context.Context) (bool, error)
}
