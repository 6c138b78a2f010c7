package handler

import (
	"context"
	"net/http"

	"github.com/Rohith-G611/civicpulse/internal/api/response"
	"github.com/Rohith-G611/civicpulse/pkg/models"
)

// LogReader defines the interface the agent-log handler depends on.
type LogReader interface {
	AgentLogs(ctx context.Context) ([]*models.AgentExecutionLog, error)
}

// NewAgentLogsHandler returns an http.HandlerFunc for GET /api/v1/logs.
// Entries come back most recent first, bounded by the configured limit.
func NewAgentLogsHandler(svc LogReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logs, err := svc.AgentLogs(r.Context())
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}
		if logs == nil {
			logs = []*models.AgentExecutionLog{}
		}
		response.JSON(w, logs)
	}
}
