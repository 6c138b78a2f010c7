package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	StageStatusRunning   = "running"
	StageStatusCompleted = "completed"
	StageStatusFailed    = "failed"
)

// AgentExecutionLog is the append-only audit record of one pipeline stage
// invocation. Immutable once completed; later stages never read it.
type AgentExecutionLog struct {
	ID         uuid.UUID       `db:"id"          json:"id"`
	StageName  string          `db:"stage_name"  json:"stage_name"`
	Status     string          `db:"status"      json:"status"`
	Input      json.RawMessage `db:"input"       json:"input"`
	Output     json.RawMessage `db:"output"      json:"output,omitempty"`
	DurationMS int64           `db:"duration_ms" json:"duration_ms"`
	CreatedAt  time.Time       `db:"created_at"  json:"created_at"`
}
