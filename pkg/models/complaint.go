// Package models contains shared data models used across the CivicPulse codebase.
package models

import (
	"time"

	"github.com/google/uuid"
)

// FingerprintDim is the fixed length of every complaint fingerprint vector.
const FingerprintDim = 384

const (
	ComplaintStatusProcessing = "processing"
	ComplaintStatusAnalyzed   = "analyzed"
	ComplaintStatusRejected   = "rejected"
)

// Complaint represents one citizen-submitted report. The fingerprint is nil
// until the understanding stage has run; status moves to analyzed once a
// re-analysis run assigns the complaint to a problem. Complaints are never
// deleted by the pipeline.
type Complaint struct {
	ID          uuid.UUID `db:"id"           json:"id"`
	Text        string    `db:"text"         json:"text"`
	CleanedText string    `db:"cleaned_text" json:"cleaned_text"`
	Location    string    `db:"location"     json:"location"`
	Status      string    `db:"status"       json:"status"`
	Fingerprint []float64 `db:"fingerprint"  json:"-"`
	CreatedAt   time.Time `db:"created_at"   json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"   json:"updated_at"`
}
