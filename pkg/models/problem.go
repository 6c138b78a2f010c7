package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	TrendRising  = "rising"
	TrendStable  = "stable"
	TrendFalling = "falling"
)

// Problem is one discovered cluster of similar complaints. The full problem
// set is replaced wholesale by each completed re-analysis run; ClusterIndex
// is the cluster's position within its run and is not stable across runs.
type Problem struct {
	ID             uuid.UUID `db:"id"              json:"id"`
	Title          string    `db:"title"           json:"title"`
	Description    string    `db:"description"     json:"description"`
	ClusterIndex   int       `db:"cluster_index"   json:"cluster_index"`
	ComplaintCount int       `db:"complaint_count" json:"complaint_count"`
	PriorityScore  int       `db:"priority_score"  json:"priority_score"`
	Trend          string    `db:"trend"           json:"trend"`
	Keywords       []string  `db:"keywords"        json:"keywords"`
	CreatedAt      time.Time `db:"created_at"      json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"      json:"updated_at"`
}

// ComplaintProblemLink assigns one complaint to one problem. Membership is
// exclusive: a complaint has at most one active link at any time.
type ComplaintProblemLink struct {
	ComplaintID uuid.UUID `db:"complaint_id" json:"complaint_id"`
	ProblemID   uuid.UUID `db:"problem_id"   json:"problem_id"`
	Confidence  float64   `db:"confidence"   json:"confidence"`
}
