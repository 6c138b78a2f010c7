package pipeline

import "github.com/google/uuid"

// Stage payloads are explicit records rather than ad hoc maps; they are
// snapshotted as JSON into the agent execution log.

type ValidatorInput struct {
	Text     string `json:"text"`
	Location string `json:"location,omitempty"`
}

type FingerprintInput struct {
	ComplaintID uuid.UUID `json:"complaint_id"`
	CleanedText string    `json:"cleaned_text"`
}

type FingerprintOutput struct {
	TokenCount int  `json:"token_count"`
	HasSignal  bool `json:"has_signal"`
}

type ClusteringInput struct {
	ComplaintCount int `json:"complaint_count"`
}

type ClusteringOutput struct {
	ClustersFound int      `json:"clusters_found"`
	Titles        []string `json:"titles"`
}

type ScoringInput struct {
	ProblemCount int `json:"problem_count"`
}

type ProblemScore struct {
	ProblemID     uuid.UUID `json:"problem_id"`
	PriorityScore int       `json:"priority_score"`
	Trend         string    `json:"trend"`
}

type ScoringOutput struct {
	Scores []ProblemScore `json:"scores"`
}

type ExplainInput struct {
	ProblemCount int `json:"problem_count"`
}

type ProblemExplanation struct {
	ProblemID uuid.UUID `json:"problem_id"`
	Keywords  []string  `json:"keywords"`
	Reason    string    `json:"reason"`
}

type ExplainOutput struct {
	Explanations []ProblemExplanation `json:"explanations"`
}
