package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Rohith-G611/civicpulse/pkg/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Complaints ---

func (s *PostgresStore) CreateComplaint(ctx context.Context, c *models.Complaint) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO complaints (id, text, cleaned_text, location, status, fingerprint, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.Text, c.CleanedText, c.Location, c.Status, c.Fingerprint, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create complaint: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetComplaint(ctx context.Context, id uuid.UUID) (*models.Complaint, error) {
	var c models.Complaint
	err := s.pool.QueryRow(ctx,
		`SELECT id, text, cleaned_text, location, status, fingerprint, created_at, updated_at
		 FROM complaints WHERE id = $1`, id,
	).Scan(&c.ID, &c.Text, &c.CleanedText, &c.Location, &c.Status, &c.Fingerprint,
		&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get complaint: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) UpdateComplaintFingerprint(ctx context.Context, id uuid.UUID, fingerprint []float64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE complaints SET fingerprint = $2, updated_at = NOW() WHERE id = $1`,
		id, fingerprint)
	if err != nil {
		return fmt.Errorf("update complaint fingerprint: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListComplaintsPendingAnalysis(ctx context.Context) ([]*models.Complaint, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, text, cleaned_text, location, status, fingerprint, created_at, updated_at
		 FROM complaints
		 WHERE status = $1 AND fingerprint IS NOT NULL
		 ORDER BY created_at ASC`, models.ComplaintStatusProcessing)
	if err != nil {
		return nil, fmt.Errorf("list complaints pending analysis: %w", err)
	}
	defer rows.Close()
	return scanComplaints(rows)
}

func (s *PostgresStore) ListComplaintsForProblem(ctx context.Context, problemID uuid.UUID) ([]*models.Complaint, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT c.id, c.text, c.cleaned_text, c.location, c.status, c.fingerprint, c.created_at, c.updated_at
		 FROM complaints c
		 JOIN complaint_problem_links l ON l.complaint_id = c.id
		 WHERE l.problem_id = $1
		 ORDER BY c.created_at ASC`, problemID)
	if err != nil {
		return nil, fmt.Errorf("list complaints for problem: %w", err)
	}
	defer rows.Close()
	return scanComplaints(rows)
}

func scanComplaints(rows pgx.Rows) ([]*models.Complaint, error) {
	var complaints []*models.Complaint
	for rows.Next() {
		var c models.Complaint
		if err := rows.Scan(&c.ID, &c.Text, &c.CleanedText, &c.Location, &c.Status,
			&c.Fingerprint, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan complaint: %w", err)
		}
		complaints = append(complaints, &c)
	}
	return complaints, rows.Err()
}

// --- Problems ---

// ReplaceProblems swaps the full problem set in one transaction: every
// existing problem and link is deleted, the new set is inserted, and the
// linked complaints are marked analyzed. A crash mid-run therefore cannot
// leave analyzed complaints without links.
func (s *PostgresStore) ReplaceProblems(ctx context.Context, problems []*models.Problem, links []*models.ComplaintProblemLink) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace problems: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM complaint_problem_links`); err != nil {
		return fmt.Errorf("delete links: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM problems`); err != nil {
		return fmt.Errorf("delete problems: %w", err)
	}

	for _, p := range problems {
		_, err := tx.Exec(ctx,
			`INSERT INTO problems (id, title, description, cluster_index, complaint_count, priority_score, trend, keywords, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			p.ID, p.Title, p.Description, p.ClusterIndex, p.ComplaintCount,
			p.PriorityScore, p.Trend, p.Keywords, p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert problem: %w", err)
		}
	}

	memberIDs := make([]uuid.UUID, 0, len(links))
	for _, l := range links {
		_, err := tx.Exec(ctx,
			`INSERT INTO complaint_problem_links (complaint_id, problem_id, confidence)
			 VALUES ($1, $2, $3)`,
			l.ComplaintID, l.ProblemID, l.Confidence)
		if err != nil {
			return fmt.Errorf("insert link: %w", err)
		}
		memberIDs = append(memberIDs, l.ComplaintID)
	}

	if len(memberIDs) > 0 {
		_, err := tx.Exec(ctx,
			`UPDATE complaints SET status = $1, updated_at = NOW() WHERE id = ANY($2)`,
			models.ComplaintStatusAnalyzed, memberIDs)
		if err != nil {
			return fmt.Errorf("mark complaints analyzed: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace problems: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListProblems(ctx context.Context) ([]*models.Problem, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, title, description, cluster_index, complaint_count, priority_score, trend, keywords, created_at, updated_at
		 FROM problems ORDER BY priority_score DESC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list problems: %w", err)
	}
	defer rows.Close()

	var problems []*models.Problem
	for rows.Next() {
		var p models.Problem
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.ClusterIndex,
			&p.ComplaintCount, &p.PriorityScore, &p.Trend, &p.Keywords,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan problem: %w", err)
		}
		problems = append(problems, &p)
	}
	return problems, rows.Err()
}

func (s *PostgresStore) GetProblem(ctx context.Context, id uuid.UUID) (*models.Problem, error) {
	var p models.Problem
	err := s.pool.QueryRow(ctx,
		`SELECT id, title, description, cluster_index, complaint_count, priority_score, trend, keywords, created_at, updated_at
		 FROM problems WHERE id = $1`, id,
	).Scan(&p.ID, &p.Title, &p.Description, &p.ClusterIndex, &p.ComplaintCount,
		&p.PriorityScore, &p.Trend, &p.Keywords, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get problem: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) UpdateProblemScores(ctx context.Context, id uuid.UUID, priorityScore int, trend string, complaintCount int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE problems SET priority_score = $2, trend = $3, complaint_count = $4, updated_at = NOW()
		 WHERE id = $1`, id, priorityScore, trend, complaintCount)
	if err != nil {
		return fmt.Errorf("update problem scores: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UpdateProblemExplanation(ctx context.Context, id uuid.UUID, description string, keywords []string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE problems SET description = $2, keywords = $3, updated_at = NOW()
		 WHERE id = $1`, id, description, keywords)
	if err != nil {
		return fmt.Errorf("update problem explanation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Agent Execution Logs ---

func (s *PostgresStore) CreateAgentLog(ctx context.Context, log *models.AgentExecutionLog) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO agent_execution_logs (id, stage_name, status, input, output, duration_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		log.ID, log.StageName, log.Status, log.Input, log.Output, log.DurationMS, log.CreatedAt)
	if err != nil {
		return fmt.Errorf("create agent log: %w", err)
	}
	return nil
}

func (s *PostgresStore) CompleteAgentLog(ctx context.Context, id uuid.UUID, status string, output json.RawMessage, durationMS int64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE agent_execution_logs SET status = $2, output = $3, duration_ms = $4
		 WHERE id = $1 AND status = $5`,
		id, status, output, durationMS, models.StageStatusRunning)
	if err != nil {
		return fmt.Errorf("complete agent log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListAgentLogs(ctx context.Context, limit int) ([]*models.AgentExecutionLog, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, stage_name, status, input, output, duration_ms, created_at
		 FROM agent_execution_logs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list agent logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.AgentExecutionLog
	for rows.Next() {
		var l models.AgentExecutionLog
		if err := rows.Scan(&l.ID, &l.StageName, &l.Status, &l.Input, &l.Output,
			&l.DurationMS, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan agent log: %w", err)
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}

// --- Analysis Runs ---

func (s *PostgresStore) CreateAnalysisRun(ctx context.Context, run *models.AnalysisRun) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO analysis_runs (id, status, total_complaints, problems_discovered, started_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		run.ID, run.Status, run.TotalComplaints, run.ProblemsDiscovered, run.StartedAt)
	if err != nil {
		return fmt.Errorf("create analysis run: %w", err)
	}
	return nil
}

func (s *PostgresStore) CompleteAnalysisRun(ctx context.Context, id uuid.UUID, totalComplaints, problemsDiscovered int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE analysis_runs SET status = $2, total_complaints = $3, problems_discovered = $4, completed_at = $5
		 WHERE id = $1`,
		id, models.RunStatusCompleted, totalComplaints, problemsDiscovered, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("complete analysis run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FailAnalysisRun(ctx context.Context, id uuid.UUID, errorMessage string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE analysis_runs SET status = $2, error_message = $3, completed_at = $4
		 WHERE id = $1`,
		id, models.RunStatusFailed, errorMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("fail analysis run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) HasProcessingRun(ctx context.Context) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM analysis_runs WHERE status = $1)`,
		models.RunStatusProcessing).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check processing run: %w", err)
	}
	return exists, nil
}
