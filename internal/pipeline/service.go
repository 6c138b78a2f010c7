package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/Rohith-G611/civicpulse/internal/cache"
	"github.com/Rohith-G611/civicpulse/internal/config"
	"github.com/Rohith-G611/civicpulse/internal/store"
	"github.com/Rohith-G611/civicpulse/pkg/models"
	"github.com/google/uuid"
)

// Stage names as recorded in the agent execution log.
const (
	StageValidator   = "validator"
	StageFingerprint = "fingerprint_generator"
	StageClustering  = "clustering_engine"
	StagePriority    = "priority_scorer"
	StageExplain     = "explainability_generator"
)

const problemsCacheTTL = 60 * time.Second

// AnalyzeResult is the outcome of one full re-analysis run.
type AnalyzeResult struct {
	RunID              uuid.UUID         `json:"run_id"`
	TotalComplaints    int               `json:"total_complaints"`
	ProblemsDiscovered int               `json:"problems_discovered"`
	Problems           []*models.Problem `json:"problems"`
	StagesExecuted     []string          `json:"stages_executed"`
}

// ProblemDetails pairs a problem with its linked complaints.
type ProblemDetails struct {
	Problem    *models.Problem     `json:"problem"`
	Complaints []*models.Complaint `json:"complaints"`
}

// Service sequences the pipeline stages, writes an audit log entry per
// stage invocation, and answers read queries. Stages run strictly one at a
// time; a stage failure aborts the remaining sequence without rolling back
// state already written by earlier stages.
type Service struct {
	store    store.Store
	cache    cache.Cache
	seed     int64
	logLimit int
	lockTTL  time.Duration
	now      func() time.Time
}

// NewService creates a pipeline Service.
func NewService(st store.Store, ca cache.Cache, cfg config.PipelineConfig) *Service {
	return &Service{
		store:    st,
		cache:    ca,
		seed:     cfg.ClusterSeed,
		logLimit: cfg.AgentLogLimit,
		lockTTL:  cfg.RunLockTTL,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Submit runs the ingestion workflow: validate, persist, fingerprint.
// A rejected complaint returns a *ValidationError and persists nothing
// beyond the audit entries.
func (s *Service) Submit(ctx context.Context, text, location string) (*models.Complaint, error) {
	logID, started := s.startStage(ctx, StageValidator, ValidatorInput{Text: text, Location: location})
	result := Validate(text, location)
	s.finishStage(ctx, logID, models.StageStatusCompleted, result, started)

	if !result.IsValid {
		return nil, &ValidationError{Reason: result.Reason}
	}

	now := s.now()
	complaint := &models.Complaint{
		ID:          uuid.New(),
		Text:        text,
		CleanedText: result.CleanedText,
		Location:    result.Location,
		Status:      models.ComplaintStatusProcessing,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateComplaint(ctx, complaint); err != nil {
		return nil, &StageError{Stage: StageValidator, Err: err}
	}

	logID, started = s.startStage(ctx, StageFingerprint,
		FingerprintInput{ComplaintID: complaint.ID, CleanedText: complaint.CleanedText})

	fp := Fingerprint(complaint.CleanedText)
	if err := s.store.UpdateComplaintFingerprint(ctx, complaint.ID, fp.Vector); err != nil {
		s.finishStage(ctx, logID, models.StageStatusFailed, nil, started)
		return nil, &StageError{Stage: StageFingerprint, Err: err}
	}
	complaint.Fingerprint = fp.Vector

	s.finishStage(ctx, logID, models.StageStatusCompleted,
		FingerprintOutput{TokenCount: len(fp.Tokens), HasSignal: hasSignal(fp.Vector)}, started)

	slog.Info("complaint submitted", "complaint_id", complaint.ID, "tokens", len(fp.Tokens))
	return complaint, nil
}

// AnalyzeAll runs the full re-analysis: clustering, priority scoring and
// explainability, strictly in that order. Only one run may be live at a
// time; concurrent invocations get ErrRunInProgress.
func (s *Service) AnalyzeAll(ctx context.Context) (*AnalyzeResult, error) {
	acquired, err := s.cache.AcquireLock(ctx, cache.AnalysisLockKey(), s.lockTTL)
	if err != nil {
		// Redis down: fall back to the run-status guard.
		slog.Warn("analysis lock unavailable, using run-status guard", "error", err)
	} else if !acquired {
		return nil, ErrRunInProgress
	} else {
		defer func() {
			if err := s.cache.ReleaseLock(context.WithoutCancel(ctx), cache.AnalysisLockKey()); err != nil {
				slog.Warn("release analysis lock", "error", err)
			}
		}()
	}

	processing, err := s.store.HasProcessingRun(ctx)
	if err != nil {
		return nil, fmt.Errorf("check processing run: %w", err)
	}
	if processing {
		return nil, ErrRunInProgress
	}

	run := &models.AnalysisRun{
		ID:        uuid.New(),
		Status:    models.RunStatusProcessing,
		StartedAt: s.now(),
	}
	if err := s.store.CreateAnalysisRun(ctx, run); err != nil {
		return nil, fmt.Errorf("create analysis run: %w", err)
	}
	slog.Info("analysis run started", "run_id", run.ID)

	result := &AnalyzeResult{RunID: run.ID}

	total, err := s.runClustering(ctx)
	if err != nil {
		return nil, s.failRun(ctx, run.ID, err)
	}
	result.TotalComplaints = total
	result.StagesExecuted = append(result.StagesExecuted, StageClustering)

	if err := s.runPriorityScoring(ctx); err != nil {
		return nil, s.failRun(ctx, run.ID, err)
	}
	result.StagesExecuted = append(result.StagesExecuted, StagePriority)

	if err := s.runExplainability(ctx); err != nil {
		return nil, s.failRun(ctx, run.ID, err)
	}
	result.StagesExecuted = append(result.StagesExecuted, StageExplain)

	problems, err := s.store.ListProblems(ctx)
	if err != nil {
		return nil, s.failRun(ctx, run.ID, err)
	}
	result.Problems = problems
	result.ProblemsDiscovered = len(problems)

	if err := s.store.CompleteAnalysisRun(ctx, run.ID, total, len(problems)); err != nil {
		return nil, fmt.Errorf("complete analysis run: %w", err)
	}

	if err := s.cache.Delete(ctx, cache.ProblemsListKey()); err != nil {
		slog.Warn("invalidate problems cache", "error", err)
	}

	slog.Info("analysis run completed",
		"run_id", run.ID,
		"total_complaints", total,
		"problems_discovered", len(problems))
	return result, nil
}

// runClustering groups pending complaints into problems and replaces the
// stored problem set wholesale.
func (s *Service) runClustering(ctx context.Context) (int, error) {
	complaints, err := s.store.ListComplaintsPendingAnalysis(ctx)
	if err != nil {
		return 0, &StageError{Stage: StageClustering, Err: err}
	}

	logID, started := s.startStage(ctx, StageClustering,
		ClusteringInput{ComplaintCount: len(complaints)})

	clusters := KMeans(complaints, s.newRand())

	now := s.now()
	problems := make([]*models.Problem, 0, len(clusters))
	var links []*models.ComplaintProblemLink
	titles := make([]string, 0, len(clusters))
	for idx, cl := range clusters {
		p := &models.Problem{
			ID:             uuid.New(),
			Title:          ClusterTitle(cl.Members),
			ClusterIndex:   idx,
			ComplaintCount: len(cl.Members),
			PriorityScore:  0,
			Trend:          models.TrendStable,
			Keywords:       []string{},
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		problems = append(problems, p)
		titles = append(titles, p.Title)
		for _, m := range cl.Members {
			links = append(links, &models.ComplaintProblemLink{
				ComplaintID: m.ID,
				ProblemID:   p.ID,
				Confidence:  LinkConfidence,
			})
		}
	}

	if err := s.store.ReplaceProblems(ctx, problems, links); err != nil {
		s.finishStage(ctx, logID, models.StageStatusFailed, nil, started)
		return 0, &StageError{Stage: StageClustering, Err: err}
	}

	s.finishStage(ctx, logID, models.StageStatusCompleted,
		ClusteringOutput{ClustersFound: len(clusters), Titles: titles}, started)
	return len(complaints), nil
}

// runPriorityScoring recomputes score, trend and count for every problem.
func (s *Service) runPriorityScoring(ctx context.Context) error {
	problems, err := s.store.ListProblems(ctx)
	if err != nil {
		return &StageError{Stage: StagePriority, Err: err}
	}

	logID, started := s.startStage(ctx, StagePriority,
		ScoringInput{ProblemCount: len(problems)})

	now := s.now()
	output := ScoringOutput{Scores: make([]ProblemScore, 0, len(problems))}
	for _, p := range problems {
		complaints, err := s.store.ListComplaintsForProblem(ctx, p.ID)
		if err != nil {
			s.finishStage(ctx, logID, models.StageStatusFailed, nil, started)
			return &StageError{Stage: StagePriority, Err: err}
		}

		breakdown := ScorePriority(complaints, now)
		trend := ClassifyTrend(complaints, now)

		if err := s.store.UpdateProblemScores(ctx, p.ID, breakdown.Composite, trend, breakdown.ComplaintCount); err != nil {
			s.finishStage(ctx, logID, models.StageStatusFailed, nil, started)
			return &StageError{Stage: StagePriority, Err: err}
		}
		output.Scores = append(output.Scores, ProblemScore{
			ProblemID:     p.ID,
			PriorityScore: breakdown.Composite,
			Trend:         trend,
		})
	}

	s.finishStage(ctx, logID, models.StageStatusCompleted, output, started)
	return nil
}

// runExplainability derives keywords and narrative text for every problem.
func (s *Service) runExplainability(ctx context.Context) error {
	problems, err := s.store.ListProblems(ctx)
	if err != nil {
		return &StageError{Stage: StageExplain, Err: err}
	}

	logID, started := s.startStage(ctx, StageExplain,
		ExplainInput{ProblemCount: len(problems)})

	now := s.now()
	output := ExplainOutput{Explanations: make([]ProblemExplanation, 0, len(problems))}
	for _, p := range problems {
		complaints, err := s.store.ListComplaintsForProblem(ctx, p.ID)
		if err != nil {
			s.finishStage(ctx, logID, models.StageStatusFailed, nil, started)
			return &StageError{Stage: StageExplain, Err: err}
		}

		expl := Explain(p, complaints, now)
		if err := s.store.UpdateProblemExplanation(ctx, p.ID, expl.Narrative, expl.Keywords); err != nil {
			s.finishStage(ctx, logID, models.StageStatusFailed, nil, started)
			return &StageError{Stage: StageExplain, Err: err}
		}
		output.Explanations = append(output.Explanations, ProblemExplanation{
			ProblemID: p.ID,
			Keywords:  expl.Keywords,
			Reason:    expl.Reason,
		})
	}

	s.finishStage(ctx, logID, models.StageStatusCompleted, output, started)
	return nil
}

// Problems returns all problems ordered by priority, served from the Redis
// cache when fresh.
func (s *Service) Problems(ctx context.Context) ([]*models.Problem, error) {
	if data, ok, err := s.cache.Get(ctx, cache.ProblemsListKey()); err == nil && ok {
		var problems []*models.Problem
		if err := json.Unmarshal(data, &problems); err == nil {
			return problems, nil
		}
	}

	problems, err := s.store.ListProblems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list problems: %w", err)
	}

	if data, err := json.Marshal(problems); err == nil {
		if err := s.cache.Set(ctx, cache.ProblemsListKey(), data, problemsCacheTTL); err != nil {
			slog.Warn("cache problems list", "error", err)
		}
	}
	return problems, nil
}

// ProblemDetails returns one problem and its linked complaints.
// Returns store.ErrNotFound when the id is unknown.
func (s *Service) ProblemDetails(ctx context.Context, id uuid.UUID) (*ProblemDetails, error) {
	problem, err := s.store.GetProblem(ctx, id)
	if err != nil {
		return nil, err
	}
	complaints, err := s.store.ListComplaintsForProblem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list complaints for problem: %w", err)
	}
	return &ProblemDetails{Problem: problem, Complaints: complaints}, nil
}

// AgentLogs returns recent stage invocations, most recent first.
func (s *Service) AgentLogs(ctx context.Context) ([]*models.AgentExecutionLog, error) {
	return s.store.ListAgentLogs(ctx, s.logLimit)
}

// Complaint returns one complaint by id.
func (s *Service) Complaint(ctx context.Context, id uuid.UUID) (*models.Complaint, error) {
	return s.store.GetComplaint(ctx, id)
}

func (s *Service) failRun(ctx context.Context, runID uuid.UUID, err error) error {
	if ferr := s.store.FailAnalysisRun(ctx, runID, err.Error()); ferr != nil {
		slog.Error("mark run failed", "run_id", runID, "error", ferr)
	}
	slog.Error("analysis run failed", "run_id", runID, "error", err)
	return err
}

// startStage writes the running audit entry for a stage invocation.
// Audit writes are best-effort: the pipeline is never aborted because the
// observability trail could not be written.
func (s *Service) startStage(ctx context.Context, stage string, input any) (uuid.UUID, time.Time) {
	started := s.now()
	entry := &models.AgentExecutionLog{
		ID:        uuid.New(),
		StageName: stage,
		Status:    models.StageStatusRunning,
		Input:     marshalSnapshot(input),
		CreatedAt: started,
	}
	if err := s.store.CreateAgentLog(ctx, entry); err != nil {
		slog.Warn("write agent log", "stage", stage, "error", err)
	}
	return entry.ID, started
}

// finishStage closes the audit entry with the outcome and duration.
func (s *Service) finishStage(ctx context.Context, logID uuid.UUID, status string, output any, started time.Time) {
	duration := s.now().Sub(started).Milliseconds()
	if err := s.store.CompleteAgentLog(ctx, logID, status, marshalSnapshot(output), duration); err != nil {
		slog.Warn("complete agent log", "log_id", logID, "error", err)
	}
}

func (s *Service) newRand() *rand.Rand {
	seed := s.seed
	if seed == 0 {
		seed = s.now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func marshalSnapshot(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`{"error":"unserializable snapshot"}`)
	}
	return data
}

func hasSignal(vec []float64) bool {
	for _, v := range vec {
		if v != 0 {
			return true
		}
	}
	return false
}
