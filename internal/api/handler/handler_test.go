package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rohith-G611/civicpulse/internal/pipeline"
	"github.com/Rohith-G611/civicpulse/internal/store"
	"github.com/Rohith-G611/civicpulse/pkg/models"
)

type fakeService struct {
	submitFn   func(ctx context.Context, text, location string) (*models.Complaint, error)
	analyzeFn  func(ctx context.Context) (*pipeline.AnalyzeResult, error)
	problemsFn func(ctx context.Context) ([]*models.Problem, error)
	detailsFn  func(ctx context.Context, id uuid.UUID) (*pipeline.ProblemDetails, error)
	logsFn     func(ctx context.Context) ([]*models.AgentExecutionLog, error)
}

func (f *fakeService) Submit(ctx context.Context, text, location string) (*models.Complaint, error) {
	return f.submitFn(ctx, text, location)
}

func (f *fakeService) AnalyzeAll(ctx context.Context) (*pipeline.AnalyzeResult, error) {
	return f.analyzeFn(ctx)
}

func (f *fakeService) Problems(ctx context.Context) ([]*models.Problem, error) {
	return f.problemsFn(ctx)
}

func (f *fakeService) ProblemDetails(ctx context.Context, id uuid.UUID) (*pipeline.ProblemDetails, error) {
	return f.detailsFn(ctx, id)
}

func (f *fakeService) AgentLogs(ctx context.Context) ([]*models.AgentExecutionLog, error) {
	return f.logsFn(ctx)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (code, message string) {
	t.Helper()
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error.Code, body.Error.Message
}

func TestSubmitHandler_Created(t *testing.T) {
	id := uuid.New()
	svc := &fakeService{
		submitFn: func(ctx context.Context, text, location string) (*models.Complaint, error) {
			assert.Equal(t, "Water pipe leaking on main street", text)
			assert.Equal(t, "ward 4", location)
			return &models.Complaint{ID: id, Status: models.ComplaintStatusProcessing}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/complaints",
		strings.NewReader(`{"text":"Water pipe leaking on main street","location":"ward 4"}`))
	rec := httptest.NewRecorder()
	NewSubmitHandler(svc)(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Data struct {
			ComplaintID string `json:"complaint_id"`
			Status      string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, id.String(), body.Data.ComplaintID)
	assert.Equal(t, models.ComplaintStatusProcessing, body.Data.Status)
}

func TestSubmitHandler_InvalidJSON(t *testing.T) {
	svc := &fakeService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/complaints", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	NewSubmitHandler(svc)(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	code, _ := decodeError(t, rec)
	assert.Equal(t, "INVALID_REQUEST", code)
}

func TestSubmitHandler_MissingText(t *testing.T) {
	svc := &fakeService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/complaints",
		strings.NewReader(`{"location":"ward 4"}`))
	rec := httptest.NewRecorder()
	NewSubmitHandler(svc)(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	code, message := decodeError(t, rec)
	assert.Equal(t, "INVALID_REQUEST", code)
	assert.Contains(t, message, "text is required")
}

func TestSubmitHandler_Rejected(t *testing.T) {
	svc := &fakeService{
		submitFn: func(ctx context.Context, text, location string) (*models.Complaint, error) {
			return nil, &pipeline.ValidationError{Reason: "spam detected (repeated characters)"}
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/complaints",
		strings.NewReader(`{"text":"aaaaaaaaa broken pipe everywhere"}`))
	rec := httptest.NewRecorder()
	NewSubmitHandler(svc)(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	code, message := decodeError(t, rec)
	assert.Equal(t, "COMPLAINT_REJECTED", code)
	assert.Contains(t, message, "spam")
}

func TestSubmitHandler_InternalError(t *testing.T) {
	svc := &fakeService{
		submitFn: func(ctx context.Context, text, location string) (*models.Complaint, error) {
			return nil, errors.New("db down")
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/complaints",
		strings.NewReader(`{"text":"Water pipe leaking on main street"}`))
	rec := httptest.NewRecorder()
	NewSubmitHandler(svc)(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	code, _ := decodeError(t, rec)
	assert.Equal(t, "INTERNAL_ERROR", code)
}

func TestAnalyzeHandler_Success(t *testing.T) {
	runID := uuid.New()
	svc := &fakeService{
		analyzeFn: func(ctx context.Context) (*pipeline.AnalyzeResult, error) {
			return &pipeline.AnalyzeResult{
				RunID:              runID,
				TotalComplaints:    9,
				ProblemsDiscovered: 3,
				Problems:           []*models.Problem{},
				StagesExecuted: []string{
					pipeline.StageClustering, pipeline.StagePriority, pipeline.StageExplain,
				},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", nil)
	rec := httptest.NewRecorder()
	NewAnalyzeHandler(svc)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data pipeline.AnalyzeResult `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, runID, body.Data.RunID)
	assert.Equal(t, 9, body.Data.TotalComplaints)
	assert.Equal(t, 3, body.Data.ProblemsDiscovered)
}

func TestAnalyzeHandler_RunInProgress(t *testing.T) {
	svc := &fakeService{
		analyzeFn: func(ctx context.Context) (*pipeline.AnalyzeResult, error) {
			return nil, pipeline.ErrRunInProgress
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", nil)
	rec := httptest.NewRecorder()
	NewAnalyzeHandler(svc)(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	code, _ := decodeError(t, rec)
	assert.Equal(t, "RUN_IN_PROGRESS", code)
}

func TestAnalyzeHandler_StageFailure(t *testing.T) {
	svc := &fakeService{
		analyzeFn: func(ctx context.Context) (*pipeline.AnalyzeResult, error) {
			return nil, &pipeline.StageError{Stage: pipeline.StageClustering, Err: errors.New("insert failed")}
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", nil)
	rec := httptest.NewRecorder()
	NewAnalyzeHandler(svc)(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body struct {
		Error struct {
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "STAGE_FAILED", body.Error.Code)
	assert.Equal(t, pipeline.StageClustering, body.Error.Details["stage"])
}

func TestListProblemsHandler_EmptyIsNotNull(t *testing.T) {
	svc := &fakeService{
		problemsFn: func(ctx context.Context) ([]*models.Problem, error) {
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/problems", nil)
	rec := httptest.NewRecorder()
	NewListProblemsHandler(svc)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

func TestProblemDetailsHandler(t *testing.T) {
	problemID := uuid.New()
	svc := &fakeService{
		detailsFn: func(ctx context.Context, id uuid.UUID) (*pipeline.ProblemDetails, error) {
			if id != problemID {
				return nil, store.ErrNotFound
			}
			return &pipeline.ProblemDetails{
				Problem:    &models.Problem{ID: problemID, Title: "Water Issues"},
				Complaints: []*models.Complaint{},
			}, nil
		},
	}

	r := chi.NewRouter()
	r.Get("/api/v1/problems/{problemID}", NewProblemDetailsHandler(svc))

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantCode   string
	}{
		{"found", "/api/v1/problems/" + problemID.String(), http.StatusOK, ""},
		{"not found", "/api/v1/problems/" + uuid.NewString(), http.StatusNotFound, "NOT_FOUND"},
		{"bad id", "/api/v1/problems/not-a-uuid", http.StatusBadRequest, "INVALID_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				code, _ := decodeError(t, rec)
				assert.Equal(t, tt.wantCode, code)
			}
		})
	}
}

func TestAgentLogsHandler(t *testing.T) {
	svc := &fakeService{
		logsFn: func(ctx context.Context) ([]*models.AgentExecutionLog, error) {
			return []*models.AgentExecutionLog{
				{ID: uuid.New(), StageName: pipeline.StageValidator, Status: models.StageStatusCompleted},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/logs", nil)
	rec := httptest.NewRecorder()
	NewAgentLogsHandler(svc)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []*models.AgentExecutionLog `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, pipeline.StageValidator, body.Data[0].StageName)
}
