package api

import (
	"net/http"

	mw "github.com/Rohith-G611/civicpulse/internal/api/middleware"
	"github.com/Rohith-G611/civicpulse/internal/api/response"
	"github.com/go-chi/chi/v5"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	RateLimit *mw.RateLimit

	HealthHandler         http.HandlerFunc
	SubmitHandler         http.HandlerFunc
	AnalyzeHandler        http.HandlerFunc
	ListProblemsHandler   http.HandlerFunc
	ProblemDetailsHandler http.HandlerFunc
	AgentLogsHandler      http.HandlerFunc
}

// NewRouter builds the Chi router with the middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public health check
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))

	r.Group(func(r chi.Router) {
		if deps.RateLimit != nil {
			r.Use(deps.RateLimit.Limit)
		}

		r.Post("/api/v1/complaints", orNotImplemented(deps.SubmitHandler))
		r.Post("/api/v1/analyze", orNotImplemented(deps.AnalyzeHandler))

		r.Get("/api/v1/problems", orNotImplemented(deps.ListProblemsHandler))
		r.Get("/api/v1/problems/{problemID}", orNotImplemented(deps.ProblemDetailsHandler))

		r.Get("/api/v1/logs", orNotImplemented(deps.AgentLogsHandler))
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
