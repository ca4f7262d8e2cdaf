// internal/api/handler.go
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github-repo-analyzer/internal/analyzer"
	apperrors "github-repo-analyzer/internal/errors"
	"github-repo-analyzer/internal/model"
	"github-repo-analyzer/internal/store"
)

// Handler is the container for API dependencies.
type Handler struct {
	analyzer *analyzer.Service
	store    store.Store
	logger   *slog.Logger
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(svc *analyzer.Service, st store.Store, logger *slog.Logger) http.Handler {
	h := &Handler{
		analyzer: svc,
		store:    st,
		logger:   logger,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/", h.serviceInfo)
	r.Get("/health", h.healthCheck)
	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", h.analyzeRepository)
		r.Get("/past-analyses", h.getPastAnalyses)
		r.Get("/analyses/{id}", h.getAnalysis)
		r.Delete("/analyses/{id}", h.deleteAnalysis)
	})

	return r
}

// analyzeRequest is the body of POST /api/analyze.
type analyzeRequest struct {
	RepoURL string `json:"repo_url"`
}

// serviceInfo reports that the service is up.
// GET /
func (h *Handler) serviceInfo(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "GitHub Repository Analyzer API is running!",
		"version": "1.0.0",
	})
}

// healthCheck is a simple health endpoint.
// GET /health
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "github-analyzer-backend",
	})
}

// analyzeRepository runs a full analysis for the referenced repository.
// POST /api/analyze
func (h *Handler) analyzeRepository(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RepoURL == "" {
		respondWithError(w, http.StatusBadRequest, "Request body must contain a 'repo_url' field")
		return
	}

	record, err := h.analyzer.Analyze(r.Context(), req.RepoURL)
	if err != nil {
		var invalidRef *apperrors.ErrInvalidRepoRef
		var notFound *apperrors.ErrRepositoryNotFound
		switch {
		case errors.As(err, &invalidRef):
			respondWithError(w, http.StatusBadRequest, invalidRef.Error())
		case errors.As(err, &notFound):
			respondWithError(w, http.StatusNotFound, "Repository not found")
		default:
			h.logger.Error("Analysis failed", "repo_url", req.RepoURL, "error", err)
			respondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, record)
}

// getPastAnalyses lists persisted analysis summaries, newest first.
// GET /api/past-analyses
func (h *Handler) getPastAnalyses(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.store.ListAnalyses(r.Context())
	if err != nil {
		h.logger.Error("Failed to list analyses", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch analyses")
		return
	}
	if summaries == nil {
		summaries = []model.AnalysisSummary{}
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"analyses": summaries})
}

// getAnalysis returns one persisted analysis summary.
// GET /api/analyses/{id}
func (h *Handler) getAnalysis(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	summary, err := h.store.GetAnalysis(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrRecordNotFound) {
			respondWithError(w, http.StatusNotFound, "Analysis not found")
			return
		}
		h.logger.Error("Failed to get analysis", "id", id, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch analysis")
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

// deleteAnalysis removes one persisted analysis summary.
// DELETE /api/analyses/{id}
func (h *Handler) deleteAnalysis(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteAnalysis(r.Context(), id); err != nil {
		if errors.Is(err, apperrors.ErrRecordNotFound) {
			respondWithError(w, http.StatusNotFound, "Analysis not found")
			return
		}
		h.logger.Error("Failed to delete analysis", "id", id, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to delete analysis")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"detail": "Analysis deleted"})
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid 'id' parameter. Must be an integer.")
		return 0, false
	}
	return id, true
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"detail": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
