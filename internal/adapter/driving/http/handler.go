// Package httphandler is the HTTP driving adapter serving the REST API.
package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/sherpadev/sherpa/internal/application"
	"github.com/sherpadev/sherpa/internal/domain/model"
	"github.com/sherpadev/sherpa/internal/domain/port/driven"
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	sessionSvc   *application.SessionService
	knowledgeSvc *application.KnowledgeService
	sourceSvc    *application.SourceService
	healthSvc    *application.HealthService
	validate     *validator.Validate
	logger       *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	sessionSvc *application.SessionService,
	knowledgeSvc *application.KnowledgeService,
	sourceSvc *application.SourceService,
	healthSvc *application.HealthService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		sessionSvc:   sessionSvc,
		knowledgeSvc: knowledgeSvc,
		sourceSvc:    sourceSvc,
		healthSvc:    healthSvc,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		logger:       logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/sessions", h.ListSessions)
	mux.HandleFunc("POST /api/v1/sessions", h.CreateSession)
	mux.HandleFunc("GET /api/v1/sessions/{id}", h.GetSession)
	mux.HandleFunc("PUT /api/v1/sessions/{id}", h.UpdateSession)
	mux.HandleFunc("DELETE /api/v1/sessions/{id}", h.DeleteSession)
	mux.HandleFunc("POST /api/v1/sessions/{id}/complete", h.CompleteSession)

	mux.HandleFunc("GET /api/v1/knowledge", h.ListKnowledge)
	mux.HandleFunc("POST /api/v1/knowledge", h.CreateKnowledge)
	mux.HandleFunc("GET /api/v1/knowledge/{id}", h.GetKnowledge)
	mux.HandleFunc("GET /api/v1/knowledge/{id}/html", h.GetKnowledgeHTML)
	mux.HandleFunc("PUT /api/v1/knowledge/{id}", h.UpdateKnowledge)
	mux.HandleFunc("DELETE /api/v1/knowledge/{id}", h.DeleteKnowledge)

	mux.HandleFunc("GET /api/v1/sources", h.ListSources)
	mux.HandleFunc("POST /api/v1/sources", h.CreateSource)
	mux.HandleFunc("GET /api/v1/sources/{id}", h.GetSource)
	mux.HandleFunc("PUT /api/v1/sources/{id}", h.UpdateSource)
	mux.HandleFunc("DELETE /api/v1/sources/{id}", h.DeleteSource)
	mux.HandleFunc("POST /api/v1/sources/{id}/verify", h.VerifySource)

	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// decodeValid decodes the request body into v and runs struct validation.
// Returns false after writing a 400 response when either step fails.
func (h *Handler) decodeValid(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return false
	}
	return true
}

// pathID parses the {id} path segment as an int64 record ID.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// ListSessions returns all sessions, optionally filtered by ?status=.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	status := model.SessionStatus(r.URL.Query().Get("status"))
	if status != "" && !model.ValidSessionStatus(status) {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	sessions, err := h.sessionSvc.List(r.Context(), status)
	if err != nil {
		h.logger.Error("failed to list sessions", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		resp = append(resp, toSessionResponse(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateSession registers a new session.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if !h.decodeValid(w, r, &req) {
		return
	}

	session, err := h.sessionSvc.Create(r.Context(), req.Title, req.Goal, model.SessionStatus(req.Status))
	if err != nil {
		h.logger.Error("failed to create session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(session))
}

// GetSession returns a single session by ID.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessionSvc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Error("failed to get session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if session == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(*session))
}

// UpdateSession replaces a session's mutable fields.
func (h *Handler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	var req UpdateSessionRequest
	if !h.decodeValid(w, r, &req) {
		return
	}

	existing, err := h.sessionSvc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Error("failed to get session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	existing.Title = req.Title
	existing.Goal = req.Goal
	existing.Status = model.SessionStatus(req.Status)
	existing.Summary = req.Summary

	updated, err := h.sessionSvc.Update(r.Context(), *existing)
	if err != nil {
		h.logger.Error("failed to update session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(updated))
}

// CompleteSession marks a session completed.
func (h *Handler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	var req CompleteSessionRequest
	if !h.decodeValid(w, r, &req) {
		return
	}

	session, err := h.sessionSvc.Complete(r.Context(), r.PathValue("id"), req.Summary)
	if errors.Is(err, driven.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to complete session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

// DeleteSession removes a session.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionSvc.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.logger.Error("failed to delete session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Health reports service liveness and store counts.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	summary, err := h.healthSvc.Summary(r.Context())
	if err != nil {
		h.logger.Error("health check failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "degraded")
		return
	}
	writeJSON(w, http.StatusOK, toHealthResponse(summary))
}
