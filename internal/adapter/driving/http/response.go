package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sherpadev/sherpa/internal/application"
	"github.com/sherpadev/sherpa/internal/domain/model"
	"github.com/sherpadev/sherpa/internal/secret"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// SessionResponse is the JSON representation of a development session.
type SessionResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Goal      string `json:"goal"`
	Status    string `json:"status"`
	Summary   string `json:"summary"`
	StartedAt string `json:"started_at,omitempty"`
	EndedAt   string `json:"ended_at,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// KnowledgeResponse is the JSON representation of a knowledge entry.
type KnowledgeResponse struct {
	ID        int64    `json:"id"`
	Slug      string   `json:"slug"`
	Title     string   `json:"title"`
	Category  string   `json:"category"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags"`
	Enabled   bool     `json:"enabled"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

// KnowledgeHTMLResponse carries a knowledge entry rendered to sanitized HTML.
type KnowledgeHTMLResponse struct {
	ID    int64  `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
	HTML  string `json:"html"`
}

// SourceResponse is the JSON representation of a source connection. The
// credential never appears: only a configured flag, an invalid marker, and a
// redacted hint cross this boundary.
type SourceResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Kind          string `json:"kind"`
	Organization  string `json:"organization"`
	Project       string `json:"project,omitempty"`
	Repository    string `json:"repository"`
	PATConfigured bool   `json:"pat_configured"`
	PATInvalid    bool   `json:"pat_invalid,omitempty"`
	PATHint       string `json:"pat_hint,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status           string `json:"status"`
	Time             string `json:"time"`
	ActiveSessions   int    `json:"active_sessions"`
	TotalSessions    int    `json:"total_sessions"`
	KnowledgeEntries int    `json:"knowledge_entries"`
	Sources          int    `json:"sources"`
}

// CreateSessionRequest is the JSON body for the create session endpoint.
type CreateSessionRequest struct {
	Title  string `json:"title" validate:"required,max=200"`
	Goal   string `json:"goal" validate:"max=2000"`
	Status string `json:"status" validate:"omitempty,oneof=planned active completed abandoned"`
}

// UpdateSessionRequest is the JSON body for the update session endpoint.
type UpdateSessionRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Goal    string `json:"goal" validate:"max=2000"`
	Status  string `json:"status" validate:"required,oneof=planned active completed abandoned"`
	Summary string `json:"summary"`
}

// CompleteSessionRequest is the JSON body for the complete session endpoint.
type CompleteSessionRequest struct {
	Summary string `json:"summary"`
}

// KnowledgeRequest is the JSON body for create and update knowledge endpoints.
type KnowledgeRequest struct {
	Slug     string   `json:"slug" validate:"omitempty,max=100"`
	Title    string   `json:"title" validate:"required,max=200"`
	Category string   `json:"category" validate:"required,oneof=architecture conventions workflow testing domain"`
	Content  string   `json:"content" validate:"required"`
	Tags     []string `json:"tags" validate:"dive,max=50"`
	Enabled  *bool    `json:"enabled"`
}

// SourceRequest is the JSON body for create and update source endpoints. PAT
// is accepted on write and never echoed back; an empty PAT on update keeps
// the stored credential.
type SourceRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	Kind         string `json:"kind" validate:"required,oneof=azuredevops github"`
	Organization string `json:"organization" validate:"required,max=200"`
	Project      string `json:"project" validate:"required_if=Kind azuredevops,max=200"`
	Repository   string `json:"repository" validate:"required,max=200"`
	PAT          string `json:"pat" validate:"omitempty,max=4096"`
}

// toSessionResponse converts a domain Session to its JSON response representation.
func toSessionResponse(s model.Session) SessionResponse {
	resp := SessionResponse{
		ID:        s.ID,
		Title:     s.Title,
		Goal:      s.Goal,
		Status:    string(s.Status),
		Summary:   s.Summary,
		CreatedAt: s.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: s.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if !s.StartedAt.IsZero() {
		resp.StartedAt = s.StartedAt.UTC().Format(time.RFC3339)
	}
	if s.EndedAt != nil {
		resp.EndedAt = s.EndedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// toKnowledgeResponse converts a domain KnowledgeEntry to its JSON response representation.
func toKnowledgeResponse(e model.KnowledgeEntry) KnowledgeResponse {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	return KnowledgeResponse{
		ID:        e.ID,
		Slug:      e.Slug,
		Title:     e.Title,
		Category:  string(e.Category),
		Content:   e.Content,
		Tags:      tags,
		Enabled:   e.Enabled,
		CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: e.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// toSourceResponse shapes a domain Source for serialization. This is the
// response-shaping rule for credentials: the raw PAT and its stored
// encrypted form are both unrepresentable in this struct.
func toSourceResponse(s model.Source) SourceResponse {
	resp := SourceResponse{
		ID:            s.ID,
		Name:          s.Name,
		Kind:          string(s.Kind),
		Organization:  s.Organization,
		Project:       s.Project,
		Repository:    s.Repository,
		PATConfigured: s.HasPAT(),
		PATInvalid:    s.PATInvalid,
		CreatedAt:     s.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     s.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if s.HasPAT() {
		resp.PATHint = secret.Redact(s.PAT, secret.DefaultVisibleSuffix)
	}
	return resp
}

// toHealthResponse converts a health summary to its JSON response representation.
func toHealthResponse(s *application.HealthSummary) HealthResponse {
	return HealthResponse{
		Status:           "ok",
		Time:             time.Now().UTC().Format(time.RFC3339),
		ActiveSessions:   s.ActiveSessions,
		TotalSessions:    s.TotalSessions,
		KnowledgeEntries: s.KnowledgeEntries,
		Sources:          s.Sources,
	}
}
