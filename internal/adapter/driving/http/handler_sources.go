package httphandler

import (
	"errors"
	"net/http"

	"github.com/sherpadev/sherpa/internal/domain/model"
	"github.com/sherpadev/sherpa/internal/domain/port/driven"
)

// ListSources returns all configured source connections.
func (h *Handler) ListSources(w http.ResponseWriter, r *http.Request) {
	sources, err := h.sourceSvc.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list sources", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]SourceResponse, 0, len(sources))
	for _, s := range sources {
		resp = append(resp, toSourceResponse(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateSource registers a new source connection.
func (h *Handler) CreateSource(w http.ResponseWriter, r *http.Request) {
	var req SourceRequest
	if !h.decodeValid(w, r, &req) {
		return
	}

	source, err := h.sourceSvc.Create(r.Context(), sourceFromRequest(req, 0))
	if errors.Is(err, driven.ErrDuplicateSourceName) {
		writeError(w, http.StatusConflict, "source name already exists")
		return
	}
	if err != nil {
		h.logger.Error("failed to create source", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, toSourceResponse(source))
}

// GetSource returns a single source by ID.
func (h *Handler) GetSource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	source, err := h.sourceSvc.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get source", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if source == nil {
		writeError(w, http.StatusNotFound, "source not found")
		return
	}
	writeJSON(w, http.StatusOK, toSourceResponse(*source))
}

// UpdateSource replaces a source's coordinates and, when a PAT is supplied,
// rotates the stored credential.
func (h *Handler) UpdateSource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req SourceRequest
	if !h.decodeValid(w, r, &req) {
		return
	}

	source, err := h.sourceSvc.Update(r.Context(), sourceFromRequest(req, id))
	if errors.Is(err, driven.ErrNotFound) {
		writeError(w, http.StatusNotFound, "source not found")
		return
	}
	if errors.Is(err, driven.ErrDuplicateSourceName) {
		writeError(w, http.StatusConflict, "source name already exists")
		return
	}
	if err != nil {
		h.logger.Error("failed to update source", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toSourceResponse(source))
}

// DeleteSource removes a source and its stored credential.
func (h *Handler) DeleteSource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.sourceSvc.Delete(r.Context(), id); err != nil {
		h.logger.Error("failed to delete source", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// VerifySource probes the source's host with its stored credential and
// reports whether the credential is accepted.
func (h *Handler) VerifySource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	err := h.sourceSvc.Verify(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, verifyResponse{Valid: true})
	case errors.Is(err, driven.ErrNotFound):
		writeError(w, http.StatusNotFound, "source not found")
	case errors.Is(err, driven.ErrUnauthorized):
		writeJSON(w, http.StatusOK, verifyResponse{Valid: false, Reason: "credential rejected by host"})
	default:
		h.logger.Error("failed to verify source", "error", err)
		writeError(w, http.StatusBadGateway, "host unreachable")
	}
}

// verifyResponse is the JSON body for the source verification endpoint.
type verifyResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// sourceFromRequest maps a request body to the domain model.
func sourceFromRequest(req SourceRequest, id int64) model.Source {
	return model.Source{
		ID:           id,
		Name:         req.Name,
		Kind:         model.SourceKind(req.Kind),
		Organization: req.Organization,
		Project:      req.Project,
		Repository:   req.Repository,
		PAT:          req.PAT,
	}
}
