package httphandler

import (
	"errors"
	"net/http"

	"github.com/sherpadev/sherpa/internal/domain/model"
	"github.com/sherpadev/sherpa/internal/domain/port/driven"
)

// ListKnowledge returns knowledge entries, optionally filtered by
// ?category= and ?enabled=true.
func (h *Handler) ListKnowledge(w http.ResponseWriter, r *http.Request) {
	category := model.KnowledgeCategory(r.URL.Query().Get("category"))
	if category != "" && !model.ValidKnowledgeCategory(category) {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}
	enabledOnly := r.URL.Query().Get("enabled") == "true"

	entries, err := h.knowledgeSvc.List(r.Context(), category, enabledOnly)
	if err != nil {
		h.logger.Error("failed to list knowledge entries", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]KnowledgeResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, toKnowledgeResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateKnowledge inserts a new knowledge entry.
func (h *Handler) CreateKnowledge(w http.ResponseWriter, r *http.Request) {
	var req KnowledgeRequest
	if !h.decodeValid(w, r, &req) {
		return
	}

	entry, err := h.knowledgeSvc.Create(r.Context(), knowledgeFromRequest(req, 0))
	if errors.Is(err, driven.ErrDuplicateSlug) {
		writeError(w, http.StatusConflict, "slug already exists")
		return
	}
	if err != nil {
		h.logger.Error("failed to create knowledge entry", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, toKnowledgeResponse(entry))
}

// GetKnowledge returns a single knowledge entry by ID.
func (h *Handler) GetKnowledge(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	entry, err := h.knowledgeSvc.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get knowledge entry", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if entry == nil {
		writeError(w, http.StatusNotFound, "knowledge entry not found")
		return
	}
	writeJSON(w, http.StatusOK, toKnowledgeResponse(*entry))
}

// GetKnowledgeHTML returns a knowledge entry with its content rendered to
// sanitized HTML.
func (h *Handler) GetKnowledgeHTML(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	entry, err := h.knowledgeSvc.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get knowledge entry", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if entry == nil {
		writeError(w, http.StatusNotFound, "knowledge entry not found")
		return
	}

	writeJSON(w, http.StatusOK, KnowledgeHTMLResponse{
		ID:    entry.ID,
		Slug:  entry.Slug,
		Title: entry.Title,
		HTML:  RenderMarkdown(entry.Content),
	})
}

// UpdateKnowledge replaces a knowledge entry.
func (h *Handler) UpdateKnowledge(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req KnowledgeRequest
	if !h.decodeValid(w, r, &req) {
		return
	}

	entry, err := h.knowledgeSvc.Update(r.Context(), knowledgeFromRequest(req, id))
	if errors.Is(err, driven.ErrNotFound) {
		writeError(w, http.StatusNotFound, "knowledge entry not found")
		return
	}
	if errors.Is(err, driven.ErrDuplicateSlug) {
		writeError(w, http.StatusConflict, "slug already exists")
		return
	}
	if err != nil {
		h.logger.Error("failed to update knowledge entry", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toKnowledgeResponse(entry))
}

// DeleteKnowledge removes a knowledge entry.
func (h *Handler) DeleteKnowledge(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.knowledgeSvc.Delete(r.Context(), id); err != nil {
		h.logger.Error("failed to delete knowledge entry", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// knowledgeFromRequest maps a request body to the domain model. Enabled
// defaults to true when the field is absent.
func knowledgeFromRequest(req KnowledgeRequest, id int64) model.KnowledgeEntry {
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	return model.KnowledgeEntry{
		ID:       id,
		Slug:     req.Slug,
		Title:    req.Title,
		Category: model.KnowledgeCategory(req.Category),
		Content:  req.Content,
		Tags:     req.Tags,
		Enabled:  enabled,
	}
}
