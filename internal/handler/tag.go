package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/trip-planner/internal/service"
)

type TagHandler struct {
	tags   *service.TagService
	logger *slog.Logger
}

func NewTagHandler(tags *service.TagService, logger *slog.Logger) *TagHandler {
	return &TagHandler{tags: tags, logger: logger}
}

// HTTP: GET /api/trip-tags
func (h *TagHandler) HandleListForUser(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	tags, err := h.tags.ListForUser(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// HTTP: GET /api/trips/{id}/tags
func (h *TagHandler) HandleListByTrip(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	tags, err := h.tags.ListByTrip(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// HTTP: POST /api/trips/{id}/tags
func (h *TagHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var in service.TagInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	tag, err := h.tags.Create(r.Context(), userID, chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

// HTTP: DELETE /api/trip-tags/{id}
func (h *TagHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.tags.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
