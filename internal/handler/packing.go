package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/trip-planner/internal/model"
	"github.com/sakif/trip-planner/internal/service"
)

// PackingHandler serves packing items and the shared category list.
type PackingHandler struct {
	packing *service.PackingService
	logger  *slog.Logger
}

func NewPackingHandler(packing *service.PackingService, logger *slog.Logger) *PackingHandler {
	return &PackingHandler{packing: packing, logger: logger}
}

// HTTP: GET /api/packing-items
func (h *PackingHandler) HandleListForUser(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	items, err := h.packing.ListForUser(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// HTTP: GET /api/trips/{id}/packing-items
func (h *PackingHandler) HandleListByTrip(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	items, err := h.packing.ListByTrip(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// HTTP: POST /api/trips/{id}/packing-items
func (h *PackingHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var in service.PackingItemInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	item, err := h.packing.Create(r.Context(), userID, chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// HTTP: PATCH /api/packing-items/{id}
func (h *PackingHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var patch model.PackingItemPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, h.logger, err)
		return
	}

	item, err := h.packing.Update(r.Context(), userID, chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// HTTP: DELETE /api/packing-items/{id}
func (h *PackingHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.packing.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HTTP: GET /api/packing-categories
func (h *PackingHandler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.packing.ListCategories(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// HTTP: POST /api/packing-categories
func (h *PackingHandler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var in service.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	category, err := h.packing.CreateCategory(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

// HandleDeleteCategory removes a category. Items that used it keep existing
// without a category.
//
// HTTP: DELETE /api/packing-categories/{id}
func (h *PackingHandler) HandleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.packing.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
