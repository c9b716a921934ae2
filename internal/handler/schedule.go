package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/trip-planner/internal/model"
	"github.com/sakif/trip-planner/internal/service"
)

// ScheduleHandler serves itinerary entries. Entries are created under a trip
// and addressed by their own id afterwards.
type ScheduleHandler struct {
	schedules *service.ScheduleService
	logger    *slog.Logger
}

func NewScheduleHandler(schedules *service.ScheduleService, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, logger: logger}
}

// HTTP: GET /api/schedules
func (h *ScheduleHandler) HandleListForUser(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	schedules, err := h.schedules.ListForUser(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, schedules)
}

// HTTP: GET /api/trips/{id}/schedules
func (h *ScheduleHandler) HandleListByTrip(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	schedules, err := h.schedules.ListByTrip(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, schedules)
}

// HTTP: POST /api/trips/{id}/schedules
func (h *ScheduleHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var in service.ScheduleInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	schedule, err := h.schedules.Create(r.Context(), userID, chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, schedule)
}

// HTTP: PATCH /api/schedules/{id}
func (h *ScheduleHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var patch model.SchedulePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, h.logger, err)
		return
	}

	schedule, err := h.schedules.Update(r.Context(), userID, chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

// HTTP: DELETE /api/schedules/{id}
func (h *ScheduleHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.schedules.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
