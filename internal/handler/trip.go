package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/trip-planner/internal/model"
	"github.com/sakif/trip-planner/internal/service"
)

// TripHandler serves trips and their sharing endpoints.
//
// Every route is behind auth.RequireAuth. Which trips a user may read or
// change is decided in the service layer; the handler only decodes input
// and maps the result to HTTP.
type TripHandler struct {
	trips   *service.TripService
	sharing *service.SharingService
	logger  *slog.Logger
}

func NewTripHandler(trips *service.TripService, sharing *service.SharingService, logger *slog.Logger) *TripHandler {
	return &TripHandler{trips: trips, sharing: sharing, logger: logger}
}

// HandleList returns every trip the user owns or is a member of.
//
// HTTP: GET /api/trips
func (h *TripHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	trips, err := h.trips.List(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, trips)
}

// HandleListShared returns trips other users shared with the caller.
//
// HTTP: GET /api/shared-trips
func (h *TripHandler) HandleListShared(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	trips, err := h.trips.ListShared(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, trips)
}

// HandleGet returns one trip.
//
// HTTP: GET /api/trips/{id}
func (h *TripHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	trip, err := h.trips.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// HandleCreate creates a trip owned by the caller.
//
// HTTP: POST /api/trips
// REQUEST BODY: {"name": "Paris", "destination": "Paris", "startDate": "2025-06-01", "endDate": "2025-06-07"}
func (h *TripHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var in service.TripInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	trip, err := h.trips.Create(r.Context(), userID, in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, trip)
}

// HandleUpdate applies a partial update. Only the owner may edit trip details.
//
// HTTP: PATCH /api/trips/{id}
func (h *TripHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var patch model.TripPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, h.logger, err)
		return
	}

	trip, err := h.trips.Update(r.Context(), userID, chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// HandleDelete removes a trip with all its schedules, packing items, tags
// and memberships.
//
// HTTP: DELETE /api/trips/{id}
func (h *TripHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	tripID := chi.URLParam(r, "id")
	if err := h.trips.Delete(r.Context(), userID, tripID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("trip deleted", slog.String("tripID", tripID), slog.String("userID", userID))
	w.WriteHeader(http.StatusNoContent)
}

// HandleShare grants another user access to the trip.
//
// HTTP: POST /api/trips/{id}/share
// REQUEST BODY: {"username": "bob", "role": "viewer"}
//
// role is optional and defaults to viewer.
func (h *TripHandler) HandleShare(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var in service.ShareInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	member, err := h.sharing.ShareTrip(r.Context(), userID, chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

// HandleListMembers returns everyone the trip is shared with.
//
// HTTP: GET /api/trips/{id}/members
func (h *TripHandler) HandleListMembers(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	members, err := h.sharing.ListMembers(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

// HandleRemoveMember revokes a user's access.
//
// HTTP: DELETE /api/trips/{id}/members/{userId}
func (h *TripHandler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	err = h.sharing.RemoveMember(r.Context(), userID, chi.URLParam(r, "id"), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
