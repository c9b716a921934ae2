package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON or writeError, so the API has one
// success shape per resource and one error shape:
//
//	{"error": "not_found", "message": "trip not found with id abc123"}
//
// Validation failures additionally list every invalid field:
//
//	{"error": "validation_error", "message": "name is required",
//	 "fields": [{"field": "name", "message": "name is required"}]}

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/trip-planner/internal/apperror"
	"github.com/sakif/trip-planner/internal/auth"
	"github.com/sakif/trip-planner/internal/service"
)

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string                `json:"error"`            // Machine-readable error type (e.g., "not_found")
	Message string                `json:"message"`          // Human-readable description
	Fields  []apperror.FieldError `json:"fields,omitempty"` // Only on validation_error
}

// writeJSON sends a JSON response with the given status code.
//
// Headers and status must be set BEFORE the body: once Encode writes, the
// headers are on the wire and later changes are ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to an HTTP status code and sends it.
//
// ERROR MAPPING:
// The service layer returns apperror values wrapped with %w. errors.Is walks
// the chain, so a wrapped Forbidden still becomes a 403:
//
//	ErrValidation      → 400 validation_error (with fields)
//	ErrInvalidRequest  → 400 invalid_request
//	ErrUnauthenticated → 401 unauthenticated
//	ErrForbidden       → 403 forbidden
//	ErrNotFound        → 404 not_found
//	ErrNoUpcomingTrip  → 404 no_upcoming_trip
//	ErrConflict        → 409 conflict
//
// Anything else is logged through logger and answered with a generic 500.
// Raw error text can contain SQL or file paths and never reaches the client.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	if errors.Is(err, service.ErrNoUpcomingTrip) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error:   "no_upcoming_trip",
			Message: "no upcoming trip",
		})
		return
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		resp := ErrorResponse{Error: "internal_error", Message: appErr.Message}

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			resp.Error = "validation_error"
			resp.Fields = appErr.Fields
		case errors.Is(err, apperror.ErrInvalidRequest):
			status = http.StatusBadRequest
			resp.Error = "invalid_request"
		case errors.Is(err, apperror.ErrUnauthenticated):
			status = http.StatusUnauthorized
			resp.Error = "unauthenticated"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			resp.Error = "forbidden"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			resp.Error = "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			resp.Error = "conflict"
		}

		if status == http.StatusInternalServerError {
			logger.Error("unmapped application error", slog.String("error", err.Error()))
			resp.Message = "An internal error occurred"
		}
		writeJSON(w, status, resp)
		return
	}

	logger.Error("internal error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// decodeJSON reads a single JSON object from the request body into dst.
// Unknown fields, trailing data and malformed JSON are invalid requests.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.InvalidRequest("request body is required")
		}
		return apperror.InvalidRequest(fmt.Sprintf("invalid JSON body: %s", err.Error()))
	}
	if dec.More() {
		return apperror.InvalidRequest("request body must contain a single JSON object")
	}
	return nil
}

// currentUser returns the authenticated user ID set by auth.RequireAuth.
func currentUser(r *http.Request) (string, error) {
	id, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return "", apperror.Unauthenticated("valid authentication required")
	}
	return id, nil
}

// pathParam returns the named route parameter as the client meant it. chi
// routes on the escaped path whenever the URL carries a RawPath, so
// "Paris%2C%20France" arrives still encoded and is decoded here. Without a
// RawPath the segment is already decoded and is returned as is.
func pathParam(r *http.Request, name string) (string, error) {
	value := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return value, nil
	}
	decoded, err := url.PathUnescape(value)
	if err != nil {
		return "", apperror.InvalidRequest(fmt.Sprintf("invalid %s in path", name))
	}
	return decoded, nil
}
