package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/trip-planner/internal/service"
)

// WeatherHandler serves current conditions and forecasts.
//
// Upstream failures are absorbed by the service: current weather comes back
// as a placeholder and a forecast as an empty list, both with 200. The only
// weather-specific error is a user without an upcoming trip.
type WeatherHandler struct {
	weather *service.WeatherService
	logger  *slog.Logger
}

func NewWeatherHandler(weather *service.WeatherService, logger *slog.Logger) *WeatherHandler {
	return &WeatherHandler{weather: weather, logger: logger}
}

// HandleCurrent serves current conditions. The location segment is
// percent-decoded, so /api/weather/Paris%2C%20France looks up "Paris, France".
//
// HTTP: GET /api/weather/{location}
func (h *WeatherHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	location, err := pathParam(r, "location")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, h.weather.GetWeather(r.Context(), location))
}

// HTTP: GET /api/weather/forecast/{location}
func (h *WeatherHandler) HandleForecast(w http.ResponseWriter, r *http.Request) {
	location, err := pathParam(r, "location")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, h.weather.GetForecast(r.Context(), location))
}

// HandleNextTrip returns the weather at the destination of the caller's next
// trip, or 404 no_upcoming_trip.
//
// HTTP: GET /api/weather/next-trip
func (h *WeatherHandler) HandleNextTrip(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	next, err := h.weather.GetNextTripWeather(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, next)
}
