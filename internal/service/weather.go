package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/trip-planner/internal/apperror"
	"github.com/sakif/trip-planner/internal/model"
	"github.com/sakif/trip-planner/internal/repository"
	"github.com/sakif/trip-planner/internal/weather"
)

const (
	DefaultWeatherTTL      = 30 * time.Minute
	DefaultWeatherLocation = "London"
	placeholderCondition   = "Unknown"
)

// ErrNoUpcomingTrip means the user has no trip starting today or later. It is
// distinct from an upstream failure, which yields a placeholder instead.
var ErrNoUpcomingTrip = errors.New("no upcoming trip")

// NextTripWeather pairs the user's next trip with the weather at its destination.
type NextTripWeather struct {
	Trip    model.Trip     `json:"trip"`
	Weather *model.Weather `json:"weather"`
}

// WeatherService serves current weather through a read-through cache in the
// database, and daily forecasts straight from the provider.
//
// Upstream failures never reach the caller: current weather degrades to a
// placeholder and a forecast to an empty list.
//
// Two concurrent requests for the same stale location may both fetch and
// both append a cache row. The newest row wins on the next read.
type WeatherService struct {
	cache           repository.WeatherCacheRepository
	trips           repository.TripRepository
	provider        weather.Provider
	ttl             time.Duration
	defaultLocation string
	now             func() time.Time
	logger          *slog.Logger
}

// WeatherOptions configures a WeatherService. Zero values select the defaults.
type WeatherOptions struct {
	TTL             time.Duration
	DefaultLocation string
	Now             func() time.Time
}

func NewWeatherService(
	cache repository.WeatherCacheRepository,
	trips repository.TripRepository,
	provider weather.Provider,
	opts WeatherOptions,
	logger *slog.Logger,
) *WeatherService {
	if opts.TTL <= 0 {
		opts.TTL = DefaultWeatherTTL
	}
	if strings.TrimSpace(opts.DefaultLocation) == "" {
		opts.DefaultLocation = DefaultWeatherLocation
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &WeatherService{
		cache:           cache,
		trips:           trips,
		provider:        provider,
		ttl:             opts.TTL,
		defaultLocation: opts.DefaultLocation,
		now:             opts.Now,
		logger:          logger,
	}
}

// GetWeather returns current conditions for location. The cache key is the
// trimmed location string, matched exactly: "Paris" and "paris" are cached
// separately.
func (s *WeatherService) GetWeather(ctx context.Context, location string) *model.Weather {
	location = s.resolveLocation(location)
	now := s.now()

	if cached, ok := s.fromCache(ctx, location, now); ok {
		return cached
	}

	fresh, err := s.provider.Current(ctx, location)
	if err != nil {
		s.logger.Warn("weather upstream failed, serving placeholder",
			slog.String("location", location),
			slog.String("error", err.Error()),
		)
		return placeholder(location)
	}
	fresh.Location = location
	fresh.Placeholder = false

	payload, err := json.Marshal(fresh)
	if err != nil {
		s.logger.Error("encoding weather payload", slog.String("error", err.Error()))
		return fresh
	}
	entry := &model.WeatherCacheEntry{Location: location, Payload: payload, FetchedAt: now}
	if err := s.cache.SaveWeather(ctx, entry); err != nil {
		s.logger.Error("writing weather cache",
			slog.String("location", location),
			slog.String("error", err.Error()),
		)
	}
	return fresh
}

// fromCache returns the newest cached payload if it is younger than the TTL.
// A read or decode failure is logged and treated as a miss.
func (s *WeatherService) fromCache(ctx context.Context, location string, now time.Time) (*model.Weather, bool) {
	entry, err := s.cache.LatestWeather(ctx, location)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			s.logger.Warn("reading weather cache",
				slog.String("location", location),
				slog.String("error", err.Error()),
			)
		}
		return nil, false
	}
	if now.Sub(entry.FetchedAt) >= s.ttl {
		return nil, false
	}

	var w model.Weather
	if err := json.Unmarshal(entry.Payload, &w); err != nil {
		s.logger.Warn("decoding cached weather",
			slog.String("location", location),
			slog.String("error", err.Error()),
		)
		return nil, false
	}
	return &w, true
}

// GetNextTripWeather finds the readable trip with the earliest start date on
// or after today (UTC) and returns the weather at its destination.
func (s *WeatherService) GetNextTripWeather(ctx context.Context, userID string) (*NextTripWeather, error) {
	trips, err := s.trips.ListTripsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing trips for weather: %w", err)
	}

	today := model.DateOf(s.now())
	var next *model.Trip
	for i := range trips {
		t := &trips[i]
		if t.StartDate.Before(today.Time) {
			continue
		}
		if next == nil || t.StartDate.Before(next.StartDate.Time) {
			next = t
		}
	}
	if next == nil {
		return nil, ErrNoUpcomingTrip
	}

	return &NextTripWeather{
		Trip:    *next,
		Weather: s.GetWeather(ctx, next.Destination),
	}, nil
}

// GetForecast returns one forecast entry per day. An upstream failure yields
// an empty list rather than partial data.
func (s *WeatherService) GetForecast(ctx context.Context, location string) []model.ForecastDay {
	location = s.resolveLocation(location)

	entries, err := s.provider.Forecast(ctx, location)
	if err != nil {
		s.logger.Warn("forecast upstream failed",
			slog.String("location", location),
			slog.String("error", err.Error()),
		)
		return []model.ForecastDay{}
	}
	return weather.DailyForecast(entries)
}

func (s *WeatherService) resolveLocation(location string) string {
	location = strings.TrimSpace(location)
	if location == "" {
		return s.defaultLocation
	}
	return location
}

func placeholder(location string) *model.Weather {
	return &model.Weather{
		Location:    location,
		Temperature: 0,
		Condition:   placeholderCondition,
		Description: "weather data unavailable",
		Placeholder: true,
	}
}
