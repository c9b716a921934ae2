// Package weather talks to the upstream weather provider and shapes its
// forecast series into one entry per day.
package weather

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/sakif/trip-planner/internal/model"
)

// ErrNoAPIKey is returned by every OpenWeather call when no key is configured.
var ErrNoAPIKey = errors.New("weather: no API key configured")

// Provider is an upstream source of weather data. Any error it returns is
// treated by the service layer as an upstream failure.
type Provider interface {
	Current(ctx context.Context, location string) (*model.Weather, error)
	Forecast(ctx context.Context, location string) ([]Entry, error)
}

// Entry is one point of the provider's forecast time series.
type Entry struct {
	Time        time.Time
	Temperature float64
	TempMin     float64
	TempMax     float64
	Condition   string
	Description string
	Icon        string
}

// middayHour is the preferred time of day for a day's representative entry.
const middayHour = 12

// DailyForecast collapses a fine-grained series into one entry per UTC
// calendar day, ascending. The 12:00 entry represents its day when present;
// otherwise the earliest entry of that day does.
func DailyForecast(entries []Entry) []model.ForecastDay {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	var (
		days   []model.Date
		chosen = map[model.Date]Entry{}
	)
	for _, e := range sorted {
		day := model.DateOf(e.Time)
		current, seen := chosen[day]
		switch {
		case !seen:
			days = append(days, day)
			chosen[day] = e
		case isMidday(e.Time) && !isMidday(current.Time):
			chosen[day] = e
		}
	}

	out := make([]model.ForecastDay, 0, len(days))
	for _, day := range days {
		e := chosen[day]
		out = append(out, model.ForecastDay{
			Date:        day,
			Temperature: e.Temperature,
			TempMin:     e.TempMin,
			TempMax:     e.TempMax,
			Condition:   e.Condition,
			Description: e.Description,
			Icon:        e.Icon,
		})
	}
	return out
}

func isMidday(t time.Time) bool {
	t = t.UTC()
	return t.Hour() == middayHour && t.Minute() == 0
}
