package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sakif/trip-planner/internal/model"
)

// DefaultBaseURL is the OpenWeatherMap 2.5 API root.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

// OpenWeather is a Provider backed by the OpenWeatherMap REST API. Every
// request is bounded by the client timeout and the caller's context.
type OpenWeather struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewOpenWeather builds a client. An empty baseURL uses DefaultBaseURL and
// a zero timeout uses 10 seconds.
func NewOpenWeather(apiKey, baseURL string, timeout time.Duration) *OpenWeather {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OpenWeather{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type owCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owCurrent struct {
	Name string `json:"name"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Weather []owCondition `json:"weather"`
}

type owForecast struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp    float64 `json:"temp"`
			TempMin float64 `json:"temp_min"`
			TempMax float64 `json:"temp_max"`
		} `json:"main"`
		Weather []owCondition `json:"weather"`
	} `json:"list"`
}

// Current fetches present conditions for location.
func (o *OpenWeather) Current(ctx context.Context, location string) (*model.Weather, error) {
	var body owCurrent
	if err := o.get(ctx, "weather", location, &body); err != nil {
		return nil, err
	}

	w := &model.Weather{
		Location:    location,
		Temperature: body.Main.Temp,
		FeelsLike:   body.Main.FeelsLike,
		Humidity:    body.Main.Humidity,
		WindSpeed:   body.Wind.Speed,
	}
	if len(body.Weather) > 0 {
		w.Condition = body.Weather[0].Main
		w.Description = body.Weather[0].Description
		w.Icon = body.Weather[0].Icon
	}
	return w, nil
}

// Forecast fetches the 5-day, 3-hourly series for location.
func (o *OpenWeather) Forecast(ctx context.Context, location string) ([]Entry, error) {
	var body owForecast
	if err := o.get(ctx, "forecast", location, &body); err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(body.List))
	for _, item := range body.List {
		e := Entry{
			Time:        time.Unix(item.Dt, 0).UTC(),
			Temperature: item.Main.Temp,
			TempMin:     item.Main.TempMin,
			TempMax:     item.Main.TempMax,
		}
		if len(item.Weather) > 0 {
			e.Condition = item.Weather[0].Main
			e.Description = item.Weather[0].Description
			e.Icon = item.Weather[0].Icon
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (o *OpenWeather) get(ctx context.Context, path, location string, out any) error {
	if o.apiKey == "" {
		return ErrNoAPIKey
	}

	q := url.Values{}
	q.Set("q", location)
	q.Set("appid", o.apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/"+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("weather: building %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("weather: calling %s for %q: %w", path, location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("weather: %s for %q returned status %d", path, location, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("weather: decoding %s response: %w", path, err)
	}
	return nil
}
