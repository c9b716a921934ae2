package model

import "time"

// Weather is the current-conditions payload served to clients and stored
// verbatim in the weather cache.
//
// Placeholder is true only for the degraded response returned when the
// upstream provider could not be reached.
type Weather struct {
	Location    string  `json:"location"`
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feelsLike"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
	Condition   string  `json:"condition"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Placeholder bool    `json:"placeholder,omitempty"`
}

// ForecastDay is the single representative forecast entry for one calendar day.
type ForecastDay struct {
	Date        Date    `json:"date"`
	Temperature float64 `json:"temperature"`
	TempMin     float64 `json:"tempMin"`
	TempMax     float64 `json:"tempMax"`
	Condition   string  `json:"condition"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
}

// WeatherCacheEntry is one row of the weather cache. Payload is the JSON
// encoding of a Weather value.
type WeatherCacheEntry struct {
	ID        string
	Location  string
	Payload   []byte
	FetchedAt time.Time
}
