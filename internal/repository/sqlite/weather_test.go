package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/trip-planner/internal/apperror"
	"github.com/sakif/trip-planner/internal/model"
)

func TestLatestWeather_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i, payload := range []string{`{"v":1}`, `{"v":3}`, `{"v":2}`} {
		offsets := []time.Duration{0, 2 * time.Hour, time.Hour}
		entry := &model.WeatherCacheEntry{
			Location:  "Paris",
			Payload:   []byte(payload),
			FetchedAt: base.Add(offsets[i]),
		}
		if err := db.SaveWeather(ctx, entry); err != nil {
			t.Fatalf("SaveWeather() error = %v", err)
		}
	}

	got, err := db.LatestWeather(ctx, "Paris")
	if err != nil {
		t.Fatalf("LatestWeather() error = %v", err)
	}
	if string(got.Payload) != `{"v":3}` {
		t.Errorf("Payload = %s, want newest row", got.Payload)
	}
	if !got.FetchedAt.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("FetchedAt = %v, want %v", got.FetchedAt, base.Add(2*time.Hour))
	}
}

func TestLatestWeather_ExactLocationMatch(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	db.SaveWeather(ctx, &model.WeatherCacheEntry{Location: "Paris", Payload: []byte(`{}`)})

	for _, loc := range []string{"paris", "Paris, FR", "London"} {
		if _, err := db.LatestWeather(ctx, loc); !errors.Is(err, apperror.ErrNotFound) {
			t.Errorf("LatestWeather(%q) error = %v, want ErrNotFound", loc, err)
		}
	}
}

func TestSaveWeather_DefaultsFetchedAt(t *testing.T) {
	db := newTestDB(t)

	entry := &model.WeatherCacheEntry{Location: "Rome", Payload: []byte(`{}`)}
	before := time.Now()
	if err := db.SaveWeather(context.Background(), entry); err != nil {
		t.Fatalf("SaveWeather() error = %v", err)
	}
	if entry.FetchedAt.Before(before) {
		t.Errorf("FetchedAt = %v, want >= %v", entry.FetchedAt, before)
	}
}
