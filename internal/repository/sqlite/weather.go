package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/trip-planner/internal/apperror"
	"github.com/sakif/trip-planner/internal/model"
	"github.com/sakif/trip-planner/internal/repository"
)

var _ repository.WeatherCacheRepository = (*DB)(nil)

// LatestWeather returns the newest row for the location. The match is exact
// and case-sensitive: "Paris" and "paris" are different keys.
func (db *DB) LatestWeather(ctx context.Context, location string) (*model.WeatherCacheEntry, error) {
	var (
		entry     model.WeatherCacheEntry
		payload   string
		fetchedAt int64
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, location, payload, fetched_at FROM weather_cache
		 WHERE location = ?
		 ORDER BY fetched_at DESC
		 LIMIT 1`,
		location,
	).Scan(&entry.ID, &entry.Location, &payload, &fetchedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("weather cache", location)
		}
		return nil, fmt.Errorf("sqlite: reading weather cache for %q: %w", location, err)
	}
	entry.Payload = []byte(payload)
	entry.FetchedAt = time.Unix(0, fetchedAt)
	return &entry, nil
}

// SaveWeather appends a cache row. Older rows for the same location are left
// in place; readers only ever look at the newest.
func (db *DB) SaveWeather(ctx context.Context, entry *model.WeatherCacheEntry) error {
	entry.ID = xid.New().String()
	if entry.FetchedAt.IsZero() {
		entry.FetchedAt = time.Now()
	}
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO weather_cache (id, location, payload, fetched_at) VALUES (?, ?, ?, ?)`,
		entry.ID,
		entry.Location,
		string(entry.Payload),
		entry.FetchedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: writing weather cache for %q: %w", entry.Location, err)
	}
	return nil
}
