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

var _ repository.TripRepository = (*DB)(nil)

const tripColumns = `id, owner_user_id, name, destination, start_date, end_date,
	image_url, description, is_shared, created_at, updated_at`

// CreateTrip inserts a trip. IsShared always starts false; only AddMember
// sets it.
func (db *DB) CreateTrip(ctx context.Context, trip *model.Trip) error {
	now := time.Now()
	trip.ID = xid.New().String()
	trip.IsShared = false
	trip.CreatedAt = now
	trip.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO trips (`+tripColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		trip.ID,
		trip.OwnerUserID,
		trip.Name,
		trip.Destination,
		trip.StartDate,
		trip.EndDate,
		trip.ImageURL,
		trip.Description,
		trip.IsShared,
		trip.CreatedAt,
		trip.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating trip: %w", err)
	}
	return nil
}

// GetTripByID returns apperror.ErrNotFound for an unknown id.
func (db *DB) GetTripByID(ctx context.Context, id string) (*model.Trip, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+tripColumns+` FROM trips WHERE id = ?`, id)
	trip, err := scanTrip(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("trip", id)
		}
		return nil, fmt.Errorf("sqlite: getting trip %s: %w", id, err)
	}
	return trip, nil
}

// ListTripsByUser returns owned trips plus trips the user is a member of.
// A trip matches at most once because the predicate is a single OR over the
// trips table, not a join.
func (db *DB) ListTripsByUser(ctx context.Context, userID string) ([]model.Trip, error) {
	return db.queryTrips(ctx,
		`SELECT `+tripColumns+` FROM trips
		 WHERE owner_user_id = ?
		    OR id IN (SELECT trip_id FROM trip_members WHERE user_id = ?)
		 ORDER BY start_date, created_at`,
		userID, userID,
	)
}

// ListSharedTrips returns trips other users have shared with userID.
func (db *DB) ListSharedTrips(ctx context.Context, userID string) ([]model.Trip, error) {
	return db.queryTrips(ctx,
		`SELECT `+tripColumns+` FROM trips
		 WHERE owner_user_id <> ?
		   AND id IN (SELECT trip_id FROM trip_members WHERE user_id = ?)
		 ORDER BY start_date, created_at`,
		userID, userID,
	)
}

// UpdateTrip writes the patchable columns. owner_user_id and is_shared are
// never changed here.
func (db *DB) UpdateTrip(ctx context.Context, trip *model.Trip) error {
	trip.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE trips
		 SET name = ?, destination = ?, start_date = ?, end_date = ?,
		     image_url = ?, description = ?, updated_at = ?
		 WHERE id = ?`,
		trip.Name,
		trip.Destination,
		trip.StartDate,
		trip.EndDate,
		trip.ImageURL,
		trip.Description,
		trip.UpdatedAt,
		trip.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating trip %s: %w", trip.ID, err)
	}
	return checkAffected(result, apperror.NotFound("trip", trip.ID))
}

// DeleteTrip removes the trip. Schedules, packing items, tags and members go
// with it through ON DELETE CASCADE.
func (db *DB) DeleteTrip(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM trips WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting trip %s: %w", id, err)
	}
	return checkAffected(result, apperror.NotFound("trip", id))
}

func (db *DB) queryTrips(ctx context.Context, query string, args ...any) ([]model.Trip, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing trips: %w", err)
	}
	defer rows.Close()

	trips := []model.Trip{}
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning trip row: %w", err)
		}
		trips = append(trips, *trip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating trips: %w", err)
	}
	return trips, nil
}

func scanTrip(row scanner) (*model.Trip, error) {
	var t model.Trip
	err := row.Scan(
		&t.ID,
		&t.OwnerUserID,
		&t.Name,
		&t.Destination,
		&t.StartDate,
		&t.EndDate,
		&t.ImageURL,
		&t.Description,
		&t.IsShared,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
