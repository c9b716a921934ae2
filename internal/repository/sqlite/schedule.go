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

var _ repository.ScheduleRepository = (*DB)(nil)

const scheduleColumns = `id, trip_id, day, time, location, description, title, created_at, updated_at`

// accessibleTrips selects the ids of trips a user owns or is a member of.
// It takes the user id twice.
const accessibleTrips = `SELECT id FROM trips WHERE owner_user_id = ?
	UNION
	SELECT trip_id FROM trip_members WHERE user_id = ?`

func (db *DB) CreateSchedule(ctx context.Context, s *model.Schedule) error {
	now := time.Now()
	s.ID = xid.New().String()
	s.CreatedAt = now
	s.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO schedules (`+scheduleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID,
		s.TripID,
		s.Day,
		s.Time,
		s.Location,
		s.Description,
		s.Title,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating schedule for trip %s: %w", s.TripID, err)
	}
	return nil
}

func (db *DB) GetScheduleByID(ctx context.Context, id string) (*model.Schedule, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+scheduleColumns+` FROM schedules WHERE id = ?`, id)
	s, err := scanSchedule(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("schedule", id)
		}
		return nil, fmt.Errorf("sqlite: getting schedule %s: %w", id, err)
	}
	return s, nil
}

// ListSchedulesByTrip orders by day, then time with untimed entries first.
func (db *DB) ListSchedulesByTrip(ctx context.Context, tripID string) ([]model.Schedule, error) {
	return db.querySchedules(ctx,
		`SELECT `+scheduleColumns+` FROM schedules
		 WHERE trip_id = ?
		 ORDER BY day, COALESCE(time, ''), created_at`,
		tripID,
	)
}

// ListSchedulesByUser returns schedules of every trip the user can read.
func (db *DB) ListSchedulesByUser(ctx context.Context, userID string) ([]model.Schedule, error) {
	return db.querySchedules(ctx,
		`SELECT `+scheduleColumns+` FROM schedules
		 WHERE trip_id IN (`+accessibleTrips+`)
		 ORDER BY day, COALESCE(time, ''), created_at`,
		userID, userID,
	)
}

func (db *DB) UpdateSchedule(ctx context.Context, s *model.Schedule) error {
	s.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE schedules
		 SET day = ?, time = ?, location = ?, description = ?, title = ?, updated_at = ?
		 WHERE id = ?`,
		s.Day,
		s.Time,
		s.Location,
		s.Description,
		s.Title,
		s.UpdatedAt,
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating schedule %s: %w", s.ID, err)
	}
	return checkAffected(result, apperror.NotFound("schedule", s.ID))
}

func (db *DB) DeleteSchedule(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM schedules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting schedule %s: %w", id, err)
	}
	return checkAffected(result, apperror.NotFound("schedule", id))
}

func (db *DB) querySchedules(ctx context.Context, query string, args ...any) ([]model.Schedule, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing schedules: %w", err)
	}
	defer rows.Close()

	schedules := []model.Schedule{}
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning schedule row: %w", err)
		}
		schedules = append(schedules, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating schedules: %w", err)
	}
	return schedules, nil
}

func scanSchedule(row scanner) (*model.Schedule, error) {
	var s model.Schedule
	err := row.Scan(
		&s.ID,
		&s.TripID,
		&s.Day,
		&s.Time,
		&s.Location,
		&s.Description,
		&s.Title,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
