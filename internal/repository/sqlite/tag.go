package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/xid"
	"github.com/sakif/trip-planner/internal/apperror"
	"github.com/sakif/trip-planner/internal/model"
	"github.com/sakif/trip-planner/internal/repository"
)

var _ repository.TagRepository = (*DB)(nil)

func (db *DB) CreateTag(ctx context.Context, tag *model.TripTag) error {
	tag.ID = xid.New().String()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO trip_tags (id, trip_id, name, color) VALUES (?, ?, ?, ?)`,
		tag.ID, tag.TripID, tag.Name, tag.Color,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating tag for trip %s: %w", tag.TripID, err)
	}
	return nil
}

func (db *DB) GetTagByID(ctx context.Context, id string) (*model.TripTag, error) {
	var tag model.TripTag
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, trip_id, name, color FROM trip_tags WHERE id = ?`, id,
	).Scan(&tag.ID, &tag.TripID, &tag.Name, &tag.Color)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("trip tag", id)
		}
		return nil, fmt.Errorf("sqlite: getting tag %s: %w", id, err)
	}
	return &tag, nil
}

func (db *DB) ListTagsByTrip(ctx context.Context, tripID string) ([]model.TripTag, error) {
	return db.queryTags(ctx,
		`SELECT id, trip_id, name, color FROM trip_tags WHERE trip_id = ? ORDER BY name, id`,
		tripID,
	)
}

// ListTagsByUser returns the tags of every trip the user can read.
func (db *DB) ListTagsByUser(ctx context.Context, userID string) ([]model.TripTag, error) {
	return db.queryTags(ctx,
		`SELECT id, trip_id, name, color FROM trip_tags
		 WHERE trip_id IN (`+accessibleTrips+`)
		 ORDER BY trip_id, name, id`,
		userID, userID,
	)
}

func (db *DB) DeleteTag(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM trip_tags WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting tag %s: %w", id, err)
	}
	return checkAffected(result, apperror.NotFound("trip tag", id))
}

func (db *DB) queryTags(ctx context.Context, query string, args ...any) ([]model.TripTag, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tags: %w", err)
	}
	defer rows.Close()

	tags := []model.TripTag{}
	for rows.Next() {
		var tag model.TripTag
		if err := rows.Scan(&tag.ID, &tag.TripID, &tag.Name, &tag.Color); err != nil {
			return nil, fmt.Errorf("sqlite: scanning tag row: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tags: %w", err)
	}
	return tags, nil
}
