package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/trip-planner/internal/apperror"
	"github.com/sakif/trip-planner/internal/model"
	"github.com/sakif/trip-planner/internal/repository"
)

var _ repository.MemberRepository = (*DB)(nil)

// ListMembers returns the trip's members with their usernames, oldest first.
func (db *DB) ListMembers(ctx context.Context, tripID string) ([]model.TripMember, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT m.id, m.trip_id, m.user_id, u.username, m.role, m.created_at
		 FROM trip_members m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.trip_id = ?
		 ORDER BY m.created_at, m.id`,
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing members of trip %s: %w", tripID, err)
	}
	defer rows.Close()

	members := []model.TripMember{}
	for rows.Next() {
		var m model.TripMember
		if err := rows.Scan(&m.ID, &m.TripID, &m.UserID, &m.Username, &m.Role, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning member row: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating members: %w", err)
	}
	return members, nil
}

// AddMember inserts the membership row and marks the trip shared. Both
// statements run in one transaction so a trip is never left with a member
// but is_shared = 0, or the reverse.
//
// is_shared only moves from 0 to 1; the UPDATE is a no-op for a trip that is
// already shared.
func (db *DB) AddMember(ctx context.Context, member *model.TripMember) error {
	member.ID = xid.New().String()
	member.CreatedAt = time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning share transaction: %w", err)
	}
	// Rollback after a successful Commit is a no-op.
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO trip_members (id, trip_id, user_id, role, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		member.ID,
		member.TripID,
		member.UserID,
		member.Role,
		member.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.ConflictMessage("trip already shared with this user")
		}
		return fmt.Errorf("sqlite: inserting member of trip %s: %w", member.TripID, err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE trips SET is_shared = 1 WHERE id = ? AND is_shared = 0`,
		member.TripID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: marking trip %s shared: %w", member.TripID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing share of trip %s: %w", member.TripID, err)
	}
	return nil
}

// RemoveMember deletes one membership. The trip stays marked shared.
func (db *DB) RemoveMember(ctx context.Context, tripID, userID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM trip_members WHERE trip_id = ? AND user_id = ?`,
		tripID, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: removing member %s from trip %s: %w", userID, tripID, err)
	}
	return checkAffected(result, apperror.NotFound("trip member", userID))
}
