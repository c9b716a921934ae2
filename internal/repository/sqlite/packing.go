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

var _ repository.PackingRepository = (*DB)(nil)

const packingItemColumns = `id, trip_id, category_id, name, quantity, is_packed, created_at, updated_at`

func (db *DB) CreatePackingItem(ctx context.Context, item *model.PackingItem) error {
	now := time.Now()
	item.ID = xid.New().String()
	item.CreatedAt = now
	item.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO packing_items (`+packingItemColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.TripID,
		item.CategoryID,
		item.Name,
		item.Quantity,
		item.IsPacked,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating packing item for trip %s: %w", item.TripID, err)
	}
	return nil
}

func (db *DB) GetPackingItemByID(ctx context.Context, id string) (*model.PackingItem, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+packingItemColumns+` FROM packing_items WHERE id = ?`, id)
	item, err := scanPackingItem(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("packing item", id)
		}
		return nil, fmt.Errorf("sqlite: getting packing item %s: %w", id, err)
	}
	return item, nil
}

func (db *DB) ListPackingItemsByTrip(ctx context.Context, tripID string) ([]model.PackingItem, error) {
	return db.queryPackingItems(ctx,
		`SELECT `+packingItemColumns+` FROM packing_items
		 WHERE trip_id = ?
		 ORDER BY created_at, id`,
		tripID,
	)
}

// ListPackingItemsByUser returns the packing items of every trip the user can read.
func (db *DB) ListPackingItemsByUser(ctx context.Context, userID string) ([]model.PackingItem, error) {
	return db.queryPackingItems(ctx,
		`SELECT `+packingItemColumns+` FROM packing_items
		 WHERE trip_id IN (`+accessibleTrips+`)
		 ORDER BY trip_id, created_at, id`,
		userID, userID,
	)
}

func (db *DB) UpdatePackingItem(ctx context.Context, item *model.PackingItem) error {
	item.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE packing_items
		 SET category_id = ?, name = ?, quantity = ?, is_packed = ?, updated_at = ?
		 WHERE id = ?`,
		item.CategoryID,
		item.Name,
		item.Quantity,
		item.IsPacked,
		item.UpdatedAt,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating packing item %s: %w", item.ID, err)
	}
	return checkAffected(result, apperror.NotFound("packing item", item.ID))
}

func (db *DB) DeletePackingItem(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM packing_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting packing item %s: %w", id, err)
	}
	return checkAffected(result, apperror.NotFound("packing item", id))
}

// =========================================================================
// CATEGORIES
// =========================================================================

func (db *DB) CreatePackingCategory(ctx context.Context, c *model.PackingCategory) error {
	c.ID = xid.New().String()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO packing_categories (id, name, color) VALUES (?, ?, ?)`,
		c.ID, c.Name, c.Color,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating packing category %q: %w", c.Name, err)
	}
	return nil
}

func (db *DB) GetPackingCategoryByID(ctx context.Context, id string) (*model.PackingCategory, error) {
	var c model.PackingCategory
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, color FROM packing_categories WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.Color)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("packing category", id)
		}
		return nil, fmt.Errorf("sqlite: getting packing category %s: %w", id, err)
	}
	return &c, nil
}

func (db *DB) ListPackingCategories(ctx context.Context) ([]model.PackingCategory, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, color FROM packing_categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing packing categories: %w", err)
	}
	defer rows.Close()

	categories := []model.PackingCategory{}
	for rows.Next() {
		var c model.PackingCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Color); err != nil {
			return nil, fmt.Errorf("sqlite: scanning packing category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating packing categories: %w", err)
	}
	return categories, nil
}

// DeletePackingCategory removes the category. Items that referenced it keep
// existing with category_id set to NULL.
func (db *DB) DeletePackingCategory(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM packing_categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting packing category %s: %w", id, err)
	}
	return checkAffected(result, apperror.NotFound("packing category", id))
}

func (db *DB) queryPackingItems(ctx context.Context, query string, args ...any) ([]model.PackingItem, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing packing items: %w", err)
	}
	defer rows.Close()

	items := []model.PackingItem{}
	for rows.Next() {
		item, err := scanPackingItem(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning packing item row: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating packing items: %w", err)
	}
	return items, nil
}

func scanPackingItem(row scanner) (*model.PackingItem, error) {
	var item model.PackingItem
	err := row.Scan(
		&item.ID,
		&item.TripID,
		&item.CategoryID,
		&item.Name,
		&item.Quantity,
		&item.IsPacked,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}
