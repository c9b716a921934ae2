package sqlite

import (
	"context"
	"fmt"

	"github.com/rs/xid"
)

// defaultPackingCategories are inserted into an empty packing_categories table.
var defaultPackingCategories = []struct{ name, color string }{
	{"Clothing", "#3b82f6"},
	{"Toiletries", "#10b981"},
	{"Electronics", "#f59e0b"},
	{"Documents", "#ef4444"},
	{"Medication", "#8b5cf6"},
	{"Miscellaneous", "#6b7280"},
}

func (db *DB) seedPackingCategories(ctx context.Context) error {
	var count int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM packing_categories`).Scan(&count); err != nil {
		return fmt.Errorf("counting packing categories: %w", err)
	}
	if count > 0 {
		return nil
	}
	for _, c := range defaultPackingCategories {
		if _, err := db.conn.ExecContext(ctx,
			`INSERT INTO packing_categories (id, name, color) VALUES (?, ?, ?)`,
			xid.New().String(), c.name, c.color,
		); err != nil {
			return fmt.Errorf("inserting category %q: %w", c.name, err)
		}
	}
	return nil
}
