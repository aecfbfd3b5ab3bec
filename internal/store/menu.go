package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MenuItem is a catalog entry feeding product names, prices and note
// shortcuts into orders. Color, shape and position drive the UI grid only.
type MenuItem struct {
	ID          int64
	Name        string
	Cost        decimal.Decimal
	Shortcuts   []string
	Color       string
	Shape       string
	Position    int
	ProductType string
	IsActive    bool
}

// ListMenuItems returns all catalog entries ordered by position then id.
func (s *Store) ListMenuItems(ctx context.Context) ([]MenuItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_name, cost, shortcuts, color, shape, position, product_type, is_active
		FROM menu ORDER BY position ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list menu: %w", err)
	}
	defer rows.Close()

	var items []MenuItem
	for rows.Next() {
		var (
			item                    MenuItem
			cost                    float64
			shortcuts, color, shape sql.NullString
			productType             sql.NullString
			isActive                int
		)
		if err := rows.Scan(&item.ID, &item.Name, &cost, &shortcuts, &color, &shape,
			&item.Position, &productType, &isActive); err != nil {
			return nil, fmt.Errorf("list menu: %w", err)
		}
		item.Cost = decimal.NewFromFloat(cost)
		item.Shortcuts = ParseShortcuts(shortcuts.String)
		item.Color = color.String
		item.Shape = shape.String
		item.ProductType = productType.String
		item.IsActive = isActive != 0
		items = append(items, item)
	}
	return items, rows.Err()
}

// CreateMenuItem inserts a catalog entry and returns its id.
func (s *Store) CreateMenuItem(ctx context.Context, item MenuItem) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO menu (product_name, cost, shortcuts, color, shape, position, product_type, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.Name, item.Cost.InexactFloat64(), encodeShortcuts(item.Shortcuts),
		item.Color, item.Shape, item.Position, item.ProductType, boolToInt(item.IsActive))
	if err != nil {
		return 0, fmt.Errorf("create menu item: %w", err)
	}
	return res.LastInsertId()
}

// UpdateMenuItem rewrites a catalog entry. Returns ErrNotFound for an
// unknown id.
func (s *Store) UpdateMenuItem(ctx context.Context, item MenuItem) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE menu
		SET product_name = ?, cost = ?, shortcuts = ?, color = ?, shape = ?,
		    position = ?, product_type = ?, is_active = ?
		WHERE id = ?`,
		item.Name, item.Cost.InexactFloat64(), encodeShortcuts(item.Shortcuts),
		item.Color, item.Shape, item.Position, item.ProductType, boolToInt(item.IsActive), item.ID)
	if err != nil {
		return fmt.Errorf("update menu item: %w", err)
	}
	return requireAffected(res, item.ID)
}

// DeleteMenuItem removes a catalog entry. Returns ErrNotFound for an
// unknown id.
func (s *Store) DeleteMenuItem(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM menu WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	return requireAffected(res, id)
}

func requireAffected(res sql.Result, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("id %d: %w", id, ErrNotFound)
	}
	return nil
}

// ParseShortcuts decodes a stored shortcut list. Older rows hold a comma
// separated string, newer rows a JSON array; both are accepted.
func ParseShortcuts(raw string) []string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil
	}

	if strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]") {
		var decoded []string
		if err := json.Unmarshal([]byte(text), &decoded); err == nil {
			var out []string
			for _, item := range decoded {
				if item = strings.TrimSpace(item); item != "" {
					out = append(out, item)
				}
			}
			return out
		}
	}

	var out []string
	for _, item := range strings.Split(text, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func encodeShortcuts(shortcuts []string) string {
	if len(shortcuts) == 0 {
		return ""
	}
	encoded, err := json.Marshal(shortcuts)
	if err != nil {
		return ""
	}
	return string(encoded)
}
