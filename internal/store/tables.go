package store

import (
	"context"
	"fmt"
)

// Table is a named seating position offered on the order form.
type Table struct {
	ID       int64
	Name     string
	Position int
	IsActive bool
}

// ListTables returns all tables ordered by position then id.
func (s *Store) ListTables(ctx context.Context) ([]Table, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, table_name, position, is_active FROM tables ORDER BY position ASC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []Table
	for rows.Next() {
		var (
			t        Table
			isActive int
		)
		if err := rows.Scan(&t.ID, &t.Name, &t.Position, &isActive); err != nil {
			return nil, fmt.Errorf("list tables: %w", err)
		}
		t.IsActive = isActive != 0
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// CreateTable inserts a table and returns its id. Table names are unique;
// duplicates surface as a constraint error.
func (s *Store) CreateTable(ctx context.Context, t Table) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO tables (table_name, position, is_active) VALUES (?, ?, ?)",
		t.Name, t.Position, boolToInt(t.IsActive))
	if err != nil {
		return 0, fmt.Errorf("create table: %w", err)
	}
	return res.LastInsertId()
}

// UpdateTable rewrites a table row. Returns ErrNotFound for an unknown id.
func (s *Store) UpdateTable(ctx context.Context, t Table) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE tables SET table_name = ?, position = ?, is_active = ? WHERE id = ?",
		t.Name, t.Position, boolToInt(t.IsActive), t.ID)
	if err != nil {
		return fmt.Errorf("update table: %w", err)
	}
	return requireAffected(res, t.ID)
}

// DeleteTable removes a table row. Returns ErrNotFound for an unknown id.
func (s *Store) DeleteTable(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tables WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete table: %w", err)
	}
	return requireAffected(res, id)
}
