package store

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS orders (
    id TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,
    closed_at TEXT NOT NULL,
    service_date TEXT,
    in_progress INTEGER NOT NULL DEFAULT 0,
    sent_status INTEGER NOT NULL DEFAULT 0,
    name TEXT,
    table_name TEXT,
    status TEXT NOT NULL,
    to_go INTEGER NOT NULL,
    additional_notes TEXT NOT NULL DEFAULT '',
    include_additional_notes_in_ticket INTEGER NOT NULL DEFAULT 0,
    amount_paid REAL NOT NULL,
    total_amount REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS order_dishes (
    id TEXT PRIMARY KEY,
    order_id TEXT NOT NULL,
    display_name TEXT,
    status TEXT NOT NULL,
    sent_count INTEGER NOT NULL,
    to_go INTEGER NOT NULL,
    total_amount REAL NOT NULL,
    FOREIGN KEY(order_id) REFERENCES orders(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS order_items (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    dish_id TEXT NOT NULL,
    name TEXT NOT NULL,
    display_name TEXT,
    price REAL NOT NULL,
    quantity INTEGER NOT NULL,
    notes TEXT,
    is_custom INTEGER NOT NULL,
    FOREIGN KEY(dish_id) REFERENCES order_dishes(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS order_sequence_state (
    key TEXT PRIMARY KEY,
    last_issued_id TEXT
);

CREATE TABLE IF NOT EXISTS menu (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    product_name TEXT NOT NULL,
    cost REAL NOT NULL DEFAULT 0,
    shortcuts TEXT NOT NULL DEFAULT '',
    color TEXT NOT NULL DEFAULT '',
    shape TEXT NOT NULL DEFAULT '',
    position INTEGER NOT NULL DEFAULT 0,
    product_type TEXT NOT NULL DEFAULT 'Food',
    is_active INTEGER NOT NULL DEFAULT 1,
    created_at TEXT NOT NULL DEFAULT (datetime('now', 'localtime'))
);

CREATE TABLE IF NOT EXISTS tables (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    table_name TEXT NOT NULL UNIQUE,
    position INTEGER NOT NULL DEFAULT 0,
    is_active INTEGER NOT NULL DEFAULT 1,
    created_at TEXT NOT NULL DEFAULT (datetime('now', 'localtime'))
);
`

// migrate creates the schema and upgrades databases written by earlier
// releases. Upgrades are purely additive: missing columns are added with
// safe defaults, existing data is left alone.
func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}

	orderColumns := []struct{ name, definition string }{
		{"service_date", "TEXT"},
		{"in_progress", "INTEGER NOT NULL DEFAULT 0"},
		{"sent_status", "INTEGER NOT NULL DEFAULT 0"},
		{"additional_notes", "TEXT NOT NULL DEFAULT ''"},
		{"include_additional_notes_in_ticket", "INTEGER NOT NULL DEFAULT 0"},
	}
	for _, c := range orderColumns {
		if err := s.ensureColumn(ctx, "orders", c.name, c.definition); err != nil {
			return err
		}
	}

	menuColumns := []struct{ name, definition string }{
		{"position", "INTEGER NOT NULL DEFAULT 0"},
		{"product_type", "TEXT NOT NULL DEFAULT 'Food'"},
		{"is_active", "INTEGER NOT NULL DEFAULT 1"},
		{"created_at", "TEXT"},
	}
	for _, c := range menuColumns {
		if err := s.ensureColumn(ctx, "menu", c.name, c.definition); err != nil {
			return err
		}
	}

	tableColumns := []struct{ name, definition string }{
		{"position", "INTEGER NOT NULL DEFAULT 0"},
		{"is_active", "INTEGER NOT NULL DEFAULT 1"},
		{"created_at", "TEXT"},
	}
	for _, c := range tableColumns {
		if err := s.ensureColumn(ctx, "tables", c.name, c.definition); err != nil {
			return err
		}
	}

	return nil
}

// ensureColumn adds a column if the table doesn't have it yet.
func (s *Store) ensureColumn(ctx context.Context, table, column, definition string) error {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("inspect %s: %w", table, err)
	}
	defer rows.Close()

	exists := false
	for rows.Next() {
		var (
			cid        int
			name       string
			typ        string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return fmt.Errorf("inspect %s: %w", table, err)
		}
		if name == column {
			exists = true
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("inspect %s: %w", table, err)
	}
	if exists {
		return nil
	}

	_, err = s.db.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition))
	if err != nil {
		return fmt.Errorf("add %s.%s: %w", table, column, err)
	}
	return nil
}
