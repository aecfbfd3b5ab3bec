package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/padrino-pos/api/internal/enum"
	"github.com/padrino-pos/api/internal/model"
	"github.com/padrino-pos/api/internal/ordernum"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SaveOrder persists the full order graph in a single transaction.
//
// The closed-at stamp follows first-close-wins: an already stored stamp is
// preserved verbatim, a newly closed order gets the current time, and an
// order that has never been closed stores the empty string. After a
// successful save the stamp is written back to order.ClosedAt. Dish and item
// rows are replaced wholesale, and the historical-maximum identifier is
// advanced if this order's id is at least the stored maximum. On any failure
// the transaction rolls back and nothing is persisted.
func (s *Store) SaveOrder(ctx context.Context, order *model.Order) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var existingClosedAt string
	err = tx.QueryRowContext(ctx, "SELECT closed_at FROM orders WHERE id = ?", order.ID).Scan(&existingClosedAt)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read existing closed_at: %w", err)
	}

	// First close wins: an existing stamp is preserved verbatim, including
	// across a reopen. Only an order closing for the first time gets a
	// fresh timestamp.
	closedAt := existingClosedAt
	if order.Status == enum.OrderStatusClosed && closedAt == "" {
		closedAt = time.Now().Format(time.RFC3339Nano)
	}

	serviceDate := order.ServiceDate
	if serviceDate == "" {
		serviceDate = order.CreatedAt.Format("2006-01-02")
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO orders (
			id, created_at, closed_at, service_date, in_progress, sent_status,
			name, table_name, status, to_go, additional_notes,
			include_additional_notes_in_ticket, amount_paid, total_amount
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID,
		order.CreatedAt.Format(time.RFC3339Nano),
		closedAt,
		serviceDate,
		boolToInt(order.Status == enum.OrderStatusInProgress),
		boolToInt(order.SentStatus),
		order.Name,
		order.Table,
		order.Status,
		boolToInt(order.ToGo),
		order.AdditionalNotes,
		boolToInt(order.IncludeAdditionalNotesInTicket),
		order.AmountPaid.InexactFloat64(),
		order.TotalAmount.InexactFloat64(),
	)
	if err != nil {
		return fmt.Errorf("upsert order: %w", err)
	}

	// Replace-all: simpler than diffing and the per-order row counts are
	// small.
	_, err = tx.ExecContext(ctx,
		"DELETE FROM order_items WHERE dish_id IN (SELECT id FROM order_dishes WHERE order_id = ?)", order.ID)
	if err != nil {
		return fmt.Errorf("clear order items: %w", err)
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM order_dishes WHERE order_id = ?", order.ID); err != nil {
		return fmt.Errorf("clear order dishes: %w", err)
	}

	for _, dish := range order.Dishes {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_dishes (id, order_id, display_name, status, sent_count, to_go, total_amount)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			dish.ID, order.ID, dish.DisplayName, dish.Status,
			dish.SentCount, boolToInt(dish.ToGo), dish.TotalAmount.InexactFloat64(),
		)
		if err != nil {
			return fmt.Errorf("insert dish: %w", err)
		}

		for _, p := range dish.Products {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO order_items (dish_id, name, display_name, price, quantity, notes, is_custom)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				dish.ID, p.Name, p.DisplayName, p.Price.InexactFloat64(),
				p.Quantity, p.Notes, boolToInt(p.IsCustom),
			)
			if err != nil {
				return fmt.Errorf("insert item: %w", err)
			}
		}
	}

	if err := advanceMaxIssuedID(ctx, tx, order.ID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	if closedAt != "" {
		order.ClosedAt = parseTimestamp(closedAt)
	}
	return nil
}

// DeleteOrder removes an order; dishes and items go with it via cascade.
// The id advances the historical maximum even when no row matches, so an
// order that was issued an id but never flushed still has its sequence
// number retired. Returns ErrNotFound for an unknown id.
func (s *Store) DeleteOrder(ctx context.Context, orderID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, "DELETE FROM orders WHERE id = ?", orderID)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	if err := advanceMaxIssuedID(ctx, tx, orderID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	return nil
}

// advanceMaxIssuedID records id as the historical maximum if it is
// well-formed and at least the stored maximum. Malformed ids are ignored.
func advanceMaxIssuedID(ctx context.Context, q querier, id string) error {
	if !ordernum.Valid(id) {
		return nil
	}

	var current sql.NullString
	err := q.QueryRowContext(ctx,
		"SELECT last_issued_id FROM order_sequence_state WHERE key = ?", sequenceKey).Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read sequence state: %w", err)
	}
	if current.Valid && current.String != "" && ordernum.Compare(id, current.String) < 0 {
		return nil
	}

	_, err = q.ExecContext(ctx,
		"INSERT OR REPLACE INTO order_sequence_state (key, last_issued_id) VALUES (?, ?)",
		sequenceKey, id)
	if err != nil {
		return fmt.Errorf("update sequence state: %w", err)
	}
	return nil
}

// LatestIssuedID returns the highest identifier ever issued: the stored
// historical maximum when present (advanced past it by any greater live
// row), otherwise the greatest well-formed id among live orders. Returns the
// empty string for a fresh database.
func (s *Store) LatestIssuedID(ctx context.Context) (string, error) {
	var stored sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT last_issued_id FROM order_sequence_state WHERE key = ?", sequenceKey).Scan(&stored)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("read sequence state: %w", err)
	}

	liveMax, err := s.latestLiveOrderID(ctx)
	if err != nil {
		return "", err
	}

	if stored.Valid && stored.String != "" {
		if liveMax != "" && ordernum.Compare(liveMax, stored.String) >= 0 {
			return liveMax, nil
		}
		return stored.String, nil
	}
	return liveMax, nil
}

// latestLiveOrderID scans live orders for the greatest well-formed id.
func (s *Store) latestLiveOrderID(ctx context.Context) (string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM orders ORDER BY id DESC LIMIT 200")
	if err != nil {
		return "", fmt.Errorf("scan live orders: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scan live orders: %w", err)
		}
		if ordernum.Valid(id) {
			return id, nil
		}
	}
	return "", rows.Err()
}

// LoadOrder hydrates a single order graph. Returns ErrNotFound for an
// unknown id. The legacy order-level status "Sent" is normalized to
// "In progress"; dish-level Sent is untouched.
func (s *Store) LoadOrder(ctx context.Context, orderID string) (*model.Order, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, closed_at, service_date, sent_status, name, table_name,
		       status, to_go, additional_notes, include_additional_notes_in_ticket,
		       amount_paid, total_amount
		FROM orders WHERE id = ?`, orderID)

	var (
		id, createdAt, status         string
		closedAt                      sql.NullString
		serviceDate, name, tableName  sql.NullString
		notes                         sql.NullString
		sentStatus, toGo, includeFlag int
		amountPaid, totalAmount       sql.NullFloat64
	)
	err := row.Scan(&id, &createdAt, &closedAt, &serviceDate, &sentStatus, &name, &tableName,
		&status, &toGo, &notes, &includeFlag, &amountPaid, &totalAmount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}

	created := parseTimestamp(createdAt)
	order := model.NewOrder(id, created)
	if closedAt.Valid && closedAt.String != "" {
		order.ClosedAt = parseTimestamp(closedAt.String)
	}
	if serviceDate.Valid && serviceDate.String != "" {
		order.ServiceDate = serviceDate.String
	}
	order.Name = name.String
	order.Table = tableName.String
	if status == "" {
		status = enum.OrderStatusNew
	}
	if status == enum.OrderStatusSent {
		status = enum.OrderStatusInProgress
	}
	order.Status = status
	order.SentStatus = sentStatus != 0
	order.ToGo = toGo != 0
	order.AdditionalNotes = notes.String
	order.IncludeAdditionalNotesInTicket = includeFlag != 0
	order.AmountPaid = decimal.NewFromFloat(amountPaid.Float64)

	if err := s.loadDishes(ctx, order); err != nil {
		return nil, err
	}
	// A dish differing from the order-level flag carries a per-dish
	// override; the flag itself is not stored.
	for _, dish := range order.Dishes {
		dish.ToGoOverridden = dish.ToGo != order.ToGo
	}
	order.RecomputeTotal()
	return order, nil
}

func (s *Store) loadDishes(ctx context.Context, order *model.Order) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, display_name, status, sent_count, to_go FROM order_dishes WHERE order_id = ? ORDER BY rowid",
		order.ID)
	if err != nil {
		return fmt.Errorf("load dishes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			dishID                  string
			displayName, dishStatus sql.NullString
			sentCount, toGo         int
		)
		if err := rows.Scan(&dishID, &displayName, &dishStatus, &sentCount, &toGo); err != nil {
			return fmt.Errorf("load dishes: %w", err)
		}
		dish := model.NewDish(dishID)
		dish.DisplayName = displayName.String
		if dishStatus.String != "" {
			dish.Status = dishStatus.String
		}
		dish.SentCount = sentCount
		dish.ToGo = toGo != 0
		order.Dishes = append(order.Dishes, dish)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load dishes: %w", err)
	}

	for _, dish := range order.Dishes {
		if err := s.loadProducts(ctx, dish); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) loadProducts(ctx context.Context, dish *model.Dish) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, display_name, price, quantity, notes, is_custom
		FROM order_items WHERE dish_id = ? ORDER BY id`, dish.ID)
	if err != nil {
		return fmt.Errorf("load items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			name               string
			displayName, notes sql.NullString
			price              float64
			quantity, isCustom int
		)
		if err := rows.Scan(&name, &displayName, &price, &quantity, &notes, &isCustom); err != nil {
			return fmt.Errorf("load items: %w", err)
		}
		p := model.NewProduct(name, decimal.NewFromFloat(price), nil, notes.String, isCustom != 0, displayName.String)
		if quantity >= 1 {
			p.Quantity = quantity
		}
		dish.Products = append(dish.Products, p)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load items: %w", err)
	}

	dish.RecomputeTotal()
	return nil
}

// LoadOpenOrders hydrates every order whose status is not Closed, oldest
// first.
func (s *Store) LoadOpenOrders(ctx context.Context) ([]*model.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM orders WHERE status != ? ORDER BY created_at ASC", enum.OrderStatusClosed)
	if err != nil {
		return nil, fmt.Errorf("list open orders: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list open orders: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list open orders: %w", err)
	}

	orders := make([]*model.Order, 0, len(ids))
	for _, id := range ids {
		order, err := s.LoadOrder(ctx, id)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// ClosedAt returns the stored first-close timestamp for an order, or the
// zero time if the order has never been closed. Returns ErrNotFound for an
// unknown id.
func (s *Store) ClosedAt(ctx context.Context, orderID string) (time.Time, error) {
	var closedAt string
	err := s.db.QueryRowContext(ctx, "SELECT closed_at FROM orders WHERE id = ?", orderID).Scan(&closedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read closed_at: %w", err)
	}
	if closedAt == "" {
		return time.Time{}, nil
	}
	return parseTimestamp(closedAt), nil
}

func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Now()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
