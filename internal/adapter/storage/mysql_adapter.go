package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/resto-ops/internal/core/domain"
)

// MySQLAdapter implements the repository ports over database/sql. Writes to a
// single aggregate run in one transaction, which is the serialization
// boundary the core relies on.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) GetTable(ctx context.Context, number int64) (*domain.Table, error) {
	var t domain.Table
	err := m.db.QueryRowContext(ctx, `
		SELECT number, capacity, is_available, created_at, updated_at
		FROM tables WHERE number = ?`, number,
	).Scan(&t.Number, &t.Capacity, &t.IsAvailable, &t.CreatedAt, &t.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query table: %w", err)
	}
	return &t, nil
}

func (m *MySQLAdapter) ListTables(ctx context.Context) ([]*domain.Table, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT number, capacity, is_available, created_at, updated_at
		FROM tables`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var tables []*domain.Table
	for rows.Next() {
		var t domain.Table
		if err := rows.Scan(&t.Number, &t.Capacity, &t.IsAvailable, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		tables = append(tables, &t)
	}
	return tables, rows.Err()
}

func (m *MySQLAdapter) SaveTable(ctx context.Context, t *domain.Table) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO tables (number, capacity, is_available, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE capacity = VALUES(capacity),
			is_available = VALUES(is_available), updated_at = VALUES(updated_at)`,
		t.Number, t.Capacity, t.IsAvailable, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save table: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) GetReservation(ctx context.Context, id int64) (*domain.Reservation, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone_number, customer_number, reservation_date,
			status, table_number, created_at, cancelled_at
		FROM reservations WHERE id = ?`, id)

	res, err := scanReservation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query reservation: %w", err)
	}
	return res, nil
}

func (m *MySQLAdapter) ListActiveByTable(ctx context.Context, tableNumber int64) ([]*domain.Reservation, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, name, email, phone_number, customer_number, reservation_date,
			status, table_number, created_at, cancelled_at
		FROM reservations WHERE table_number = ? AND status != ?`,
		tableNumber, domain.ReservationStatusCancelled,
	)
	if err != nil {
		return nil, fmt.Errorf("query reservations: %w", err)
	}
	defer rows.Close()

	var reservations []*domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

func (m *MySQLAdapter) SaveReservation(ctx context.Context, r *domain.Reservation) error {
	var tableNumber sql.NullInt64
	if r.TableNumber != nil {
		tableNumber = sql.NullInt64{Int64: *r.TableNumber, Valid: true}
	}
	var cancelledAt sql.NullTime
	if r.CancelledAt != nil {
		cancelledAt = sql.NullTime{Time: *r.CancelledAt, Valid: true}
	}

	if r.ID == 0 {
		result, err := m.db.ExecContext(ctx, `
			INSERT INTO reservations (name, email, phone_number, customer_number,
				reservation_date, status, table_number, created_at, cancelled_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.Name, r.Email, r.PhoneNumber, r.CustomerNumber,
			r.ReservationDate, r.Status, tableNumber, r.CreatedAt, cancelledAt,
		)
		if err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("reservation id: %w", err)
		}
		r.ID = id
		return nil
	}

	_, err := m.db.ExecContext(ctx, `
		UPDATE reservations
		SET status = ?, table_number = ?, cancelled_at = ?
		WHERE id = ?`,
		r.Status, tableNumber, cancelledAt, r.ID,
	)
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	var (
		o     domain.Order
		endAt sql.NullTime
	)
	err := m.db.QueryRowContext(ctx, `
		SELECT id, table_number, status, created_at, end_at
		FROM orders WHERE id = ?`, id,
	).Scan(&o.ID, &o.TableNumber, &o.Status, &o.CreatedAt, &endAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}
	if endAt.Valid {
		o.EndAt = &endAt.Time
	}

	if o.Items, err = m.orderItems(ctx, o.ID); err != nil {
		return nil, err
	}
	return &o, nil
}

func (m *MySQLAdapter) ListOpenOrders(ctx context.Context) ([]*domain.Order, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, table_number, status, created_at
		FROM orders WHERE status = ?`, domain.OrderStatusInProgress)
	if err != nil {
		return nil, fmt.Errorf("query open orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.TableNumber, &o.Status, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, o := range orders {
		if o.Items, err = m.orderItems(ctx, o.ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// SaveOrder writes the order row and replaces its item set in one
// transaction, assigning identities to new items.
func (m *MySQLAdapter) SaveOrder(ctx context.Context, o *domain.Order) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var endAt sql.NullTime
	if o.EndAt != nil {
		endAt = sql.NullTime{Time: *o.EndAt, Valid: true}
	}

	if o.ID == 0 {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO orders (table_number, status, created_at, end_at)
			VALUES (?, ?, ?, ?)`,
			o.TableNumber, o.Status, o.CreatedAt, endAt,
		)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		if o.ID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("order id: %w", err)
		}
	} else {
		_, err := tx.ExecContext(ctx, `
			UPDATE orders SET status = ?, end_at = ? WHERE id = ?`,
			o.Status, endAt, o.ID,
		)
		if err != nil {
			return fmt.Errorf("update order: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, o.ID); err != nil {
		return fmt.Errorf("clear order items: %w", err)
	}

	for i := range o.Items {
		item := &o.Items[i]
		var extraID sql.NullInt64
		if item.MenuExtraID != nil {
			extraID = sql.NullInt64{Int64: *item.MenuExtraID, Valid: true}
		}

		if item.ID == 0 {
			result, err := tx.ExecContext(ctx, `
				INSERT INTO order_items (order_id, menu_item_id, menu_extra_id,
					quantity, notes, is_delivered, added_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				o.ID, item.MenuItemID, extraID, item.Quantity, item.Notes, item.IsDelivered, item.AddedAt,
			)
			if err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
			if item.ID, err = result.LastInsertId(); err != nil {
				return fmt.Errorf("order item id: %w", err)
			}
			continue
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, menu_item_id, menu_extra_id,
				quantity, notes, is_delivered, added_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID, o.ID, item.MenuItemID, extraID, item.Quantity, item.Notes, item.IsDelivered, item.AddedAt,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return tx.Commit()
}

func (m *MySQLAdapter) orderItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, menu_item_id, menu_extra_id, quantity, notes, is_delivered, added_at
		FROM order_items WHERE order_id = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var (
			item    domain.OrderItem
			extraID sql.NullInt64
		)
		if err := rows.Scan(&item.ID, &item.MenuItemID, &extraID, &item.Quantity,
			&item.Notes, &item.IsDelivered, &item.AddedAt); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if extraID.Valid {
			item.MenuExtraID = &extraID.Int64
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (m *MySQLAdapter) GetStockByIngredient(ctx context.Context, ingredientID int64) (*domain.Stock, error) {
	var s domain.Stock
	err := m.db.QueryRowContext(ctx, `
		SELECT id, ingredient_id, total_stock, optimal_stock_quantity, created_at, updated_at
		FROM stocks WHERE ingredient_id = ?`, ingredientID,
	).Scan(&s.ID, &s.IngredientID, &s.TotalStock, &s.OptimalStockQuantity, &s.CreatedAt, &s.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query stock: %w", err)
	}

	rows, err := m.db.QueryContext(ctx, `
		SELECT reference, type, quantity, date, employee_name, expires_at
		FROM stock_transactions WHERE stock_id = ? ORDER BY seq`, s.ID)
	if err != nil {
		return nil, fmt.Errorf("query stock transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			tx        domain.StockTransaction
			expiresAt sql.NullTime
		)
		if err := rows.Scan(&tx.Reference, &tx.Type, &tx.Quantity, &tx.Date,
			&tx.EmployeeName, &expiresAt); err != nil {
			return nil, fmt.Errorf("scan stock transaction: %w", err)
		}
		if expiresAt.Valid {
			tx.ExpiresAt = &expiresAt.Time
		}
		s.Transactions = append(s.Transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveStock updates the balance and appends history entries not yet
// persisted; recorded transactions are never rewritten.
func (m *MySQLAdapter) SaveStock(ctx context.Context, s *domain.Stock) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE stocks SET total_stock = ?, optimal_stock_quantity = ?, updated_at = ?
		WHERE id = ?`,
		s.TotalStock, s.OptimalStockQuantity, s.UpdatedAt, s.ID,
	)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}

	for _, entry := range s.Transactions {
		var expiresAt sql.NullTime
		if entry.ExpiresAt != nil {
			expiresAt = sql.NullTime{Time: *entry.ExpiresAt, Valid: true}
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO stock_transactions (reference, stock_id, type, quantity,
				date, employee_name, expires_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE reference = reference`,
			entry.Reference, s.ID, entry.Type, entry.Quantity,
			entry.Date, entry.EmployeeName, expiresAt,
		)
		if err != nil {
			return fmt.Errorf("insert stock transaction: %w", err)
		}
	}

	return tx.Commit()
}

// ClearStock persists the destructive reset: balance to zero, history deleted.
func (m *MySQLAdapter) ClearStock(ctx context.Context, s *domain.Stock) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE stocks SET total_stock = 0, updated_at = ? WHERE id = ?`,
		s.UpdatedAt, s.ID,
	)
	if err != nil {
		return fmt.Errorf("reset stock: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM stock_transactions WHERE stock_id = ?`, s.ID); err != nil {
		return fmt.Errorf("delete stock transactions: %w", err)
	}

	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	var (
		r           domain.Reservation
		tableNumber sql.NullInt64
		cancelledAt sql.NullTime
	)
	err := row.Scan(&r.ID, &r.Name, &r.Email, &r.PhoneNumber, &r.CustomerNumber,
		&r.ReservationDate, &r.Status, &tableNumber, &r.CreatedAt, &cancelledAt)
	if err != nil {
		return nil, err
	}
	if tableNumber.Valid {
		r.TableNumber = &tableNumber.Int64
	}
	if cancelledAt.Valid {
		r.CancelledAt = &cancelledAt.Time
	}
	return &r, nil
}
