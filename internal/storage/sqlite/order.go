package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/xenking/shop-api/internal/domain/item"
	"github.com/xenking/shop-api/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders (user_id, total, created_at) VALUES (?, ?, ?)`

	insertOrderItemSQL = `INSERT INTO order_items (order_id, position, item_id, name, description, price)
		VALUES (?, ?, ?, ?, ?, ?)`

	listOrdersByUserSQL = `SELECT o.id, o.user_id, u.username, o.total, o.created_at
		FROM orders o JOIN users u ON u.id = o.user_id
		WHERE o.user_id = ? ORDER BY o.id`

	listOrderItemsByUserSQL = `SELECT oi.order_id, oi.item_id, oi.name, oi.description, oi.price
		FROM order_items oi JOIN orders o ON o.id = oi.order_id
		WHERE o.user_id = ? ORDER BY oi.order_id, oi.position`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by SQLite.
type OrderRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewOrderRepository returns an OrderRepository using conn.
func NewOrderRepository(conn *sql.DB) *OrderRepository {
	return &OrderRepository{db: conn, now: time.Now}
}

// Create persists the order header and its item snapshots in one transaction.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	createdAt := r.now().UTC()
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, createOrderSQL, o.UserID, o.Total.String(), createdAt)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		for i, it := range o.Items {
			if _, err := tx.ExecContext(ctx, insertOrderItemSQL,
				id, i, it.ID, it.Name, it.Description, it.Price.String(),
			); err != nil {
				return err
			}
		}
		o.ID = id
		return nil
	})
	if err != nil {
		return fmt.Errorf("creating order for user %d: %w", o.UserID, err)
	}
	o.CreatedAt = createdAt
	return nil
}

// ListByUser returns the user's orders ordered by ID.
func (r *OrderRepository) ListByUser(ctx context.Context, userID int64) ([]order.Order, error) {
	orders, err := r.listHeaders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders of user %d: %w", userID, err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	index := make(map[int64]int, len(orders))
	for i := range orders {
		index[orders[i].ID] = i
		orders[i].Items = []item.Item{}
	}

	rows, err := r.db.QueryContext(ctx, listOrderItemsByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing order items of user %d: %w", userID, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			orderID int64
			it      item.Item
		)
		if err := rows.Scan(&orderID, &it.ID, &it.Name, &it.Description, &it.Price); err != nil {
			return nil, fmt.Errorf("scanning order items of user %d: %w", userID, err)
		}
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scanning order items of user %d: %w", userID, err)
	}
	return orders, nil
}

func (r *OrderRepository) listHeaders(ctx context.Context, userID int64) ([]order.Order, error) {
	rows, err := r.db.QueryContext(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orders := []order.Order{}
	for rows.Next() {
		var o order.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Username, &o.Total, &o.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
