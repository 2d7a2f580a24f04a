package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/shop-api/internal/domain/item"
	"github.com/xenking/shop-api/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders (user_id, total) VALUES ($1, $2) RETURNING id, created_at`

	listOrdersByUserSQL = `SELECT o.id, o.user_id, u.username, o.total, o.created_at
		FROM orders o JOIN users u ON u.id = o.user_id
		WHERE o.user_id = $1 ORDER BY o.id`

	listOrderItemsSQL = `SELECT order_id, item_id, name, description, price
		FROM order_items WHERE order_id = ANY($1) ORDER BY order_id, position`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order header and its item snapshots in one transaction.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, createOrderSQL, o.UserID, o.Total).Scan(&o.ID, &o.CreatedAt); err != nil {
			return err
		}
		if len(o.Items) == 0 {
			return nil
		}
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"order_items"},
			[]string{"order_id", "position", "item_id", "name", "description", "price"},
			pgx.CopyFromSlice(len(o.Items), func(i int) ([]any, error) {
				it := o.Items[i]
				return []any{o.ID, int32(i), it.ID, it.Name, it.Description, it.Price}, nil
			}),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("creating order for user %d: %w", o.UserID, err)
	}
	return nil
}

// ListByUser returns the user's orders ordered by ID.
func (r *OrderRepository) ListByUser(ctx context.Context, userID int64) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders of user %d: %w", userID, err)
	}
	orders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.Order, error) {
		var o order.Order
		err := row.Scan(&o.ID, &o.UserID, &o.Username, &o.Total, &o.CreatedAt)
		return o, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning orders of user %d: %w", userID, err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = i
		orders[i].Items = []item.Item{}
	}

	rows, err = r.pool.Query(ctx, listOrderItemsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("listing order items of user %d: %w", userID, err)
	}
	var (
		orderID int64
		it      item.Item
	)
	_, err = pgx.ForEachRow(rows, []any{&orderID, &it.ID, &it.Name, &it.Description, &it.Price}, func() error {
		i := index[orderID]
		orders[i].Items = append(orders[i].Items, it)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning order items of user %d: %w", userID, err)
	}
	return orders, nil
}
