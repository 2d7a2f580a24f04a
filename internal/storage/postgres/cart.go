package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/shop-api/internal/domain/cart"
)

const (
	getCartByUserSQL = `SELECT id FROM carts WHERE user_id = $1`

	listCartItemsSQL = `SELECT i.id, i.name, i.description, i.price
		FROM cart_items ci JOIN items i ON i.id = ci.item_id
		WHERE ci.cart_id = $1 ORDER BY ci.position`

	clearCartSQL = `DELETE FROM cart_items WHERE cart_id = $1`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// GetByUserID loads the user's cart with its entries in insertion order.
func (r *CartRepository) GetByUserID(ctx context.Context, userID int64) (*cart.Cart, error) {
	c := &cart.Cart{UserID: userID}
	if err := r.pool.QueryRow(ctx, getCartByUserSQL, userID).Scan(&c.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrNotFound
		}
		return nil, fmt.Errorf("getting cart of user %d: %w", userID, err)
	}

	rows, err := r.pool.Query(ctx, listCartItemsSQL, c.ID)
	if err != nil {
		return nil, fmt.Errorf("listing cart %d items: %w", c.ID, err)
	}
	items, err := pgx.CollectRows(rows, scanItem)
	if err != nil {
		return nil, fmt.Errorf("scanning cart %d items: %w", c.ID, err)
	}
	c.Items = items
	return c, nil
}

// Save rewrites the cart entries in a single transaction.
func (r *CartRepository) Save(ctx context.Context, c *cart.Cart) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, clearCartSQL, c.ID); err != nil {
			return err
		}
		if len(c.Items) == 0 {
			return nil
		}
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"cart_items"},
			[]string{"cart_id", "position", "item_id"},
			pgx.CopyFromSlice(len(c.Items), func(i int) ([]any, error) {
				return []any{c.ID, int32(i), c.Items[i].ID}, nil
			}),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("saving cart %d: %w", c.ID, err)
	}
	return nil
}
