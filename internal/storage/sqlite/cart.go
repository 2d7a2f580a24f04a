package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-faster/errors"

	"github.com/xenking/shop-api/internal/domain/cart"
)

const (
	getCartByUserSQL = `SELECT id FROM carts WHERE user_id = ?`

	listCartItemsSQL = `SELECT i.id, i.name, i.description, i.price
		FROM cart_items ci JOIN items i ON i.id = ci.item_id
		WHERE ci.cart_id = ? ORDER BY ci.position`

	clearCartSQL = `DELETE FROM cart_items WHERE cart_id = ?`

	insertCartItemSQL = `INSERT INTO cart_items (cart_id, position, item_id) VALUES (?, ?, ?)`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by SQLite.
type CartRepository struct {
	db *sql.DB
}

// NewCartRepository returns a CartRepository using conn.
func NewCartRepository(conn *sql.DB) *CartRepository {
	return &CartRepository{db: conn}
}

// GetByUserID loads the user's cart with its entries in insertion order.
func (r *CartRepository) GetByUserID(ctx context.Context, userID int64) (*cart.Cart, error) {
	c := &cart.Cart{UserID: userID}
	if err := r.db.QueryRowContext(ctx, getCartByUserSQL, userID).Scan(&c.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cart.ErrNotFound
		}
		return nil, fmt.Errorf("getting cart of user %d: %w", userID, err)
	}

	items, err := queryItems(ctx, r.db, listCartItemsSQL, c.ID)
	if err != nil {
		return nil, fmt.Errorf("listing cart %d items: %w", c.ID, err)
	}
	c.Items = items
	return c, nil
}

// Save rewrites the cart entries in a single transaction.
func (r *CartRepository) Save(ctx context.Context, c *cart.Cart) error {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, clearCartSQL, c.ID); err != nil {
			return err
		}
		if len(c.Items) == 0 {
			return nil
		}
		stmt, err := tx.PrepareContext(ctx, insertCartItemSQL)
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()

		for i, it := range c.Items {
			if _, err := stmt.ExecContext(ctx, c.ID, i, it.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving cart %d: %w", c.ID, err)
	}
	return nil
}
