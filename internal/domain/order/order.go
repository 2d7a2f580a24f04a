package order

import (
	"context"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/shop-api/internal/domain/cart"
	"github.com/xenking/shop-api/internal/domain/item"
	"github.com/xenking/shop-api/internal/domain/user"
)

// Order is an immutable snapshot of a cart taken at submission time.
type Order struct {
	ID        int64
	UserID    int64
	Username  string
	Items     []item.Item
	Total     decimal.Decimal
	CreatedAt time.Time
}

// NewFromCart snapshots the cart of u. Items are copied by value, so later
// cart mutations do not affect the order.
func NewFromCart(u *user.User, c *cart.Cart) *Order {
	items := slices.Clone(c.Items)
	if items == nil {
		items = []item.Item{}
	}
	return &Order{
		UserID:   u.ID,
		Username: u.Username,
		Items:    items,
		Total:    item.Total(items),
	}
}

// Repository defines order persistence. Orders are never updated.
type Repository interface {
	// Create inserts the order and sets ID and CreatedAt.
	Create(ctx context.Context, o *Order) error
	// ListByUser returns the user's orders in insertion order.
	ListByUser(ctx context.Context, userID int64) ([]Order, error)
}

// Publisher announces submitted orders to other systems.
type Publisher interface {
	OrderSubmitted(ctx context.Context, o *Order) error
}
