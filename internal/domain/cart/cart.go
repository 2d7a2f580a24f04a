package cart

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/shop-api/internal/domain/item"
)

// ErrNotFound is returned when a user has no cart.
var ErrNotFound = errors.New("cart not found")

// MaxQuantity bounds the quantity of a single cart mutation.
const MaxQuantity = 1000

// InvalidQuantityError indicates a quantity outside [0, MaxQuantity] in a
// cart mutation.
type InvalidQuantityError struct {
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be between 0 and %d, got %d", MaxQuantity, e.Quantity)
}

func validateQuantity(quantity int) error {
	if quantity < 0 || quantity > MaxQuantity {
		return &InvalidQuantityError{Quantity: quantity}
	}
	return nil
}

// Cart is the per-user collection of items awaiting submission. Quantity is
// represented by repeated entries.
type Cart struct {
	ID     int64
	UserID int64
	Items  []item.Item
}

// Total returns the sum of all entry prices.
func (c *Cart) Total() decimal.Decimal {
	return item.Total(c.Items)
}

// AddItem appends quantity copies of it.
func (c *Cart) AddItem(it item.Item, quantity int) error {
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	for range quantity {
		c.Items = append(c.Items, it)
	}
	return nil
}

// RemoveItem removes up to quantity entries with the same item ID, newest
// first. Removing more than present removes all of them.
func (c *Cart) RemoveItem(it item.Item, quantity int) error {
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	for i := len(c.Items) - 1; i >= 0 && quantity > 0; i-- {
		if c.Items[i].ID != it.ID {
			continue
		}
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
		quantity--
	}
	return nil
}

// Repository defines cart persistence.
type Repository interface {
	GetByUserID(ctx context.Context, userID int64) (*Cart, error)
	// Save replaces the stored item sequence of the cart.
	Save(ctx context.Context, c *Cart) error
}
