package item

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when no catalog item matches a lookup.
var ErrNotFound = errors.New("item not found")

// Item is a catalog entry.
type Item struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
}

// Total sums the prices of items.
func Total(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price)
	}
	return total
}

// Repository defines catalog persistence.
type Repository interface {
	List(ctx context.Context) ([]Item, error)
	GetByID(ctx context.Context, id int64) (*Item, error)
	// FindByName returns every item with exactly the given name, possibly none.
	FindByName(ctx context.Context, name string) ([]Item, error)
	// Create inserts the item and sets its ID.
	Create(ctx context.Context, it *Item) error
}
