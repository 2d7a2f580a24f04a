package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/shop-api/internal/domain/item"
)

const (
	listItemsSQL = `SELECT id, name, description, price FROM items ORDER BY id`

	getItemByIDSQL = `SELECT id, name, description, price FROM items WHERE id = $1`

	findItemsByNameSQL = `SELECT id, name, description, price FROM items WHERE name = $1 ORDER BY id`

	createItemSQL = `INSERT INTO items (name, description, price) VALUES ($1, $2, $3) RETURNING id`
)

var _ item.Repository = (*ItemRepository)(nil)

// ItemRepository implements item.Repository backed by PostgreSQL.
type ItemRepository struct {
	pool *pgxpool.Pool
}

// NewItemRepository returns an ItemRepository that uses the given pool.
func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{pool: pool}
}

// List returns the whole catalog ordered by ID.
func (r *ItemRepository) List(ctx context.Context) ([]item.Item, error) {
	rows, err := r.pool.Query(ctx, listItemsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return pgx.CollectRows(rows, scanItem)
}

// GetByID returns a single item by its identifier.
func (r *ItemRepository) GetByID(ctx context.Context, id int64) (*item.Item, error) {
	rows, err := r.pool.Query(ctx, getItemByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting item %d: %w", id, err)
	}

	it, err := pgx.CollectExactlyOneRow(rows, scanItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, item.ErrNotFound
		}
		return nil, fmt.Errorf("getting item %d: %w", id, err)
	}
	return &it, nil
}

// FindByName returns all items with exactly the given name.
func (r *ItemRepository) FindByName(ctx context.Context, name string) ([]item.Item, error) {
	rows, err := r.pool.Query(ctx, findItemsByNameSQL, name)
	if err != nil {
		return nil, fmt.Errorf("finding items by name %q: %w", name, err)
	}
	return pgx.CollectRows(rows, scanItem)
}

// Create inserts a catalog item.
func (r *ItemRepository) Create(ctx context.Context, it *item.Item) error {
	err := r.pool.QueryRow(ctx, createItemSQL, it.Name, it.Description, it.Price).Scan(&it.ID)
	if err != nil {
		return fmt.Errorf("creating item %q: %w", it.Name, err)
	}
	return nil
}

func scanItem(row pgx.CollectableRow) (item.Item, error) {
	var it item.Item
	err := row.Scan(&it.ID, &it.Name, &it.Description, &it.Price)
	return it, err
}
