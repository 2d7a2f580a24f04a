package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-faster/errors"

	"github.com/xenking/shop-api/internal/domain/item"
)

const (
	listItemsSQL = `SELECT id, name, description, price FROM items ORDER BY id`

	getItemByIDSQL = `SELECT id, name, description, price FROM items WHERE id = ?`

	findItemsByNameSQL = `SELECT id, name, description, price FROM items WHERE name = ? ORDER BY id`

	createItemSQL = `INSERT INTO items (name, description, price) VALUES (?, ?, ?)`
)

var _ item.Repository = (*ItemRepository)(nil)

// ItemRepository implements item.Repository backed by SQLite.
type ItemRepository struct {
	db *sql.DB
}

// NewItemRepository returns an ItemRepository using conn.
func NewItemRepository(conn *sql.DB) *ItemRepository {
	return &ItemRepository{db: conn}
}

// List returns the whole catalog ordered by ID.
func (r *ItemRepository) List(ctx context.Context) ([]item.Item, error) {
	items, err := queryItems(ctx, r.db, listItemsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return items, nil
}

// GetByID returns a single item by its identifier.
func (r *ItemRepository) GetByID(ctx context.Context, id int64) (*item.Item, error) {
	var it item.Item
	err := r.db.QueryRowContext(ctx, getItemByIDSQL, id).Scan(&it.ID, &it.Name, &it.Description, &it.Price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, item.ErrNotFound
		}
		return nil, fmt.Errorf("getting item %d: %w", id, err)
	}
	return &it, nil
}

// FindByName returns all items with exactly the given name.
func (r *ItemRepository) FindByName(ctx context.Context, name string) ([]item.Item, error) {
	items, err := queryItems(ctx, r.db, findItemsByNameSQL, name)
	if err != nil {
		return nil, fmt.Errorf("finding items by name %q: %w", name, err)
	}
	return items, nil
}

// Create inserts a catalog item.
func (r *ItemRepository) Create(ctx context.Context, it *item.Item) error {
	res, err := r.db.ExecContext(ctx, createItemSQL, it.Name, it.Description, it.Price.String())
	if err != nil {
		return fmt.Errorf("creating item %q: %w", it.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("creating item %q: %w", it.Name, err)
	}
	it.ID = id
	return nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryItems(ctx context.Context, q querier, query string, args ...any) ([]item.Item, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []item.Item{}
	for rows.Next() {
		var it item.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.Price); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
