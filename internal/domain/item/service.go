package item

import (
	"context"

	"github.com/go-faster/errors"
)

// Service exposes catalog lookups.
type Service struct {
	items Repository
}

// NewService creates a catalog Service.
func NewService(items Repository) *Service {
	return &Service{items: items}
}

// List returns the whole catalog.
func (s *Service) List(ctx context.Context) ([]Item, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list items")
	}
	return items, nil
}

// Get returns a single item by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Item, error) {
	it, err := s.items.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "get item %d", id)
	}
	return it, nil
}

// ByName returns all items with the given name. An empty match set is
// reported as ErrNotFound rather than an empty list.
func (s *Service) ByName(ctx context.Context, name string) ([]Item, error) {
	items, err := s.items.FindByName(ctx, name)
	if err != nil {
		return nil, errors.Wrapf(err, "find items by name %q", name)
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return items, nil
}
