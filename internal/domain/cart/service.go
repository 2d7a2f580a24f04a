package cart

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/shop-api/internal/domain/item"
	"github.com/xenking/shop-api/internal/domain/user"
)

// ModifyRequest holds the input for adding to or removing from a cart.
type ModifyRequest struct {
	Username string
	ItemID   int64
	Quantity int
}

// Service mutates user carts.
type Service struct {
	users user.Repository
	items item.Repository
	carts Repository
}

// NewService creates a cart Service.
func NewService(users user.Repository, items item.Repository, carts Repository) *Service {
	return &Service{
		users: users,
		items: items,
		carts: carts,
	}
}

// Add appends req.Quantity copies of the item to the user's cart.
func (s *Service) Add(ctx context.Context, req ModifyRequest) (*Cart, error) {
	return s.modify(ctx, req, (*Cart).AddItem)
}

// Remove drops up to req.Quantity copies of the item from the user's cart.
func (s *Service) Remove(ctx context.Context, req ModifyRequest) (*Cart, error) {
	return s.modify(ctx, req, (*Cart).RemoveItem)
}

func (s *Service) modify(ctx context.Context, req ModifyRequest, op func(*Cart, item.Item, int) error) (*Cart, error) {
	u, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, errors.Wrap(err, "get user")
	}

	it, err := s.items.GetByID(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, item.ErrNotFound) {
			return nil, item.ErrNotFound
		}
		return nil, errors.Wrap(err, "get item")
	}
	if err := validateQuantity(req.Quantity); err != nil {
		return nil, err
	}

	c, err := s.carts.GetByUserID(ctx, u.ID)
	if err != nil {
		return nil, errors.Wrap(err, "get cart")
	}

	if err := op(c, *it, req.Quantity); err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, errors.Wrap(err, "save cart")
	}

	zctx.From(ctx).Debug("Cart updated",
		zap.String("username", u.Username),
		zap.Int64("item_id", it.ID),
		zap.Int("quantity", req.Quantity),
		zap.Int("entries", len(c.Items)),
	)
	return c, nil
}
