package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/shop-api/internal/domain/cart"
	"github.com/xenking/shop-api/internal/domain/user"
)

const instrumentationName = "github.com/xenking/shop-api/internal/domain/order"

// Service encapsulates order submission and history.
//
// Submission reads the cart and writes the order in two independent
// repository calls. A concurrent cart modification between them is not
// guarded against.
type Service struct {
	users     user.Repository
	carts     cart.Repository
	orders    Repository
	publisher Publisher

	tracer    trace.Tracer
	submitted metric.Int64Counter
}

// NewService creates an order Service.
func NewService(
	users user.Repository,
	carts cart.Repository,
	orders Repository,
	publisher Publisher,
	tp trace.TracerProvider,
	mp metric.MeterProvider,
) (*Service, error) {
	submitted, err := mp.Meter(instrumentationName).Int64Counter("orders.submitted",
		metric.WithDescription("Number of submitted orders"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create orders.submitted counter")
	}
	return &Service{
		users:     users,
		carts:     carts,
		orders:    orders,
		publisher: publisher,
		tracer:    tp.Tracer(instrumentationName),
		submitted: submitted,
	}, nil
}

// Submit snapshots the user's current cart into a new order and persists it.
// The cart is left untouched and repeated calls create repeated orders.
func (s *Service) Submit(ctx context.Context, username string) (_ *Order, rerr error) {
	ctx, span := s.tracer.Start(ctx, "order.Submit",
		trace.WithAttributes(attribute.String("shop.username", username)),
	)
	defer func() {
		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
		}
		span.End()
	}()
	lg := zctx.From(ctx)

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			lg.Warn("Username not found during order submit", zap.String("username", username))
			return nil, user.ErrNotFound
		}
		return nil, errors.Wrap(err, "get user")
	}

	c, err := s.carts.GetByUserID(ctx, u.ID)
	if err != nil {
		return nil, errors.Wrap(err, "get cart")
	}

	o := NewFromCart(u, c)
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	span.SetAttributes(
		attribute.Int64("shop.order_id", o.ID),
		attribute.Int("shop.order_items", len(o.Items)),
	)
	s.submitted.Add(ctx, 1)

	if err := s.publisher.OrderSubmitted(ctx, o); err != nil {
		lg.Warn("Publish order submitted event", zap.Int64("order_id", o.ID), zap.Error(err))
	}

	lg.Info("Order submitted",
		zap.Int64("order_id", o.ID),
		zap.String("username", username),
		zap.Stringer("total", o.Total),
	)
	return o, nil
}

// History returns all orders of the user in insertion order.
func (s *Service) History(ctx context.Context, username string) ([]Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.History",
		trace.WithAttributes(attribute.String("shop.username", username)),
	)
	defer span.End()
	lg := zctx.From(ctx)

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			lg.Warn("Username not found when retrieving history", zap.String("username", username))
			return nil, user.ErrNotFound
		}
		return nil, errors.Wrap(err, "get user")
	}

	orders, err := s.orders.ListByUser(ctx, u.ID)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}

	lg.Debug("Order history retrieved", zap.String("username", username), zap.Int("orders", len(orders)))
	return orders, nil
}
