// Package events publishes domain events to a RabbitMQ topic exchange.
package events

import (
	"context"

	"github.com/go-faster/jx"

	"github.com/xenking/shop-api/internal/domain/order"
)

// RoutingKeyOrderSubmitted is the routing key of order submission events.
const RoutingKeyOrderSubmitted = "order.submitted"

// Nop discards all events.
type Nop struct{}

var _ order.Publisher = Nop{}

// OrderSubmitted implements order.Publisher.
func (Nop) OrderSubmitted(context.Context, *order.Order) error { return nil }

// encodeOrderSubmitted writes the event payload for o.
func encodeOrderSubmitted(e *jx.Encoder, o *order.Order) {
	e.ObjStart()
	e.FieldStart("orderId")
	e.Int64(o.ID)
	e.FieldStart("userId")
	e.Int64(o.UserID)
	e.FieldStart("username")
	e.Str(o.Username)
	e.FieldStart("total")
	e.Str(o.Total.StringFixed(2))
	e.FieldStart("itemCount")
	e.Int(len(o.Items))
	e.FieldStart("createdAt")
	e.Str(o.CreatedAt.UTC().Format(timeLayout))
	e.ObjEnd()
}

const timeLayout = "2006-01-02T15:04:05.000Z07:00"
