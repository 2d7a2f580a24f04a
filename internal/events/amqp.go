package events

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xenking/shop-api/internal/domain/order"
)

var _ order.Publisher = (*Publisher)(nil)

// channel is the subset of *amqp.Channel used by Publisher.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// connection is the subset of *amqp.Connection used by Publisher.
type connection interface {
	IsClosed() bool
	Close() error
}

type dialFunc func(url, exchange string) (connection, channel, error)

// Publisher sends domain events to a durable topic exchange.
//
// A closed connection or a failed publish drops the current session, and the
// next publish dials the broker again.
type Publisher struct {
	url      string
	exchange string
	dial     dialFunc

	// amqp channels are not safe for concurrent publishing.
	mu   sync.Mutex
	conn connection
	ch   channel
}

// Dial connects to the broker at url and declares the exchange.
func Dial(url, exchange string) (*Publisher, error) {
	p := &Publisher{url: url, exchange: exchange, dial: dialBroker}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func dialBroker(url, exchange string) (connection, channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, errors.Wrap(err, "dial amqp")
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, errors.Wrap(err, "open channel")
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, nil, errors.Wrapf(err, "declare exchange %q", exchange)
	}
	return conn, ch, nil
}

func (p *Publisher) connect() error {
	conn, ch, err := p.dial(p.url, p.exchange)
	if err != nil {
		return err
	}
	p.conn, p.ch = conn, ch
	return nil
}

// reset closes the current session, if any.
func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.ch = nil, nil
}

// Close closes the channel and the connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	if p.ch != nil {
		err = p.ch.Close()
	}
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	p.conn, p.ch = nil, nil
	return err
}

// OrderSubmitted publishes an order.submitted event for o.
func (p *Publisher) OrderSubmitted(ctx context.Context, o *order.Order) error {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	encodeOrderSubmitted(e, o)

	return p.publish(ctx, RoutingKeyOrderSubmitted, e.Bytes())
}

func (p *Publisher) publish(ctx context.Context, key string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil || p.conn.IsClosed() {
		p.reset()
		if err := p.connect(); err != nil {
			return errors.Wrap(err, "reconnect")
		}
	}

	err := p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		p.reset()
		return errors.Wrapf(err, "publish %s", key)
	}
	return nil
}
