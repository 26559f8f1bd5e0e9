package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"coffee-telegram/models"
)

const ordersExchange = "orders"

// Publisher fans placed orders out to the orders exchange so other
// consumers (displays, accounting) can react. It is optional: a nil
// *Publisher drops events silently.
type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	log  *slog.Logger
}

func New(url string, log *slog.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(ordersExchange, "fanout", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Publisher{conn: conn, ch: ch, log: log}, nil
}

// OrderPlaced publishes the order as JSON. Failures are logged, never
// returned: events are best-effort and must not affect the order.
func (p *Publisher) OrderPlaced(ctx context.Context, order models.Order) {
	if p == nil {
		return
	}
	body, err := json.Marshal(order)
	if err != nil {
		p.log.Error("marshal order event", "order_id", order.ID, "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	err = p.ch.PublishWithContext(ctx, ordersExchange, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	})
	if err != nil {
		p.log.Error("publish order event", "order_id", order.ID, "error", err)
	}
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.ch.Close()
	p.conn.Close()
}
