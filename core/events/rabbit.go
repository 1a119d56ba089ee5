package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/streadway/amqp"
)

// RabbitPublisher publishes sync events to a durable topic exchange.
// Routing key: supplier.sync.<tenant>.<succeeded|failed>
type RabbitPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewRabbitPublisher(url, exchange string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &RabbitPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

func RoutingKey(ev SyncCompleted) string {
	outcome := "failed"
	if ev.Success {
		outcome = "succeeded"
	}
	return fmt.Sprintf("supplier.sync.%s.%s", ev.TenantID, outcome)
}

func (r *RabbitPublisher) PublishSyncCompleted(_ context.Context, ev SyncCompleted) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	// amqp channels are not safe for concurrent publishing
	r.mu.Lock()
	defer r.mu.Unlock()
	err = r.channel.Publish(
		r.exchange,
		RoutingKey(ev),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    ev.FinishedAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish to exchange %s: %w", r.exchange, err)
	}
	return nil
}

// Close cleans up connection and channel
func (r *RabbitPublisher) Close() error {
	if err := r.channel.Close(); err != nil {
		return err
	}
	return r.conn.Close()
}
