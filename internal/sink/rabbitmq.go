package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/openretail/storewatch/internal/incident"
)

// rabbitSink publishes one persistent JSON message per incident to a
// direct exchange, routed by event name so consumers can bind per kind.
type rabbitSink struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewRabbitMQ dials the broker and declares the exchange, failing fast
// when the broker is unreachable.
func NewRabbitMQ(url, exchange string) (Sink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq sink dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq sink channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq sink declare %s: %w", exchange, err)
	}
	return &rabbitSink{conn: conn, channel: ch, exchange: exchange}, nil
}

func (s *rabbitSink) Name() string { return "rabbitmq" }

func (s *rabbitSink) Append(ctx context.Context, inc incident.Incident) error {
	body, err := json.Marshal(inc)
	if err != nil {
		return fmt.Errorf("marshal incident %s: %w", inc.EventID, err)
	}
	return s.channel.PublishWithContext(ctx,
		s.exchange,
		inc.Data.EventName(), // routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

func (s *rabbitSink) Close() error {
	if err := s.channel.Close(); err != nil {
		s.conn.Close()
		return err
	}
	return s.conn.Close()
}
