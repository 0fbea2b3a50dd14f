package eventbus

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

type ExchangeType string

const (
	DirectExchangeType ExchangeType = "direct"
	FanoutExchangeType ExchangeType = "fanout"
	TopicExchangeType  ExchangeType = "topic"
)

// Bus is the contract the relay publishes through, kept narrow so tests
// can substitute a recording implementation.
type Bus interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close()
}

// RabbitMQBus is a concrete implementation of Bus backed by a RabbitMQ
// exchange.
type RabbitMQBus struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewRabbitMQBus connects to the RabbitMQ server and declares a durable
// exchange of the given type.
func NewRabbitMQBus(amqpURI, exchange string, exchangeType ExchangeType) (*RabbitMQBus, error) {
	conn, err := amqp.Dial(amqpURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,             // name
		string(exchangeType), // type
		true,                 // durable
		false,                // auto-deleted
		false,                // internal
		false,                // no-wait
		nil,                  // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &RabbitMQBus{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
	}, nil
}

// Publish serializes the event and sends it to the exchange.
func (b *RabbitMQBus) Publish(ctx context.Context, routingKey string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
	}

	return b.channel.PublishWithContext(
		ctx,
		b.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		publishing,
	)
}

// Close closes the RabbitMQ channel and connection.
func (b *RabbitMQBus) Close() {
	if b.channel != nil {
		b.channel.Close()
	}
	if b.conn != nil {
		b.conn.Close()
	}
}
