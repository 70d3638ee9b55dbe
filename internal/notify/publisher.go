// Package notify publishes fire-and-forget notification events to RabbitMQ.
// Delivery (push, email, WhatsApp) is done by external consumers.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	RoutingAdFavorited = "ads.favorited"
	QueueAdFavorited   = "ads_favorited_queue"
)

// FavoriteEvent tells the ad owner someone favorited their ad.
type FavoriteEvent struct {
	Type           string    `json:"type"`
	AdID           string    `json:"ad_id"`
	OwnerID        string    `json:"owner_id"`
	ActorID        string    `json:"actor_id"`
	FavoritesCount int64     `json:"favorites_count"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Notifier is the outbound notification layer used by the ad service.
type Notifier interface {
	AdFavorited(ctx context.Context, ev FavoriteEvent) error
}

// Publisher sends JSON messages on a topic exchange.
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// Dial connects, declares the exchange and binds the favorite queue.
func Dial(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declare(ch, exchange); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, channel: ch, exchange: exchange}, nil
}

func declare(ch *amqp.Channel, exchange string) error {
	if err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		QueueAdFavorited, // name
		true,             // durable
		false,            // delete when unused
		false,            // exclusive
		false,            // no-wait
		nil,              // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, RoutingAdFavorited, exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}
	return nil
}

func (p *Publisher) AdFavorited(ctx context.Context, ev FavoriteEvent) error {
	ev.Type = RoutingAdFavorited
	return p.publish(ctx, RoutingAdFavorited, ev)
}

func (p *Publisher) publish(ctx context.Context, routingKey string, message any) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if err := p.channel.Close(); err != nil {
		_ = p.conn.Close()
		return err
	}
	return p.conn.Close()
}

// Noop drops every event; used when RabbitMQ is not configured.
type Noop struct{}

func (Noop) AdFavorited(context.Context, FavoriteEvent) error { return nil }
