// Package events relays committed reservation events from the outbox to a
// message broker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/rabbitmq/amqp091-go"

	"mentorbook/internal/domain"
)

type Publisher interface {
	Publish(ctx context.Context, ev domain.ReservationEvent) error
}

type AMQPPublisher struct {
	channel    *amqp091.Channel
	exchange   string
	routingKey string
}

func NewAMQPPublisher(conn *amqp091.Connection, exchange, routingKey string) (*AMQPPublisher, error) {
	channel, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	return &AMQPPublisher{
		channel:    channel,
		exchange:   exchange,
		routingKey: routingKey,
	}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, ev domain.ReservationEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	msg := amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    ev.ID.String(),
		Type:         string(ev.Type),
		Timestamp:    ev.OccurredAt,
		Body:         body,
	}
	if err := p.channel.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", ev.ID, err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	return p.channel.Close()
}

// LogPublisher writes events to a logger. It is used when no broker is
// configured.
type LogPublisher struct {
	log *slog.Logger
}

func NewLogPublisher(log *slog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(ctx context.Context, ev domain.ReservationEvent) error {
	p.log.InfoContext(ctx, "reservation event",
		"event_id", ev.ID.String(),
		"type", string(ev.Type),
		"reservation_id", ev.ReservationID.String(),
		"owner_id", ev.OwnerID,
		"start_time", ev.StartTime,
		"end_time", ev.EndTime,
	)
	return nil
}
