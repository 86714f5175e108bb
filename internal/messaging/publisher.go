package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

type EventType string

const (
	EventBookingConfirmed     EventType = "booking.confirmed"
	EventBookingPaymentFailed EventType = "booking.payment_failed"
)

// Event is emitted after a reconciliation write changed booking state.
type Event struct {
	ID                    uuid.UUID `json:"id"`
	Type                  EventType `json:"type"`
	BookingID             uuid.UUID `json:"booking_id"`
	ExternalTransactionID string    `json:"external_transaction_id"`
	Country               string    `json:"country,omitempty"`
	Status                string    `json:"status"`
	OccurredAt            time.Time `json:"occurred_at"`
}

func (e Event) RoutingKey() string {
	return "payments." + string(e.Type)
}

var ErrNotConnected = errors.New("no connection to rabbitmq")

type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

type channelSource interface {
	Channel() *amqp.Channel
	Exchange() string
	IsConnected() bool
}

type Publisher struct {
	client channelSource
	// amqp channels are not safe for concurrent publishing
	mu sync.Mutex
}

func NewPublisher(client *RabbitMQClient) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !p.client.IsConnected() {
		return ErrNotConnected
	}

	msg, err := encodeEvent(&event)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.client.Channel().Publish(p.client.Exchange(), event.RoutingKey(), false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", event.RoutingKey(), err)
	}
	return nil
}

func encodeEvent(event *Event) (amqp.Publishing, error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID.String(),
		Timestamp:    event.OccurredAt,
		Type:         string(event.Type),
		Headers: amqp.Table{
			"booking_id":              event.BookingID.String(),
			"external_transaction_id": event.ExternalTransactionID,
			"event_type":              string(event.Type),
		},
	}, nil
}

// NopPublisher drops events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
