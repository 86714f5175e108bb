package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type disconnected struct{}

func (disconnected) Channel() *amqp.Channel { return nil }
func (disconnected) Exchange() string       { return "petcare.payments" }
func (disconnected) IsConnected() bool      { return false }

func TestEncodeEvent_FillsIdentityAndHeaders(t *testing.T) {
	bookingID := uuid.New()
	ev := Event{Type: EventBookingConfirmed, BookingID: bookingID, ExternalTransactionID: "123", Status: "COMPLETED"}

	msg, err := encodeEvent(&ev)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, ev.ID)
	assert.False(t, ev.OccurredAt.IsZero())
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, uint8(amqp.Persistent), msg.DeliveryMode)
	assert.Equal(t, ev.ID.String(), msg.MessageId)
	assert.Equal(t, bookingID.String(), msg.Headers["booking_id"])

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, EventBookingConfirmed, decoded.Type)
	assert.Equal(t, "123", decoded.ExternalTransactionID)
}

func TestEvent_RoutingKey(t *testing.T) {
	assert.Equal(t, "payments.booking.payment_failed", Event{Type: EventBookingPaymentFailed}.RoutingKey())
}

func TestPublish_NotConnected(t *testing.T) {
	p := &Publisher{client: disconnected{}}
	err := p.Publish(context.Background(), Event{Type: EventBookingConfirmed})
	assert.True(t, errors.Is(err, ErrNotConnected))
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), Event{}))
}
