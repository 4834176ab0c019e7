package events

import (
	"bytes"
	"errors"
	"testing"

	"northline/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus(nil)

	var received *Event
	var callCount int
	bus.Subscribe(EventBookingCreated, func(event *Event) error {
		received = event
		callCount++
		return nil
	})

	booking := models.Booking{ID: "b-1", Name: "Ada", Service: "Consultation", Date: "2099-01-01", Time: "10:00"}
	require.NoError(t, bus.PublishJSON(EventBookingCreated, NewBookingPayload(booking)))

	assert.Equal(t, 1, callCount)
	require.NotNil(t, received)
	assert.Equal(t, EventBookingCreated, received.Type)
	assert.False(t, received.CreatedAt.IsZero())

	var payload BookingEventPayload
	require.NoError(t, received.Decode(&payload))
	assert.Equal(t, "b-1", payload.BookingID)
	assert.Equal(t, "Consultation", payload.Service)
	assert.Zero(t, payload.RemovedCount)
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus(nil)
	var order []int

	bus.Subscribe("event", func(_ *Event) error { order = append(order, 1); return nil })
	bus.Subscribe("event", func(_ *Event) error { order = append(order, 2); return nil })
	bus.Subscribe("other", func(_ *Event) error { order = append(order, 3); return nil })

	bus.Publish(&Event{Type: "event"})

	assert.Equal(t, []int{1, 2}, order)
}

func TestEventBusHandlerErrorDoesNotStopDelivery(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	bus := NewEventBus(&logger)

	delivered := false
	bus.Subscribe(EventBookingsCleared, func(_ *Event) error { return errors.New("boom") })
	bus.Subscribe(EventBookingsCleared, func(_ *Event) error { delivered = true; return nil })

	require.NoError(t, bus.PublishJSON(EventBookingsCleared, BookingEventPayload{RemovedCount: 3}))

	assert.True(t, delivered)
	assert.Contains(t, buf.String(), "boom")
	assert.Contains(t, buf.String(), EventBookingsCleared)
}

func TestEventBusNoSubscribers(t *testing.T) {
	bus := NewEventBus(nil)
	assert.NotPanics(t, func() { bus.Publish(&Event{Type: "unknown"}) })
	assert.NoError(t, bus.PublishJSON("unknown", nil))
}

func TestNilEventBus(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventBookingDeleted, BookingEventPayload{}))
}

func TestNewJSONEvent(t *testing.T) {
	event, err := NewJSONEvent("type", BookingEventPayload{BookingID: "x", RemovedCount: 2})
	require.NoError(t, err)
	assert.Equal(t, "type", event.Type)
	assert.JSONEq(t, `{"booking_id":"x","removed_count":2}`, string(event.Payload))

	_, err = NewJSONEvent("type", make(chan int))
	assert.Error(t, err)
}
