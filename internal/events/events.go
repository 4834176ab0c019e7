package events

import (
	"encoding/json"
	"sync"
	"time"

	"northline/internal/models"

	"github.com/rs/zerolog"
)

const (
	EventBookingCreated  = "booking_created"
	EventBookingDeleted  = "booking_deleted"
	EventBookingsCleared = "bookings_cleared"
)

// BookingEventPayload describes the booking snapshot for event consumers.
// RemovedCount is set only for bookings_cleared.
type BookingEventPayload struct {
	BookingID    string `json:"booking_id,omitempty"`
	Name         string `json:"name,omitempty"`
	Service      string `json:"service,omitempty"`
	Date         string `json:"date,omitempty"`
	Time         string `json:"time,omitempty"`
	RemovedCount int    `json:"removed_count,omitempty"`
}

// NewBookingPayload snapshots b.
func NewBookingPayload(b models.Booking) BookingEventPayload {
	return BookingEventPayload{
		BookingID: b.ID,
		Name:      b.Name,
		Service:   b.Service,
		Date:      b.Date,
		Time:      b.Time,
	}
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// Decode unmarshals the payload into v.
func (e *Event) Decode(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
	logger      zerolog.Logger
}

func NewEventBus(logger *zerolog.Logger) *EventBus {
	b := &EventBus{
		subscribers: make(map[string][]EventHandler),
		logger:      zerolog.Nop(),
	}
	if logger != nil {
		b.logger = logger.With().Str("component", "events").Logger()
	}
	return b
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish runs the subscribers of the event type synchronously, in
// subscription order. Handler errors are logged and do not stop delivery.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		if err := handler(event); err != nil {
			b.logger.Warn().Err(err).Str("event", event.Type).Msg("event handler failed")
		}
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	event, err := NewJSONEvent(eventType, payload)
	if err != nil {
		return err
	}

	b.Publish(&event)
	return nil
}

// NewJSONEvent builds an Event with JSON payload for manual publishing.
func NewJSONEvent(eventType string, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	return Event{Type: eventType, Payload: raw, CreatedAt: time.Now()}, nil
}
