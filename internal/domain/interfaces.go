package domain

import (
	"context"
	"errors"

	"northline/internal/models"
)

var (
	// ErrDuplicateID is returned by Append when the id is already stored.
	ErrDuplicateID = errors.New("booking id already exists")
	// ErrStorage wraps any failure to load or persist the collection.
	ErrStorage = errors.New("booking storage failure")
)

// Store is a durable ordered collection of bookings keyed by id. It
// performs no authorization; callers gate destructive operations.
type Store interface {
	// List returns bookings sorted by date and time, ties in insertion order.
	List(ctx context.Context) ([]models.Booking, error)
	// Append commits one booking or leaves the prior state intact.
	Append(ctx context.Context, booking models.Booking) error
	// RemoveByID deletes at most one booking and reports whether one matched.
	RemoveByID(ctx context.Context, id string) (bool, error)
	// Clear empties the collection.
	Clear(ctx context.Context) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
