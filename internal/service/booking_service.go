package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"northline/internal/domain"
	"northline/internal/events"
	"northline/internal/gate"
	"northline/internal/models"
	"northline/internal/validator"

	"github.com/rs/zerolog"
)

var ErrIDRequired = errors.New("Booking id is required.")

// BookingService sequences validation, authorization and storage for every
// booking operation.
type BookingService struct {
	store     domain.Store
	validator *validator.Validator
	gate      *gate.Gate
	eventBus  domain.EventPublisher
	logger    zerolog.Logger
}

func NewBookingService(store domain.Store, v *validator.Validator, g *gate.Gate, eventBus domain.EventPublisher, logger *zerolog.Logger) *BookingService {
	s := &BookingService{
		store:     store,
		validator: v,
		gate:      g,
		eventBus:  eventBus,
		logger:    zerolog.Nop(),
	}
	if logger != nil {
		s.logger = logger.With().Str("component", "booking_service").Logger()
	}
	return s
}

func (s *BookingService) List(ctx context.Context) ([]models.Booking, error) {
	return s.store.List(ctx)
}

// Search filters the sorted list by a case-insensitive substring of name,
// service, email and phone. An empty query returns everything.
func (s *BookingService) Search(ctx context.Context, query string) ([]models.Booking, error) {
	bookings, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return bookings, nil
	}

	matched := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.Matches(query) {
			matched = append(matched, b)
		}
	}
	return matched, nil
}

// Create validates raw and stores the booking. Field errors come back as
// validator.Errors with a nil error; the store is untouched in that case.
func (s *BookingService) Create(ctx context.Context, raw models.RawInput) (models.Booking, validator.Errors, error) {
	result := s.validator.Validate(raw)
	if !result.OK {
		return models.Booking{}, result.Errors, nil
	}

	booking := result.Booking
	if err := s.store.Append(ctx, booking); err != nil {
		if errors.Is(err, domain.ErrDuplicateID) {
			return models.Booking{}, validator.Errors{validator.FieldID: validator.MsgDuplicateID}, nil
		}
		s.logger.Error().Err(err).Str("booking_id", booking.ID).Msg("append booking failed")
		return models.Booking{}, nil, fmt.Errorf("create booking: %w", err)
	}

	s.logger.Info().
		Str("booking_id", booking.ID).
		Str("service", booking.Service).
		Str("slot", booking.SortKey()).
		Msg("booking created")
	s.publishEvent(events.EventBookingCreated, events.NewBookingPayload(booking))
	return booking, nil, nil
}

// Delete removes one booking. Authorization is checked before the id.
func (s *BookingService) Delete(ctx context.Context, cred gate.Credential, id string) (bool, error) {
	if err := s.gate.Authorize(cred); err != nil {
		return false, err
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return false, ErrIDRequired
	}

	removed, err := s.store.RemoveByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("booking_id", id).Msg("remove booking failed")
		return false, fmt.Errorf("delete booking: %w", err)
	}

	if removed {
		s.logger.Info().Str("booking_id", id).Msg("booking deleted")
		s.publishEvent(events.EventBookingDeleted, events.BookingEventPayload{BookingID: id})
	}
	return removed, nil
}

func (s *BookingService) Clear(ctx context.Context, cred gate.Credential) error {
	if err := s.gate.Authorize(cred); err != nil {
		return err
	}

	// count is informational only
	count := 0
	if before, err := s.store.List(ctx); err == nil {
		count = len(before)
	}

	if err := s.store.Clear(ctx); err != nil {
		s.logger.Error().Err(err).Msg("clear bookings failed")
		return fmt.Errorf("clear bookings: %w", err)
	}

	s.logger.Info().Int("removed", count).Msg("bookings cleared")
	s.publishEvent(events.EventBookingsCleared, events.BookingEventPayload{RemovedCount: count})
	return nil
}

// Export returns the sorted collection for an authorized spreadsheet download.
func (s *BookingService) Export(ctx context.Context, cred gate.Credential) ([]models.Booking, error) {
	if err := s.gate.Authorize(cred); err != nil {
		return nil, err
	}
	return s.store.List(ctx)
}

func (s *BookingService) Unlock(session *gate.Session, passcode string) error {
	err := s.gate.Unlock(session, passcode)
	if err != nil {
		s.logger.Warn().Msg("admin unlock rejected")
	}
	return err
}

func (s *BookingService) Lock(session *gate.Session) {
	s.gate.Lock(session)
}

// VerifyPasscode checks a passcode without a session, as the HTTP unlock does.
func (s *BookingService) VerifyPasscode(passcode string) error {
	err := s.gate.Verify(passcode)
	if err != nil {
		s.logger.Warn().Msg("admin unlock rejected")
	}
	return err
}

func (s *BookingService) publishEvent(eventType string, payload events.BookingEventPayload) {
	if s.eventBus == nil {
		return
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", payload.BookingID).Msg("publish event error")
	}
}
