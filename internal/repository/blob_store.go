package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"northline/internal/domain"
	"northline/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var _ domain.Store = (*BlobStore)(nil)

// Blob is a single persisted payload holding the whole booking collection.
type Blob interface {
	// Read returns the payload; found is false when nothing was stored yet.
	Read(ctx context.Context) (data []byte, found bool, err error)
	Write(ctx context.Context, data []byte) error
}

// BlobStore keeps the booking collection as one JSON array inside a Blob.
// Every mutation is a load-modify-save cycle under the write lock.
type BlobStore struct {
	blob   Blob
	mu     sync.RWMutex
	indent string
	ids    func() string
	logger zerolog.Logger
}

type BlobOption func(*BlobStore)

// WithIndent pretty-prints the persisted array.
func WithIndent(indent string) BlobOption {
	return func(s *BlobStore) { s.indent = indent }
}

// WithIDs overrides the generator used to repair records without an id.
func WithIDs(ids func() string) BlobOption {
	return func(s *BlobStore) {
		if ids != nil {
			s.ids = ids
		}
	}
}

func NewBlobStore(blob Blob, logger *zerolog.Logger, opts ...BlobOption) *BlobStore {
	s := &BlobStore{
		blob:   blob,
		ids:    uuid.NewString,
		logger: zerolog.Nop(),
	}
	if logger != nil {
		s.logger = logger.With().Str("component", "store").Logger()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *BlobStore) List(ctx context.Context) ([]models.Booking, error) {
	s.mu.RLock()
	bookings, repaired, err := s.load(ctx)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	if repaired {
		s.mu.Lock()
		bookings, err = s.loadForWrite(ctx)
		s.mu.Unlock()
		if err != nil {
			return nil, err
		}
	}

	return sortBookings(bookings), nil
}

func (s *BlobStore) Append(ctx context.Context, booking models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bookings, err := s.loadForWrite(ctx)
	if err != nil {
		return err
	}
	for _, b := range bookings {
		if b.ID == booking.ID {
			return domain.ErrDuplicateID
		}
	}

	return s.save(ctx, append(bookings, booking))
}

func (s *BlobStore) RemoveByID(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bookings, err := s.loadForWrite(ctx)
	if err != nil {
		return false, err
	}

	kept := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.ID == id {
			continue
		}
		kept = append(kept, b)
	}
	if len(kept) == len(bookings) {
		return false, nil
	}

	if err := s.save(ctx, kept); err != nil {
		return false, err
	}
	return true, nil
}

func (s *BlobStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(ctx, nil)
}

// load reads and decodes the collection, assigning ids to legacy records.
// Only a payload that is not a JSON array yields an empty collection;
// records inside an array are coerced field by field.
func (s *BlobStore) load(ctx context.Context) ([]models.Booking, bool, error) {
	data, found, err := s.blob.Read(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("%w: read bookings: %w", domain.ErrStorage, err)
	}
	if !found || len(strings.TrimSpace(string(data))) == 0 {
		return nil, false, nil
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn().Err(err).Msg("stored bookings are malformed, treating as empty")
		return nil, false, nil
	}

	bookings := make([]models.Booking, 0, len(records))
	repaired := false
	for i, record := range records {
		var raw models.RawInput
		if err := json.Unmarshal(record, &raw); err != nil {
			s.logger.Warn().Err(err).Int("index", i).Msg("stored booking is not an object, keeping an empty record")
			raw = nil
		}

		booking := models.BookingFromInput(raw)
		if strings.TrimSpace(booking.ID) == "" {
			booking.ID = s.ids()
			repaired = true
		}
		bookings = append(bookings, booking)
	}
	return bookings, repaired, nil
}

// loadForWrite must be called with the write lock held. It persists any
// id repair so it is not repeated on the next load.
func (s *BlobStore) loadForWrite(ctx context.Context) ([]models.Booking, error) {
	bookings, repaired, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if repaired {
		if err := s.save(ctx, bookings); err != nil {
			return nil, err
		}
		s.logger.Info().Int("count", len(bookings)).Msg("assigned ids to legacy bookings")
	}
	return bookings, nil
}

func (s *BlobStore) save(ctx context.Context, bookings []models.Booking) error {
	if bookings == nil {
		bookings = []models.Booking{}
	}

	var (
		data []byte
		err  error
	)
	if s.indent != "" {
		data, err = json.MarshalIndent(bookings, "", s.indent)
	} else {
		data, err = json.Marshal(bookings)
	}
	if err != nil {
		return fmt.Errorf("%w: encode bookings: %w", domain.ErrStorage, err)
	}

	if err := s.blob.Write(ctx, data); err != nil {
		return fmt.Errorf("%w: write bookings: %w", domain.ErrStorage, err)
	}
	return nil
}

func sortBookings(bookings []models.Booking) []models.Booking {
	out := make([]models.Booking, len(bookings))
	copy(out, bookings)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortKey() < out[j].SortKey()
	})
	return out
}
