package database

import (
	"context"
	"errors"
	"fmt"

	"northline/internal/domain"
	"northline/internal/models"

	"github.com/mattn/go-sqlite3"
)

const selectBookings = `SELECT seq, id, name, email, phone, service, date, time, notes
              FROM bookings ORDER BY date || 'T' || time, seq`

func (db *DB) List(ctx context.Context) ([]models.Booking, error) {
	db.mu.RLock()
	bookings, legacy, err := db.listRows(ctx)
	db.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	if len(legacy) == 0 {
		return bookings, nil
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	bookings, legacy, err = db.listRows(ctx)
	if err != nil {
		return nil, err
	}
	if err := db.repairIDs(ctx, bookings, legacy); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (db *DB) Append(ctx context.Context, booking models.Booking) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	query := `INSERT INTO bookings (id, name, email, phone, service, date, time, notes)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query,
		booking.ID,
		booking.Name,
		booking.Email,
		booking.Phone,
		booking.Service,
		booking.Date,
		booking.Time,
		booking.Notes,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateID
		}
		return fmt.Errorf("%w: failed to insert booking: %w", domain.ErrStorage, err)
	}
	return nil
}

func (db *DB) RemoveByID(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	result, err := db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("%w: failed to delete booking: %w", domain.ErrStorage, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: failed to count deleted rows: %w", domain.ErrStorage, err)
	}
	return rows > 0, nil
}

func (db *DB) Clear(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, err := db.ExecContext(ctx, `DELETE FROM bookings`); err != nil {
		return fmt.Errorf("%w: failed to clear bookings: %w", domain.ErrStorage, err)
	}
	return nil
}

// listRows returns the ordered bookings and the positions of rows lacking an id.
func (db *DB) listRows(ctx context.Context) ([]models.Booking, map[int]int64, error) {
	rows, err := db.QueryContext(ctx, selectBookings)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to list bookings: %w", domain.ErrStorage, err)
	}
	defer rows.Close()

	bookings := []models.Booking{}
	legacy := make(map[int]int64)
	for rows.Next() {
		var (
			seq int64
			b   models.Booking
		)
		if err := rows.Scan(&seq, &b.ID, &b.Name, &b.Email, &b.Phone, &b.Service, &b.Date, &b.Time, &b.Notes); err != nil {
			return nil, nil, fmt.Errorf("%w: failed to scan booking: %w", domain.ErrStorage, err)
		}
		if b.ID == "" {
			legacy[len(bookings)] = seq
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: failed to read bookings: %w", domain.ErrStorage, err)
	}
	return bookings, legacy, nil
}

// repairIDs assigns ids to legacy rows in one transaction. Caller holds the write lock.
func (db *DB) repairIDs(ctx context.Context, bookings []models.Booking, legacy map[int]int64) error {
	if len(legacy) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", domain.ErrStorage, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for idx, seq := range legacy {
		id := db.ids()
		if _, err := tx.ExecContext(ctx, `UPDATE bookings SET id = ? WHERE seq = ?`, id, seq); err != nil {
			return fmt.Errorf("%w: failed to repair booking id: %w", domain.ErrStorage, err)
		}
		bookings[idx].ID = id
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit id repair: %w", domain.ErrStorage, err)
	}
	db.logger.Info().Int("count", len(legacy)).Msg("assigned ids to legacy bookings")
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
