package database

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"northline/internal/domain"
	"northline/internal/repository/storetest"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.New(io.Discard)
	db, err := NewDB(filepath.Join(t.TempDir(), "bookings.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) domain.Store {
		return setupTestDB(t)
	})
}

func TestNewDB_DirectoryCreation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")

	db, err := NewDB(dbPath, nil)
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, dbPath)
	assert.Equal(t, dbPath, db.Path())
}

func TestNewDB_InMemory(t *testing.T) {
	db, err := NewDB(":memory:", nil)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.Append(ctx, storetest.Booking("mem", "2099-01-01", "10:00")))
	got, err := db.List(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestNewDB_ReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookings.db")
	ctx := context.Background()

	db, err := NewDB(path, nil)
	require.NoError(t, err)
	require.NoError(t, db.Append(ctx, storetest.Booking("kept", "2099-01-01", "10:00")))
	require.NoError(t, db.Close())

	db, err = NewDB(path, nil)
	require.NoError(t, err)
	defer db.Close()

	got, err := db.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "kept", got[0].ID)
}

func TestList_RepairsLegacyRows(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO bookings (name, date, time) VALUES ('Legacy One', '2099-01-02', '10:00'), ('Legacy Two', '2099-01-01', '10:00')`)
	require.NoError(t, err)
	require.NoError(t, db.Append(ctx, storetest.Booking("modern", "2099-01-03", "10:00")))

	first, err := db.List(ctx)
	require.NoError(t, err)
	require.Len(t, first, 3)
	for _, b := range first {
		assert.NotEmpty(t, b.ID)
	}
	assert.Equal(t, "Legacy Two", first[0].Name)
	assert.NotEqual(t, first[0].ID, first[1].ID)

	var missing int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM bookings WHERE id = ''`).Scan(&missing))
	assert.Zero(t, missing)

	second, err := db.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRemoveByID_EmptyID(t *testing.T) {
	db := setupTestDB(t)
	removed, err := db.RemoveByID(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestDB_ErrorPaths(t *testing.T) {
	db, err := NewDB(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	ctx := context.Background()

	t.Run("List", func(t *testing.T) {
		_, err := db.List(ctx)
		assert.ErrorIs(t, err, domain.ErrStorage)
	})

	t.Run("Append", func(t *testing.T) {
		err := db.Append(ctx, storetest.Booking("x", "2099-01-01", "10:00"))
		assert.ErrorIs(t, err, domain.ErrStorage)
		assert.NotErrorIs(t, err, domain.ErrDuplicateID)
	})

	t.Run("RemoveByID", func(t *testing.T) {
		_, err := db.RemoveByID(ctx, "x")
		assert.ErrorIs(t, err, domain.ErrStorage)
	})

	t.Run("Clear", func(t *testing.T) {
		assert.ErrorIs(t, db.Clear(ctx), domain.ErrStorage)
	})
}
