// Package storetest holds the behavioural suite every domain.Store must pass.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"northline/internal/domain"
	"northline/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty store.
type Factory func(t *testing.T) domain.Store

// Booking builds a valid-looking record for store tests.
func Booking(id, date, hhmm string) models.Booking {
	return models.Booking{
		ID:      id,
		Name:    "Tester " + id,
		Email:   id + "@example.com",
		Phone:   "+1 555 0100",
		Service: models.Services[0],
		Date:    date,
		Time:    hhmm,
	}
}

// Run exercises the Store contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	ctx := context.Background()

	t.Run("EmptyList", func(t *testing.T) {
		store := newStore(t)
		got, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("ListSortedByDateTime", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Append(ctx, Booking("c", "2099-03-01", "09:00")))
		require.NoError(t, store.Append(ctx, Booking("a", "2099-01-01", "16:00")))
		require.NoError(t, store.Append(ctx, Booking("b", "2099-01-01", "10:30")))

		got, err := store.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a", "c"}, ids(got))
	})

	t.Run("TiesKeepInsertionOrder", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Append(ctx, Booking("second-slot", "2099-01-01", "11:00")))
		require.NoError(t, store.Append(ctx, Booking("first", "2099-01-01", "10:00")))
		require.NoError(t, store.Append(ctx, Booking("twin", "2099-01-01", "10:00")))
		require.NoError(t, store.Append(ctx, Booking("triplet", "2099-01-01", "10:00")))

		got, err := store.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "twin", "triplet", "second-slot"}, ids(got))
	})

	t.Run("DuplicateID", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Append(ctx, Booking("dup", "2099-01-01", "10:00")))
		err := store.Append(ctx, Booking("dup", "2099-02-01", "10:00"))
		assert.ErrorIs(t, err, domain.ErrDuplicateID)

		got, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "2099-01-01", got[0].Date)
	})

	t.Run("AppendThenRemoveRestoresState", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Append(ctx, Booking("keep", "2099-01-01", "10:00")))
		before, err := store.List(ctx)
		require.NoError(t, err)

		require.NoError(t, store.Append(ctx, Booking("temp", "2099-01-02", "10:00")))
		removed, err := store.RemoveByID(ctx, "temp")
		require.NoError(t, err)
		assert.True(t, removed)

		after, err := store.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("RemoveMissingID", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Append(ctx, Booking("x", "2099-01-01", "10:00")))

		removed, err := store.RemoveByID(ctx, "nope")
		require.NoError(t, err)
		assert.False(t, removed)

		removed, err = store.RemoveByID(ctx, "x")
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = store.RemoveByID(ctx, "x")
		require.NoError(t, err)
		assert.False(t, removed)

		got, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("Clear", func(t *testing.T) {
		store := newStore(t)
		for i := 0; i < 3; i++ {
			require.NoError(t, store.Append(ctx, Booking(fmt.Sprintf("id-%d", i), "2099-01-01", "10:00")))
		}
		require.NoError(t, store.Clear(ctx))

		got, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)

		require.NoError(t, store.Clear(ctx))
	})

	t.Run("PreservesFields", func(t *testing.T) {
		store := newStore(t)
		b := Booking("full", "2099-05-05", "13:15")
		b.Notes = "second floor"
		b.Service = "Virtual Meeting"
		require.NoError(t, store.Append(ctx, b))

		got, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, b, got[0])
	})

	t.Run("ConcurrentAppendsAreNotLost", func(t *testing.T) {
		store := newStore(t)
		const workers = 20

		var wg sync.WaitGroup
		wg.Add(workers)
		errs := make(chan error, workers)
		for i := 0; i < workers; i++ {
			go func(i int) {
				defer wg.Done()
				errs <- store.Append(ctx, Booking(fmt.Sprintf("c-%02d", i), "2099-01-01", "10:00"))
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			assert.NoError(t, err)
		}

		got, err := store.List(ctx)
		require.NoError(t, err)
		assert.Len(t, got, workers)
	})

	t.Run("ConcurrentRemovesAreNotLost", func(t *testing.T) {
		store := newStore(t)
		const workers = 10
		for i := 0; i < workers*2; i++ {
			require.NoError(t, store.Append(ctx, Booking(fmt.Sprintf("r-%02d", i), "2099-01-01", "10:00")))
		}

		var wg sync.WaitGroup
		wg.Add(workers)
		for i := 0; i < workers; i++ {
			go func(i int) {
				defer wg.Done()
				removed, err := store.RemoveByID(ctx, fmt.Sprintf("r-%02d", i))
				assert.NoError(t, err)
				assert.True(t, removed)
			}(i)
		}
		wg.Wait()

		got, err := store.List(ctx)
		require.NoError(t, err)
		assert.Len(t, got, workers)
	})
}

func ids(bookings []models.Booking) []string {
	out := make([]string, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, b.ID)
	}
	return out
}
