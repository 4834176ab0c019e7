package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"northline/internal/domain"
	"northline/internal/models"
	"northline/internal/repository/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyBlob wraps a MemoryBlob and fails writes on demand.
type flakyBlob struct {
	*MemoryBlob
	mu        sync.Mutex
	failWrite bool
	failRead  bool
	writes    int
}

func (b *flakyBlob) Read(ctx context.Context) ([]byte, bool, error) {
	b.mu.Lock()
	fail := b.failRead
	b.mu.Unlock()
	if fail {
		return nil, false, errors.New("disk unavailable")
	}
	return b.MemoryBlob.Read(ctx)
}

func (b *flakyBlob) Write(ctx context.Context, data []byte) error {
	b.mu.Lock()
	fail := b.failWrite
	b.writes++
	b.mu.Unlock()
	if fail {
		return errors.New("disk full")
	}
	return b.MemoryBlob.Write(ctx, data)
}

func TestMemoryStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) domain.Store {
		return NewMemoryStore(nil)
	})
}

func TestBlobStore_LegacyRecordsGetIDsOnce(t *testing.T) {
	ctx := context.Background()
	blob := &flakyBlob{MemoryBlob: NewMemoryBlob("")}
	blob.Set([]byte(`[{"name":"Old Record","date":"2099-01-01","time":"10:00"},{"id":"kept","name":"Kept","date":"2099-01-02","time":"10:00"}]`))

	next := 0
	store := NewBlobStore(blob, nil, WithIDs(func() string {
		next++
		return fmt.Sprintf("legacy-%d", next)
	}))

	first, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.True(t, strings.HasPrefix(first[0].ID, "legacy-"))
	assert.Equal(t, "kept", first[1].ID)
	assert.Equal(t, 1, blob.writes)

	second, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, blob.writes, "repair must be persisted, not repeated")

	raw, _, err := blob.MemoryBlob.Read(ctx)
	require.NoError(t, err)
	var persisted []models.Booking
	require.NoError(t, json.Unmarshal(raw, &persisted))
	assert.Equal(t, first[0].ID, persisted[0].ID)
}

func TestBlobStore_MixedTypeRecordsAreKept(t *testing.T) {
	ctx := context.Background()
	blob := &flakyBlob{MemoryBlob: NewMemoryBlob("")}
	blob.Set([]byte(`[
		{"id":"keep-me","name":"Kept","email":"k@example.com","phone":"+1 555 0100","service":"Consultation","date":"2099-01-02","time":"10:00"},
		{"id":7,"name":"Old","phone":5550100100,"service":"Consultation","date":"2099-01-01","time":"11:00","notes":null},
		{"id":0,"name":"Zero id","date":"2099-01-03","time":"09:00"}
	]`))

	store := NewBlobStore(blob, nil, WithIDs(func() string { return "repaired" }))

	got, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "7", got[0].ID)
	assert.Equal(t, "Old", got[0].Name)
	assert.Equal(t, "5550100100", got[0].Phone)
	assert.Empty(t, got[0].Notes)
	assert.Equal(t, "keep-me", got[1].ID)
	assert.Equal(t, "repaired", got[2].ID)

	require.NoError(t, store.Append(ctx, storetest.Booking("new", "2099-01-04", "10:00")))

	raw, _, err := blob.MemoryBlob.Read(ctx)
	require.NoError(t, err)
	var persisted []models.Booking
	require.NoError(t, json.Unmarshal(raw, &persisted))
	ids := make([]string, 0, len(persisted))
	for _, b := range persisted {
		ids = append(ids, b.ID)
	}
	assert.ElementsMatch(t, []string{"keep-me", "7", "repaired", "new"}, ids)

	removed, err := store.RemoveByID(ctx, "7")
	require.NoError(t, err)
	assert.True(t, removed)
}

func TestBlobStore_NonObjectRecordIsRepaired(t *testing.T) {
	ctx := context.Background()
	blob := NewMemoryBlob("")
	blob.Set([]byte(`[null, "stray", {"id":"ok","date":"2099-01-01","time":"10:00"}]`))

	store := NewBlobStore(blob, nil)
	got, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, b := range got {
		assert.NotEmpty(t, b.ID)
	}
}

func TestBlobStore_MalformedPayloadIsEmpty(t *testing.T) {
	ctx := context.Background()

	for name, payload := range map[string]string{
		"garbage":    "{not json",
		"object":     `{"id":"x"}`,
		"whitespace": "   \n",
	} {
		t.Run(name, func(t *testing.T) {
			blob := NewMemoryBlob("")
			blob.Set([]byte(payload))
			store := NewBlobStore(blob, nil)

			got, err := store.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, got)

			require.NoError(t, store.Append(ctx, storetest.Booking("fresh", "2099-01-01", "10:00")))
			got, err = store.List(ctx)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "fresh", got[0].ID)
		})
	}
}

func TestBlobStore_WriteFailureKeepsPriorState(t *testing.T) {
	ctx := context.Background()
	blob := &flakyBlob{MemoryBlob: NewMemoryBlob("")}
	store := NewBlobStore(blob, nil)

	require.NoError(t, store.Append(ctx, storetest.Booking("a", "2099-01-01", "10:00")))

	blob.mu.Lock()
	blob.failWrite = true
	blob.mu.Unlock()

	err := store.Append(ctx, storetest.Booking("b", "2099-01-01", "11:00"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorage)

	_, err = store.RemoveByID(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrStorage)

	assert.ErrorIs(t, store.Clear(ctx), domain.ErrStorage)

	got, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
}

func TestBlobStore_ReadFailure(t *testing.T) {
	ctx := context.Background()
	blob := &flakyBlob{MemoryBlob: NewMemoryBlob(""), failRead: true}
	store := NewBlobStore(blob, nil)

	_, err := store.List(ctx)
	assert.ErrorIs(t, err, domain.ErrStorage)

	err = store.Append(ctx, storetest.Booking("a", "2099-01-01", "10:00"))
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.Zero(t, blob.writes)
}

func TestBlobStore_ClearWritesEmptyArray(t *testing.T) {
	ctx := context.Background()
	blob := NewMemoryBlob("")
	store := NewBlobStore(blob, nil)

	require.NoError(t, store.Append(ctx, storetest.Booking("a", "2099-01-01", "10:00")))
	require.NoError(t, store.Clear(ctx))

	raw, found, err := blob.Read(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, "[]", string(raw))
}

func TestMemoryBlob_KeyDefaultsToStorageKey(t *testing.T) {
	blob := NewMemoryBlob("")
	assert.Equal(t, models.StorageKey, blob.key)

	_, found, err := blob.Read(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
}
