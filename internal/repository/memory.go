package repository

import (
	"context"
	"sync"

	"northline/internal/models"

	"github.com/rs/zerolog"
)

// MemoryBlob holds payloads in process memory under string keys, the way
// a browser keeps them in local storage.
type MemoryBlob struct {
	mu   sync.Mutex
	data map[string][]byte
	key  string
}

func NewMemoryBlob(key string) *MemoryBlob {
	if key == "" {
		key = models.StorageKey
	}
	return &MemoryBlob{data: make(map[string][]byte), key: key}
}

// NewMemoryStore returns a store that lives only as long as the process.
func NewMemoryStore(logger *zerolog.Logger, opts ...BlobOption) *BlobStore {
	return NewBlobStore(NewMemoryBlob(models.StorageKey), logger, opts...)
}

func (b *MemoryBlob) Read(_ context.Context) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	val, ok := b.data[b.key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, true, nil
}

func (b *MemoryBlob) Write(_ context.Context, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	val := make([]byte, len(data))
	copy(val, data)
	b.data[b.key] = val
	return nil
}

// Set replaces the raw payload, bypassing any store.
func (b *MemoryBlob) Set(data []byte) {
	_ = b.Write(context.Background(), data)
}
