package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// FileBlob persists the collection as a JSON file. Writes replace the file
// atomically through a temporary sibling.
type FileBlob struct {
	path string
}

// NewFileStore opens the JSON file at path, creating it with an empty
// array if it does not exist.
func NewFileStore(path string, logger *zerolog.Logger, opts ...BlobOption) (*BlobStore, error) {
	blob, err := NewFileBlob(path)
	if err != nil {
		return nil, err
	}
	opts = append([]BlobOption{WithIndent("  ")}, opts...)
	return NewBlobStore(blob, logger, opts...), nil
}

func NewFileBlob(path string) (*FileBlob, error) {
	if path == "" {
		return nil, errors.New("bookings file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	_, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
			return nil, fmt.Errorf("create bookings file: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("stat bookings file: %w", err)
	}

	return &FileBlob{path: path}, nil
}

func (b *FileBlob) Path() string {
	return b.path
}

func (b *FileBlob) Read(ctx context.Context) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (b *FileBlob) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(b.path), ".bookings-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op once renamed
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		return fmt.Errorf("replace bookings file: %w", err)
	}
	return nil
}
