package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"northline/internal/config"
	"northline/internal/repository/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupService(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.Append(ctx, storetest.Booking("snap", "2099-01-01", "10:00")))

	storagePath := filepath.Join(t.TempDir(), "backups")
	s := NewBackupService(db, config.BackupConfig{
		Enabled:       true,
		StoragePath:   storagePath,
		RetentionDays: 1,
	}, nil)

	var backupPath string
	t.Run("PerformBackup", func(t *testing.T) {
		path, err := s.PerformBackup(ctx)
		require.NoError(t, err)
		backupPath = path
		assert.FileExists(t, path)

		restored, err := NewDB(path, nil)
		require.NoError(t, err)
		defer restored.Close()

		got, err := restored.List(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "snap", got[0].ID)
	})

	t.Run("CleanupOldBackups", func(t *testing.T) {
		oldFile := filepath.Join(storagePath, backupPrefix+"old.db")
		require.NoError(t, os.WriteFile(oldFile, []byte("old"), 0o644))
		unrelated := filepath.Join(storagePath, "notes.txt")
		require.NoError(t, os.WriteFile(unrelated, []byte("keep"), 0o644))

		oldTime := time.Now().AddDate(0, 0, -2)
		require.NoError(t, os.Chtimes(oldFile, oldTime, oldTime))
		require.NoError(t, os.Chtimes(unrelated, oldTime, oldTime))

		assert.Equal(t, 1, s.CleanupOldBackups())

		assert.NoFileExists(t, oldFile)
		assert.FileExists(t, unrelated)
		assert.FileExists(t, backupPath)
	})
}

func TestBackupService_Disabled(t *testing.T) {
	s := NewBackupService(setupTestDB(t), config.BackupConfig{Enabled: false}, nil)

	done := make(chan struct{})
	go func() {
		s.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled backup service should return immediately")
	}
}

func TestBackupService_StopsOnCancel(t *testing.T) {
	s := NewBackupService(setupTestDB(t), config.BackupConfig{
		Enabled:     true,
		Schedule:    "1h",
		StoragePath: t.TempDir(),
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("backup service did not stop")
	}
}
