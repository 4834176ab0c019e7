package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"northline/internal/domain"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

var _ domain.Store = (*DB)(nil)

// DB is the SQLite-backed booking store.
type DB struct {
	*sql.DB
	path   string
	mu     sync.RWMutex
	ids    func() string
	logger zerolog.Logger
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection keeps :memory: databases shared and writes ordered
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{
		DB:     sqlDB,
		path:   path,
		ids:    uuid.NewString,
		logger: zerolog.Nop(),
	}
	if logger != nil {
		db.logger = logger.With().Str("component", "sqlite").Logger()
	}

	if err := db.createTables(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	db.logger.Info().Str("path", path).Msg("Database initialized")
	return db, nil
}

// Path is the file the database was opened from.
func (db *DB) Path() string {
	return db.path
}

func (db *DB) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS bookings (
            seq INTEGER PRIMARY KEY AUTOINCREMENT,
            id TEXT NOT NULL DEFAULT '',
            name TEXT NOT NULL DEFAULT '',
            email TEXT NOT NULL DEFAULT '',
            phone TEXT NOT NULL DEFAULT '',
            service TEXT NOT NULL DEFAULT '',
            date TEXT NOT NULL DEFAULT '',
            time TEXT NOT NULL DEFAULT '',
            notes TEXT NOT NULL DEFAULT '',
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		// empty ids are legacy rows awaiting repair, so uniqueness skips them
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_id ON bookings(id) WHERE id <> ''`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_slot ON bookings(date, time)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}
