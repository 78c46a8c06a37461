// Package sqlite stores save documents in a SQLite database using the pure Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cory-johannsen/aviary/internal/save"
	"github.com/cory-johannsen/aviary/internal/storage/sqlite/migrations"
)

// Backend is a save.Backend over one SQLite database file.
type Backend struct {
	db *sql.DB
}

// Open opens the database at path and applies the embedded migrations. The
// path ":memory:" opens a private in-memory database.
//
// Postcondition: Returns a migrated Backend or a non-nil error.
func Open(ctx context.Context, path string) (*Backend, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Backend{db: db}, nil
}

// Close closes the database handle.
func (b *Backend) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Get implements save.Backend.
func (b *Backend) Get(ctx context.Context, slot string) ([]byte, error) {
	var doc []byte
	err := b.db.QueryRowContext(ctx, `SELECT document FROM save_slots WHERE slot = ?`, slot).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, save.ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get save slot: %w", err)
	}
	return doc, nil
}

// Put implements save.Backend.
func (b *Backend) Put(ctx context.Context, slot string, data []byte) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO save_slots (slot, document, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
		slot, data, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put save slot: %w", err)
	}
	return nil
}

// Delete implements save.Backend.
func (b *Backend) Delete(ctx context.Context, slot string) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM save_slots WHERE slot = ?`, slot); err != nil {
		return fmt.Errorf("delete save slot: %w", err)
	}
	return nil
}
