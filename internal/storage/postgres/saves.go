package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/aviary/internal/save"
)

// SaveRepository stores save documents in the save_slots table. It implements
// save.Backend.
type SaveRepository struct {
	db *pgxpool.Pool
}

// NewSaveRepository creates a SaveRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSaveRepository(db *pgxpool.Pool) *SaveRepository {
	return &SaveRepository{db: db}
}

// Get returns the document stored for slot.
//
// Postcondition: Returns save.ErrSlotNotFound if the slot has never been written.
func (r *SaveRepository) Get(ctx context.Context, slot string) ([]byte, error) {
	var doc []byte
	err := r.db.QueryRow(ctx, `SELECT document FROM save_slots WHERE slot = $1`, slot).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, save.ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying save slot: %w", err)
	}
	return doc, nil
}

// Put upserts the document for slot.
func (r *SaveRepository) Put(ctx context.Context, slot string, data []byte) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO save_slots (slot, document, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (slot) DO UPDATE SET document = EXCLUDED.document, updated_at = NOW()`,
		slot, data,
	)
	if err != nil {
		return fmt.Errorf("upserting save slot: %w", err)
	}
	return nil
}

// Delete removes slot. Deleting an absent slot is not an error.
func (r *SaveRepository) Delete(ctx context.Context, slot string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM save_slots WHERE slot = $1`, slot); err != nil {
		return fmt.Errorf("deleting save slot: %w", err)
	}
	return nil
}

// Slots lists every stored slot in name order.
func (r *SaveRepository) Slots(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT slot FROM save_slots ORDER BY slot`)
	if err != nil {
		return nil, fmt.Errorf("listing save slots: %w", err)
	}
	slots, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning save slots: %w", err)
	}
	return slots, nil
}
