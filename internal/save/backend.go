package save

import (
	"context"
	"errors"
	"slices"
	"sync"
)

// ErrSlotNotFound is returned by a Backend when no document is stored for a slot.
var ErrSlotNotFound = errors.New("save slot not found")

// Backend stores raw save documents by slot.
type Backend interface {
	// Get returns the document stored for slot, or ErrSlotNotFound.
	Get(ctx context.Context, slot string) ([]byte, error)
	// Put replaces the document stored for slot.
	Put(ctx context.Context, slot string, data []byte) error
	// Delete removes slot. Deleting an absent slot is not an error.
	Delete(ctx context.Context, slot string) error
}

// MemoryBackend is an in-process Backend, safe for concurrent use.
type MemoryBackend struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{slots: make(map[string][]byte)}
}

// Get implements Backend.
func (m *MemoryBackend) Get(ctx context.Context, slot string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.slots[slot]
	if !ok {
		return nil, ErrSlotNotFound
	}
	return slices.Clone(data), nil
}

// Put implements Backend.
func (m *MemoryBackend) Put(ctx context.Context, slot string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slot] = slices.Clone(data)
	return nil
}

// Delete implements Backend.
func (m *MemoryBackend) Delete(ctx context.Context, slot string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slots, slot)
	return nil
}
