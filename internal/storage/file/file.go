// Package file stores save documents as one JSON file per slot.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/cory-johannsen/aviary/internal/save"
)

var slotPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Backend is a save.Backend rooted at a directory.
type Backend struct {
	dir string
}

// New returns a Backend writing under dir, creating it if needed.
//
// Postcondition: Returns a usable Backend or a non-nil error.
func New(dir string) (*Backend, error) {
	if dir == "" {
		return nil, errors.New("save directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating save directory %q: %w", dir, err)
	}
	return &Backend{dir: dir}, nil
}

func (b *Backend) path(slot string) (string, error) {
	if !slotPattern.MatchString(slot) {
		return "", fmt.Errorf("invalid slot name %q", slot)
	}
	return filepath.Join(b.dir, slot+".json"), nil
}

// Get implements save.Backend.
func (b *Backend) Get(ctx context.Context, slot string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := b.path(slot)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, save.ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", p, err)
	}
	return data, nil
}

// Put implements save.Backend. The document is written to a temporary file
// and renamed over the slot so a crash never leaves a partial save.
func (b *Backend) Put(ctx context.Context, slot string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := b.path(slot)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(b.dir, slot+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("replacing %q: %w", p, err)
	}
	return nil
}

// Delete implements save.Backend.
func (b *Backend) Delete(ctx context.Context, slot string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := b.path(slot)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing %q: %w", p, err)
	}
	return nil
}
