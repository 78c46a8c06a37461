// Package save persists player states as versioned JSON documents. Loading
// migrates older documents forward and never fails on malformed data: an
// unreadable document yields the fresh initial state.
package save

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/cory-johannsen/aviary/internal/game/balance"
	"github.com/cory-johannsen/aviary/internal/game/player"
)

// envelope is the persisted document shape. Checksum is the blake2b-256 of
// the exact State bytes.
type envelope struct {
	Version  int             `json:"version"`
	Checksum string          `json:"checksum,omitempty"`
	State    json.RawMessage `json:"state"`
}

// ErrChecksum is returned by Decode when a document's state does not match its
// recorded checksum.
var ErrChecksum = errors.New("save checksum mismatch")

// Checksum returns the hex blake2b-256 digest of state.
func Checksum(state []byte) string {
	sum := blake2b.Sum256(state)
	return hex.EncodeToString(sum[:])
}

// Encode serializes st as a current-version document.
//
// Precondition: st must not be nil.
func Encode(st *player.State) ([]byte, error) {
	cp := st.Clone()
	cp.Version = player.SchemaVersion
	state, err := json.Marshal(cp)
	if err != nil {
		return nil, fmt.Errorf("encoding state: %w", err)
	}
	return json.Marshal(envelope{Version: player.SchemaVersion, Checksum: Checksum(state), State: state})
}

// Decode parses a document of any supported version. A bare state object
// without an envelope is treated as version 1. Entries that cannot be decoded
// are dropped individually.
//
// Postcondition: on success the returned state is normalized and at
// player.SchemaVersion.
func Decode(data []byte) (*player.State, error) {
	st, _, err := decode(data)
	return st, err
}

// decode is Decode that also reports the paths of the dropped entries.
func decode(data []byte) (*player.State, []string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("parsing save document: %w", err)
	}
	if raw == nil {
		return nil, nil, errors.New("save document is null")
	}
	version, body := 1, data
	if state, ok := raw["state"]; ok {
		var v float64
		if err := json.Unmarshal(raw["version"], &v); err != nil || v != math.Trunc(v) || v > math.MaxInt32 || v < math.MinInt32 {
			return nil, nil, fmt.Errorf("save version %s is not an integer", raw["version"])
		}
		if sum, ok := raw["checksum"]; ok {
			var want string
			if err := json.Unmarshal(sum, &want); err != nil || want != Checksum(state) {
				return nil, nil, ErrChecksum
			}
		}
		version, body = int(v), state
	}
	var doc Doc
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, nil, fmt.Errorf("parsing save state: %w", err)
	}
	if doc == nil {
		return nil, nil, errors.New("save state is null")
	}
	migrated, err := Migrate(doc, version)
	if err != nil {
		return nil, nil, err
	}
	dropped := sanitize(migrated)
	buf, err := json.Marshal(migrated)
	if err != nil {
		return nil, nil, fmt.Errorf("re-encoding migrated state: %w", err)
	}
	var st player.State
	if err := json.Unmarshal(buf, &st); err != nil {
		return nil, nil, fmt.Errorf("decoding state: %w", err)
	}
	st.Version = player.SchemaVersion
	st.Normalize()
	return &st, dropped, nil
}

// Store loads and saves player states through a Backend.
type Store struct {
	backend Backend
	tables  *balance.Tables
	logger  *zap.Logger
}

// NewStore creates a Store.
//
// Precondition: backend, tables and logger must not be nil.
func NewStore(backend Backend, tables *balance.Tables, logger *zap.Logger) *Store {
	if backend == nil || tables == nil || logger == nil {
		panic("save.NewStore: backend, tables and logger must not be nil")
	}
	return &Store{backend: backend, tables: tables, logger: logger}
}

// Load returns the state stored in slot. An absent slot yields the fresh
// state; an unreadable document yields the fresh state and a warning log.
//
// Postcondition: the returned error is non-nil only for backend failures.
func (s *Store) Load(ctx context.Context, slot string) (*player.State, error) {
	data, err := s.backend.Get(ctx, slot)
	if errors.Is(err, ErrSlotNotFound) {
		s.logger.Info("new save slot", zap.String("slot", slot))
		return player.New(s.tables), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading slot %q: %w", slot, err)
	}
	st, dropped, err := decode(data)
	if err != nil {
		s.logger.Warn("discarding unreadable save",
			zap.String("slot", slot),
			zap.Int("bytes", len(data)),
			zap.Error(err),
		)
		return player.New(s.tables), nil
	}
	if len(dropped) > 0 {
		s.logger.Warn("dropped unreadable save entries", zap.String("slot", slot), zap.Strings("entries", dropped))
	}
	if levels := st.SettleLevels(s.tables.Level); levels > 0 {
		s.logger.Info("rolled stored experience into levels", zap.String("slot", slot), zap.Int("levels", levels))
	}
	s.logger.Debug("save loaded", zap.String("slot", slot), zap.Int64("ticks", st.Ticks))
	return st, nil
}

// Save writes st to slot.
func (s *Store) Save(ctx context.Context, slot string, st *player.State) error {
	data, err := Encode(st)
	if err != nil {
		return err
	}
	if err := s.backend.Put(ctx, slot, data); err != nil {
		return fmt.Errorf("writing slot %q: %w", slot, err)
	}
	return nil
}

// Reset wipes slot. The next Load returns the fresh state.
func (s *Store) Reset(ctx context.Context, slot string) error {
	if err := s.backend.Delete(ctx, slot); err != nil && !errors.Is(err, ErrSlotNotFound) {
		return fmt.Errorf("deleting slot %q: %w", slot, err)
	}
	s.logger.Info("save slot reset", zap.String("slot", slot))
	return nil
}

// Preview summarizes slot without loading it as the active game.
//
// Postcondition: returns nil, nil when the slot is absent or unreadable.
func (s *Store) Preview(ctx context.Context, slot string) (*player.Summary, error) {
	data, err := s.backend.Get(ctx, slot)
	if errors.Is(err, ErrSlotNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading slot %q: %w", slot, err)
	}
	st, err := Decode(data)
	if err != nil {
		return nil, nil
	}
	st.SettleLevels(s.tables.Level)
	sum := st.Summary()
	return &sum, nil
}
