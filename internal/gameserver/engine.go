// Package gameserver hosts the single-writer game engine: every command and
// idle tick is applied to the player state under one lock and persisted
// before the next one runs. The tick loop, battle sessions and the console
// all drive the state through an Engine.
package gameserver

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/aviary/internal/game/command"
	"github.com/cory-johannsen/aviary/internal/game/idle"
	"github.com/cory-johannsen/aviary/internal/game/player"
	"github.com/cory-johannsen/aviary/internal/save"
)

// Reducer applies one player action to st. It must not mutate st; a changed
// state is signalled by returning a different pointer.
type Reducer func(env *command.Env, st *player.State) (*player.State, command.Result)

// Engine serializes every state transition for one save slot.
//
// Invariant: state always holds the last transition's output, and that output
// has been handed to the store before the lock is released.
type Engine struct {
	mu    sync.Mutex
	state *player.State
	env   *command.Env
	store *save.Store
	slot  string
	// starter is the species granted whenever the roster is empty.
	starter string
	logger  *zap.Logger
}

// NewEngine loads slot from store and returns an Engine ready for commands.
//
// Precondition: env, store and logger must be non-nil; slot must be non-empty.
// Postcondition: the returned Engine holds the loaded (or fresh) state; an
// error is returned only when the backend itself failed.
func NewEngine(ctx context.Context, env *command.Env, store *save.Store, slot string, logger *zap.Logger) (*Engine, error) {
	if env == nil {
		panic("gameserver.NewEngine: env must not be nil")
	}
	if store == nil {
		panic("gameserver.NewEngine: store must not be nil")
	}
	if logger == nil {
		panic("gameserver.NewEngine: logger must not be nil")
	}
	if slot == "" {
		return nil, fmt.Errorf("gameserver: slot must not be empty")
	}
	st, err := store.Load(ctx, slot)
	if err != nil {
		return nil, fmt.Errorf("loading slot %q: %w", slot, err)
	}
	logger.Info("engine ready",
		zap.String("slot", slot),
		zap.Int("creatures", len(st.Creatures)),
		zap.Int("zone", st.Zone.Highest),
		zap.Int64("ticks", st.Ticks),
	)
	return &Engine{state: st, env: env, store: store, slot: slot, logger: logger}, nil
}

// SetStarter makes the engine grant a Common creature of species templateID
// to an empty roster: immediately, and again after every Reset. An empty id
// disables it.
//
// Postcondition: returns an error when templateID names no loaded species or
// persisting the granted starter failed.
func (e *Engine) SetStarter(ctx context.Context, templateID string) error {
	if _, ok := e.env.Templates[templateID]; templateID != "" && !ok {
		return fmt.Errorf("gameserver: unknown starter species %q", templateID)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.starter = templateID
	return e.grantStarter(ctx)
}

// grantStarter gives the starter to an empty roster. Callers hold mu.
func (e *Engine) grantStarter(ctx context.Context) error {
	if e.starter == "" {
		return nil
	}
	next, res := command.Starter(e.env, e.state, e.starter)
	if next == e.state {
		return nil
	}
	e.state = next
	e.logger.Info("starter granted",
		zap.String("slot", e.slot),
		zap.String("species", e.starter),
		zap.String("creature", res.Creature.ID),
	)
	if err := e.store.Save(ctx, e.slot, e.state); err != nil {
		return fmt.Errorf("starter: %w", err)
	}
	return nil
}

// Env returns the reducer environment.
func (e *Engine) Env() *command.Env { return e.env }

// Slot returns the save slot this engine writes.
func (e *Engine) Slot() string { return e.slot }

// Snapshot returns an independent copy of the current state.
func (e *Engine) Snapshot() *player.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Apply runs fn against the current state. A successful reducer replaces the
// state and persists it; a rejected one changes nothing.
//
// Postcondition: the returned error is non-nil only when persisting failed;
// the new state is kept in memory in that case and saved on the next write.
func (e *Engine) Apply(ctx context.Context, name string, fn Reducer) (command.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	next, res := fn(e.env, e.state)
	if next == e.state || next == nil {
		if !res.OK() {
			e.logger.Debug("command rejected",
				zap.String("command", name),
				zap.String("reason", string(res.Reason)),
			)
		}
		return res, nil
	}
	e.state = next
	if err := e.store.Save(ctx, e.slot, e.state); err != nil {
		return res, fmt.Errorf("%s: %w", name, err)
	}
	return res, nil
}

// Tick advances the state by one idle tick and persists it.
//
// Postcondition: the tick is applied even when persisting fails.
func (e *Engine) Tick(ctx context.Context) (idle.Report, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	next, rep := idle.Tick(e.env.Gen, e.state)
	e.state = next
	if err := e.store.Save(ctx, e.slot, e.state); err != nil {
		return rep, fmt.Errorf("tick %d: %w", e.state.Ticks, err)
	}
	return rep, nil
}

// Save persists the current state.
func (e *Engine) Save(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Save(ctx, e.slot, e.state)
}

// Reset wipes the slot and starts over from the fresh initial state, plus the
// starter when one is set.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.store.Reset(ctx, e.slot); err != nil {
		return err
	}
	e.state = player.New(e.env.Tables)
	return e.grantStarter(ctx)
}
