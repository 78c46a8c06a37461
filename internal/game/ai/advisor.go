// Package ai provides opponent move advisors for combat: a Lua script
// advisor, a Claude-backed advisor and a uniform random advisor. Every
// advisor implements combat.Advisor; combat.Advise enforces the timeout and
// the random fallback.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cory-johannsen/aviary/internal/game/combat"
)

// ChooseMoveHook is the Lua global a script advisor must define.
const ChooseMoveHook = "choose_move"

// ErrNoAdvice is returned when an advisor produced no usable answer.
var ErrNoAdvice = errors.New("advisor produced no move")

// ScriptCaller is the interface required by ScriptAdvisor to evaluate Lua hooks.
type ScriptCaller interface {
	// CallJSON calls a named Lua function in the key's VM with a JSON-shaped
	// payload. Returns (nil, nil) if the function is not defined.
	CallJSON(ctx context.Context, key, hook string, payload any) (any, error)
}

// ScriptAdvisor asks a Lua choose_move(view) hook for the opponent's move.
//
// Invariant: caller must not be nil.
type ScriptAdvisor struct {
	caller ScriptCaller
	key    string
}

// NewScriptAdvisor constructs a ScriptAdvisor for the script set under key.
//
// Precondition: caller must not be nil.
func NewScriptAdvisor(caller ScriptCaller, key string) *ScriptAdvisor {
	if caller == nil {
		panic("ai.NewScriptAdvisor: caller must not be nil")
	}
	return &ScriptAdvisor{caller: caller, key: key}
}

// Choose implements combat.Advisor. The hook receives the view with the same
// field names as its JSON encoding and may return either a move id string or
// a table {moveId = ..., altitudeDelta = ...}.
func (a *ScriptAdvisor) Choose(ctx context.Context, v combat.View) (combat.Choice, error) {
	payload, err := viewPayload(v)
	if err != nil {
		return combat.Choice{}, err
	}
	out, err := a.caller.CallJSON(ctx, a.key, ChooseMoveHook, payload)
	if err != nil {
		return combat.Choice{}, err
	}
	return choiceFromValue(out)
}

func viewPayload(v combat.View) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding view: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decoding view: %w", err)
	}
	return payload, nil
}

func choiceFromValue(out any) (combat.Choice, error) {
	switch x := out.(type) {
	case string:
		if x == "" {
			return combat.Choice{}, ErrNoAdvice
		}
		return combat.Choice{MoveID: x}, nil
	case map[string]any:
		id, _ := x["moveId"].(string)
		if id == "" {
			return combat.Choice{}, ErrNoAdvice
		}
		c := combat.Choice{MoveID: id}
		if d, ok := x["altitudeDelta"].(float64); ok {
			c.AltitudeDelta = int(d)
		}
		return c, nil
	default:
		return combat.Choice{}, ErrNoAdvice
	}
}
