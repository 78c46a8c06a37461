package command

import (
	"slices"
	"strings"

	"github.com/cory-johannsen/aviary/internal/game/balance"
	"github.com/cory-johannsen/aviary/internal/game/creature"
	"github.com/cory-johannsen/aviary/internal/game/forge"
	"github.com/cory-johannsen/aviary/internal/game/inventory"
	"github.com/cory-johannsen/aviary/internal/game/reward"
)

// Reason explains why a reducer left the state unchanged. The empty Reason
// means success.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonInsufficientFunds Reason = "insufficient_funds"
	ReasonNotFound          Reason = "not_found"
	ReasonLocked            Reason = "locked"
	ReasonInvalid           Reason = "invalid"
	ReasonLimit             Reason = "limit_reached"
	ReasonConflict          Reason = "conflict"
	ReasonMaxLevel          Reason = "max_level"
)

// Result is what a reducer produced. Reducers never fail: on a no-op they
// return the unchanged state and a Result carrying only a Reason.
type Result struct {
	Reason   Reason
	Gear     *inventory.Gear
	Gem      *inventory.Gem
	Creature *creature.Instance
	// Returned holds gems sent back to the inventory as a side effect.
	Returned []*inventory.Gem
	// Feathers is the salvage value credited by a sale.
	Feathers     int
	Reward       *reward.Reward
	Outcome      *reward.Outcome
	Achievements []balance.Achievement
}

// OK reports whether the reducer applied a change.
func (r Result) OK() bool { return r.Reason == ReasonNone }

func fail(reason Reason) Result { return Result{Reason: reason} }

// Env bundles what reducers need besides the state.
type Env struct {
	Gen       *forge.Generator
	Tables    *balance.Tables
	Rewards   *reward.Calculator
	Templates map[string]*creature.Template
	// Species lists the templates sorted by id, the opponent roster.
	Species []*creature.Template
}

// NewEnv builds an Env from a generator and the loaded species.
//
// Precondition: gen must not be nil.
func NewEnv(gen *forge.Generator, templates []*creature.Template) *Env {
	byID := make(map[string]*creature.Template, len(templates))
	species := slices.Clone(templates)
	for _, t := range templates {
		byID[t.ID] = t
	}
	slices.SortFunc(species, func(a, b *creature.Template) int { return strings.Compare(a.ID, b.ID) })
	return &Env{Gen: gen, Tables: gen.Tables(), Rewards: reward.NewCalculator(gen), Templates: byID, Species: species}
}
