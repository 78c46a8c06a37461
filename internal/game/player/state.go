// Package player holds the PlayerState aggregate: the wallet, the creature
// roster, gear, gems, consumables, upgrades and progression. Reducers in the
// command package operate on clones of a State; queries here never mutate.
package player

import (
	"slices"

	"github.com/cory-johannsen/aviary/internal/game/balance"
	"github.com/cory-johannsen/aviary/internal/game/creature"
	"github.com/cory-johannsen/aviary/internal/game/inventory"
	"github.com/cory-johannsen/aviary/internal/game/rarity"
)

// SchemaVersion is the current persisted document version.
const SchemaVersion = 3

// Unlock names a subsystem gated by zone progress.
type Unlock string

const (
	UnlockHunting Unlock = "hunting"
	UnlockGems    Unlock = "gems"
)

// ZoneProgress tracks the highest unlocked zone and the opponent tiers
// defeated in it so far.
type ZoneProgress struct {
	Highest   int           `json:"highest"`
	Collected []rarity.Tier `json:"collected"`
}

// Has reports whether tier t has been collected in the current zone.
func (z ZoneProgress) Has(t rarity.Tier) bool { return slices.Contains(z.Collected, t) }

// State is the complete persisted player aggregate.
//
// Invariant: every gear OwnerID names a creature in Creatures whose Equipped
// map points back at the gear; Party and Hunting are disjoint subsets of
// creature ids.
type State struct {
	Version      int                     `json:"version"`
	Wallet       inventory.Wallet        `json:"wallet"`
	Creatures    []*creature.Instance    `json:"creatures"`
	Party        []string                `json:"party"`
	Hunting      []string                `json:"hunting"`
	Gear         []*inventory.Gear       `json:"gear"`
	Gems         []*inventory.Gem        `json:"gems"`
	Consumables  inventory.Stacks        `json:"consumables"`
	Buffs        inventory.Buffs         `json:"buffs"`
	Upgrades     map[balance.Upgrade]int `json:"upgrades"`
	Unlocks      map[Unlock]bool         `json:"unlocks"`
	Stats        map[balance.StatKey]int `json:"stats"`
	Achievements []string                `json:"achievements"`
	Zone         ZoneProgress            `json:"zone"`
	// HuntCarry is the fractional coin yield not yet credited.
	HuntCarry float64 `json:"hunt_carry"`
	Ticks     int64   `json:"ticks"`
}

// New returns the fresh initial state: the starting wallet, zone 1 and
// nothing else.
//
// Precondition: t must not be nil.
func New(t *balance.Tables) *State {
	s := &State{
		Version: SchemaVersion,
		Wallet:  t.Economy.StartingWallet,
		Zone:    ZoneProgress{Highest: 1},
	}
	s.Normalize()
	return s
}

// Clone returns a deep copy of s.
//
// Postcondition: mutating the copy never affects s.
func (s *State) Clone() *State {
	out := *s
	out.Creatures = cloneEach(s.Creatures, (*creature.Instance).Clone)
	out.Party = slices.Clone(s.Party)
	out.Hunting = slices.Clone(s.Hunting)
	out.Gear = cloneEach(s.Gear, (*inventory.Gear).Clone)
	out.Gems = cloneEach(s.Gems, (*inventory.Gem).Clone)
	out.Consumables = s.Consumables.Clone()
	out.Buffs = s.Buffs.Clone()
	out.Upgrades = cloneMap(s.Upgrades)
	out.Unlocks = cloneMap(s.Unlocks)
	out.Stats = cloneMap(s.Stats)
	out.Achievements = slices.Clone(s.Achievements)
	out.Zone.Collected = slices.Clone(s.Zone.Collected)
	return &out
}

func cloneEach[T any](in []T, clone func(T) T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = clone(v)
	}
	return out
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Normalize fills missing sections with safe defaults and repairs dangling
// references, so that a partially shaped document becomes a valid State.
//
// Postcondition: all maps are non-nil; Zone.Highest >= 1; Party and Hunting
// reference existing creatures only and are disjoint; gear owners and
// creature equipment agree; every gem id appears in at most one place.
func (s *State) Normalize() {
	if s.Version == 0 {
		s.Version = SchemaVersion
	}
	if s.Upgrades == nil {
		s.Upgrades = map[balance.Upgrade]int{}
	}
	if s.Unlocks == nil {
		s.Unlocks = map[Unlock]bool{}
	}
	if s.Stats == nil {
		s.Stats = map[balance.StatKey]int{}
	}
	if s.Buffs == nil {
		s.Buffs = inventory.Buffs{}
	}
	if s.Zone.Highest < 1 {
		s.Zone.Highest = 1
	}
	s.Wallet = inventory.Wallet{
		Coins:    max(s.Wallet.Coins, 0),
		Feathers: max(s.Wallet.Feathers, 0),
		Crystals: max(s.Wallet.Crystals, 0),
	}
	if !(s.HuntCarry >= 0 && s.HuntCarry < 1) {
		s.HuntCarry = 0
	}
	s.Creatures = slices.DeleteFunc(s.Creatures, func(c *creature.Instance) bool { return c == nil || c.ID == "" })
	s.Gear = slices.DeleteFunc(s.Gear, func(g *inventory.Gear) bool { return g == nil || g.ID == "" })
	s.Gems = slices.DeleteFunc(s.Gems, func(g *inventory.Gem) bool { return g == nil })

	known := make(map[string]*creature.Instance, len(s.Creatures))
	for _, c := range s.Creatures {
		if c.Level < 1 {
			c.Level = 1
		}
		if c.Equipped == nil {
			c.Equipped = map[creature.Slot]string{}
		}
		known[c.ID] = c
	}
	s.Party = filterIDs(s.Party, known, nil)
	s.Hunting = filterIDs(s.Hunting, known, s.Party)

	gear := make(map[string]*inventory.Gear, len(s.Gear))
	for _, g := range s.Gear {
		gear[g.ID] = g
		if g.OwnerID == "" {
			continue
		}
		owner, ok := known[g.OwnerID]
		if !ok || owner.Equipped[g.Slot] != g.ID {
			g.OwnerID = ""
		}
	}
	for _, c := range s.Creatures {
		for slot, id := range c.Equipped {
			if g, ok := gear[id]; !ok || g.OwnerID != c.ID || g.Slot != slot {
				delete(c.Equipped, slot)
			}
		}
	}
	s.dedupeGems()
}

// dedupeGems keeps each gem id in one place. Sockets win over the loose
// inventory; among sockets the first in gear order wins.
func (s *State) dedupeGems() {
	placed := map[string]bool{}
	for _, g := range s.Gear {
		for i := range g.Sockets {
			gem := g.Sockets[i].Gem
			if gem == nil || gem.ID == "" {
				continue
			}
			if placed[gem.ID] {
				g.Sockets[i].Gem = nil
				continue
			}
			placed[gem.ID] = true
		}
	}
	s.Gems = slices.DeleteFunc(s.Gems, func(g *inventory.Gem) bool {
		if g.ID == "" {
			return false
		}
		if placed[g.ID] {
			return true
		}
		placed[g.ID] = true
		return false
	})
}

// SettleLevels repairs every creature's experience against t so that each
// holds less experience than its next level needs.
//
// Postcondition: returns the total number of levels rolled forward.
func (s *State) SettleLevels(t creature.LevelTable) int {
	gained := 0
	for _, c := range s.Creatures {
		gained += c.Settle(t)
	}
	return gained
}

func filterIDs(ids []string, known map[string]*creature.Instance, exclude []string) []string {
	var out []string
	for _, id := range ids {
		if _, ok := known[id]; ok && !slices.Contains(out, id) && !slices.Contains(exclude, id) {
			out = append(out, id)
		}
	}
	return out
}
