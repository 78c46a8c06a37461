package inventory

import (
	"slices"

	"github.com/cory-johannsen/aviary/internal/game/creature"
	"github.com/cory-johannsen/aviary/internal/game/rarity"
)

// PrefixKind names the special property a gear prefix grants.
type PrefixKind string

const (
	// PrefixCritChance grants a critical hit chance equal to Magnitude (0-1).
	PrefixCritChance PrefixKind = "crit_chance"
	// PrefixBonusAttack adds Magnitude flat attack.
	PrefixBonusAttack PrefixKind = "bonus_attack"
	// PrefixBleed adds Magnitude to per-turn bleed damage.
	PrefixBleed PrefixKind = "bleed"
)

// PrefixKinds returns all prefix kinds.
func PrefixKinds() []PrefixKind {
	return []PrefixKind{PrefixCritChance, PrefixBonusAttack, PrefixBleed}
}

// Prefix is an optional special property on gear.
type Prefix struct {
	Kind      PrefixKind `json:"kind"`
	Magnitude float64    `json:"magnitude"`
}

// StatBonus is a flat stat increase carried by gear.
type StatBonus struct {
	Stat   creature.Stat `json:"stat"`
	Value  int           `json:"value"`
	Rarity rarity.Tier   `json:"rarity"`
}

// Socket may hold one gem.
type Socket struct {
	Gem *Gem `json:"gem,omitempty"`
}

// Gear is a craftable piece of equipment for one creature slot.
//
// Invariant: OwnerID is empty iff the gear sits in the inventory; an owned piece
// is referenced by exactly its owner's Equipped map.
type Gear struct {
	ID      string        `json:"id"`
	Slot    creature.Slot `json:"slot"`
	Rarity  rarity.Tier   `json:"rarity"`
	Attack  int           `json:"attack"`
	Prefix  *Prefix       `json:"prefix,omitempty"`
	Bonuses []StatBonus   `json:"bonuses"`
	Sockets []Socket      `json:"sockets"`
	OwnerID string        `json:"owner_id,omitempty"`
}

// Equipped reports whether g is owned by a creature.
func (g *Gear) Equipped() bool { return g.OwnerID != "" }

// EffectiveAttack returns flat attack plus any bonus_attack prefix, rounded down.
func (g *Gear) EffectiveAttack() int {
	a := g.Attack
	if g.Prefix != nil && g.Prefix.Kind == PrefixBonusAttack {
		a += int(g.Prefix.Magnitude)
	}
	return a
}

// CritChance returns the crit chance granted by a crit_chance prefix, else 0.
func (g *Gear) CritChance() float64 {
	if g.Prefix != nil && g.Prefix.Kind == PrefixCritChance {
		return g.Prefix.Magnitude
	}
	return 0
}

// BleedBonus returns the extra bleed damage granted by a bleed prefix, else 0.
func (g *Gear) BleedBonus() float64 {
	if g.Prefix != nil && g.Prefix.Kind == PrefixBleed {
		return g.Prefix.Magnitude
	}
	return 0
}

// StatTotals sums the stat bonuses on g.
func (g *Gear) StatTotals() creature.Stats {
	var s creature.Stats
	for _, b := range g.Bonuses {
		s = s.With(b.Stat, b.Value)
	}
	return s
}

// Buffs sums the buffs of every socketed gem.
func (g *Gear) Buffs() BuffTotals {
	var t BuffTotals
	for _, s := range g.Sockets {
		if s.Gem == nil {
			continue
		}
		for _, b := range s.Gem.Buffs {
			t.Add(b)
		}
	}
	return t
}

// Gems returns the socketed gems in socket order.
func (g *Gear) Gems() []*Gem {
	var out []*Gem
	for _, s := range g.Sockets {
		if s.Gem != nil {
			out = append(out, s.Gem)
		}
	}
	return out
}

// FreeSocket returns the index of the first empty socket, or -1.
func (g *Gear) FreeSocket() int {
	for i, s := range g.Sockets {
		if s.Gem == nil {
			return i
		}
	}
	return -1
}

// Insert places gem into the first empty socket.
//
// Precondition: gem must not be nil.
// Postcondition: Returns false and leaves g unchanged if every socket is full.
func (g *Gear) Insert(gem *Gem) bool {
	i := g.FreeSocket()
	if i < 0 {
		return false
	}
	g.Sockets[i].Gem = gem
	return true
}

// Remove empties socket index and returns its gem.
//
// Postcondition: Returns (nil, false) if index is out of range or the socket is empty.
func (g *Gear) Remove(index int) (*Gem, bool) {
	if index < 0 || index >= len(g.Sockets) || g.Sockets[index].Gem == nil {
		return nil, false
	}
	gem := g.Sockets[index].Gem
	g.Sockets[index].Gem = nil
	return gem, true
}

// Clone returns a deep copy of g including socketed gems.
func (g *Gear) Clone() *Gear {
	out := *g
	if g.Prefix != nil {
		p := *g.Prefix
		out.Prefix = &p
	}
	out.Bonuses = slices.Clone(g.Bonuses)
	if g.Sockets == nil {
		return &out
	}
	out.Sockets = make([]Socket, len(g.Sockets))
	for i, s := range g.Sockets {
		if s.Gem != nil {
			out.Sockets[i].Gem = s.Gem.Clone()
		}
	}
	return &out
}
