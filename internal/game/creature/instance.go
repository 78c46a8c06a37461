package creature

import (
	"slices"

	"github.com/cory-johannsen/aviary/internal/game/rarity"
)

// Slot identifies one of the two fixed gear slots on a creature.
type Slot string

const (
	// SlotBeak is the primary-weapon slot.
	SlotBeak Slot = "beak"
	// SlotTalons is the secondary-weapon slot. Gear here enables bleed.
	SlotTalons Slot = "talons"
)

// Slots returns both gear slots.
func Slots() []Slot { return []Slot{SlotBeak, SlotTalons} }

// Valid reports whether s is a known slot.
func (s Slot) Valid() bool { return s == SlotBeak || s == SlotTalons }

// Instance is an owned, mutable creature.
//
// Invariant: XP < XPToNext; Level >= 1 and never decreases.
type Instance struct {
	ID         string      `json:"id"`
	TemplateID string      `json:"template_id"`
	Name       string      `json:"name"`
	Rarity     rarity.Tier `json:"rarity"`
	// RarityMultiplier is the value sampled within Rarity's range at creation.
	RarityMultiplier float64 `json:"rarity_multiplier"`
	// Base is the rolled stat block.
	Base Stats `json:"base"`
	// Allocated holds the gains from spent stat points.
	Allocated   Stats   `json:"allocated"`
	Level       int     `json:"level"`
	XP          int     `json:"xp"`
	XPToNext    int     `json:"xp_to_next"`
	StatPoints  int     `json:"stat_points"`
	EnergyRegen float64 `json:"energy_regen"`
	Moves       []Move  `json:"moves"`
	Passive     Passive `json:"passive"`
	Hunting     Hunting `json:"hunting"`
	// Equipped maps a slot to the id of the gear in it.
	Equipped map[Slot]string `json:"equipped"`
}

// Stats returns the base stats plus allocations, excluding gear.
func (i *Instance) Stats() Stats {
	return i.Base.Plus(i.Allocated)
}

// MoveByID returns the instance move with id, including the built-in rest move.
func (i *Instance) MoveByID(id string) (Move, bool) {
	return findMove(i.Moves, id)
}

// EquippedIn returns the gear id in slot, or "" if empty.
func (i *Instance) EquippedIn(slot Slot) string {
	if i.Equipped == nil {
		return ""
	}
	return i.Equipped[slot]
}

// Clone returns a deep copy of i.
//
// Postcondition: mutating the copy never affects i.
func (i *Instance) Clone() *Instance {
	out := *i
	out.Moves = slices.Clone(i.Moves)
	out.Equipped = make(map[Slot]string, len(i.Equipped))
	for k, v := range i.Equipped {
		out.Equipped[k] = v
	}
	return &out
}
