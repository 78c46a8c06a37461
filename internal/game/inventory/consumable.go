package inventory

import (
	"github.com/cory-johannsen/aviary/internal/game/rarity"
)

// ConsumableType names the multiplier a consumable applies while active.
type ConsumableType string

const (
	// CoinRush multiplies battle coin rewards.
	CoinRush ConsumableType = "coin_rush"
	// XPSurge multiplies battle experience.
	XPSurge ConsumableType = "xp_surge"
	// HuntFrenzy multiplies idle hunting yield.
	HuntFrenzy ConsumableType = "hunt_frenzy"
)

// ConsumableTypes returns every consumable type.
func ConsumableTypes() []ConsumableType {
	return []ConsumableType{CoinRush, XPSurge, HuntFrenzy}
}

// Valid reports whether c is a known type.
func (c ConsumableType) Valid() bool {
	return c == CoinRush || c == XPSurge || c == HuntFrenzy
}

// Stack is a count of identical unused consumables.
type Stack struct {
	Type   ConsumableType `json:"type"`
	Rarity rarity.Tier    `json:"rarity"`
	Count  int            `json:"count"`
}

// Stacks is the consumable inventory. Each (type, rarity) pair appears at most once.
type Stacks []Stack

// Count returns how many consumables of type c and rarity r are held.
func (s Stacks) Count(c ConsumableType, r rarity.Tier) int {
	for _, st := range s {
		if st.Type == c && st.Rarity == r {
			return st.Count
		}
	}
	return 0
}

// Add returns s with n more of (c, r). Non-positive n is ignored.
func (s Stacks) Add(c ConsumableType, r rarity.Tier, n int) Stacks {
	if n <= 0 {
		return s
	}
	for i := range s {
		if s[i].Type == c && s[i].Rarity == r {
			s[i].Count += n
			return s
		}
	}
	return append(s, Stack{Type: c, Rarity: r, Count: n})
}

// Take removes one of (c, r), dropping the stack when it empties.
//
// Postcondition: Returns (s, false) unchanged if none are held.
func (s Stacks) Take(c ConsumableType, r rarity.Tier) (Stacks, bool) {
	for i := range s {
		if s[i].Type != c || s[i].Rarity != r || s[i].Count <= 0 {
			continue
		}
		s[i].Count--
		if s[i].Count == 0 {
			s = append(s[:i], s[i+1:]...)
		}
		return s, true
	}
	return s, false
}

// Clone returns an independent copy of s.
func (s Stacks) Clone() Stacks {
	if s == nil {
		return nil
	}
	return append(Stacks(nil), s...)
}

// BuffSpec is one row of the consumable duration/multiplier table.
type BuffSpec struct {
	DurationTicks int     `yaml:"duration_ticks" json:"duration_ticks"`
	Multiplier    float64 `yaml:"multiplier" json:"multiplier"`
}

// ActiveBuff is a consumable currently in effect.
type ActiveBuff struct {
	Type           ConsumableType `json:"type"`
	Rarity         rarity.Tier    `json:"rarity"`
	RemainingTicks int            `json:"remaining_ticks"`
	Multiplier     float64        `json:"multiplier"`
}

// Buffs holds at most one active buff per consumable type.
type Buffs map[ConsumableType]ActiveBuff

// Activate starts or extends the buff of type c at rarity r.
//
// Precondition: b must be non-nil.
// Postcondition: Returns false and leaves b unchanged if a buff of type c with a
// different rarity is active. An active buff of the same rarity has its remaining
// ticks extended by buff.DurationTicks.
func (b Buffs) Activate(c ConsumableType, r rarity.Tier, buff BuffSpec) bool {
	if cur, ok := b[c]; ok && cur.RemainingTicks > 0 {
		if cur.Rarity != r {
			return false
		}
		cur.RemainingTicks += buff.DurationTicks
		b[c] = cur
		return true
	}
	b[c] = ActiveBuff{Type: c, Rarity: r, RemainingTicks: buff.DurationTicks, Multiplier: buff.Multiplier}
	return true
}

// Multiplier returns the active multiplier for c, or 1 when none is active.
func (b Buffs) Multiplier(c ConsumableType) float64 {
	if cur, ok := b[c]; ok && cur.RemainingTicks > 0 {
		return cur.Multiplier
	}
	return 1
}

// Tick decrements every buff by one tick and removes those that reach zero.
//
// Postcondition: returns the ids of expired buffs in ConsumableTypes order.
func (b Buffs) Tick() []ConsumableType {
	var expired []ConsumableType
	for _, c := range ConsumableTypes() {
		cur, ok := b[c]
		if !ok {
			continue
		}
		cur.RemainingTicks--
		if cur.RemainingTicks <= 0 {
			delete(b, c)
			expired = append(expired, c)
			continue
		}
		b[c] = cur
	}
	return expired
}

// Clone returns an independent copy of b, never nil.
func (b Buffs) Clone() Buffs {
	out := make(Buffs, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}
