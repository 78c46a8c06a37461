package inventory

import (
	"slices"

	"github.com/cory-johannsen/aviary/internal/game/rarity"
)

// BuffKind names the bonus a gem buff grants.
type BuffKind string

const (
	// BuffHuntYield adds a percentage to idle coin yield.
	BuffHuntYield BuffKind = "hunt_yield"
	// BuffXPBonus adds a percentage to battle experience.
	BuffXPBonus BuffKind = "xp_bonus"
	// BuffCoinBonus adds a percentage to battle coins.
	BuffCoinBonus BuffKind = "coin_bonus"
	// BuffFeatherChance adds percentage points to the idle feather chance.
	BuffFeatherChance BuffKind = "feather_chance"
	// BuffCrystalChance adds percentage points to the battle crystal chance.
	BuffCrystalChance BuffKind = "crystal_chance"
)

// BuffKinds returns every buff kind, common kinds first.
func BuffKinds() []BuffKind {
	return []BuffKind{BuffHuntYield, BuffXPBonus, BuffCoinBonus, BuffFeatherChance, BuffCrystalChance}
}

// IsRare reports whether k draws from the small chance-point value table.
func (k BuffKind) IsRare() bool {
	return k == BuffFeatherChance || k == BuffCrystalChance
}

// Valid reports whether k is a known kind.
func (k BuffKind) Valid() bool {
	switch k {
	case BuffHuntYield, BuffXPBonus, BuffCoinBonus, BuffFeatherChance, BuffCrystalChance:
		return true
	}
	return false
}

// GemBuff is one bonus carried by a gem.
type GemBuff struct {
	Kind   BuffKind    `json:"kind"`
	Value  float64     `json:"value"`
	Rarity rarity.Tier `json:"rarity"`
}

// Gem is a socketable item carrying one or two buffs.
//
// Invariant: a gem is in exactly one place: the gem inventory or one socket.
type Gem struct {
	ID     string      `json:"id"`
	Rarity rarity.Tier `json:"rarity"`
	Buffs  []GemBuff   `json:"buffs"`
}

// Clone returns a deep copy of g.
func (g *Gem) Clone() *Gem {
	out := *g
	out.Buffs = slices.Clone(g.Buffs)
	return &out
}

// BuffTotals sums gem buffs by kind. Percent kinds are in percent; chance kinds
// are in percentage points.
type BuffTotals struct {
	HuntYield     float64 `json:"hunt_yield"`
	XPBonus       float64 `json:"xp_bonus"`
	CoinBonus     float64 `json:"coin_bonus"`
	FeatherChance float64 `json:"feather_chance"`
	CrystalChance float64 `json:"crystal_chance"`
}

// Add accumulates b into t. Unknown kinds are ignored.
func (t *BuffTotals) Add(b GemBuff) {
	switch b.Kind {
	case BuffHuntYield:
		t.HuntYield += b.Value
	case BuffXPBonus:
		t.XPBonus += b.Value
	case BuffCoinBonus:
		t.CoinBonus += b.Value
	case BuffFeatherChance:
		t.FeatherChance += b.Value
	case BuffCrystalChance:
		t.CrystalChance += b.Value
	}
}

// Merge accumulates every field of o into t.
func (t *BuffTotals) Merge(o BuffTotals) {
	t.HuntYield += o.HuntYield
	t.XPBonus += o.XPBonus
	t.CoinBonus += o.CoinBonus
	t.FeatherChance += o.FeatherChance
	t.CrystalChance += o.CrystalChance
}
