// Package combat implements the turn-based battle engine: the pure damage
// resolver and the battle state machine built on top of it.
package combat

import (
	"math"
	"time"

	"github.com/cory-johannsen/aviary/internal/game/creature"
	"github.com/cory-johannsen/aviary/internal/game/inventory"
	"github.com/cory-johannsen/aviary/internal/game/rarity"
)

// Side distinguishes the player's combatant from the opponent.
type Side int

const (
	SidePlayer Side = iota
	SideOpponent
)

// String returns the side name.
func (s Side) String() string {
	if s == SidePlayer {
		return "player"
	}
	return "opponent"
}

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == SidePlayer {
		return SideOpponent
	}
	return SidePlayer
}

// Altitude tiers. Higher is better for the attacker.
const (
	AltitudeGround = 0
	AltitudeLow    = 1
	AltitudeHigh   = 2
)

// Combatant is one creature's live battle state. It is derived from a
// creature instance plus its equipped gear and discarded after the battle.
type Combatant struct {
	ID          string
	Name        string
	Level       int
	Rarity      rarity.Tier
	MaxHP       int
	HP          int
	MaxEnergy   int
	Energy      int
	Attack      int
	Defense     int
	Speed       int
	EnergyRegen float64
	Passive     creature.Passive
	Moves       []creature.Move
	// CritChance is the summed crit_chance prefix of equipped gear (0-1).
	CritChance float64
	// HasTalons is true when gear is equipped in the talons slot.
	HasTalons bool
	// BleedBonus is the summed bleed prefix of equipped gear.
	BleedBonus float64
	Altitude   int
	Defending  bool
	// BleedTurns counts remaining bleed ticks; BleedDamage is dealt per tick.
	BleedTurns  int
	BleedDamage float64

	readyAt map[string]time.Time
}

// NewCombatant derives battle state from c and the gear it has equipped.
//
// Precondition: c must not be nil; gear entries may be nil and are skipped.
// Postcondition: HP and Energy start at their maximum; Altitude is ground;
// HP >= 1.
func NewCombatant(c *creature.Instance, gear []*inventory.Gear) *Combatant {
	stats := c.Stats()
	cbt := &Combatant{
		ID:          c.ID,
		Name:        c.Name,
		Level:       c.Level,
		Rarity:      c.Rarity,
		EnergyRegen: c.EnergyRegen,
		Passive:     c.Passive,
		Moves:       append([]creature.Move(nil), c.Moves...),
		readyAt:     make(map[string]time.Time),
	}
	for _, g := range gear {
		if g == nil {
			continue
		}
		stats = stats.Plus(g.StatTotals())
		stats.Attack += g.EffectiveAttack()
		cbt.CritChance += g.CritChance()
		cbt.BleedBonus += g.BleedBonus()
		if g.Slot == creature.SlotTalons {
			cbt.HasTalons = true
		}
	}
	cbt.MaxHP = max(stats.HP, 1)
	cbt.HP = cbt.MaxHP
	cbt.MaxEnergy = max(stats.Energy, 0)
	cbt.Energy = cbt.MaxEnergy
	cbt.Attack = max(stats.Attack, 0)
	cbt.Defense = stats.Defense
	cbt.Speed = stats.Speed
	return cbt
}

// IsDead reports whether HP has reached zero.
func (c *Combatant) IsDead() bool { return c.HP <= 0 }

// HPFraction returns HP / MaxHP in [0, 1].
func (c *Combatant) HPFraction() float64 {
	if c.MaxHP <= 0 {
		return 0
	}
	return math.Max(0, float64(c.HP)/float64(c.MaxHP))
}

// ApplyDamage reduces HP by amount, flooring at zero.
// Precondition: amount must be >= 0.
// Postcondition: HP >= 0.
func (c *Combatant) ApplyDamage(amount int) {
	c.HP -= max(amount, 0)
	if c.HP < 0 {
		c.HP = 0
	}
}

// Heal restores amount HP, capped at MaxHP.
func (c *Combatant) Heal(amount int) {
	c.HP = min(c.HP+max(amount, 0), c.MaxHP)
}

// GainEnergy restores amount energy, capped at MaxEnergy.
func (c *Combatant) GainEnergy(amount int) {
	c.Energy = min(c.Energy+max(amount, 0), c.MaxEnergy)
}

// MoveByID returns the combatant's move with id, including rest.
func (c *Combatant) MoveByID(id string) (creature.Move, bool) {
	if id == creature.RestMoveID {
		return creature.RestMove(), true
	}
	for _, m := range c.Moves {
		if m.ID == id {
			return m, true
		}
	}
	return creature.Move{}, false
}

// ReadyAt returns when move id comes off cooldown; the zero time if it never
// went on cooldown.
func (c *Combatant) ReadyAt(id string) time.Time { return c.readyAt[id] }

func (c *Combatant) startCooldown(m creature.Move, now time.Time) {
	if m.Cooldown > 0 {
		if c.readyAt == nil {
			c.readyAt = make(map[string]time.Time)
		}
		c.readyAt[m.ID] = now.Add(m.Cooldown)
	}
}
