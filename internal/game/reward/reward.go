// Package reward computes battle rewards and applies them, together with
// zone progression, to a player state.
package reward

import (
	"math"
	"slices"

	"github.com/cory-johannsen/aviary/internal/game/balance"
	"github.com/cory-johannsen/aviary/internal/game/dice"
	"github.com/cory-johannsen/aviary/internal/game/forge"
	"github.com/cory-johannsen/aviary/internal/game/inventory"
	"github.com/cory-johannsen/aviary/internal/game/player"
	"github.com/cory-johannsen/aviary/internal/game/rarity"
)

// Battle describes a won or lost fight for reward purposes.
type Battle struct {
	Zone       int              `json:"zone"`
	EnemyTier  rarity.Tier      `json:"enemy_tier"`
	EnemyLevel int              `json:"enemy_level"`
	Modifier   balance.Modifier `json:"modifier"`
}

// FromOpponent describes a fight against o.
func FromOpponent(o *forge.Opponent) Battle {
	return Battle{Zone: o.Zone, EnemyTier: o.Creature.Rarity, EnemyLevel: o.Creature.Level, Modifier: o.Modifier}
}

// Reward is the full payout of a victory.
type Reward struct {
	XP         int              `json:"xp"`
	Wallet     inventory.Wallet `json:"wallet"`
	Gem        *inventory.Gem   `json:"gem,omitempty"`
	Consumable *inventory.Stack `json:"consumable,omitempty"`
}

// Calculator computes rewards from the balance tables and a generator for
// item drops.
type Calculator struct {
	gen    *forge.Generator
	tables *balance.Tables
}

// NewCalculator returns a Calculator drawing from gen's random source.
//
// Precondition: gen must not be nil.
func NewCalculator(gen *forge.Generator) *Calculator {
	return &Calculator{gen: gen, tables: gen.Tables()}
}

func floor(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return int(math.Floor(v))
}

// base is the shared level, tier and modifier factor of XP and coins.
func (c *Calculator) base(b Battle) float64 {
	r := c.tables.Reward
	return (1 + float64(b.EnemyLevel)*r.LevelScale) *
		r.TierMultiplier(b.EnemyTier) *
		c.tables.Opponent.RewardMultiplier(b.Modifier)
}

// XP returns the experience for beating b with the given gem bonuses.
//
// Postcondition: floor(BaseXP × base × (1+XPBonus/100) × xp buff × xp boost).
func (c *Calculator) XP(st *player.State, bonus inventory.BuffTotals, b Battle) int {
	v := c.tables.Reward.BaseXP * c.base(b) *
		(1 + bonus.XPBonus/100) *
		st.Buffs.Multiplier(inventory.XPSurge) *
		c.tables.BoostMultiplier(balance.UpgradeXPBoost, st.Upgrade(balance.UpgradeXPBoost))
	return floor(v)
}

// Coins returns the coin payout for beating b with the given gem bonuses.
func (c *Calculator) Coins(st *player.State, bonus inventory.BuffTotals, b Battle) int {
	v := c.tables.Reward.BaseCoins * c.base(b) *
		(1 + bonus.CoinBonus/100) *
		st.Buffs.Multiplier(inventory.CoinRush) *
		c.tables.BoostMultiplier(balance.UpgradeCoinBoost, st.Upgrade(balance.UpgradeCoinBoost))
	return floor(v)
}

// Victory computes the payout for fighterID beating b. Random draws happen in
// a fixed order: feathers, crystals, gem, consumable.
//
// Precondition: st must not be nil.
// Postcondition: st is not modified.
func (c *Calculator) Victory(st *player.State, fighterID string, b Battle) Reward {
	src := c.gen.Roller().Source()
	r := c.tables.Reward
	bonus := st.GearBuffs(fighterID)
	playerLevel := 1
	if f, ok := st.Creature(fighterID); ok {
		playerLevel = f.Level
	}

	out := Reward{
		XP:     c.XP(st, bonus, b),
		Wallet: inventory.Wallet{Coins: c.Coins(st, bonus, b)},
	}

	drop := r.FeatherDrop(b.EnemyTier)
	if dice.Chance(src, drop.Chance) {
		scale := 1 + float64(b.EnemyLevel+playerLevel)/2*r.FeatherLevelScale
		out.Wallet.Feathers = floor(float64(dice.IntRange(src, drop.Min, drop.Max)) * scale)
	}

	if b.Modifier == balance.ModifierGilded || dice.Chance(src, r.CrystalChance+bonus.CrystalChance/100) {
		out.Wallet.Crystals = dice.IntRange(src, r.CrystalYield.Min, r.CrystalYield.Max)
	}

	dropLevel := b.Zone * c.tables.Opponent.RarityLevelPerZone
	if b.Modifier == balance.ModifierHoarder || dice.Chance(src, r.GemChance) {
		tier := c.gen.Roller().Roll(dropLevel, rarity.Encounter, 1)
		out.Gem = c.gen.Gem(tier)
	}

	if dice.Chance(src, r.ConsumableChance) {
		tier := c.gen.Roller().Roll(dropLevel, rarity.Encounter, 1)
		out.Consumable = &inventory.Stack{Type: c.gen.Consumable(), Rarity: tier, Count: 1}
	}
	return out
}

// Outcome reports what applying a victory changed.
type Outcome struct {
	LevelsGained int     `json:"levels_gained"`
	Zone         Advance `json:"zone"`
}

// Apply credits r to st, grows fighterID and records the victory for zone
// progression.
//
// Precondition: st must be a state the caller owns (typically a clone).
// Postcondition: fighter XP < XPToNext; zone advances at most once.
func (c *Calculator) Apply(st *player.State, fighterID string, b Battle, r Reward) Outcome {
	var out Outcome
	st.Wallet.Add(r.Wallet)
	st.AddStat(balance.StatCoinsEarned, r.Wallet.Coins)
	st.AddStat(balance.StatBattlesWon, 1)
	if f, ok := st.Creature(fighterID); ok {
		out.LevelsGained = f.GainXP(r.XP, c.tables.Level)
	}
	if r.Gem != nil {
		st.Gems = append(st.Gems, r.Gem)
	}
	if r.Consumable != nil {
		st.Consumables = st.Consumables.Add(r.Consumable.Type, r.Consumable.Rarity, r.Consumable.Count)
	}
	out.Zone = RecordVictory(st, c.tables.Reward, b.Zone, b.EnemyTier)
	return out
}

// RecordLoss counts a lost battle. Losses grant nothing.
func RecordLoss(st *player.State) {
	st.AddStat(balance.StatBattlesLost, 1)
}

// Advance reports a zone progression step.
type Advance struct {
	Advanced bool            `json:"advanced"`
	Zone     int             `json:"zone"`
	Unlocked []player.Unlock `json:"unlocked,omitempty"`
}

// RecordVictory collects tier for the current zone and advances the zone when
// every required tier has been collected. It is the only place the zone
// counter moves.
//
// Postcondition: a victory in any zone other than st.Zone.Highest changes
// nothing; on completion Collected is cleared and Highest grows by exactly one.
func RecordVictory(st *player.State, t balance.RewardTable, zone int, tier rarity.Tier) Advance {
	out := Advance{Zone: st.Zone.Highest}
	if zone != st.Zone.Highest || !slices.Contains(t.RequiredTiers, tier) {
		return out
	}
	if !st.Zone.Has(tier) {
		st.Zone.Collected = append(st.Zone.Collected, tier)
	}
	for _, req := range t.RequiredTiers {
		if !st.Zone.Has(req) {
			return out
		}
	}
	st.Zone.Collected = nil
	st.Zone.Highest++
	out.Advanced = true
	out.Zone = st.Zone.Highest
	out.Unlocked = ApplyUnlocks(st, t)
	return out
}

// ApplyUnlocks sets every unlock flag the highest zone qualifies for.
//
// Postcondition: returns only the flags that were newly set.
func ApplyUnlocks(st *player.State, t balance.RewardTable) []player.Unlock {
	if st.Unlocks == nil {
		st.Unlocks = map[player.Unlock]bool{}
	}
	var out []player.Unlock
	gate := func(u player.Unlock, zone int) {
		if st.Zone.Highest >= zone && !st.Unlocks[u] {
			st.Unlocks[u] = true
			out = append(out, u)
		}
	}
	gate(player.UnlockHunting, t.HuntingZone)
	gate(player.UnlockGems, t.GemsZone)
	return out
}
