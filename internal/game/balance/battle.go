package balance

import (
	"fmt"

	"github.com/cory-johannsen/aviary/internal/game/rarity"
)

// Modifier is an optional opponent trait that changes its rewards.
type Modifier string

const (
	ModifierNone Modifier = "none"
	// ModifierElite multiplies xp and coins.
	ModifierElite Modifier = "elite"
	// ModifierHoarder guarantees a gem drop.
	ModifierHoarder Modifier = "hoarder"
	// ModifierGilded guarantees a crystal drop.
	ModifierGilded Modifier = "gilded"
)

// ModifierSpec is one weighted row of the opponent modifier table.
type ModifierSpec struct {
	Kind   Modifier `yaml:"kind"`
	Weight int      `yaml:"weight"`
	// RewardMultiplier scales xp and coins.
	RewardMultiplier float64 `yaml:"reward_multiplier"`
}

// OpponentTable drives opponent generation for a zone.
type OpponentTable struct {
	// LevelsPerZone is the base level step between zones.
	LevelsPerZone int `yaml:"levels_per_zone"`
	// LevelJitter is the inclusive upper bound of the random level offset.
	LevelJitter int `yaml:"level_jitter"`
	// RarityLevelPerZone is the roll upgrade level granted per zone.
	RarityLevelPerZone int `yaml:"rarity_level_per_zone"`
	// GrowthPerLevel scales opponent stats per level above 1.
	GrowthPerLevel float64        `yaml:"growth_per_level"`
	Modifiers      []ModifierSpec `yaml:"modifiers"`
}

func defaultOpponent() OpponentTable {
	return OpponentTable{
		LevelsPerZone:      5,
		LevelJitter:        3,
		RarityLevelPerZone: 4,
		GrowthPerLevel:     0.08,
		Modifiers: []ModifierSpec{
			{Kind: ModifierNone, Weight: 70, RewardMultiplier: 1},
			{Kind: ModifierElite, Weight: 15, RewardMultiplier: 1.5},
			{Kind: ModifierHoarder, Weight: 8, RewardMultiplier: 1},
			{Kind: ModifierGilded, Weight: 7, RewardMultiplier: 1},
		},
	}
}

func (o OpponentTable) validate() error {
	if o.LevelsPerZone < 0 || o.LevelJitter < 0 || o.RarityLevelPerZone < 0 || o.GrowthPerLevel < 0 {
		return fmt.Errorf("opponent level and growth settings must be non-negative")
	}
	total := 0
	for _, m := range o.Modifiers {
		if m.Weight < 0 || m.RewardMultiplier <= 0 {
			return fmt.Errorf("opponent.modifiers %q needs weight >= 0 and reward_multiplier > 0", m.Kind)
		}
		total += m.Weight
	}
	if total == 0 {
		return fmt.Errorf("opponent.modifiers must have a positive total weight")
	}
	return nil
}

// ModifierWeights returns the modifier weights in table order.
func (o OpponentTable) ModifierWeights() []int {
	w := make([]int, len(o.Modifiers))
	for i, m := range o.Modifiers {
		w[i] = m.Weight
	}
	return w
}

// RewardMultiplier returns the reward multiplier for m, or 1 if unlisted.
func (o OpponentTable) RewardMultiplier(m Modifier) float64 {
	for _, mod := range o.Modifiers {
		if mod.Kind == m {
			return mod.RewardMultiplier
		}
	}
	return 1
}

// CombatTable holds the resolver and battle constants.
type CombatTable struct {
	EvasionPerSpeed    float64 `yaml:"evasion_per_speed"`
	EvasionCap         float64 `yaml:"evasion_cap"`
	GoodInputThreshold float64 `yaml:"good_input_threshold"`
	GoodInputBonus     float64 `yaml:"good_input_bonus"`
	CritMultiplier     float64 `yaml:"crit_multiplier"`
	AltitudeBonus      float64 `yaml:"altitude_bonus"`
	DiveChance         float64 `yaml:"dive_chance"`
	DiveMultiplier     float64 `yaml:"dive_multiplier"`
	BleedChance        float64 `yaml:"bleed_chance"`
	BleedTurns         int     `yaml:"bleed_turns"`
	BleedBase          float64 `yaml:"bleed_base"`
	DefendFactor       float64 `yaml:"defend_factor"`
	RestEnergy         int     `yaml:"rest_energy"`
	RegenBase          float64 `yaml:"regen_base"`
	MaxAltitude        int     `yaml:"max_altitude"`
	LogSize            int     `yaml:"log_size"`
}

func defaultCombat() CombatTable {
	return CombatTable{
		EvasionPerSpeed:    0.6,
		EvasionCap:         25,
		GoodInputThreshold: 1.5,
		GoodInputBonus:     10,
		CritMultiplier:     1.5,
		AltitudeBonus:      1.2,
		DiveChance:         0.3,
		DiveMultiplier:     1.25,
		BleedChance:        0.5,
		BleedTurns:         3,
		BleedBase:          3,
		DefendFactor:       0.5,
		RestEnergy:         15,
		RegenBase:          5,
		MaxAltitude:        2,
		LogSize:            20,
	}
}

func (c CombatTable) validate() error {
	if c.MaxAltitude < 0 || c.LogSize < 1 || c.BleedTurns < 0 {
		return fmt.Errorf("combat.max_altitude, combat.log_size and combat.bleed_turns are out of range")
	}
	if c.DefendFactor < 0 || c.DefendFactor > 1 {
		return fmt.Errorf("combat.defend_factor must be in [0, 1]")
	}
	if c.DiveChance < 0 || c.DiveChance > 1 || c.BleedChance < 0 || c.BleedChance > 1 {
		return fmt.Errorf("combat chances must be in [0, 1]")
	}
	return nil
}

// FeatherDrop is a per-tier feather reward row.
type FeatherDrop struct {
	Chance float64 `yaml:"chance"`
	Min    int     `yaml:"min"`
	Max    int     `yaml:"max"`
}

// RewardTable drives battle rewards and zone progression.
type RewardTable struct {
	BaseXP    float64 `yaml:"base_xp"`
	BaseCoins float64 `yaml:"base_coins"`
	// LevelScale is the per-enemy-level base reward increase.
	LevelScale float64 `yaml:"level_scale"`
	// TierMultipliers are indexed by opponent tier.
	TierMultipliers []float64 `yaml:"tier_multipliers"`
	// Feathers are indexed by opponent tier.
	Feathers          []FeatherDrop `yaml:"feathers"`
	FeatherLevelScale float64       `yaml:"feather_level_scale"`
	CrystalChance     float64       `yaml:"crystal_chance"`
	CrystalYield      IntRange      `yaml:"crystal_yield"`
	GemChance         float64       `yaml:"gem_chance"`
	ConsumableChance  float64       `yaml:"consumable_chance"`
	// RequiredTiers must all be defeated in the highest zone to advance.
	RequiredTiers []rarity.Tier `yaml:"required_tiers"`
	HuntingZone   int           `yaml:"hunting_zone"`
	GemsZone      int           `yaml:"gems_zone"`
}

func defaultReward() RewardTable {
	return RewardTable{
		BaseXP:          50,
		BaseCoins:       20,
		LevelScale:      0.1,
		TierMultipliers: []float64{1, 1.25, 1.6, 2.1, 2.8, 4.0},
		Feathers: []FeatherDrop{
			{Chance: 0.5, Min: 2, Max: 5},
			{Chance: 0.6, Min: 4, Max: 8},
			{Chance: 0.7, Min: 7, Max: 14},
			{Chance: 0.8, Min: 12, Max: 24},
			{Chance: 0.9, Min: 20, Max: 40},
			{Chance: 1.0, Min: 40, Max: 80},
		},
		FeatherLevelScale: 0.05,
		CrystalChance:     0.03,
		CrystalYield:      IntRange{Min: 1, Max: 3},
		GemChance:         0.05,
		ConsumableChance:  0.08,
		RequiredTiers:     []rarity.Tier{rarity.Common, rarity.Uncommon, rarity.Rare, rarity.Epic, rarity.Legendary},
		HuntingZone:       2,
		GemsZone:          3,
	}
}

func (r RewardTable) validate() error {
	if len(r.TierMultipliers) != rarity.NumTiers || len(r.Feathers) != rarity.NumTiers {
		return fmt.Errorf("reward.tier_multipliers and reward.feathers must have %d entries", rarity.NumTiers)
	}
	for i, f := range r.Feathers {
		if f.Chance < 0 || f.Chance > 1 || f.Min < 0 || f.Max < f.Min {
			return fmt.Errorf("reward.feathers[%d] is malformed", i)
		}
	}
	if len(r.RequiredTiers) == 0 {
		return fmt.Errorf("reward.required_tiers must not be empty")
	}
	if !r.CrystalYield.valid() {
		return fmt.Errorf("reward.crystal_yield is malformed")
	}
	return nil
}

// TierMultiplier returns the reward multiplier for tier t.
func (r RewardTable) TierMultiplier(t rarity.Tier) float64 { return r.TierMultipliers[rarity.Clamp(t)] }

// FeatherDrop returns the feather row for tier t.
func (r RewardTable) FeatherDrop(t rarity.Tier) FeatherDrop { return r.Feathers[rarity.Clamp(t)] }

// IdleTable drives the hunting tick.
type IdleTable struct {
	// LevelScale is the per-level yield increase above level 1.
	LevelScale   float64  `yaml:"level_scale"`
	FeatherYield IntRange `yaml:"feather_yield"`
}
