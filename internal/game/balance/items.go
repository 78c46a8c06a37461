package balance

import (
	"fmt"

	"github.com/cory-johannsen/aviary/internal/game/inventory"
	"github.com/cory-johannsen/aviary/internal/game/rarity"
)

// SocketWeights are the relative odds of a fully socketed, one-short and
// unsocketed piece.
type SocketWeights struct {
	Full    int `yaml:"full"`
	OneLess int `yaml:"one_less"`
	Zero    int `yaml:"zero"`
}

// GearTable drives gear generation.
type GearTable struct {
	Attack rarity.Range `yaml:"attack"`
	// ForgeBonus is the attack multiplier gained per forge level.
	ForgeBonus float64 `yaml:"forge_bonus"`
	MaxBonuses int     `yaml:"max_bonuses"`
	// BonusTierDrop is how many tiers below the item a stat bonus rolls.
	BonusTierDrop IntRange `yaml:"bonus_tier_drop"`
	// BonusValues are the stat bonus value ranges, indexed by tier.
	BonusValues  []IntRange `yaml:"bonus_values"`
	PrefixChance float64    `yaml:"prefix_chance"`
	// PrefixMagnitudes are per-kind ranges, indexed by tier.
	PrefixMagnitudes map[inventory.PrefixKind][]rarity.Range `yaml:"prefix_magnitudes"`
	// SocketCapacity is the maximum socket count, indexed by tier.
	SocketCapacity []int         `yaml:"socket_capacity"`
	SocketWeights  SocketWeights `yaml:"socket_weights"`
}

func defaultGear() GearTable {
	return GearTable{
		Attack:        rarity.Range{Min: 4, Max: 8},
		ForgeBonus:    0.05,
		MaxBonuses:    3,
		BonusTierDrop: IntRange{Min: 1, Max: 2},
		BonusValues: []IntRange{
			{Min: 1, Max: 2}, {Min: 2, Max: 4}, {Min: 3, Max: 6},
			{Min: 5, Max: 9}, {Min: 8, Max: 13}, {Min: 12, Max: 18},
		},
		PrefixChance: 0.4,
		PrefixMagnitudes: map[inventory.PrefixKind][]rarity.Range{
			inventory.PrefixCritChance: {
				{Min: 0.02, Max: 0.04}, {Min: 0.04, Max: 0.07}, {Min: 0.06, Max: 0.10},
				{Min: 0.09, Max: 0.14}, {Min: 0.13, Max: 0.19}, {Min: 0.18, Max: 0.25},
			},
			inventory.PrefixBonusAttack: {
				{Min: 1, Max: 2}, {Min: 2, Max: 3}, {Min: 3, Max: 5},
				{Min: 4, Max: 7}, {Min: 6, Max: 10}, {Min: 9, Max: 14},
			},
			inventory.PrefixBleed: {
				{Min: 1, Max: 2}, {Min: 1.5, Max: 3}, {Min: 2, Max: 4},
				{Min: 3, Max: 5.5}, {Min: 4.5, Max: 7.5}, {Min: 6.5, Max: 10},
			},
		},
		SocketCapacity: []int{0, 1, 1, 2, 3, 3},
		SocketWeights:  SocketWeights{Full: 20, OneLess: 30, Zero: 50},
	}
}

func (g GearTable) validate() error {
	if g.Attack.Min < 0 || g.Attack.Max < g.Attack.Min {
		return fmt.Errorf("gear.attack must satisfy 0 <= min <= max")
	}
	if g.MaxBonuses < 0 || !g.BonusTierDrop.valid() {
		return fmt.Errorf("gear.max_bonuses and gear.bonus_tier_drop must be non-negative")
	}
	if len(g.BonusValues) != rarity.NumTiers || len(g.SocketCapacity) != rarity.NumTiers {
		return fmt.Errorf("gear.bonus_values and gear.socket_capacity must have %d entries", rarity.NumTiers)
	}
	for i, r := range g.BonusValues {
		if !r.valid() {
			return fmt.Errorf("gear.bonus_values[%d] is malformed", i)
		}
	}
	for _, k := range inventory.PrefixKinds() {
		if len(g.PrefixMagnitudes[k]) != rarity.NumTiers {
			return fmt.Errorf("gear.prefix_magnitudes.%s must have %d entries", k, rarity.NumTiers)
		}
	}
	if g.PrefixChance < 0 || g.PrefixChance > 1 {
		return fmt.Errorf("gear.prefix_chance must be in [0, 1]")
	}
	w := g.SocketWeights
	if w.Full < 0 || w.OneLess < 0 || w.Zero < 0 || w.Full+w.OneLess+w.Zero == 0 {
		return fmt.Errorf("gear.socket_weights must be non-negative with a positive sum")
	}
	return nil
}

// BonusRange returns the stat bonus value range for tier r.
func (g GearTable) BonusRange(r rarity.Tier) IntRange { return g.BonusValues[rarity.Clamp(r)] }

// PrefixRange returns the magnitude range of kind k for tier r.
func (g GearTable) PrefixRange(k inventory.PrefixKind, r rarity.Tier) rarity.Range {
	return g.PrefixMagnitudes[k][rarity.Clamp(r)]
}

// Capacity returns the maximum socket count for tier r.
func (g GearTable) Capacity(r rarity.Tier) int { return g.SocketCapacity[rarity.Clamp(r)] }

// GemTable drives gem generation.
type GemTable struct {
	TwoBuffChance float64 `yaml:"two_buff_chance"`
	// BuffTierDrop is the maximum number of tiers a buff rolls below its gem.
	BuffTierDrop int `yaml:"buff_tier_drop"`
	// PercentValues are the ranges of common kinds, indexed by tier.
	PercentValues []rarity.Range `yaml:"percent_values"`
	// ChanceValues are the ranges of rare kinds, indexed by tier.
	ChanceValues []rarity.Range `yaml:"chance_values"`
}

func defaultGem() GemTable {
	return GemTable{
		TwoBuffChance: 0.5,
		BuffTierDrop:  1,
		PercentValues: []rarity.Range{
			{Min: 2, Max: 4}, {Min: 3, Max: 6}, {Min: 5, Max: 9},
			{Min: 8, Max: 13}, {Min: 12, Max: 19}, {Min: 20, Max: 30},
		},
		ChanceValues: []rarity.Range{
			{Min: 0.1, Max: 0.3}, {Min: 0.2, Max: 0.5}, {Min: 0.4, Max: 0.8},
			{Min: 0.6, Max: 1.2}, {Min: 1.0, Max: 1.8}, {Min: 1.5, Max: 2.5},
		},
	}
}

func (g GemTable) validate() error {
	if g.TwoBuffChance < 0 || g.TwoBuffChance > 1 || g.BuffTierDrop < 0 {
		return fmt.Errorf("gem.two_buff_chance must be in [0, 1] and gem.buff_tier_drop >= 0")
	}
	if len(g.PercentValues) != rarity.NumTiers || len(g.ChanceValues) != rarity.NumTiers {
		return fmt.Errorf("gem.percent_values and gem.chance_values must have %d entries", rarity.NumTiers)
	}
	return nil
}

// ValueRange returns the buff value range of kind k at tier r.
func (g GemTable) ValueRange(k inventory.BuffKind, r rarity.Tier) rarity.Range {
	if k.IsRare() {
		return g.ChanceValues[rarity.Clamp(r)]
	}
	return g.PercentValues[rarity.Clamp(r)]
}
