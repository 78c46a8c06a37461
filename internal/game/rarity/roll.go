package rarity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/aviary/internal/game/dice"
)

// Context selects which bonus and clamp rules apply to a roll.
type Context int

const (
	// Encounter rolls use the raw distribution (opponent generation, finds).
	Encounter Context = iota
	// Catch rolls add the minigame multiplier bonus.
	Catch
	// Craft rolls are clamped to the facility ceiling.
	Craft
)

// String returns the context name.
func (c Context) String() string {
	switch c {
	case Encounter:
		return "encounter"
	case Catch:
		return "catch"
	case Craft:
		return "craft"
	default:
		return "unknown"
	}
}

// Range is an inclusive [Min, Max] span of floats.
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// CatchBonus adds Bonus to the score when the catch multiplier is at least MinMultiplier.
type CatchBonus struct {
	MinMultiplier float64 `yaml:"min_multiplier"`
	Bonus         float64 `yaml:"bonus"`
}

// Table holds every number the roll engine uses.
type Table struct {
	// ScoreRange is the exclusive upper bound of the uniform base score.
	ScoreRange float64 `yaml:"score_range"`
	// LevelBonus is added per upgrade level.
	LevelBonus float64 `yaml:"level_bonus"`
	// Thresholds are the minimum scores for Uncommon through Mythic, ascending.
	Thresholds []float64 `yaml:"thresholds"`
	// CatchBonuses are ordered by ascending MinMultiplier.
	CatchBonuses []CatchBonus `yaml:"catch_bonuses"`
	// CraftFloor is the craft ceiling at upgrade level zero.
	CraftFloor Tier `yaml:"craft_floor"`
	// CraftStep is the number of upgrade levels per extra craft tier.
	CraftStep int `yaml:"craft_step"`
	// Multipliers are the per-tier stat multiplier ranges, indexed by Tier.
	Multipliers []Range `yaml:"multipliers"`
}

// DefaultTable returns the shipped roll table.
func DefaultTable() Table {
	return Table{
		ScoreRange: 1000,
		LevelBonus: 6,
		Thresholds: []float64{500, 760, 900, 970, 995},
		CatchBonuses: []CatchBonus{
			{MinMultiplier: 1.0, Bonus: 0},
			{MinMultiplier: 1.5, Bonus: 60},
			{MinMultiplier: 2.0, Bonus: 160},
			{MinMultiplier: 2.5, Bonus: 360},
			{MinMultiplier: 3.0, Bonus: 720},
		},
		CraftFloor: Uncommon,
		CraftStep:  5,
		Multipliers: []Range{
			{Min: 1.0, Max: 1.2},
			{Min: 1.2, Max: 1.5},
			{Min: 1.5, Max: 2.0},
			{Min: 2.0, Max: 2.6},
			{Min: 2.6, Max: 3.4},
			{Min: 3.4, Max: 4.5},
		},
	}
}

// Validate checks the table invariants.
//
// Postcondition: Returns nil iff thresholds are ascending with NumTiers-1 entries,
// multipliers have NumTiers well-formed entries, and catch bonuses are ascending.
func (t Table) Validate() error {
	var errs []string
	if t.ScoreRange <= 0 {
		errs = append(errs, "rarity.score_range must be > 0")
	}
	if t.LevelBonus < 0 {
		errs = append(errs, "rarity.level_bonus must be >= 0")
	}
	if len(t.Thresholds) != NumTiers-1 {
		errs = append(errs, fmt.Sprintf("rarity.thresholds must have %d entries, got %d", NumTiers-1, len(t.Thresholds)))
	}
	for i := 1; i < len(t.Thresholds); i++ {
		if t.Thresholds[i] <= t.Thresholds[i-1] {
			errs = append(errs, "rarity.thresholds must be strictly ascending")
			break
		}
	}
	for i := 1; i < len(t.CatchBonuses); i++ {
		if t.CatchBonuses[i].MinMultiplier <= t.CatchBonuses[i-1].MinMultiplier {
			errs = append(errs, "rarity.catch_bonuses must be ascending by min_multiplier")
			break
		}
	}
	if !t.CraftFloor.Valid() {
		errs = append(errs, "rarity.craft_floor must be a valid tier")
	}
	if t.CraftStep < 1 {
		errs = append(errs, "rarity.craft_step must be >= 1")
	}
	if len(t.Multipliers) != NumTiers {
		errs = append(errs, fmt.Sprintf("rarity.multipliers must have %d entries, got %d", NumTiers, len(t.Multipliers)))
	}
	for i, r := range t.Multipliers {
		if r.Min <= 0 || r.Max < r.Min {
			errs = append(errs, fmt.Sprintf("rarity.multipliers[%d] must satisfy 0 < min <= max", i))
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// MaxCraftTier returns the highest tier the forge can produce at level.
//
// Postcondition: CraftFloor <= result <= Mythic for level >= 0.
func MaxCraftTier(t Table, level int) Tier {
	if level < 0 {
		level = 0
	}
	step := t.CraftStep
	if step < 1 {
		step = 1
	}
	return Clamp(t.CraftFloor + Tier(level/step))
}

// catchBonus returns the bonus of the highest entry whose MinMultiplier <= multiplier.
func catchBonus(t Table, multiplier float64) float64 {
	bonus := 0.0
	for _, cb := range t.CatchBonuses {
		if multiplier >= cb.MinMultiplier {
			bonus = cb.Bonus
		}
	}
	return bonus
}

// TierForScore maps a score to a tier via the ascending thresholds.
func TierForScore(t Table, score float64) Tier {
	tier := Common
	for i, th := range t.Thresholds {
		if score >= th {
			tier = Tier(i + 1)
		}
	}
	return Clamp(tier)
}

// Roll draws a rarity tier.
//
// Precondition: src must be non-nil; t must have passed Validate.
// Postcondition: Craft rolls never exceed MaxCraftTier(t, upgradeLevel).
// Exactly one draw is consumed.
func Roll(src dice.Source, t Table, upgradeLevel int, ctx Context, multiplier float64) Tier {
	if upgradeLevel < 0 {
		upgradeLevel = 0
	}
	score := dice.FloatRange(src, 0, t.ScoreRange)
	score += float64(upgradeLevel) * t.LevelBonus
	if ctx == Catch {
		score += catchBonus(t, multiplier)
	}
	tier := TierForScore(t, score)
	if ctx == Craft {
		tier = Min(tier, MaxCraftTier(t, upgradeLevel))
	}
	return tier
}

// MultiplierRange returns the multiplier range for tier, or {1,1} if the table
// does not cover it.
func (t Table) MultiplierRange(tier Tier) Range {
	if int(tier) < 0 || int(tier) >= len(t.Multipliers) {
		return Range{Min: 1, Max: 1}
	}
	return t.Multipliers[tier]
}

// SampleMultiplier draws a multiplier uniformly within tier's range.
//
// Postcondition: MultiplierRange(tier).Min <= result <= MultiplierRange(tier).Max.
func SampleMultiplier(src dice.Source, t Table, tier Tier) float64 {
	r := t.MultiplierRange(tier)
	return dice.FloatRange(src, r.Min, r.Max)
}
