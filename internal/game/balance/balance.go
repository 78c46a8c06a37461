// Package balance aggregates every tunable number of the game into one table
// set that can be loaded from YAML over the shipped defaults.
package balance

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/aviary/internal/game/creature"
	"github.com/cory-johannsen/aviary/internal/game/inventory"
	"github.com/cory-johannsen/aviary/internal/game/rarity"
)

// IntRange is an inclusive integer range.
type IntRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

func (r IntRange) valid() bool { return r.Min >= 0 && r.Max >= r.Min }

// Tables is the full balance configuration.
type Tables struct {
	Rarity       rarity.Table            `yaml:"rarity"`
	Level        creature.LevelTable     `yaml:"level"`
	Gear         GearTable               `yaml:"gear"`
	Gem          GemTable                `yaml:"gem"`
	Consumables  []inventory.BuffSpec    `yaml:"consumables"`
	Opponent     OpponentTable           `yaml:"opponent"`
	Combat       CombatTable             `yaml:"combat"`
	Reward       RewardTable             `yaml:"reward"`
	Idle         IdleTable               `yaml:"idle"`
	Economy      EconomyTable            `yaml:"economy"`
	Upgrades     map[Upgrade]UpgradeSpec `yaml:"upgrades"`
	Achievements []Achievement           `yaml:"achievements"`
}

// Default returns the shipped balance tables.
//
// Postcondition: Default().Validate() == nil.
func Default() *Tables {
	return &Tables{
		Rarity: rarity.DefaultTable(),
		Level:  creature.DefaultLevelTable(),
		Gear:   defaultGear(),
		Gem:    defaultGem(),
		Consumables: []inventory.BuffSpec{
			{DurationTicks: 300, Multiplier: 1.25},
			{DurationTicks: 450, Multiplier: 1.5},
			{DurationTicks: 600, Multiplier: 1.75},
			{DurationTicks: 900, Multiplier: 2.0},
			{DurationTicks: 1200, Multiplier: 2.5},
			{DurationTicks: 1800, Multiplier: 3.0},
		},
		Opponent:     defaultOpponent(),
		Combat:       defaultCombat(),
		Reward:       defaultReward(),
		Idle:         IdleTable{LevelScale: 0.1, FeatherYield: IntRange{Min: 1, Max: 3}},
		Economy:      defaultEconomy(),
		Upgrades:     defaultUpgrades(),
		Achievements: defaultAchievements(),
	}
}

// Load reads a YAML balance file and merges it over Default.
//
// Precondition: path must name a readable YAML file.
// Postcondition: Returns validated tables or an error.
func Load(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading balance file %q: %w", path, err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes merges raw YAML over Default. Struct fields absent from data
// keep their defaults; lists and individual map entries present in data replace
// the default value wholesale.
func LoadFromBytes(data []byte) (*Tables, error) {
	t := Default()
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("parsing balance YAML: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("validating balance: %w", err)
	}
	return t, nil
}

// Validate checks every table and aggregates all violations into one error.
func (t *Tables) Validate() error {
	var errs []string
	add := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	add(t.Rarity.Validate())
	add(t.Level.Validate())
	add(t.Gear.validate())
	add(t.Gem.validate())
	if len(t.Consumables) != rarity.NumTiers {
		errs = append(errs, fmt.Sprintf("consumables must have %d entries", rarity.NumTiers))
	}
	for i, c := range t.Consumables {
		if c.DurationTicks < 1 || c.Multiplier < 1 {
			errs = append(errs, fmt.Sprintf("consumables[%d] needs duration_ticks >= 1 and multiplier >= 1", i))
		}
	}
	add(t.Opponent.validate())
	add(t.Combat.validate())
	add(t.Reward.validate())
	if t.Idle.LevelScale < 0 || !t.Idle.FeatherYield.valid() {
		errs = append(errs, "idle.level_scale must be >= 0 and idle.feather_yield well formed")
	}
	add(t.Economy.validate())
	for _, u := range Upgrades() {
		up, ok := t.Upgrades[u]
		if !ok {
			errs = append(errs, fmt.Sprintf("upgrades.%s is missing", u))
			continue
		}
		if up.MaxLevel < 0 || up.Growth < 1 {
			errs = append(errs, fmt.Sprintf("upgrades.%s needs max_level >= 0 and growth >= 1", u))
		}
	}
	seen := map[string]bool{}
	for _, a := range t.Achievements {
		if a.ID == "" || seen[a.ID] {
			errs = append(errs, fmt.Sprintf("achievement id %q is empty or duplicated", a.ID))
		}
		seen[a.ID] = true
		if a.Threshold < 1 {
			errs = append(errs, fmt.Sprintf("achievement %q threshold must be >= 1", a.ID))
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Consumable returns the buff row for tier r.
func (t *Tables) Consumable(r rarity.Tier) inventory.BuffSpec {
	return t.Consumables[rarity.Clamp(r)]
}

// BoostMultiplier returns 1 + level × PerLevel for upgrade u.
func (t *Tables) BoostMultiplier(u Upgrade, level int) float64 {
	return 1 + float64(max(level, 0))*t.Upgrades[u].PerLevel
}

// floorWallet scales every component of w by f and rounds down.
func floorWallet(w inventory.Wallet, f float64) inventory.Wallet {
	scale := func(n int) int {
		v := math.Floor(float64(n) * f)
		if v > math.MaxInt32 {
			return math.MaxInt32
		}
		return int(v)
	}
	return inventory.Wallet{Coins: scale(w.Coins), Feathers: scale(w.Feathers), Crystals: scale(w.Crystals)}
}
