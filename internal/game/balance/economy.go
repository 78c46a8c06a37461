package balance

import (
	"fmt"
	"math"

	"github.com/cory-johannsen/aviary/internal/game/inventory"
	"github.com/cory-johannsen/aviary/internal/game/rarity"
)

// EconomyTable holds prices and roster limits.
type EconomyTable struct {
	StartingWallet inventory.Wallet `yaml:"starting_wallet"`
	CraftGearCost  inventory.Wallet `yaml:"craft_gear_cost"`
	CraftGemCost   inventory.Wallet `yaml:"craft_gem_cost"`
	CatchCost      inventory.Wallet `yaml:"catch_cost"`
	PartySize      int              `yaml:"party_size"`
	MaxHunting     int              `yaml:"max_hunting"`
	// SellFeathers is the salvage value of gear and gems, indexed by tier.
	SellFeathers []int `yaml:"sell_feathers"`
}

func defaultEconomy() EconomyTable {
	return EconomyTable{
		StartingWallet: inventory.Wallet{Coins: 500, Feathers: 50},
		CraftGearCost:  inventory.Wallet{Coins: 250, Feathers: 25},
		CraftGemCost:   inventory.Wallet{Coins: 200, Feathers: 60},
		CatchCost:      inventory.Wallet{Coins: 50},
		PartySize:      3,
		MaxHunting:     5,
		SellFeathers:   []int{5, 10, 20, 40, 80, 160},
	}
}

func (e EconomyTable) validate() error {
	if e.PartySize < 1 || e.MaxHunting < 0 {
		return fmt.Errorf("economy.party_size must be >= 1 and economy.max_hunting >= 0")
	}
	if len(e.SellFeathers) != rarity.NumTiers {
		return fmt.Errorf("economy.sell_feathers must have %d entries", rarity.NumTiers)
	}
	return nil
}

// SellValue returns the feather salvage value for tier t.
func (e EconomyTable) SellValue(t rarity.Tier) int { return e.SellFeathers[rarity.Clamp(t)] }

// Upgrade names a purchasable meta upgrade.
type Upgrade string

const (
	// UpgradeForge raises the gear craft ceiling and gear attack.
	UpgradeForge Upgrade = "forge"
	// UpgradeJeweler raises the gem craft ceiling.
	UpgradeJeweler Upgrade = "jeweler"
	// UpgradeNet adds roll levels to catch attempts.
	UpgradeNet Upgrade = "net"
	// UpgradeCoinBoost multiplies battle coins.
	UpgradeCoinBoost Upgrade = "coin_boost"
	// UpgradeXPBoost multiplies battle experience.
	UpgradeXPBoost Upgrade = "xp_boost"
	// UpgradeHuntBoost multiplies idle yield.
	UpgradeHuntBoost Upgrade = "hunt_boost"
)

// Upgrades returns every upgrade.
func Upgrades() []Upgrade {
	return []Upgrade{UpgradeForge, UpgradeJeweler, UpgradeNet, UpgradeCoinBoost, UpgradeXPBoost, UpgradeHuntBoost}
}

// UpgradeSpec prices one upgrade track.
type UpgradeSpec struct {
	BaseCost inventory.Wallet `yaml:"base_cost"`
	// Growth is the cost multiplier per owned level.
	Growth   float64 `yaml:"growth"`
	MaxLevel int     `yaml:"max_level"`
	// PerLevel is the multiplier gained per level for boost upgrades.
	PerLevel float64 `yaml:"per_level"`
}

// CostAt returns the price of buying level+1.
//
// Postcondition: each component is floor(base × Growth^level).
func (u UpgradeSpec) CostAt(level int) inventory.Wallet {
	return floorWallet(u.BaseCost, math.Pow(u.Growth, float64(max(level, 0))))
}

func defaultUpgrades() map[Upgrade]UpgradeSpec {
	boost := UpgradeSpec{BaseCost: inventory.Wallet{Crystals: 5}, Growth: 1.6, MaxLevel: 20, PerLevel: 0.05}
	return map[Upgrade]UpgradeSpec{
		UpgradeForge:     {BaseCost: inventory.Wallet{Coins: 400}, Growth: 1.6, MaxLevel: 25},
		UpgradeJeweler:   {BaseCost: inventory.Wallet{Coins: 400, Feathers: 40}, Growth: 1.6, MaxLevel: 25},
		UpgradeNet:       {BaseCost: inventory.Wallet{Coins: 300}, Growth: 1.6, MaxLevel: 25},
		UpgradeCoinBoost: boost,
		UpgradeXPBoost:   boost,
		UpgradeHuntBoost: boost,
	}
}

// StatKey names a lifetime statistic tracked on the player.
type StatKey string

const (
	StatBattlesWon      StatKey = "battles_won"
	StatBattlesLost     StatKey = "battles_lost"
	StatCreaturesCaught StatKey = "creatures_caught"
	StatGearCrafted     StatKey = "gear_crafted"
	StatGemsCrafted     StatKey = "gems_crafted"
	StatCoinsEarned     StatKey = "coins_earned"
)

// Achievement grants Reward once when Stat reaches Threshold.
type Achievement struct {
	ID        string           `yaml:"id"`
	Name      string           `yaml:"name"`
	Stat      StatKey          `yaml:"stat"`
	Threshold int              `yaml:"threshold"`
	Reward    inventory.Wallet `yaml:"reward"`
}

func defaultAchievements() []Achievement {
	crystals := func(n int) inventory.Wallet { return inventory.Wallet{Crystals: n} }
	return []Achievement{
		{ID: "first_blood", Name: "First Blood", Stat: StatBattlesWon, Threshold: 1, Reward: crystals(2)},
		{ID: "veteran", Name: "Veteran", Stat: StatBattlesWon, Threshold: 100, Reward: crystals(10)},
		{ID: "falconer", Name: "Falconer", Stat: StatCreaturesCaught, Threshold: 10, Reward: crystals(5)},
		{ID: "smith", Name: "Smith", Stat: StatGearCrafted, Threshold: 25, Reward: crystals(5)},
		{ID: "hoarder", Name: "Hoarder", Stat: StatCoinsEarned, Threshold: 100_000, Reward: crystals(15)},
	}
}
