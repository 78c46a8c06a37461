package balance_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/aviary/internal/game/balance"
	"github.com/cory-johannsen/aviary/internal/game/inventory"
	"github.com/cory-johannsen/aviary/internal/game/rarity"
)

func TestDefault_Validates(t *testing.T) {
	require.NoError(t, balance.Default().Validate())
}

func TestLoadFromBytes_MergesOverDefaults(t *testing.T) {
	tbl, err := balance.LoadFromBytes([]byte(`
economy:
  catch_cost: {coins: 75}
reward:
  required_tiers: [common, rare]
rarity:
  craft_floor: rare
upgrades:
  net: {base_cost: {coins: 10}, growth: 2, max_level: 3}
`))
	require.NoError(t, err)
	assert.Equal(t, 75, tbl.Economy.CatchCost.Coins)
	assert.Equal(t, 250, tbl.Economy.CraftGearCost.Coins, "untouched default survives")
	assert.Equal(t, []rarity.Tier{rarity.Common, rarity.Rare}, tbl.Reward.RequiredTiers)
	assert.Equal(t, rarity.Rare, tbl.Rarity.CraftFloor)
	assert.Equal(t, 3, tbl.Upgrades[balance.UpgradeNet].MaxLevel)
	assert.Equal(t, 25, tbl.Upgrades[balance.UpgradeForge].MaxLevel)
}

func TestLoadFromBytes_RejectsInvalid(t *testing.T) {
	_, err := balance.LoadFromBytes([]byte(`
rarity:
  thresholds: [900, 500]
economy:
  party_size: 0
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rarity.thresholds")
	assert.Contains(t, err.Error(), "economy.party_size")
}

func TestLoadFromBytes_RejectsMalformedYAML(t *testing.T) {
	_, err := balance.LoadFromBytes([]byte("rarity: [unterminated"))
	assert.Error(t, err)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "balance.yaml")
	require.NoError(t, os.WriteFile(path, []byte("combat:\n  rest_energy: 20\n"), 0o644))
	tbl, err := balance.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 20, tbl.Combat.RestEnergy)

	_, err = balance.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_ShippedBalanceFile(t *testing.T) {
	_, err := balance.Load(filepath.Join("..", "..", "..", "content", "balance.yaml"))
	require.NoError(t, err)
}

func TestUpgradeSpec_CostAt(t *testing.T) {
	up := balance.Default().Upgrades[balance.UpgradeForge]
	assert.Equal(t, inventory.Wallet{Coins: 400}, up.CostAt(0))
	assert.Equal(t, inventory.Wallet{Coins: 640}, up.CostAt(1))
	assert.Equal(t, inventory.Wallet{Coins: 1024}, up.CostAt(2))
}

func TestTables_Lookups(t *testing.T) {
	tbl := balance.Default()
	assert.Equal(t, 3, tbl.Gear.Capacity(rarity.Mythic))
	assert.Equal(t, 0, tbl.Gear.Capacity(rarity.Common))
	assert.Equal(t, balance.IntRange{Min: 12, Max: 18}, tbl.Gear.BonusRange(rarity.Mythic))
	assert.Equal(t, rarity.Range{Min: 1.5, Max: 2.5}, tbl.Gem.ValueRange(inventory.BuffCrystalChance, rarity.Mythic))
	assert.Equal(t, rarity.Range{Min: 2, Max: 4}, tbl.Gem.ValueRange(inventory.BuffCoinBonus, rarity.Common))
	assert.InDelta(t, 1.5, tbl.Opponent.RewardMultiplier(balance.ModifierElite), 1e-9)
	assert.InDelta(t, 1.0, tbl.Opponent.RewardMultiplier("unknown"), 1e-9)
	assert.Equal(t, []int{70, 15, 8, 7}, tbl.Opponent.ModifierWeights())
	assert.Equal(t, 160, tbl.Economy.SellValue(rarity.Mythic))
	assert.Equal(t, 1800, tbl.Consumable(rarity.Mythic).DurationTicks)
	assert.InDelta(t, 1.25, tbl.BoostMultiplier(balance.UpgradeXPBoost, 5), 1e-9)
}

func TestProperty_CostAt_NonDecreasing(t *testing.T) {
	tbl := balance.Default()
	rapid.Check(t, func(rt *rapid.T) {
		u := rapid.SampledFrom(balance.Upgrades()).Draw(rt, "upgrade")
		level := rapid.IntRange(0, 30).Draw(rt, "level")
		up := tbl.Upgrades[u]
		a, b := up.CostAt(level), up.CostAt(level+1)
		assert.GreaterOrEqual(rt, b.Coins, a.Coins)
		assert.GreaterOrEqual(rt, b.Feathers, a.Feathers)
		assert.GreaterOrEqual(rt, b.Crystals, a.Crystals)
	})
}
