package player_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/aviary/internal/game/balance"
	"github.com/cory-johannsen/aviary/internal/game/creature"
	"github.com/cory-johannsen/aviary/internal/game/inventory"
	"github.com/cory-johannsen/aviary/internal/game/player"
	"github.com/cory-johannsen/aviary/internal/game/rarity"
)

func sampleState(t *testing.T) *player.State {
	t.Helper()
	st := player.New(balance.Default())
	st.Creatures = []*creature.Instance{
		{ID: "c1", Name: "Kestrel", Level: 2, XPToNext: 150, Base: creature.Stats{HP: 40, Energy: 40, Attack: 10, Defense: 5, Speed: 12},
			Equipped: map[creature.Slot]string{creature.SlotBeak: "g1"}},
		{ID: "c2", Name: "Barn Owl", Level: 5, XPToNext: 500, Equipped: map[creature.Slot]string{}},
	}
	st.Gear = []*inventory.Gear{
		{ID: "g1", Slot: creature.SlotBeak, Rarity: rarity.Rare, Attack: 6, OwnerID: "c1",
			Sockets: []inventory.Socket{{Gem: &inventory.Gem{ID: "s1", Buffs: []inventory.GemBuff{{Kind: inventory.BuffXPBonus, Value: 10}}}}}},
		{ID: "g2", Slot: creature.SlotTalons, Rarity: rarity.Common, Attack: 4},
	}
	st.Gems = []*inventory.Gem{{ID: "s2"}}
	st.Party = []string{"c1"}
	st.Hunting = []string{"c2"}
	return st
}

func TestNew_FreshState(t *testing.T) {
	st := player.New(balance.Default())
	assert.Equal(t, inventory.Wallet{Coins: 500, Feathers: 50}, st.Wallet)
	assert.Equal(t, 1, st.Zone.Highest)
	assert.Equal(t, player.SchemaVersion, st.Version)
	assert.NotNil(t, st.Upgrades)
	assert.NotNil(t, st.Unlocks)
	assert.NotNil(t, st.Stats)
	assert.NotNil(t, st.Buffs)
}

func TestClone_IsDeep(t *testing.T) {
	st := sampleState(t)
	cp := st.Clone()
	assert.Equal(t, st, cp)

	cp.Wallet.Coins = 1
	cp.Creatures[0].Level = 99
	cp.Gear[0].Sockets[0].Gem.ID = "changed"
	cp.Party[0] = "c2"
	cp.Upgrades[balance.UpgradeForge] = 3
	cp.Zone.Collected = append(cp.Zone.Collected, rarity.Rare)

	assert.Equal(t, 500, st.Wallet.Coins)
	assert.Equal(t, 2, st.Creatures[0].Level)
	assert.Equal(t, "s1", st.Gear[0].Sockets[0].Gem.ID)
	assert.Equal(t, "c1", st.Party[0])
	assert.Zero(t, st.Upgrade(balance.UpgradeForge))
	assert.Empty(t, st.Zone.Collected)
}

func TestQueries(t *testing.T) {
	st := sampleState(t)
	c, ok := st.Creature("c1")
	require.True(t, ok)
	assert.Equal(t, "Kestrel", c.Name)
	_, ok = st.Creature("missing")
	assert.False(t, ok)

	inv := st.InventoryGear()
	require.Len(t, inv, 1)
	assert.Equal(t, "g2", inv[0].ID)
	require.Len(t, st.EquippedGear("c1"), 1)
	assert.Empty(t, st.EquippedGear("c2"))
	assert.Equal(t, 10.0, st.GearBuffs("c1").XPBonus)
	assert.Equal(t, 0, st.GemIndex("s2"))
	assert.Equal(t, -1, st.GemIndex("s1"))
	assert.Equal(t, 2, st.GemsInCirculation())
	assert.True(t, st.InParty("c1"))
	assert.True(t, st.IsHunting("c2"))

	cbt, ok := st.Combatant("c1")
	require.True(t, ok)
	assert.Equal(t, 16, cbt.Attack)
}

func TestNormalize_RepairsReferences(t *testing.T) {
	st := sampleState(t)
	st.Party = []string{"c1", "ghost", "c1"}
	st.Hunting = []string{"c1", "c2"}
	st.Gear[1].OwnerID = "c2" // c2 does not point back
	st.Creatures[1].Equipped[creature.SlotBeak] = "missing"
	st.Upgrades = nil
	st.Zone.Highest = 0
	st.Normalize()

	assert.Equal(t, []string{"c1"}, st.Party)
	assert.Equal(t, []string{"c2"}, st.Hunting)
	assert.Empty(t, st.Gear[1].OwnerID)
	assert.Empty(t, st.Creatures[1].Equipped)
	assert.Equal(t, "c1", st.Gear[0].OwnerID)
	assert.NotNil(t, st.Upgrades)
	assert.Equal(t, 1, st.Zone.Highest)
}

func TestNormalize_DropsNilEntries(t *testing.T) {
	st := &player.State{Creatures: []*creature.Instance{nil, {ID: "c1"}}, Gear: []*inventory.Gear{nil}, Gems: []*inventory.Gem{nil}}
	st.Normalize()
	require.Len(t, st.Creatures, 1)
	assert.Equal(t, 1, st.Creatures[0].Level)
	assert.NotNil(t, st.Creatures[0].Equipped)
	assert.Empty(t, st.Gear)
	assert.Empty(t, st.Gems)
}

func TestNormalize_GemsLiveInOnePlace(t *testing.T) {
	st := sampleState(t)
	dup := &inventory.Gem{ID: "s1"}
	st.Gems = []*inventory.Gem{{ID: "s2"}, {ID: "s1"}, {ID: "s2"}}
	st.Gear[1].Sockets = []inventory.Socket{{Gem: dup}, {Gem: &inventory.Gem{ID: "s3"}}}

	st.Normalize()

	require.Len(t, st.Gems, 1)
	assert.Equal(t, "s2", st.Gems[0].ID)
	require.NotNil(t, st.Gear[0].Sockets[0].Gem)
	assert.Equal(t, "s1", st.Gear[0].Sockets[0].Gem.ID)
	assert.Nil(t, st.Gear[1].Sockets[0].Gem)
	require.NotNil(t, st.Gear[1].Sockets[1].Gem)
	assert.Equal(t, "s3", st.Gear[1].Sockets[1].Gem.ID)
}

func TestSettleLevels_RepairsEveryCreature(t *testing.T) {
	st := sampleState(t)
	st.Creatures[0].XPToNext = 0
	st.Creatures[0].XP = 40
	st.Creatures[1].XP = 600

	gained := st.SettleLevels(creature.DefaultLevelTable())

	assert.Equal(t, 1, gained)
	for _, c := range st.Creatures {
		assert.Less(t, c.XP, c.XPToNext, c.ID)
	}
	assert.Equal(t, 150, st.Creatures[0].XPToNext)
	assert.Equal(t, 6, st.Creatures[1].Level)
	assert.Equal(t, 100, st.Creatures[1].XP)
}

func TestCheckAchievements_GrantsOnce(t *testing.T) {
	tables := balance.Default()
	st := player.New(tables)
	st.AddStat(balance.StatBattlesWon, 1)
	granted := st.CheckAchievements(tables)
	require.Len(t, granted, 1)
	assert.Equal(t, "first_blood", granted[0].ID)
	assert.Equal(t, 2, st.Wallet.Crystals)
	assert.Empty(t, st.CheckAchievements(tables))
	assert.Equal(t, 2, st.Wallet.Crystals)
}

func TestSummary(t *testing.T) {
	st := sampleState(t)
	st.Ticks = 42
	sum := st.Summary()
	assert.Equal(t, 2, sum.Creatures)
	assert.Equal(t, 5, sum.TopLevel)
	assert.Equal(t, 1, sum.HighestZone)
	assert.Equal(t, int64(42), sum.Ticks)
}

func TestState_JSONRoundTrip(t *testing.T) {
	st := sampleState(t)
	st.Zone.Collected = []rarity.Tier{rarity.Common, rarity.Epic}
	raw, err := json.Marshal(st)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"collected":["common","epic"]`)
	var back player.State
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, st.Zone, back.Zone)
	assert.Equal(t, st.Wallet, back.Wallet)
	require.Len(t, back.Gear, 2)
	assert.Equal(t, "c1", back.Gear[0].OwnerID)
}
