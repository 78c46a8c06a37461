package inventory_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/aviary/internal/game/creature"
	"github.com/cory-johannsen/aviary/internal/game/inventory"
	"github.com/cory-johannsen/aviary/internal/game/rarity"
)

func newGear() *inventory.Gear {
	return &inventory.Gear{
		ID:     "g1",
		Slot:   creature.SlotTalons,
		Rarity: rarity.Epic,
		Attack: 9,
		Prefix: &inventory.Prefix{Kind: inventory.PrefixBonusAttack, Magnitude: 3.7},
		Bonuses: []inventory.StatBonus{
			{Stat: creature.StatSpeed, Value: 4, Rarity: rarity.Rare},
			{Stat: creature.StatSpeed, Value: 2, Rarity: rarity.Uncommon},
			{Stat: creature.StatHP, Value: 5, Rarity: rarity.Rare},
		},
		Sockets: make([]inventory.Socket, 2),
	}
}

func TestGear_Derived(t *testing.T) {
	g := newGear()
	assert.Equal(t, 12, g.EffectiveAttack())
	assert.Zero(t, g.CritChance())
	assert.Zero(t, g.BleedBonus())
	assert.Equal(t, creature.Stats{HP: 5, Speed: 6}, g.StatTotals())
	assert.False(t, g.Equipped())
}

func TestGear_InsertAndRemove(t *testing.T) {
	g := newGear()
	a := &inventory.Gem{ID: "a", Buffs: []inventory.GemBuff{{Kind: inventory.BuffXPBonus, Value: 5}}}
	b := &inventory.Gem{ID: "b", Buffs: []inventory.GemBuff{{Kind: inventory.BuffXPBonus, Value: 2.5}, {Kind: inventory.BuffCrystalChance, Value: 0.4}}}
	require.True(t, g.Insert(a))
	require.True(t, g.Insert(b))
	assert.False(t, g.Insert(&inventory.Gem{ID: "c"}), "no free socket")
	assert.Equal(t, -1, g.FreeSocket())

	totals := g.Buffs()
	assert.InDelta(t, 7.5, totals.XPBonus, 1e-9)
	assert.InDelta(t, 0.4, totals.CrystalChance, 1e-9)

	gem, ok := g.Remove(0)
	require.True(t, ok)
	assert.Equal(t, "a", gem.ID)
	_, ok = g.Remove(0)
	assert.False(t, ok, "socket already empty")
	_, ok = g.Remove(7)
	assert.False(t, ok)
	assert.Len(t, g.Gems(), 1)
}

func TestGear_CloneIsDeep(t *testing.T) {
	g := newGear()
	g.Insert(&inventory.Gem{ID: "a", Buffs: []inventory.GemBuff{{Kind: inventory.BuffHuntYield, Value: 3}}})
	cp := g.Clone()
	cp.Prefix.Magnitude = 99
	cp.Sockets[0].Gem.Buffs[0].Value = 99
	cp.Bonuses[0].Value = 99
	assert.InDelta(t, 3.7, g.Prefix.Magnitude, 1e-9)
	assert.InDelta(t, 3, g.Sockets[0].Gem.Buffs[0].Value, 1e-9)
	assert.Equal(t, 4, g.Bonuses[0].Value)
}

func TestGear_JSONUsesTierNames(t *testing.T) {
	data, err := json.Marshal(newGear())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"rarity":"epic"`)
	assert.Contains(t, string(data), `"slot":"talons"`)

	var back inventory.Gear
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, rarity.Epic, back.Rarity)
	assert.Len(t, back.Sockets, 2)
}

func TestBuffKind_IsRare(t *testing.T) {
	assert.True(t, inventory.BuffFeatherChance.IsRare())
	assert.True(t, inventory.BuffCrystalChance.IsRare())
	assert.False(t, inventory.BuffCoinBonus.IsRare())
	assert.Len(t, inventory.BuffKinds(), 5)
}
