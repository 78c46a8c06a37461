package idle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/aviary/internal/game/balance"
	"github.com/cory-johannsen/aviary/internal/game/creature"
	"github.com/cory-johannsen/aviary/internal/game/dice"
	"github.com/cory-johannsen/aviary/internal/game/forge"
	"github.com/cory-johannsen/aviary/internal/game/idle"
	"github.com/cory-johannsen/aviary/internal/game/inventory"
	"github.com/cory-johannsen/aviary/internal/game/player"
	"github.com/cory-johannsen/aviary/internal/game/rarity"
)

func newGenerator(t testing.TB, src dice.Source) *forge.Generator {
	tables := balance.Default()
	return forge.NewGenerator(rarity.NewRoller(src, tables.Rarity, zaptest.NewLogger(t)), tables, zaptest.NewLogger(t))
}

func hunter(id string, level int, h creature.Hunting) *creature.Instance {
	return &creature.Instance{
		ID: id, Name: "Barn Owl", Level: level, XPToNext: 100,
		Rarity: rarity.Common, RarityMultiplier: 1,
		Hunting:  h,
		Equipped: map[creature.Slot]string{},
	}
}

func huntingState(gen *forge.Generator, units ...*creature.Instance) *player.State {
	st := player.New(gen.Tables())
	st.Unlocks[player.UnlockHunting] = true
	for _, u := range units {
		st.Creatures = append(st.Creatures, u)
		st.Hunting = append(st.Hunting, u.ID)
	}
	return st
}

func TestTick_AccumulatesFractionalCarry(t *testing.T) {
	gen := newGenerator(t, dice.NewSequence(0.99))
	st := huntingState(gen, hunter("h1", 1, creature.Hunting{CoinsPerTick: 0.5}))

	next, rep := idle.Tick(gen, st)
	assert.Equal(t, 0, rep.Coins)
	assert.Equal(t, 0.5, next.HuntCarry)
	next, rep = idle.Tick(gen, next)
	assert.Equal(t, 1, rep.Coins)
	assert.Equal(t, 0.0, next.HuntCarry)
	assert.Equal(t, 501, next.Wallet.Coins)
	assert.Equal(t, int64(2), next.Ticks)
	assert.Equal(t, int64(0), st.Ticks, "input state untouched")
}

func TestTick_LevelScaling(t *testing.T) {
	gen := newGenerator(t, dice.NewSequence(0.99))
	st := huntingState(gen, hunter("h1", 6, creature.Hunting{CoinsPerTick: 0.5}))
	next, rep := idle.Run(gen, st, 4)
	assert.Equal(t, 3, rep.Coins)
	assert.Equal(t, 4, rep.Ticks)
	assert.Equal(t, 503, next.Wallet.Coins)
}

func TestTick_SumsUnitsAndHuntBuff(t *testing.T) {
	gen := newGenerator(t, dice.NewSequence(0.99))
	st := huntingState(gen,
		hunter("h1", 1, creature.Hunting{CoinsPerTick: 0.25}),
		hunter("h2", 1, creature.Hunting{CoinsPerTick: 0.25}),
	)
	require.True(t, st.Buffs.Activate(inventory.HuntFrenzy, rarity.Common, gen.Tables().Consumable(rarity.Common)))

	next, rep := idle.Run(gen, st, 8)
	assert.Equal(t, 2, rep.Hunters)
	assert.Equal(t, 5, rep.Coins, "8 × 0.5 × 1.25")
	assert.Equal(t, 292, next.Buffs[inventory.HuntFrenzy].RemainingTicks)
}

func TestTick_GearHuntYieldBonus(t *testing.T) {
	gen := newGenerator(t, dice.NewSequence(0.99))
	h := hunter("h1", 1, creature.Hunting{CoinsPerTick: 0.5})
	st := huntingState(gen, h)
	st.Gear = append(st.Gear, &inventory.Gear{
		ID: "g1", Slot: creature.SlotTalons, OwnerID: "h1",
		Sockets: []inventory.Socket{{Gem: &inventory.Gem{ID: "gem", Buffs: []inventory.GemBuff{{Kind: inventory.BuffHuntYield, Value: 100}}}}},
	})
	h.Equipped[creature.SlotTalons] = "g1"

	_, rep := idle.Run(gen, st, 3)
	assert.Equal(t, 3, rep.Coins)
}

func TestTick_IdleUnitsDoNotYield(t *testing.T) {
	src := dice.NewSequence(0)
	gen := newGenerator(t, src)
	st := player.New(gen.Tables())
	st.Creatures = append(st.Creatures, hunter("p1", 1, creature.Hunting{CoinsPerTick: 5, FeatherChance: 1}))
	st.Party = []string{"p1"}

	next, rep := idle.Tick(gen, st)
	assert.Zero(t, rep.Coins)
	assert.Zero(t, rep.Hunters)
	assert.Equal(t, st.Wallet, next.Wallet)
	assert.Zero(t, src.Draws())
}

func TestTick_NoFindsOnHighDraws(t *testing.T) {
	src := dice.NewSequence(0.99)
	gen := newGenerator(t, src)
	st := huntingState(gen, hunter("h1", 1, creature.Hunting{FeatherChance: 0.5, ConsumableChance: 0.5, GemChance: 0.5}))
	_, rep := idle.Tick(gen, st)
	assert.Zero(t, rep.Feathers)
	assert.Empty(t, rep.Gems)
	assert.Empty(t, rep.Consumables)
	assert.Equal(t, 3, src.Draws(), "one draw per find category")
}

func TestTick_AllFindsOnZeroDraws(t *testing.T) {
	gen := newGenerator(t, dice.NewSequence(0))
	st := huntingState(gen, hunter("h1", 1, creature.Hunting{FeatherChance: 0.1, ConsumableChance: 0.1, GemChance: 0.1}))
	next, rep := idle.Tick(gen, st)
	assert.Equal(t, 1, rep.Feathers)
	assert.Equal(t, 51, next.Wallet.Feathers)
	require.Len(t, rep.Gems, 1)
	require.Len(t, next.Gems, 1)
	require.Len(t, rep.Consumables, 1)
	assert.Equal(t, 1, next.Consumables.Count(rep.Consumables[0].Type, rep.Consumables[0].Rarity))
}

// TestTick_GemFeatherChanceAdds checks a feather_chance gem lifts a zero base
// chance above the draw.
func TestTick_GemFeatherChanceAdds(t *testing.T) {
	gen := newGenerator(t, dice.NewSequence(0.3))
	h := hunter("h1", 1, creature.Hunting{})
	st := huntingState(gen, h)
	st.Gear = append(st.Gear, &inventory.Gear{
		ID: "g1", Slot: creature.SlotBeak, OwnerID: "h1",
		Sockets: []inventory.Socket{{Gem: &inventory.Gem{ID: "gem", Buffs: []inventory.GemBuff{{Kind: inventory.BuffFeatherChance, Value: 50}}}}},
	})
	h.Equipped[creature.SlotBeak] = "g1"
	_, rep := idle.Tick(gen, st)
	assert.Equal(t, 1, rep.Feathers)
}

func TestTick_ExpiresBuffs(t *testing.T) {
	gen := newGenerator(t, dice.NewSequence(0.99))
	st := player.New(gen.Tables())
	st.Buffs[inventory.CoinRush] = inventory.ActiveBuff{Type: inventory.CoinRush, Rarity: rarity.Rare, RemainingTicks: 1, Multiplier: 1.75}
	st.Buffs[inventory.XPSurge] = inventory.ActiveBuff{Type: inventory.XPSurge, Rarity: rarity.Rare, RemainingTicks: 3, Multiplier: 1.75}

	next, rep := idle.Tick(gen, st)
	assert.Equal(t, []inventory.ConsumableType{inventory.CoinRush}, rep.Expired)
	assert.NotContains(t, next.Buffs, inventory.CoinRush)
	assert.Equal(t, 2, next.Buffs[inventory.XPSurge].RemainingTicks)
	assert.Equal(t, 1, st.Buffs[inventory.CoinRush].RemainingTicks)
}

func TestYield_FallsBackToTierMinimum(t *testing.T) {
	tables := balance.Default()
	st := player.New(tables)
	c := hunter("h1", 1, creature.Hunting{CoinsPerTick: 1})
	c.RarityMultiplier = 0
	got := idle.Yield(tables, st, c, inventory.BuffTotals{})
	assert.Equal(t, tables.Rarity.MultiplierRange(rarity.Common).Min, got)
}

func TestRun_NonPositiveIsNoOp(t *testing.T) {
	gen := newGenerator(t, dice.NewSequence(0.5))
	st := huntingState(gen, hunter("h1", 1, creature.Hunting{CoinsPerTick: 1}))
	next, rep := idle.Run(gen, st, 0)
	assert.Same(t, st, next)
	assert.Zero(t, rep.Ticks)
}

func TestProperty_TickKeepsCarryBoundedAndCoinsMonotonic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		gen := newGenerator(t, dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed")))
		n := rapid.IntRange(0, 4).Draw(rt, "hunters")
		var units []*creature.Instance
		for i := range n {
			units = append(units, hunter(string(rune('a'+i)), rapid.IntRange(1, 40).Draw(rt, "level"), creature.Hunting{
				CoinsPerTick:     rapid.Float64Range(0, 5).Draw(rt, "rate"),
				FeatherChance:    rapid.Float64Range(0, 1).Draw(rt, "feather"),
				ConsumableChance: rapid.Float64Range(0, 1).Draw(rt, "consumable"),
				GemChance:        rapid.Float64Range(0, 1).Draw(rt, "gem"),
			}))
		}
		st := huntingState(gen, units...)
		for range rapid.IntRange(1, 20).Draw(rt, "ticks") {
			next, rep := idle.Tick(gen, st)
			assert.GreaterOrEqual(rt, next.HuntCarry, 0.0)
			assert.Less(rt, next.HuntCarry, 1.0)
			assert.GreaterOrEqual(rt, next.Wallet.Coins, st.Wallet.Coins)
			assert.Equal(rt, st.Wallet.Coins+rep.Coins, next.Wallet.Coins)
			assert.Equal(rt, st.Ticks+1, next.Ticks)
			assert.Equal(rt, len(st.Gems)+len(rep.Gems), len(next.Gems))
			st = next
		}
	})
}
