package forge_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/aviary/internal/game/balance"
	"github.com/cory-johannsen/aviary/internal/game/creature"
	"github.com/cory-johannsen/aviary/internal/game/dice"
	"github.com/cory-johannsen/aviary/internal/game/forge"
	"github.com/cory-johannsen/aviary/internal/game/rarity"
)

func newGenerator(t testing.TB, src dice.Source) *forge.Generator {
	tables := balance.Default()
	return forge.NewGenerator(rarity.NewRoller(src, tables.Rarity, zaptest.NewLogger(t)), tables, zaptest.NewLogger(t))
}

func template() *creature.Template {
	return &creature.Template{
		ID:   "kestrel",
		Name: "Kestrel",
		Stats: creature.StatRanges{
			HP:      creature.StatRange{Min: 40, Max: 52},
			Energy:  creature.StatRange{Min: 40, Max: 50},
			Attack:  creature.StatRange{Min: 9, Max: 13},
			Defense: creature.StatRange{Min: 6, Max: 9},
			Speed:   creature.StatRange{Min: 14, Max: 18},
		},
		EnergyRegen: 1.2,
		Moves:       []creature.Move{{ID: "peck", Name: "Peck", Kind: creature.MoveAttack, Power: 10, Accuracy: 95}},
		Passive:     creature.Passive{Kind: creature.PassiveKeenEye},
	}
}

func TestCreature_ScriptedDraws(t *testing.T) {
	// multiplier draw 0 gives 1.5 for Rare; stat draws 0 give every minimum.
	g := newGenerator(t, dice.NewSequence(0))
	c := g.Creature(template(), rarity.Rare)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, rarity.Rare, c.Rarity)
	assert.InDelta(t, 1.5, c.RarityMultiplier, 1e-9)
	assert.Equal(t, creature.Stats{HP: 60, Energy: 60, Attack: 14, Defense: 9, Speed: 21}, c.Base)
	assert.Equal(t, 1, c.Level)
	assert.Equal(t, 0, c.XP)
	assert.Equal(t, 100, c.XPToNext)
	assert.Empty(t, c.Equipped)
	require.Len(t, c.Moves, 1)
}

func TestProperty_Creature_StatsWithinScaledRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		g := newGenerator(t, dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed")))
		tier := rarity.Tier(rapid.IntRange(0, 5).Draw(rt, "tier"))
		tmpl := template()
		c := g.Creature(tmpl, tier)
		mr := balance.Default().Rarity.MultiplierRange(tier)
		for _, s := range creature.AllStats() {
			r := tmpl.Stats.Get(s)
			lo := int(math.Round(float64(r.Min) * mr.Min))
			hi := int(math.Round(float64(r.Max) * mr.Max))
			v := c.Base.Get(s)
			assert.GreaterOrEqual(rt, v, lo, "stat %s", s)
			assert.LessOrEqual(rt, v, hi, "stat %s", s)
		}
		assert.NotEqual(rt, g.Creature(tmpl, tier).ID, c.ID)
	})
}

func TestGear_ScriptedCommonPiece(t *testing.T) {
	// mult 1.0, attack 4+0.5*4 = 6, zero bonuses, prefix roll 0.9 misses.
	g := newGenerator(t, dice.NewSequence(0, 0.5, 0, 0.9))
	gear := g.Gear(creature.SlotBeak, rarity.Common, 0)
	assert.Equal(t, 6, gear.Attack)
	assert.Empty(t, gear.Bonuses)
	assert.Nil(t, gear.Prefix)
	assert.Empty(t, gear.Sockets)
	assert.Empty(t, gear.OwnerID)

	g = newGenerator(t, dice.NewSequence(0, 0.5, 0, 0.9))
	assert.Equal(t, 9, g.Gear(creature.SlotBeak, rarity.Common, 10).Attack, "forge level 10 adds 50%")
}

func TestProperty_CraftGear_Invariants(t *testing.T) {
	tables := balance.Default()
	rapid.Check(t, func(rt *rapid.T) {
		g := newGenerator(t, dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed")))
		level := rapid.IntRange(0, 40).Draw(rt, "forge")
		slot := rapid.SampledFrom(creature.Slots()).Draw(rt, "slot")
		gear := g.CraftGear(slot, level)

		assert.LessOrEqual(rt, gear.Rarity, rarity.MaxCraftTier(tables.Rarity, level))
		assert.Equal(rt, slot, gear.Slot)
		assert.GreaterOrEqual(rt, gear.Attack, 0)
		assert.LessOrEqual(rt, len(gear.Bonuses), tables.Gear.MaxBonuses)
		assert.LessOrEqual(rt, len(gear.Sockets), tables.Gear.Capacity(gear.Rarity))
		for _, b := range gear.Bonuses {
			if gear.Rarity == rarity.Common {
				assert.Equal(rt, rarity.Common, b.Rarity)
			} else {
				assert.Less(rt, b.Rarity, gear.Rarity)
			}
			r := tables.Gear.BonusRange(b.Rarity)
			assert.GreaterOrEqual(rt, b.Value, r.Min)
			assert.LessOrEqual(rt, b.Value, r.Max)
		}
		if gear.Prefix != nil {
			r := tables.Gear.PrefixRange(gear.Prefix.Kind, gear.Rarity)
			assert.GreaterOrEqual(rt, gear.Prefix.Magnitude, r.Min)
			assert.LessOrEqual(rt, gear.Prefix.Magnitude, r.Max)
		}
	})
}

func TestGear_SocketSplit(t *testing.T) {
	// Epic capacity 2: weights full 20, one-less 30, zero 50 out of 100.
	cases := map[float64]int{0.1: 2, 0.3: 1, 0.8: 0}
	for draw, want := range cases {
		// mult, attack, bonus count 0, prefix miss, socket draw.
		g := newGenerator(t, dice.NewSequence(0, 0, 0, 0.99, draw))
		assert.Len(t, g.Gear(creature.SlotTalons, rarity.Epic, 0).Sockets, want, "draw %v", draw)
	}
}

func TestProperty_Gem_Invariants(t *testing.T) {
	tables := balance.Default()
	rapid.Check(t, func(rt *rapid.T) {
		g := newGenerator(t, dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed")))
		level := rapid.IntRange(0, 40).Draw(rt, "jeweler")
		gem := g.CraftGem(level)
		assert.LessOrEqual(rt, gem.Rarity, rarity.MaxCraftTier(tables.Rarity, level))
		require.GreaterOrEqual(rt, len(gem.Buffs), 1)
		require.LessOrEqual(rt, len(gem.Buffs), 2)
		for _, b := range gem.Buffs {
			assert.LessOrEqual(rt, b.Rarity, gem.Rarity)
			assert.GreaterOrEqual(rt, b.Rarity, rarity.Lower(gem.Rarity, 1))
			r := tables.Gem.ValueRange(b.Kind, b.Rarity)
			assert.GreaterOrEqual(rt, b.Value, r.Min)
			assert.LessOrEqual(rt, b.Value, r.Max)
		}
	})
}

func TestConsumable_Valid(t *testing.T) {
	g := newGenerator(t, dice.NewSeededSource(7))
	for range 20 {
		assert.True(t, g.Consumable().Valid())
	}
}

func TestProperty_Opponent_LevelForZone(t *testing.T) {
	tables := balance.Default()
	rapid.Check(t, func(rt *rapid.T) {
		g := newGenerator(t, dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed")))
		zone := rapid.IntRange(1, 10).Draw(rt, "zone")
		opp := g.Opponent([]*creature.Template{template()}, zone)
		base := 1 + (zone-1)*tables.Opponent.LevelsPerZone
		assert.GreaterOrEqual(rt, opp.Creature.Level, base)
		assert.LessOrEqual(rt, opp.Creature.Level, base+tables.Opponent.LevelJitter)
		assert.Equal(rt, zone, opp.Zone)
		assert.GreaterOrEqual(rt, opp.Creature.Base.HP, 1)
		assert.Contains(rt, []balance.Modifier{balance.ModifierNone, balance.ModifierElite, balance.ModifierHoarder, balance.ModifierGilded}, opp.Modifier)
	})
}

func TestCatch_HighMultiplierFavoursRarity(t *testing.T) {
	// Score 300 + 720 catch bonus reaches Mythic.
	g := newGenerator(t, dice.NewSequence(0.3, 0))
	c := g.Catch(template(), 0, 3.0)
	assert.Equal(t, rarity.Mythic, c.Rarity)
}
