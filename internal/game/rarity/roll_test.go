package rarity_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/aviary/internal/game/dice"
	"github.com/cory-johannsen/aviary/internal/game/rarity"
)

func TestDefaultTable_Validates(t *testing.T) {
	require.NoError(t, rarity.DefaultTable().Validate())
}

func TestTable_Validate_RejectsDescendingThresholds(t *testing.T) {
	tbl := rarity.DefaultTable()
	tbl.Thresholds = []float64{500, 400, 900, 970, 995}
	assert.Error(t, tbl.Validate())
}

func TestTable_Validate_RejectsShortMultipliers(t *testing.T) {
	tbl := rarity.DefaultTable()
	tbl.Multipliers = tbl.Multipliers[:3]
	assert.Error(t, tbl.Validate())
}

func TestTier_TextRoundTrip(t *testing.T) {
	b, err := json.Marshal(map[rarity.Tier]int{rarity.Epic: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"epic":2}`, string(b))

	var out map[rarity.Tier]int
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, 2, out[rarity.Epic])
}

func TestParseTier_Unknown(t *testing.T) {
	_, err := rarity.ParseTier("divine")
	assert.Error(t, err)
}

func TestMaxCraftTier_StepFunction(t *testing.T) {
	tbl := rarity.DefaultTable()
	assert.Equal(t, rarity.Uncommon, rarity.MaxCraftTier(tbl, 0))
	assert.Equal(t, rarity.Uncommon, rarity.MaxCraftTier(tbl, 4))
	assert.Equal(t, rarity.Rare, rarity.MaxCraftTier(tbl, 5))
	assert.Equal(t, rarity.Legendary, rarity.MaxCraftTier(tbl, 15))
	assert.Equal(t, rarity.Mythic, rarity.MaxCraftTier(tbl, 20))
	assert.Equal(t, rarity.Mythic, rarity.MaxCraftTier(tbl, 500))
}

func TestRoll_MapsThresholds(t *testing.T) {
	tbl := rarity.DefaultTable()
	cases := []struct {
		draw float64
		want rarity.Tier
	}{
		{0.0, rarity.Common},
		{0.499, rarity.Common},
		{0.5, rarity.Uncommon},
		{0.761, rarity.Rare},
		{0.901, rarity.Epic},
		{0.971, rarity.Legendary},
		{0.996, rarity.Mythic},
	}
	for _, c := range cases {
		got := rarity.Roll(dice.NewSequence(c.draw), tbl, 0, rarity.Encounter, 1)
		assert.Equal(t, c.want, got, "draw %v", c.draw)
	}
}

func TestRoll_CatchMaxMultiplierIsNearGuaranteedTop(t *testing.T) {
	tbl := rarity.DefaultTable()
	// base 300 + 720 bonus = 1020 -> Mythic
	assert.Equal(t, rarity.Mythic, rarity.Roll(dice.NewSequence(0.3), tbl, 0, rarity.Catch, 3.0))
	// a zero draw scores 720, still below the Rare threshold of 760
	assert.Equal(t, rarity.Uncommon, rarity.Roll(dice.NewSequence(0.0), tbl, 0, rarity.Catch, 3.0))
	// 50 + 720 = 770 crosses into Rare
	assert.Equal(t, rarity.Rare, rarity.Roll(dice.NewSequence(0.05), tbl, 0, rarity.Catch, 3.0))
}

func TestRoll_CatchBonusIgnoredOutsideCatch(t *testing.T) {
	tbl := rarity.DefaultTable()
	assert.Equal(t, rarity.Common, rarity.Roll(dice.NewSequence(0.3), tbl, 0, rarity.Encounter, 3.0))
}

func TestRoll_CraftClampsToCeiling(t *testing.T) {
	tbl := rarity.DefaultTable()
	assert.Equal(t, rarity.Uncommon, rarity.Roll(dice.NewSequence(0.999), tbl, 0, rarity.Craft, 1))
}

func TestProperty_CraftNeverExceedsCeiling(t *testing.T) {
	tbl := rarity.DefaultTable()
	rapid.Check(t, func(rt *rapid.T) {
		level := rapid.IntRange(0, 200).Draw(rt, "level")
		draw := rapid.Float64Range(0, 0.9999999).Draw(rt, "draw")
		mult := rapid.Float64Range(0, 5).Draw(rt, "mult")
		got := rarity.Roll(dice.NewSequence(draw), tbl, level, rarity.Craft, mult)
		assert.LessOrEqual(rt, got, rarity.MaxCraftTier(tbl, level))
	})
}

func TestProperty_HigherLevelNeverLowersTier(t *testing.T) {
	tbl := rarity.DefaultTable()
	rapid.Check(t, func(rt *rapid.T) {
		level := rapid.IntRange(0, 100).Draw(rt, "level")
		draw := rapid.Float64Range(0, 0.9999999).Draw(rt, "draw")
		low := rarity.Roll(dice.NewSequence(draw), tbl, level, rarity.Encounter, 1)
		high := rarity.Roll(dice.NewSequence(draw), tbl, level+1, rarity.Encounter, 1)
		assert.GreaterOrEqual(rt, high, low)
	})
}

func TestProperty_SampleMultiplierWithinRange(t *testing.T) {
	tbl := rarity.DefaultTable()
	rapid.Check(t, func(rt *rapid.T) {
		tier := rarity.Tier(rapid.IntRange(0, rarity.NumTiers-1).Draw(rt, "tier"))
		draw := rapid.Float64Range(0, 0.9999999).Draw(rt, "draw")
		m := rarity.SampleMultiplier(dice.NewSequence(draw), tbl, tier)
		r := tbl.MultiplierRange(tier)
		assert.GreaterOrEqual(rt, m, r.Min)
		assert.LessOrEqual(rt, m, r.Max)
	})
}

func TestRoller_LogsEachRoll(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := rarity.NewRoller(dice.NewSequence(0.5), rarity.DefaultTable(), zap.New(core))
	tier := r.Roll(0, rarity.Encounter, 1)
	assert.Equal(t, rarity.Uncommon, tier)
	entries := logs.FilterMessage("rarity roll").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "uncommon", entries[0].ContextMap()["tier"])
}
