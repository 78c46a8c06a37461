package gameserver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/aviary/internal/game/rarity"
	"github.com/cory-johannsen/aviary/internal/gameserver"
)

var (
	color = gameserver.Palette{Color: true}
	plain = gameserver.Palette{}
)

func TestPalette_Paint(t *testing.T) {
	assert.Equal(t, "\033[31mdanger\033[0m", color.Paint(gameserver.Red, "danger"))
	assert.Equal(t, "danger", plain.Paint(gameserver.Red, "danger"))
	assert.Equal(t, "\033[32mhp: 42\033[0m", color.Paintf(gameserver.Green, "hp: %d", 42))
}

func TestPalette_Tier(t *testing.T) {
	assert.Equal(t, "\033[37mCommon\033[0m", color.Tier(rarity.Common, "Common"))
	assert.Equal(t, "\033[91mMythic\033[0m", color.Tier(rarity.Tier(rarity.NumTiers-1), "Mythic"))
	assert.Equal(t, "odd", color.Tier(rarity.Tier(99), "odd"))
	assert.Equal(t, "Rare", plain.Tier(rarity.Rare, "Rare"))
}

func TestStripANSI(t *testing.T) {
	assert.Equal(t, "red normal bold green", gameserver.StripANSI("\033[31mred\033[0m normal \033[1m\033[32mbold green\033[0m"))
	assert.Equal(t, "plain text", gameserver.StripANSI("plain text"))
	assert.Equal(t, "", gameserver.StripANSI(""))
}

func TestProperty_StripANSI_InvertsPaint(t *testing.T) {
	colors := []string{gameserver.Red, gameserver.Green, gameserver.Blue, gameserver.Yellow, gameserver.Cyan, gameserver.Magenta, gameserver.White, gameserver.Bold, gameserver.Dim}
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringMatching(`[a-zA-Z0-9 ]{0,50}`).Draw(t, "text")
		c := rapid.SampledFrom(colors).Draw(t, "color")
		assert.Equal(t, text, gameserver.StripANSI(color.Paint(c, text)))
	})
}

func TestProperty_StripANSI_NeverGrows(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.String().Draw(t, "text")
		assert.LessOrEqual(t, len(gameserver.StripANSI(text)), len(text))
	})
}
