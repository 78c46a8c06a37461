package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/aviary/internal/game/inventory"
)

func TestWallet_SpendExactCostLeavesZero(t *testing.T) {
	w := inventory.Wallet{Coins: 250, Feathers: 25}
	assert.True(t, w.Spend(inventory.Wallet{Coins: 250, Feathers: 25}))
	assert.True(t, w.IsZero())
}

func TestWallet_SpendInsufficientIsNoop(t *testing.T) {
	w := inventory.Wallet{Coins: 249, Feathers: 25, Crystals: 3}
	before := w
	assert.False(t, w.Spend(inventory.Wallet{Coins: 250, Feathers: 25}))
	assert.Equal(t, before, w)
}

func TestWallet_AddIgnoresNegative(t *testing.T) {
	w := inventory.Wallet{Coins: 10}
	w.Add(inventory.Wallet{Coins: -5, Feathers: 3})
	assert.Equal(t, inventory.Wallet{Coins: 10, Feathers: 3}, w)
	assert.Equal(t, 3, w.Get(inventory.Feathers))
	assert.Equal(t, 0, w.Get("gold"))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "nothing", inventory.Format(inventory.Wallet{}))
	assert.Equal(t, "1 Coin", inventory.Format(inventory.Wallet{Coins: 1}))
	assert.Equal(t, "250 Coins, 25 Feathers", inventory.Format(inventory.Wallet{Coins: 250, Feathers: 25}))
	assert.Equal(t, "2 Feathers, 1 Crystal", inventory.Format(inventory.Wallet{Feathers: 2, Crystals: 1}))
}

func TestProperty_Spend_NeverGoesNegative(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		bal := func(name string) int { return rapid.IntRange(0, 10_000).Draw(rt, name) }
		w := inventory.Wallet{Coins: bal("coins"), Feathers: bal("feathers"), Crystals: bal("crystals")}
		cost := inventory.Wallet{Coins: bal("cc"), Feathers: bal("cf"), Crystals: bal("cx")}
		before := w
		ok := w.Spend(cost)
		assert.Equal(rt, before.CanAfford(cost), ok)
		assert.GreaterOrEqual(rt, w.Coins, 0)
		assert.GreaterOrEqual(rt, w.Feathers, 0)
		assert.GreaterOrEqual(rt, w.Crystals, 0)
		if !ok {
			assert.Equal(rt, before, w)
		}
	})
}
