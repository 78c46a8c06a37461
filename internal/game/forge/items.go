package forge

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/aviary/internal/game/creature"
	"github.com/cory-johannsen/aviary/internal/game/dice"
	"github.com/cory-johannsen/aviary/internal/game/inventory"
	"github.com/cory-johannsen/aviary/internal/game/rarity"
)

// CraftGear rolls a craft-context rarity at forgeLevel and generates gear for slot.
//
// Postcondition: result.Rarity <= rarity.MaxCraftTier(tables.Rarity, forgeLevel).
func (g *Generator) CraftGear(slot creature.Slot, forgeLevel int) *inventory.Gear {
	tier := g.roller.Roll(forgeLevel, rarity.Craft, 1)
	return g.Gear(slot, tier, forgeLevel)
}

// Gear generates a gear piece of tier for slot.
//
// Postcondition: Attack >= 0; every stat bonus tier is below the item tier or
// Common; len(Sockets) <= capacity(tier); OwnerID is empty.
func (g *Generator) Gear(slot creature.Slot, tier rarity.Tier, forgeLevel int) *inventory.Gear {
	gt := g.tables.Gear
	tier = rarity.Clamp(tier)
	mult := g.roller.Multiplier(tier)
	raw := dice.FloatRange(g.src(), gt.Attack.Min, gt.Attack.Max)
	attack := max(round(raw*mult*(1+float64(max(forgeLevel, 0))*gt.ForgeBonus)), 0)

	gear := &inventory.Gear{
		ID:     g.newID(),
		Slot:   slot,
		Rarity: tier,
		Attack: attack,
	}

	stats := creature.AllStats()
	n := dice.IntRange(g.src(), 0, gt.MaxBonuses)
	for range n {
		bt := rarity.Lower(tier, dice.IntRange(g.src(), gt.BonusTierDrop.Min, gt.BonusTierDrop.Max))
		stat := stats[dice.Pick(g.src(), len(stats))]
		r := gt.BonusRange(bt)
		gear.Bonuses = append(gear.Bonuses, inventory.StatBonus{
			Stat:   stat,
			Value:  dice.IntRange(g.src(), r.Min, r.Max),
			Rarity: bt,
		})
	}

	if dice.Chance(g.src(), gt.PrefixChance) {
		kinds := inventory.PrefixKinds()
		kind := kinds[dice.Pick(g.src(), len(kinds))]
		r := gt.PrefixRange(kind, tier)
		gear.Prefix = &inventory.Prefix{Kind: kind, Magnitude: dice.FloatRange(g.src(), r.Min, r.Max)}
	}

	gear.Sockets = make([]inventory.Socket, g.socketCount(tier))
	g.logger.Debug("generated gear",
		zap.String("id", gear.ID),
		zap.String("slot", string(slot)),
		zap.Stringer("rarity", tier),
		zap.Int("attack", attack),
		zap.Int("sockets", len(gear.Sockets)),
	)
	return gear
}

// socketCount draws full, one-less or zero sockets by weight. Tiers without
// socket capacity consume no draw.
func (g *Generator) socketCount(tier rarity.Tier) int {
	gt := g.tables.Gear
	capacity := gt.Capacity(tier)
	if capacity <= 0 {
		return 0
	}
	w := gt.SocketWeights
	switch dice.Weighted(g.src(), []int{w.Full, w.OneLess, w.Zero}) {
	case 0:
		return capacity
	case 1:
		return capacity - 1
	default:
		return 0
	}
}

// CraftGem rolls a craft-context rarity at jewelerLevel and generates a gem.
func (g *Generator) CraftGem(jewelerLevel int) *inventory.Gem {
	tier := g.roller.Roll(jewelerLevel, rarity.Craft, 1)
	return g.Gem(tier)
}

// Gem generates a gem of tier with one or two buffs.
//
// Postcondition: 1 <= len(Buffs) <= 2; each buff tier is within BuffTierDrop
// tiers below the gem tier, floored at Common.
func (g *Generator) Gem(tier rarity.Tier) *inventory.Gem {
	gt := g.tables.Gem
	tier = rarity.Clamp(tier)
	n := 1
	if dice.Chance(g.src(), gt.TwoBuffChance) {
		n = 2
	}
	gem := &inventory.Gem{ID: g.newID(), Rarity: tier}
	kinds := inventory.BuffKinds()
	for range n {
		bt := rarity.Lower(tier, dice.IntRange(g.src(), 0, gt.BuffTierDrop))
		kind := kinds[dice.Pick(g.src(), len(kinds))]
		r := gt.ValueRange(kind, bt)
		gem.Buffs = append(gem.Buffs, inventory.GemBuff{
			Kind:   kind,
			Value:  dice.FloatRange(g.src(), r.Min, r.Max),
			Rarity: bt,
		})
	}
	g.logger.Debug("generated gem",
		zap.String("id", gem.ID),
		zap.Stringer("rarity", tier),
		zap.Int("buffs", n),
	)
	return gem
}

// Consumable picks a uniformly random consumable type.
func (g *Generator) Consumable() inventory.ConsumableType {
	types := inventory.ConsumableTypes()
	return types[dice.Pick(g.src(), len(types))]
}
