// Package idle advances a player state by one wall-clock tick: hunting units
// accrue coins and roll finds, and timed buffs decay.
package idle

import (
	"math"

	"github.com/cory-johannsen/aviary/internal/game/balance"
	"github.com/cory-johannsen/aviary/internal/game/creature"
	"github.com/cory-johannsen/aviary/internal/game/dice"
	"github.com/cory-johannsen/aviary/internal/game/forge"
	"github.com/cory-johannsen/aviary/internal/game/inventory"
	"github.com/cory-johannsen/aviary/internal/game/player"
	"github.com/cory-johannsen/aviary/internal/game/rarity"
)

// Report describes what one or more ticks produced.
type Report struct {
	Ticks       int                        `json:"ticks"`
	Hunters     int                        `json:"hunters"`
	Coins       int                        `json:"coins"`
	Feathers    int                        `json:"feathers"`
	Gems        []*inventory.Gem           `json:"gems,omitempty"`
	Consumables inventory.Stacks           `json:"consumables,omitempty"`
	Expired     []inventory.ConsumableType `json:"expired,omitempty"`
}

func (r *Report) merge(o Report) {
	r.Ticks += o.Ticks
	r.Hunters = o.Hunters
	r.Coins += o.Coins
	r.Feathers += o.Feathers
	r.Gems = append(r.Gems, o.Gems...)
	for _, s := range o.Consumables {
		r.Consumables = r.Consumables.Add(s.Type, s.Rarity, s.Count)
	}
	r.Expired = append(r.Expired, o.Expired...)
}

// Yield returns the fractional coins creature c produces per tick while
// hunting with the given gear bonuses.
//
// Postcondition: coins_per_tick × rarity multiplier × level factor ×
// (1 + HuntYield/100) × hunt buff × hunt boost; never negative.
func Yield(t *balance.Tables, st *player.State, c *creature.Instance, bonus inventory.BuffTotals) float64 {
	mult := c.RarityMultiplier
	if mult <= 0 {
		mult = t.Rarity.MultiplierRange(c.Rarity).Min
	}
	level := max(c.Level, 1)
	v := c.Hunting.CoinsPerTick * mult *
		(1 + float64(level-1)*t.Idle.LevelScale) *
		(1 + bonus.HuntYield/100) *
		st.Buffs.Multiplier(inventory.HuntFrenzy) *
		t.BoostMultiplier(balance.UpgradeHuntBoost, st.Upgrade(balance.UpgradeHuntBoost))
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

// Tick applies one tick to st. Finds are rolled once per tick against the
// summed chances of every hunting unit; with nobody hunting no draw is made.
//
// Precondition: gen and st must not be nil.
// Postcondition: st is not modified; the returned state has Ticks+1, a carry in
// [0, 1) and every active buff one tick shorter.
func Tick(gen *forge.Generator, st *player.State) (*player.State, Report) {
	t := gen.Tables()
	src := gen.Roller().Source()
	next := st.Clone()
	rep := Report{Ticks: 1}

	var yield, featherP, consumableP, gemP float64
	for _, id := range next.Hunting {
		c, ok := next.Creature(id)
		if !ok {
			continue
		}
		rep.Hunters++
		bonus := next.GearBuffs(id)
		yield += Yield(t, next, c, bonus)
		featherP += c.Hunting.FeatherChance + bonus.FeatherChance/100
		consumableP += c.Hunting.ConsumableChance
		gemP += c.Hunting.GemChance
	}

	total := next.HuntCarry + yield
	rep.Coins = int(math.Floor(total))
	next.HuntCarry = total - float64(rep.Coins)
	if next.HuntCarry < 0 || next.HuntCarry >= 1 {
		next.HuntCarry = 0
	}

	if rep.Hunters > 0 {
		if dice.Chance(src, featherP) {
			rep.Feathers = dice.IntRange(src, t.Idle.FeatherYield.Min, t.Idle.FeatherYield.Max)
		}
		dropLevel := next.Zone.Highest * t.Opponent.RarityLevelPerZone
		if dice.Chance(src, consumableP) {
			tier := gen.Roller().Roll(dropLevel, rarity.Encounter, 1)
			rep.Consumables = rep.Consumables.Add(gen.Consumable(), tier, 1)
		}
		if dice.Chance(src, gemP) {
			tier := gen.Roller().Roll(dropLevel, rarity.Encounter, 1)
			rep.Gems = append(rep.Gems, gen.Gem(tier))
		}
	}

	next.Wallet.Add(inventory.Wallet{Coins: rep.Coins, Feathers: rep.Feathers})
	next.AddStat(balance.StatCoinsEarned, rep.Coins)
	next.Gems = append(next.Gems, rep.Gems...)
	for _, s := range rep.Consumables {
		next.Consumables = next.Consumables.Add(s.Type, s.Rarity, s.Count)
	}
	rep.Expired = next.Buffs.Tick()
	next.Ticks++
	return next, rep
}

// Run applies n ticks in sequence and returns the merged report.
//
// Postcondition: n <= 0 returns st unchanged with an empty report.
func Run(gen *forge.Generator, st *player.State, n int) (*player.State, Report) {
	var total Report
	for range max(n, 0) {
		var rep Report
		st, rep = Tick(gen, st)
		total.merge(rep)
	}
	return st, total
}
