package command

import (
	"slices"

	"github.com/cory-johannsen/aviary/internal/game/inventory"
	"github.com/cory-johannsen/aviary/internal/game/player"
	"github.com/cory-johannsen/aviary/internal/game/rarity"
)

// SellGear salvages inventory gear gearID for feathers. Socketed gems return
// to inventory; equipped gear must be unequipped first.
func SellGear(env *Env, st *player.State, gearID string) (*player.State, Result) {
	g, ok := st.GearByID(gearID)
	if !ok {
		return st, fail(ReasonNotFound)
	}
	if g.Equipped() {
		return st, fail(ReasonConflict)
	}
	next := st.Clone()
	ng, _ := next.GearByID(gearID)
	returned := ng.Gems()
	next.Gems = append(next.Gems, returned...)
	next.Gear = slices.DeleteFunc(next.Gear, func(x *inventory.Gear) bool { return x.ID == gearID })
	value := env.Tables.Economy.SellValue(ng.Rarity)
	next.Wallet.Add(inventory.Wallet{Feathers: value})
	return next, Result{Gear: ng, Returned: returned, Feathers: value}
}

// SellGem salvages loose gem gemID for feathers.
func SellGem(env *Env, st *player.State, gemID string) (*player.State, Result) {
	if st.GemIndex(gemID) < 0 {
		return st, fail(ReasonNotFound)
	}
	next := st.Clone()
	gem := next.Gems[next.GemIndex(gemID)]
	next.Gems = slices.DeleteFunc(next.Gems, func(x *inventory.Gem) bool { return x.ID == gemID })
	value := env.Tables.Economy.SellValue(gem.Rarity)
	next.Wallet.Add(inventory.Wallet{Feathers: value})
	return next, Result{Gem: gem, Feathers: value}
}

// UseConsumable consumes one stack item of c at rarity r and activates its
// timed buff. Using the same rarity while active extends the remaining
// ticks; a different rarity while active is rejected.
//
// Postcondition: at most one active buff exists per consumable type.
func UseConsumable(env *Env, st *player.State, c inventory.ConsumableType, r rarity.Tier) (*player.State, Result) {
	if !c.Valid() || !r.Valid() {
		return st, fail(ReasonInvalid)
	}
	if st.Consumables.Count(c, r) == 0 {
		return st, fail(ReasonNotFound)
	}
	if active, ok := st.Buffs[c]; ok && active.RemainingTicks > 0 && active.Rarity != r {
		return st, fail(ReasonConflict)
	}
	next := st.Clone()
	next.Consumables, _ = next.Consumables.Take(c, r)
	next.Buffs.Activate(c, r, env.Tables.Consumable(r))
	return next, Result{}
}
