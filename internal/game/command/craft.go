package command

import (
	"github.com/cory-johannsen/aviary/internal/game/balance"
	"github.com/cory-johannsen/aviary/internal/game/creature"
	"github.com/cory-johannsen/aviary/internal/game/player"
)

// CraftGear spends the gear cost and forges a piece for slot at the owned
// forge level.
//
// Precondition: env and st must not be nil.
// Postcondition: on success the returned state has the cost deducted and the
// new gear in inventory; otherwise st is returned unchanged.
func CraftGear(env *Env, st *player.State, slot creature.Slot) (*player.State, Result) {
	if !slot.Valid() {
		return st, fail(ReasonInvalid)
	}
	cost := env.Tables.Economy.CraftGearCost
	if !st.Wallet.CanAfford(cost) {
		return st, fail(ReasonInsufficientFunds)
	}
	next := st.Clone()
	next.Wallet.Spend(cost)
	g := env.Gen.CraftGear(slot, next.Upgrade(balance.UpgradeForge))
	next.Gear = append(next.Gear, g)
	next.AddStat(balance.StatGearCrafted, 1)
	return next, Result{Gear: g, Achievements: next.CheckAchievements(env.Tables)}
}

// CraftGem spends the gem cost and cuts a gem at the owned jeweler level.
// Gems stay locked until the gems zone is reached.
func CraftGem(env *Env, st *player.State) (*player.State, Result) {
	if !st.Unlocked(player.UnlockGems) {
		return st, fail(ReasonLocked)
	}
	cost := env.Tables.Economy.CraftGemCost
	if !st.Wallet.CanAfford(cost) {
		return st, fail(ReasonInsufficientFunds)
	}
	next := st.Clone()
	next.Wallet.Spend(cost)
	g := env.Gen.CraftGem(next.Upgrade(balance.UpgradeJeweler))
	next.Gems = append(next.Gems, g)
	next.AddStat(balance.StatGemsCrafted, 1)
	return next, Result{Gem: g, Achievements: next.CheckAchievements(env.Tables)}
}

// PurchaseUpgrade buys the next level of u at CostAt(level).
//
// Postcondition: on success the upgrade level grows by exactly one.
func PurchaseUpgrade(env *Env, st *player.State, u balance.Upgrade) (*player.State, Result) {
	up, ok := env.Tables.Upgrades[u]
	if !ok {
		return st, fail(ReasonNotFound)
	}
	level := st.Upgrade(u)
	if level >= up.MaxLevel {
		return st, fail(ReasonMaxLevel)
	}
	cost := up.CostAt(level)
	if !st.Wallet.CanAfford(cost) {
		return st, fail(ReasonInsufficientFunds)
	}
	next := st.Clone()
	next.Wallet.Spend(cost)
	next.Upgrades[u] = level + 1
	return next, Result{}
}
