package command

import (
	"slices"

	"github.com/cory-johannsen/aviary/internal/game/balance"
	"github.com/cory-johannsen/aviary/internal/game/creature"
	"github.com/cory-johannsen/aviary/internal/game/player"
	"github.com/cory-johannsen/aviary/internal/game/rarity"
)

// Catch spends the catch cost and rolls a new creature of species
// templateID. multiplier is the skill input of the catch attempt.
func Catch(env *Env, st *player.State, templateID string, multiplier float64) (*player.State, Result) {
	tmpl, ok := env.Templates[templateID]
	if !ok {
		return st, fail(ReasonNotFound)
	}
	cost := env.Tables.Economy.CatchCost
	if !st.Wallet.CanAfford(cost) {
		return st, fail(ReasonInsufficientFunds)
	}
	next := st.Clone()
	next.Wallet.Spend(cost)
	c := env.Gen.Catch(tmpl, next.Upgrade(balance.UpgradeNet), multiplier)
	next.Creatures = append(next.Creatures, c)
	if len(next.Party) < env.Tables.Economy.PartySize {
		next.Party = append(next.Party, c.ID)
	}
	next.AddStat(balance.StatCreaturesCaught, 1)
	return next, Result{Creature: c, Achievements: next.CheckAchievements(env.Tables)}
}

// Starter grants a Common creature of species templateID to a state whose
// roster is empty.
//
// Postcondition: a non-empty roster is rejected with ReasonConflict.
func Starter(env *Env, st *player.State, templateID string) (*player.State, Result) {
	if len(st.Creatures) > 0 {
		return st, fail(ReasonConflict)
	}
	tmpl, ok := env.Templates[templateID]
	if !ok {
		return st, fail(ReasonNotFound)
	}
	return Grant(env, st, env.Gen.Creature(tmpl, rarity.Common))
}

// Grant adds c to the roster at no cost.
func Grant(env *Env, st *player.State, c *creature.Instance) (*player.State, Result) {
	if c == nil || c.ID == "" {
		return st, fail(ReasonInvalid)
	}
	if _, exists := st.Creature(c.ID); exists {
		return st, fail(ReasonConflict)
	}
	next := st.Clone()
	c = c.Clone()
	next.Creatures = append(next.Creatures, c)
	if len(next.Party) < env.Tables.Economy.PartySize {
		next.Party = append(next.Party, c.ID)
	}
	return next, Result{Creature: c}
}

// Release removes creature id. Its gear returns to inventory first. The last
// creature cannot be released.
//
// Postcondition: no gear references id; id is in neither Party nor Hunting.
func Release(st *player.State, id string) (*player.State, Result) {
	if _, ok := st.Creature(id); !ok {
		return st, fail(ReasonNotFound)
	}
	if len(st.Creatures) == 1 {
		return st, fail(ReasonLimit)
	}
	next := st.Clone()
	for _, g := range next.Gear {
		if g.OwnerID == id {
			g.OwnerID = ""
		}
	}
	next.Creatures = slices.DeleteFunc(next.Creatures, func(c *creature.Instance) bool { return c.ID == id })
	next.Party = slices.DeleteFunc(next.Party, func(s string) bool { return s == id })
	next.Hunting = slices.DeleteFunc(next.Hunting, func(s string) bool { return s == id })
	return next, Result{}
}

// SelectParty replaces the battle party with ids. Selected creatures leave
// hunting.
//
// Precondition: ids are unique, known and at most PartySize long.
func SelectParty(env *Env, st *player.State, ids []string) (*player.State, Result) {
	if len(ids) == 0 {
		return st, fail(ReasonInvalid)
	}
	if len(ids) > env.Tables.Economy.PartySize {
		return st, fail(ReasonLimit)
	}
	for i, id := range ids {
		if _, ok := st.Creature(id); !ok {
			return st, fail(ReasonNotFound)
		}
		if slices.Contains(ids[:i], id) {
			return st, fail(ReasonInvalid)
		}
	}
	next := st.Clone()
	next.Party = slices.Clone(ids)
	next.Hunting = slices.DeleteFunc(next.Hunting, func(s string) bool { return slices.Contains(ids, s) })
	return next, Result{}
}

// AssignHunting sends creature id hunting. Hunting unlocks with the hunting
// zone; the creature leaves the party.
func AssignHunting(env *Env, st *player.State, id string) (*player.State, Result) {
	if !st.Unlocked(player.UnlockHunting) {
		return st, fail(ReasonLocked)
	}
	if _, ok := st.Creature(id); !ok {
		return st, fail(ReasonNotFound)
	}
	if st.IsHunting(id) {
		return st, fail(ReasonConflict)
	}
	if len(st.Hunting) >= env.Tables.Economy.MaxHunting {
		return st, fail(ReasonLimit)
	}
	next := st.Clone()
	next.Hunting = append(next.Hunting, id)
	next.Party = slices.DeleteFunc(next.Party, func(s string) bool { return s == id })
	return next, Result{}
}

// Recall stops creature id from hunting.
func Recall(st *player.State, id string) (*player.State, Result) {
	if !st.IsHunting(id) {
		return st, fail(ReasonNotFound)
	}
	next := st.Clone()
	next.Hunting = slices.DeleteFunc(next.Hunting, func(s string) bool { return s == id })
	return next, Result{}
}

// AllocateStat spends one stat point of creature id on s.
func AllocateStat(env *Env, st *player.State, id string, s creature.Stat) (*player.State, Result) {
	c, ok := st.Creature(id)
	if !ok {
		return st, fail(ReasonNotFound)
	}
	if !s.Valid() {
		return st, fail(ReasonInvalid)
	}
	if c.StatPoints <= 0 {
		return st, fail(ReasonInsufficientFunds)
	}
	next := st.Clone()
	nc, _ := next.Creature(id)
	nc.AllocatePoint(s, env.Tables.Level)
	return next, Result{Creature: nc}
}
