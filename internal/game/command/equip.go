package command

import (
	"github.com/cory-johannsen/aviary/internal/game/creature"
	"github.com/cory-johannsen/aviary/internal/game/inventory"
	"github.com/cory-johannsen/aviary/internal/game/player"
)

// Equip puts inventory gear gearID on creature creatureID in the gear's slot.
// Gear already in that slot returns to inventory.
//
// Precondition: the gear is unowned.
// Postcondition: gear.OwnerID == creatureID and the creature's slot points at
// the gear; every piece is owned at most once.
func Equip(st *player.State, creatureID, gearID string) (*player.State, Result) {
	if _, ok := st.Creature(creatureID); !ok {
		return st, fail(ReasonNotFound)
	}
	g, ok := st.GearByID(gearID)
	if !ok {
		return st, fail(ReasonNotFound)
	}
	if g.Equipped() {
		return st, fail(ReasonConflict)
	}
	next := st.Clone()
	c, _ := next.Creature(creatureID)
	ng, _ := next.GearByID(gearID)
	if prev, ok := next.GearByID(c.EquippedIn(ng.Slot)); ok {
		prev.OwnerID = ""
	}
	ng.OwnerID = c.ID
	c.Equipped[ng.Slot] = ng.ID
	return next, Result{Gear: ng}
}

// Unequip returns the gear in creatureID's slot to inventory.
//
// Postcondition: the slot is empty and the gear is unowned.
func Unequip(st *player.State, creatureID string, slot creature.Slot) (*player.State, Result) {
	c, ok := st.Creature(creatureID)
	if !ok {
		return st, fail(ReasonNotFound)
	}
	if _, ok := st.GearByID(c.EquippedIn(slot)); !ok {
		return st, fail(ReasonNotFound)
	}
	next := st.Clone()
	nc, _ := next.Creature(creatureID)
	g, _ := next.GearByID(nc.EquippedIn(slot))
	g.OwnerID = ""
	delete(nc.Equipped, slot)
	return next, Result{Gear: g}
}

// Socket moves inventory gem gemID into socket index of gear gearID. A gem
// already in that socket returns to inventory.
//
// Postcondition: the number of gems in circulation is unchanged.
func Socket(st *player.State, gearID, gemID string, index int) (*player.State, Result) {
	if !st.Unlocked(player.UnlockGems) {
		return st, fail(ReasonLocked)
	}
	g, ok := st.GearByID(gearID)
	if !ok || st.GemIndex(gemID) < 0 {
		return st, fail(ReasonNotFound)
	}
	if index < 0 || index >= len(g.Sockets) {
		return st, fail(ReasonInvalid)
	}
	next := st.Clone()
	ng, _ := next.GearByID(gearID)
	gi := next.GemIndex(gemID)
	gem := next.Gems[gi]
	next.Gems = append(next.Gems[:gi], next.Gems[gi+1:]...)

	var res Result
	if prev := ng.Sockets[index].Gem; prev != nil {
		next.Gems = append(next.Gems, prev)
		res.Returned = []*inventory.Gem{prev}
	}
	ng.Sockets[index].Gem = gem
	res.Gear = ng
	res.Gem = gem
	return next, res
}

// Unsocket returns the gem in socket index of gear gearID to inventory.
func Unsocket(st *player.State, gearID string, index int) (*player.State, Result) {
	g, ok := st.GearByID(gearID)
	if !ok {
		return st, fail(ReasonNotFound)
	}
	if index < 0 || index >= len(g.Sockets) || g.Sockets[index].Gem == nil {
		return st, fail(ReasonInvalid)
	}
	next := st.Clone()
	ng, _ := next.GearByID(gearID)
	gem, _ := ng.Remove(index)
	next.Gems = append(next.Gems, gem)
	return next, Result{Gear: ng, Gem: gem}
}
