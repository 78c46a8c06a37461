package player

import (
	"slices"

	"github.com/cory-johannsen/aviary/internal/game/balance"
	"github.com/cory-johannsen/aviary/internal/game/combat"
	"github.com/cory-johannsen/aviary/internal/game/creature"
	"github.com/cory-johannsen/aviary/internal/game/inventory"
)

// Creature returns the owned creature with id.
func (s *State) Creature(id string) (*creature.Instance, bool) {
	for _, c := range s.Creatures {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// GearByID returns the gear item with id, equipped or not.
func (s *State) GearByID(id string) (*inventory.Gear, bool) {
	for _, g := range s.Gear {
		if g.ID == id {
			return g, true
		}
	}
	return nil, false
}

// GemIndex returns the inventory index of the loose gem with id, or -1.
func (s *State) GemIndex(id string) int {
	return slices.IndexFunc(s.Gems, func(g *inventory.Gem) bool { return g.ID == id })
}

// InventoryGear returns the gear not equipped on any creature.
func (s *State) InventoryGear() []*inventory.Gear {
	var out []*inventory.Gear
	for _, g := range s.Gear {
		if !g.Equipped() {
			out = append(out, g)
		}
	}
	return out
}

// EquippedGear returns the gear owned by creature id in slot order.
func (s *State) EquippedGear(id string) []*inventory.Gear {
	c, ok := s.Creature(id)
	if !ok {
		return nil
	}
	var out []*inventory.Gear
	for _, slot := range creature.Slots() {
		if g, ok := s.GearByID(c.EquippedIn(slot)); ok {
			out = append(out, g)
		}
	}
	return out
}

// GearBuffs sums the gem buffs socketed into creature id's equipped gear.
func (s *State) GearBuffs(id string) inventory.BuffTotals {
	var t inventory.BuffTotals
	for _, g := range s.EquippedGear(id) {
		t.Merge(g.Buffs())
	}
	return t
}

// InParty reports whether creature id is selected for battle.
func (s *State) InParty(id string) bool { return slices.Contains(s.Party, id) }

// IsHunting reports whether creature id is assigned to hunting.
func (s *State) IsHunting(id string) bool { return slices.Contains(s.Hunting, id) }

// Upgrade returns the owned level of u.
func (s *State) Upgrade(u balance.Upgrade) int { return s.Upgrades[u] }

// Unlocked reports whether subsystem u is available.
func (s *State) Unlocked(u Unlock) bool { return s.Unlocks[u] }

// Combatant builds the battle view of creature id with its equipped gear.
func (s *State) Combatant(id string) (*combat.Combatant, bool) {
	c, ok := s.Creature(id)
	if !ok {
		return nil, false
	}
	return combat.NewCombatant(c, s.EquippedGear(id)), true
}

// GemsInCirculation counts loose gems plus every socketed gem.
func (s *State) GemsInCirculation() int {
	n := len(s.Gems)
	for _, g := range s.Gear {
		n += len(g.Gems())
	}
	return n
}

// AddStat increments lifetime statistic k by n.
func (s *State) AddStat(k balance.StatKey, n int) {
	if s.Stats == nil {
		s.Stats = map[balance.StatKey]int{}
	}
	s.Stats[k] += n
}

// CheckAchievements unlocks every achievement whose threshold is met and
// credits its reward once.
//
// Postcondition: returns the newly unlocked achievements; already unlocked
// ids are never granted twice.
func (s *State) CheckAchievements(t *balance.Tables) []balance.Achievement {
	var granted []balance.Achievement
	for _, a := range t.Achievements {
		if slices.Contains(s.Achievements, a.ID) || s.Stats[a.Stat] < a.Threshold {
			continue
		}
		s.Achievements = append(s.Achievements, a.ID)
		s.Wallet.Add(a.Reward)
		granted = append(granted, a)
	}
	return granted
}

// Summary is the save-slot preview.
type Summary struct {
	Wallet      inventory.Wallet `json:"wallet"`
	Creatures   int              `json:"creatures"`
	TopLevel    int              `json:"top_level"`
	HighestZone int              `json:"highest_zone"`
	Ticks       int64            `json:"ticks"`
}

// Summary returns the preview of s.
func (s *State) Summary() Summary {
	sum := Summary{
		Wallet:      s.Wallet,
		Creatures:   len(s.Creatures),
		HighestZone: s.Zone.Highest,
		Ticks:       s.Ticks,
	}
	for _, c := range s.Creatures {
		sum.TopLevel = max(sum.TopLevel, c.Level)
	}
	return sum
}
