package gameserver

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/aviary/internal/game/balance"
	"github.com/cory-johannsen/aviary/internal/game/combat"
	"github.com/cory-johannsen/aviary/internal/game/command"
	"github.com/cory-johannsen/aviary/internal/game/creature"
	"github.com/cory-johannsen/aviary/internal/game/idle"
	"github.com/cory-johannsen/aviary/internal/game/inventory"
	"github.com/cory-johannsen/aviary/internal/game/player"
)

// shortID is the prefix of an id shown in listings; any unique prefix
// resolves back to the full id.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// reasonText maps a rejection reason to console text.
var reasonText = map[command.Reason]string{
	command.ReasonInsufficientFunds: "You cannot afford that.",
	command.ReasonNotFound:          "Nothing by that name.",
	command.ReasonLocked:            "That is not unlocked yet.",
	command.ReasonInvalid:           "That is not a valid choice.",
	command.ReasonLimit:             "You have reached the limit for that.",
	command.ReasonConflict:          "That conflicts with something already in place.",
	command.ReasonMaxLevel:          "That is already at its maximum level.",
}

// RenderReason returns the console text for r.
func RenderReason(r command.Reason) string {
	if s, ok := reasonText[r]; ok {
		return s
	}
	return "Nothing happens."
}

// RenderStatus formats the wallet, zone, buffs and upgrades.
func RenderStatus(p Palette, st *player.State, t *balance.Tables) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", p.Paint(Bold, "Wallet:"), inventory.Format(st.Wallet))
	collected := make([]string, 0, len(st.Zone.Collected))
	for _, tier := range st.Zone.Collected {
		collected = append(collected, p.Tier(tier, tier.String()))
	}
	fmt.Fprintf(&b, "%s %d (defeated: %s)\n", p.Paint(Bold, "Zone:"), st.Zone.Highest, joinOr(collected, "none"))
	fmt.Fprintf(&b, "%s %d party, %d hunting, %d owned\n", p.Paint(Bold, "Flock:"), len(st.Party), len(st.Hunting), len(st.Creatures))
	for _, c := range inventory.ConsumableTypes() {
		if buf, ok := st.Buffs[c]; ok {
			fmt.Fprintf(&b, "  %s %s x%.2f, %d ticks left\n", p.Paint(Cyan, string(c)), p.Tier(buf.Rarity, buf.Rarity.String()), buf.Multiplier, buf.RemainingTicks)
		}
	}
	b.WriteString(p.Paint(Bold, "Upgrades:") + "\n")
	for _, u := range balance.Upgrades() {
		up, ok := t.Upgrades[u]
		if !ok {
			continue
		}
		lvl := st.Upgrade(u)
		price := "max"
		if lvl < up.MaxLevel {
			price = inventory.Format(up.CostAt(lvl))
		}
		fmt.Fprintf(&b, "  %-11s %2d/%-2d next: %s\n", u, lvl, up.MaxLevel, price)
	}
	var unlocked []string
	for _, u := range []player.Unlock{player.UnlockHunting, player.UnlockGems} {
		if st.Unlocked(u) {
			unlocked = append(unlocked, string(u))
		}
	}
	fmt.Fprintf(&b, "%s %s\n", p.Paint(Bold, "Unlocked:"), joinOr(unlocked, "none"))
	if len(st.Achievements) > 0 {
		fmt.Fprintf(&b, "%s %s\n", p.Paint(Bold, "Achievements:"), strings.Join(st.Achievements, ", "))
	}
	return b.String()
}

// RenderRoster lists every owned creature with its assignment.
func RenderRoster(p Palette, st *player.State) string {
	if len(st.Creatures) == 0 {
		return "You have no creatures. Try: catch <species>\n"
	}
	var b strings.Builder
	for i, c := range st.Creatures {
		role := ""
		switch {
		case st.InParty(c.ID):
			role = p.Paint(Green, " [party]")
		case st.IsHunting(c.ID):
			role = p.Paint(Yellow, " [hunting]")
		}
		fmt.Fprintf(&b, "%2d. %s %s %s lvl %d (%d/%d xp)%s\n", i+1, shortID(c.ID),
			p.Tier(c.Rarity, c.Name), p.Tier(c.Rarity, c.Rarity.String()), c.Level, c.XP, c.XPToNext, role)
		s := c.Stats()
		fmt.Fprintf(&b, "    hp %d  energy %d  atk %d  def %d  spd %d", s.HP, s.Energy, s.Attack, s.Defense, s.Speed)
		if c.StatPoints > 0 {
			fmt.Fprintf(&b, "  %s", p.Paintf(BrightCyan, "%d points", c.StatPoints))
		}
		b.WriteString("\n")
		for _, slot := range creature.Slots() {
			if g, ok := st.GearByID(c.EquippedIn(slot)); ok {
				fmt.Fprintf(&b, "    %-6s %s\n", slot, renderGear(p, g))
			}
		}
	}
	return b.String()
}

func renderGear(p Palette, g *inventory.Gear) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s atk %d", shortID(g.ID), p.Tier(g.Rarity, g.Rarity.String()), g.Slot, g.Attack)
	if g.Prefix != nil {
		fmt.Fprintf(&b, " %s %.2f", g.Prefix.Kind, g.Prefix.Magnitude)
	}
	for _, bonus := range g.Bonuses {
		fmt.Fprintf(&b, " +%d %s", bonus.Value, bonus.Stat)
	}
	slots := make([]string, len(g.Sockets))
	for i, s := range g.Sockets {
		slots[i] = "empty"
		if s.Gem != nil {
			slots[i] = shortID(s.Gem.ID)
		}
	}
	if len(slots) > 0 {
		fmt.Fprintf(&b, " sockets [%s]", strings.Join(slots, " "))
	}
	return b.String()
}

func renderGem(p Palette, g *inventory.Gem) string {
	buffs := make([]string, len(g.Buffs))
	for i, bf := range g.Buffs {
		buffs[i] = fmt.Sprintf("%s +%.1f", bf.Kind, bf.Value)
	}
	return fmt.Sprintf("%s %s %s", shortID(g.ID), p.Tier(g.Rarity, g.Rarity.String()), strings.Join(buffs, ", "))
}

// RenderItems lists inventory gear, loose gems and consumable stacks.
func RenderItems(p Palette, st *player.State) string {
	var b strings.Builder
	b.WriteString(p.Paint(Bold, "Gear:") + "\n")
	gear := st.InventoryGear()
	if len(gear) == 0 {
		b.WriteString("  none\n")
	}
	for _, g := range gear {
		fmt.Fprintf(&b, "  %s\n", renderGear(p, g))
	}
	b.WriteString(p.Paint(Bold, "Gems:") + "\n")
	if len(st.Gems) == 0 {
		b.WriteString("  none\n")
	}
	for _, g := range st.Gems {
		fmt.Fprintf(&b, "  %s\n", renderGem(p, g))
	}
	b.WriteString(p.Paint(Bold, "Consumables:") + "\n")
	if len(st.Consumables) == 0 {
		b.WriteString("  none\n")
	}
	for _, s := range st.Consumables {
		fmt.Fprintf(&b, "  %s %s x%d\n", s.Type, p.Tier(s.Rarity, s.Rarity.String()), s.Count)
	}
	return b.String()
}

// RenderResult describes a successful reducer result.
func RenderResult(p Palette, res command.Result) string {
	var b strings.Builder
	if res.Creature != nil && res.Reward == nil {
		c := res.Creature
		fmt.Fprintf(&b, "%s %s lvl %d\n", p.Tier(c.Rarity, c.Rarity.String()), p.Tier(c.Rarity, c.Name), c.Level)
	}
	if res.Gear != nil {
		fmt.Fprintf(&b, "%s\n", renderGear(p, res.Gear))
	}
	if res.Gem != nil && res.Reward == nil {
		fmt.Fprintf(&b, "%s\n", renderGem(p, res.Gem))
	}
	for _, g := range res.Returned {
		fmt.Fprintf(&b, "returned %s\n", renderGem(p, g))
	}
	if res.Feathers > 0 {
		fmt.Fprintf(&b, "+%d feathers\n", res.Feathers)
	}
	if r := res.Reward; r != nil {
		fmt.Fprintf(&b, "%s +%d xp, %s\n", p.Paint(BrightYellow, "Victory!"), r.XP, inventory.Format(r.Wallet))
		if r.Gem != nil {
			fmt.Fprintf(&b, "found gem %s\n", renderGem(p, r.Gem))
		}
		if r.Consumable != nil {
			fmt.Fprintf(&b, "found %s %s\n", r.Consumable.Type, p.Tier(r.Consumable.Rarity, r.Consumable.Rarity.String()))
		}
	}
	if o := res.Outcome; o != nil {
		if o.LevelsGained > 0 {
			fmt.Fprintf(&b, "%s gained %d level(s)\n", res.Creature.Name, o.LevelsGained)
		}
		if o.Zone.Advanced {
			fmt.Fprintf(&b, "%s\n", p.Paintf(BrightCyan, "Zone %d unlocked!", o.Zone.Zone))
			for _, u := range o.Zone.Unlocked {
				fmt.Fprintf(&b, "%s\n", p.Paintf(BrightCyan, "%s is now available", u))
			}
		}
	}
	for _, a := range res.Achievements {
		fmt.Fprintf(&b, "%s %s (%s)\n", p.Paint(BrightYellow, "Achievement:"), a.ID, inventory.Format(a.Reward))
	}
	if b.Len() == 0 {
		return "Done.\n"
	}
	return b.String()
}

// RenderBattle shows both combatants and the player's legal moves.
func RenderBattle(p Palette, b *combat.Battle) string {
	var sb strings.Builder
	line := func(c *combat.Combatant) {
		fmt.Fprintf(&sb, "%s lvl %d  hp %d/%d  energy %d/%d  alt %d", p.Tier(c.Rarity, c.Name), c.Level, c.HP, c.MaxHP, c.Energy, c.MaxEnergy, c.Altitude)
		if c.BleedTurns > 0 {
			sb.WriteString(p.Paint(Red, " bleeding"))
		}
		if c.Defending {
			sb.WriteString(" defending")
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "%s zone %d", p.Paint(Bold, "Battle"), b.Zone)
	if b.Modifier != balance.ModifierNone && b.Modifier != "" {
		fmt.Fprintf(&sb, " (%s)", p.Paint(Magenta, string(b.Modifier)))
	}
	sb.WriteString("\n  you: ")
	line(b.Player)
	sb.WriteString("  foe: ")
	line(b.Opponent)
	if b.Phase() == combat.PhasePlayerTurn {
		moves := b.LegalMoves(combat.SidePlayer)
		ids := make([]string, len(moves))
		for i, m := range moves {
			ids[i] = m.ID
		}
		fmt.Fprintf(&sb, "  moves: %s\n", strings.Join(ids, ", "))
	}
	return sb.String()
}

func renderRecord(p Palette, actor string, rec combat.TurnRecord) string {
	switch {
	case rec.Move.Kind != creature.MoveAttack:
		return fmt.Sprintf("%s uses %s", actor, rec.Move.Name)
	case !rec.Result.Hit:
		return fmt.Sprintf("%s uses %s and misses", actor, rec.Move.Name)
	case rec.Result.Crit:
		return fmt.Sprintf("%s uses %s: %s for %d", actor, rec.Move.Name, p.Paint(BrightRed, "critical hit"), rec.Dealt)
	default:
		return fmt.Sprintf("%s uses %s for %d", actor, rec.Move.Name, rec.Dealt)
	}
}

// RenderTurn prints both sides' actions, then the battle or its result.
func RenderTurn(p Palette, b *combat.Battle, turn *Turn) string {
	var sb strings.Builder
	if turn.Player.Move.ID != "" {
		fmt.Fprintf(&sb, "  %s\n", renderRecord(p, b.Player.Name, turn.Player))
	}
	if turn.Opponent != nil {
		fmt.Fprintf(&sb, "  %s\n", renderRecord(p, b.Opponent.Name, turn.Opponent.Record))
	}
	if turn.Resolved {
		if turn.Outcome == combat.OutcomeWin {
			sb.WriteString(RenderResult(p, turn.Result))
		} else {
			sb.WriteString(p.Paint(Red, "Defeat.") + "\n")
		}
		return sb.String()
	}
	sb.WriteString(RenderBattle(p, b))
	return sb.String()
}

// RenderReport summarizes the notable parts of an idle report.
//
// Postcondition: returns "" when the report has nothing worth announcing.
func RenderReport(p Palette, rep idle.Report) string {
	var parts []string
	if rep.Feathers > 0 {
		parts = append(parts, fmt.Sprintf("+%d feathers", rep.Feathers))
	}
	for _, g := range rep.Gems {
		parts = append(parts, "gem "+renderGem(p, g))
	}
	for _, s := range rep.Consumables {
		parts = append(parts, fmt.Sprintf("%s %s", s.Type, p.Tier(s.Rarity, s.Rarity.String())))
	}
	for _, c := range rep.Expired {
		parts = append(parts, fmt.Sprintf("%s wore off", c))
	}
	if len(parts) == 0 {
		return ""
	}
	return p.Paint(Yellow, "[hunt]") + " " + strings.Join(parts, "; ") + "\n"
}

func joinOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, ", ")
}
