package forge

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/aviary/internal/game/balance"
	"github.com/cory-johannsen/aviary/internal/game/creature"
	"github.com/cory-johannsen/aviary/internal/game/dice"
	"github.com/cory-johannsen/aviary/internal/game/rarity"
)

// Creature rolls a level-1 instance of tmpl at tier.
//
// Precondition: tmpl must be a validated template.
// Postcondition: each base stat is round(uniform(range) × m) for one sampled
// multiplier m in tier's range; HP >= 1; level 1, xp 0, no stat points, no gear.
func (g *Generator) Creature(tmpl *creature.Template, tier rarity.Tier) *creature.Instance {
	tier = rarity.Clamp(tier)
	mult := g.roller.Multiplier(tier)
	var base creature.Stats
	for _, s := range creature.AllStats() {
		r := tmpl.Stats.Get(s)
		v := round(float64(dice.IntRange(g.src(), r.Min, r.Max)) * mult)
		base = base.With(s, v)
	}
	base.HP = max(base.HP, 1)

	inst := &creature.Instance{
		ID:               g.newID(),
		TemplateID:       tmpl.ID,
		Name:             tmpl.Name,
		Rarity:           tier,
		RarityMultiplier: mult,
		Base:             base,
		Level:            1,
		XPToNext:         creature.XPToNext(g.tables.Level, 1),
		EnergyRegen:      tmpl.EnergyRegen,
		Moves:            append([]creature.Move(nil), tmpl.Moves...),
		Passive:          tmpl.Passive,
		Hunting:          tmpl.Hunting,
		Equipped:         map[creature.Slot]string{},
	}
	g.logger.Debug("generated creature",
		zap.String("id", inst.ID),
		zap.String("template", tmpl.ID),
		zap.Stringer("rarity", tier),
		zap.Float64("multiplier", mult),
	)
	return inst
}

// Catch rolls a catch-context rarity using the net level and minigame
// multiplier, then generates a creature of tmpl at that tier.
func (g *Generator) Catch(tmpl *creature.Template, netLevel int, multiplier float64) *creature.Instance {
	tier := g.roller.Roll(netLevel, rarity.Catch, multiplier)
	return g.Creature(tmpl, tier)
}

// Opponent is a generated enemy for one battle.
type Opponent struct {
	Creature *creature.Instance
	Modifier balance.Modifier
	Zone     int
}

// Opponent generates an enemy for zone.
//
// Precondition: roster must be non-empty; zone >= 1.
// Postcondition: Level = 1 + (zone-1) × LevelsPerZone + uniform[0, LevelJitter];
// stats are scaled by 1 + (Level-1) × GrowthPerLevel.
func (g *Generator) Opponent(roster []*creature.Template, zone int) *Opponent {
	zone = max(zone, 1)
	ot := g.tables.Opponent
	tmpl := roster[dice.Pick(g.src(), len(roster))]
	tier := g.roller.Roll(zone*ot.RarityLevelPerZone, rarity.Encounter, 1)
	level := 1 + (zone-1)*ot.LevelsPerZone + dice.IntRange(g.src(), 0, ot.LevelJitter)

	c := g.Creature(tmpl, tier)
	growth := 1 + float64(level-1)*ot.GrowthPerLevel
	var grown creature.Stats
	for _, s := range creature.AllStats() {
		grown = grown.With(s, round(float64(c.Base.Get(s))*growth))
	}
	grown.HP = max(grown.HP, 1)
	c.Base = grown
	c.Level = level
	c.XPToNext = creature.XPToNext(g.tables.Level, level)

	mod := balance.ModifierNone
	if len(ot.Modifiers) > 0 {
		mod = ot.Modifiers[dice.Weighted(g.src(), ot.ModifierWeights())].Kind
	}
	g.logger.Debug("generated opponent",
		zap.Int("zone", zone),
		zap.Int("level", level),
		zap.String("modifier", string(mod)),
	)
	return &Opponent{Creature: c, Modifier: mod, Zone: zone}
}
