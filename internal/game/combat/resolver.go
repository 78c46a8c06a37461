package combat

import (
	"math"

	"github.com/cory-johannsen/aviary/internal/game/balance"
	"github.com/cory-johannsen/aviary/internal/game/creature"
	"github.com/cory-johannsen/aviary/internal/game/dice"
)

// Result holds the outcome of resolving a single move.
type Result struct {
	Hit    bool `json:"hit"`
	Damage int  `json:"damage"`
	Crit   bool `json:"crit"`
	// Dive is true when the top-altitude dive bonus applied.
	Dive bool `json:"dive"`
	// Bleed is true when the attacker's talons opened a wound.
	Bleed bool `json:"bleed"`
}

// finite maps NaN and infinities to fallback.
func finite(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

// Resolve computes hit, damage, crit and bleed for attacker using move on
// defender. It reads but never mutates the combatants.
//
// Precondition: src, attacker and defender must be non-nil.
// Postcondition: non-damaging moves always hit for zero damage and consume no
// draw; moves with accuracy <= 0 never hit; Damage is a finite integer >= 0.
func Resolve(src dice.Source, t balance.CombatTable, attacker, defender *Combatant, move creature.Move, multiplier float64) Result {
	if !move.IsDamaging() {
		return Result{Hit: true}
	}
	multiplier = finite(multiplier, 1)
	if multiplier < 0 {
		multiplier = 0
	}

	var res Result
	if move.Accuracy > 0 {
		acc := move.Accuracy
		if defender.Speed > attacker.Speed && attacker.Passive.Kind != creature.PassiveKeenEye {
			acc -= math.Min(float64(defender.Speed-attacker.Speed)*t.EvasionPerSpeed, t.EvasionCap)
		}
		if multiplier >= t.GoodInputThreshold {
			acc += t.GoodInputBonus
		}
		res.Hit = dice.FloatRange(src, 0, 100) < acc
	}

	if res.Hit {
		dmg := move.Power * float64(attacker.Attack) / float64(max(defender.Defense, 1))
		if attacker.CritChance > 0 && dice.Chance(src, attacker.CritChance) {
			res.Crit = true
			dmg *= t.CritMultiplier
		}
		if attacker.Passive.Kind == creature.PassiveExecutioner && defender.HPFraction() < attacker.Passive.Threshold {
			dmg *= 1 + attacker.Passive.Magnitude
		}
		if attacker.Altitude > defender.Altitude {
			dmg *= t.AltitudeBonus
		}
		dmg *= multiplier
		if attacker.Altitude >= t.MaxAltitude && dice.Chance(src, t.DiveChance) {
			res.Dive = true
			dmg *= t.DiveMultiplier
		}
		dmg = math.Floor(finite(dmg, 0))
		if dmg > math.MaxInt32 {
			dmg = math.MaxInt32
		}
		res.Damage = int(math.Max(dmg, 0))
	}

	if attacker.HasTalons {
		res.Bleed = dice.Chance(src, t.BleedChance)
	}
	return res
}
