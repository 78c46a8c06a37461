package combat

import (
	"errors"
	"fmt"
	"math"

	"github.com/cory-johannsen/aviary/internal/game/balance"
	"github.com/cory-johannsen/aviary/internal/game/creature"
	"github.com/cory-johannsen/aviary/internal/game/dice"
)

// Phase is the battle state machine state.
type Phase int

const (
	PhaseSetup Phase = iota
	PhasePlayerTurn
	PhaseOpponentTurn
	PhaseResolved
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "setup"
	case PhasePlayerTurn:
		return "player_turn"
	case PhaseOpponentTurn:
		return "opponent_turn"
	case PhaseResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of a battle.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeWin
	OutcomeLoss
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "win"
	case OutcomeLoss:
		return "loss"
	default:
		return "none"
	}
}

var (
	ErrNotStarted         = errors.New("combat: battle has not started")
	ErrBattleOver         = errors.New("combat: battle is over")
	ErrNotYourTurn        = errors.New("combat: not this side's turn")
	ErrUnknownMove        = errors.New("combat: unknown move")
	ErrInsufficientEnergy = errors.New("combat: insufficient energy")
	ErrOnCooldown         = errors.New("combat: move is on cooldown")
	ErrAltitude           = errors.New("combat: move requires top altitude")
)

// Action is one side's choice for its turn.
type Action struct {
	MoveID string
	// AltitudeDelta is clamped to -1, 0 or +1.
	AltitudeDelta int
	// Multiplier is the skill-input multiplier; 1 is neutral.
	Multiplier float64
}

// TurnRecord describes one resolved action.
type TurnRecord struct {
	Side   Side
	Move   creature.Move
	Result Result
	// Dealt is the damage actually applied after defending.
	Dealt int
}

// Battle is a single player-versus-opponent encounter. It is not safe for
// concurrent use; callers serialize access.
type Battle struct {
	ID       string
	Zone     int
	Modifier balance.Modifier
	Player   *Combatant
	Opponent *Combatant

	phase   Phase
	outcome Outcome
	turn    int
	log     []string

	src   dice.Source
	tbl   balance.CombatTable
	clock Clock
}

// NewBattle creates a battle in the Setup phase.
//
// Precondition: player, opponent, src and clock must be non-nil.
func NewBattle(id string, zone int, mod balance.Modifier, player, opponent *Combatant, src dice.Source, tbl balance.CombatTable, clock Clock) *Battle {
	return &Battle{
		ID:       id,
		Zone:     zone,
		Modifier: mod,
		Player:   player,
		Opponent: opponent,
		phase:    PhaseSetup,
		src:      src,
		tbl:      tbl,
		clock:    clock,
	}
}

// Phase returns the current state.
func (b *Battle) Phase() Phase { return b.phase }

// Outcome returns the terminal result, or OutcomeNone while in progress.
func (b *Battle) Outcome() Outcome { return b.outcome }

// Turn returns the number of actions taken so far.
func (b *Battle) Turn() int { return b.turn }

// Log returns a copy of the most recent log lines, oldest first.
func (b *Battle) Log() []string { return append([]string(nil), b.log...) }

// Current returns the side whose turn it is.
//
// Precondition: the battle is started and not resolved.
func (b *Battle) Current() Side {
	if b.phase == PhaseOpponentTurn {
		return SideOpponent
	}
	return SidePlayer
}

func (b *Battle) combatant(s Side) *Combatant {
	if s == SidePlayer {
		return b.Player
	}
	return b.Opponent
}

// Start moves from Setup to the first turn.
//
// Postcondition: the faster side acts first; ties go to the player. Starting an
// already started battle is a no-op.
func (b *Battle) Start() {
	if b.phase != PhaseSetup {
		return
	}
	first := FirstTurn(b.Player, b.Opponent)
	b.setTurn(first)
	b.logf("%s vs %s: %s moves first", b.Player.Name, b.Opponent.Name, b.combatant(first).Name)
}

func (b *Battle) setTurn(s Side) {
	if s == SidePlayer {
		b.phase = PhasePlayerTurn
	} else {
		b.phase = PhaseOpponentTurn
	}
}

func (b *Battle) logf(format string, args ...any) {
	b.log = append(b.log, fmt.Sprintf(format, args...))
	if limit := max(b.tbl.LogSize, 1); len(b.log) > limit {
		b.log = append([]string(nil), b.log[len(b.log)-limit:]...)
	}
}

// CheckMove reports why side cannot use move id right now, or nil if it can.
func (b *Battle) CheckMove(side Side, id string) error {
	c := b.combatant(side)
	m, ok := c.MoveByID(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMove, id)
	}
	if c.Energy < m.EnergyCost {
		return fmt.Errorf("%w: %q costs %d, have %d", ErrInsufficientEnergy, id, m.EnergyCost, c.Energy)
	}
	if ready := c.ReadyAt(id); b.clock.Now().Before(ready) {
		return fmt.Errorf("%w: %q", ErrOnCooldown, id)
	}
	if m.RequiresTopAltitude && c.Altitude < b.tbl.MaxAltitude {
		return fmt.Errorf("%w: %q", ErrAltitude, id)
	}
	return nil
}

// LegalMoves returns every move side may use now. The rest move is always legal.
func (b *Battle) LegalMoves(side Side) []creature.Move {
	c := b.combatant(side)
	var out []creature.Move
	for _, m := range c.Moves {
		if b.CheckMove(side, m.ID) == nil {
			out = append(out, m)
		}
	}
	return append(out, creature.RestMove())
}

// Act applies side's action and advances the state machine.
//
// Precondition: side owns the current turn and the move is legal.
// Postcondition: on error the battle is unchanged. On success energy is paid,
// altitude adjusted, effects applied, the cooldown started, and either the
// battle is Resolved or the turn passes to the other side after its regen step.
func (b *Battle) Act(side Side, a Action) (TurnRecord, error) {
	switch b.phase {
	case PhaseSetup:
		return TurnRecord{}, ErrNotStarted
	case PhaseResolved:
		return TurnRecord{}, ErrBattleOver
	}
	if side != b.Current() {
		return TurnRecord{}, ErrNotYourTurn
	}
	if err := b.CheckMove(side, a.MoveID); err != nil {
		return TurnRecord{}, err
	}

	actor, target := b.combatant(side), b.combatant(side.Other())
	move, _ := actor.MoveByID(a.MoveID)
	actor.Energy -= move.EnergyCost
	actor.Altitude = min(max(actor.Altitude+clampDelta(a.AltitudeDelta), AltitudeGround), b.tbl.MaxAltitude)
	mult := a.Multiplier
	if mult == 0 {
		mult = 1
	}

	res := Resolve(b.src, b.tbl, actor, target, move, mult)
	rec := TurnRecord{Side: side, Move: move, Result: res}
	switch move.Kind {
	case creature.MoveAttack:
		if res.Hit {
			rec.Dealt = res.Damage
			if target.Defending {
				rec.Dealt = int(math.Floor(float64(res.Damage) * b.tbl.DefendFactor))
			}
			target.ApplyDamage(rec.Dealt)
		}
		if res.Bleed {
			target.BleedTurns = b.tbl.BleedTurns
			target.BleedDamage = b.tbl.BleedBase + actor.BleedBonus
		}
	case creature.MoveHeal:
		actor.Heal(int(math.Floor(move.HealFraction * float64(actor.MaxHP))))
	case creature.MoveDefend:
		actor.Defending = true
	case creature.MoveRest:
		actor.GainEnergy(b.tbl.RestEnergy)
	}
	actor.startCooldown(move, b.clock.Now())
	b.turn++
	b.logTurn(actor, target, rec)

	if target.IsDead() {
		b.resolve(side)
		return rec, nil
	}
	next := side.Other()
	b.setTurn(next)
	b.regen(next)
	return rec, nil
}

func clampDelta(d int) int {
	return min(max(d, -1), 1)
}

func (b *Battle) logTurn(actor, target *Combatant, rec TurnRecord) {
	switch {
	case rec.Move.Kind != creature.MoveAttack:
		b.logf("%s uses %s", actor.Name, rec.Move.Name)
	case !rec.Result.Hit:
		b.logf("%s uses %s and misses", actor.Name, rec.Move.Name)
	case rec.Result.Crit:
		b.logf("%s uses %s: critical hit for %d (%s at %d HP)", actor.Name, rec.Move.Name, rec.Dealt, target.Name, target.HP)
	default:
		b.logf("%s uses %s for %d (%s at %d HP)", actor.Name, rec.Move.Name, rec.Dealt, target.Name, target.HP)
	}
	if rec.Result.Bleed {
		b.logf("%s is bleeding", target.Name)
	}
}

// regen runs the start-of-turn step for side: energy regeneration, passives,
// the bleed tick, and clearing the defend stance.
func (b *Battle) regen(side Side) {
	c := b.combatant(side)
	gain := int(math.Round(finite(b.tbl.RegenBase*c.EnergyRegen, 0)))
	switch c.Passive.Kind {
	case creature.PassiveThermalRider:
		gain += int(c.Passive.Magnitude)
	case creature.PassiveRegenerator:
		c.Heal(int(math.Floor(c.Passive.Magnitude * float64(c.MaxHP))))
	}
	c.GainEnergy(gain)
	c.Defending = false

	if c.BleedTurns > 0 {
		dmg := int(math.Floor(finite(c.BleedDamage, 0)))
		c.BleedTurns--
		c.ApplyDamage(dmg)
		b.logf("%s bleeds for %d", c.Name, dmg)
		if c.IsDead() {
			b.resolve(side.Other())
		}
	}
}

func (b *Battle) resolve(winner Side) {
	b.phase = PhaseResolved
	if winner == SidePlayer {
		b.outcome = OutcomeWin
		b.logf("%s wins", b.Player.Name)
	} else {
		b.outcome = OutcomeLoss
		b.logf("%s is defeated", b.Player.Name)
	}
}
