package combat

import (
	"context"
	"fmt"
	"time"

	"github.com/cory-johannsen/aviary/internal/game/creature"
	"github.com/cory-johannsen/aviary/internal/game/dice"
)

// CombatantView is the read-only description of a combatant given to advisors.
type CombatantView struct {
	Name      string `json:"name"`
	Level     int    `json:"level"`
	HP        int    `json:"hp"`
	MaxHP     int    `json:"maxHp"`
	Energy    int    `json:"energy"`
	MaxEnergy int    `json:"maxEnergy"`
	Altitude  int    `json:"altitude"`
	Defending bool   `json:"defending"`
	Bleeding  bool   `json:"bleeding"`
}

// MoveView describes one legal move for an advisor.
type MoveView struct {
	ID                  string            `json:"id"`
	Name                string            `json:"name"`
	Kind                creature.MoveKind `json:"kind"`
	Power               float64           `json:"power"`
	Accuracy            float64           `json:"accuracy"`
	EnergyCost          int               `json:"energyCost"`
	RequiresTopAltitude bool              `json:"requiresTopAltitude"`
}

// View is a snapshot of the battle from one side's perspective.
type View struct {
	Turn        int           `json:"turn"`
	MaxAltitude int           `json:"maxAltitude"`
	Self        CombatantView `json:"self"`
	Enemy       CombatantView `json:"enemy"`
	Legal       []MoveView    `json:"legalMoves"`
	RecentLog   []string      `json:"recentLog"`
}

// Choice is an advisor's answer.
type Choice struct {
	MoveID        string `json:"moveId"`
	AltitudeDelta int    `json:"altitudeDelta"`
}

// Advisor chooses the opponent's move. Implementations must honor ctx.
type Advisor interface {
	Choose(ctx context.Context, v View) (Choice, error)
}

// AdvisorFunc adapts a function to Advisor.
type AdvisorFunc func(ctx context.Context, v View) (Choice, error)

// Choose calls f.
func (f AdvisorFunc) Choose(ctx context.Context, v View) (Choice, error) { return f(ctx, v) }

func viewOf(c *Combatant) CombatantView {
	return CombatantView{
		Name:      c.Name,
		Level:     c.Level,
		HP:        c.HP,
		MaxHP:     c.MaxHP,
		Energy:    c.Energy,
		MaxEnergy: c.MaxEnergy,
		Altitude:  c.Altitude,
		Defending: c.Defending,
		Bleeding:  c.BleedTurns > 0,
	}
}

// ViewFor builds the advisor snapshot for side.
func (b *Battle) ViewFor(side Side) View {
	legal := b.LegalMoves(side)
	moves := make([]MoveView, len(legal))
	for i, m := range legal {
		moves[i] = MoveView{
			ID:                  m.ID,
			Name:                m.Name,
			Kind:                m.Kind,
			Power:               m.Power,
			Accuracy:            m.Accuracy,
			EnergyCost:          m.EnergyCost,
			RequiresTopAltitude: m.RequiresTopAltitude,
		}
	}
	return View{
		Turn:        b.turn,
		MaxAltitude: b.tbl.MaxAltitude,
		Self:        viewOf(b.combatant(side)),
		Enemy:       viewOf(b.combatant(side.Other())),
		Legal:       moves,
		RecentLog:   b.recentLog(5),
	}
}

func (b *Battle) recentLog(n int) []string {
	if len(b.log) > n {
		return append([]string(nil), b.log[len(b.log)-n:]...)
	}
	return b.Log()
}

// RandomChoice picks a uniformly random legal move with no altitude change.
func RandomChoice(src dice.Source, v View) Choice {
	if len(v.Legal) == 0 {
		return Choice{MoveID: creature.RestMoveID}
	}
	return Choice{MoveID: v.Legal[dice.Pick(src, len(v.Legal))].ID}
}

type advice struct {
	choice Choice
	err    error
}

// Advise asks advisor for a choice, waiting at most timeout. The advisor runs
// on its own goroutine against a snapshot, so a late answer is discarded.
//
// Postcondition: returns the advisor's choice and true, or a RandomChoice and
// false on error, timeout or an illegal answer.
func Advise(ctx context.Context, advisor Advisor, v View, timeout time.Duration, src dice.Source) (Choice, bool, error) {
	if advisor == nil {
		return RandomChoice(src, v), false, fmt.Errorf("no advisor configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ch := make(chan advice, 1)
	go func() {
		c, err := advisor.Choose(ctx, v)
		ch <- advice{choice: c, err: err}
	}()

	select {
	case a := <-ch:
		if a.err != nil {
			return RandomChoice(src, v), false, a.err
		}
		for _, m := range v.Legal {
			if m.ID == a.choice.MoveID {
				a.choice.AltitudeDelta = clampDelta(a.choice.AltitudeDelta)
				return a.choice, true, nil
			}
		}
		return RandomChoice(src, v), false, fmt.Errorf("%w: advisor chose %q", ErrUnknownMove, a.choice.MoveID)
	case <-ctx.Done():
		return RandomChoice(src, v), false, ctx.Err()
	}
}

// OpponentMove reports how the opponent's turn was decided.
type OpponentMove struct {
	Record TurnRecord
	// Advised is false when the random fallback was used.
	Advised bool
	// AdviceErr explains why the fallback was used.
	AdviceErr error
}

// OpponentTurn plays the opponent's turn using advisor with a timeout,
// falling back to a random legal move.
//
// Precondition: it is the opponent's turn.
// Postcondition: on success exactly one opponent action has been applied.
func (b *Battle) OpponentTurn(ctx context.Context, advisor Advisor, timeout time.Duration) (OpponentMove, error) {
	switch b.phase {
	case PhaseResolved:
		return OpponentMove{}, ErrBattleOver
	case PhaseOpponentTurn:
	default:
		return OpponentMove{}, ErrNotYourTurn
	}
	choice, advised, adviceErr := Advise(ctx, advisor, b.ViewFor(SideOpponent), timeout, b.src)
	rec, err := b.Act(SideOpponent, Action{MoveID: choice.MoveID, AltitudeDelta: choice.AltitudeDelta, Multiplier: 1})
	if err != nil {
		rec, err = b.Act(SideOpponent, Action{MoveID: creature.RestMoveID, Multiplier: 1})
		advised = false
		adviceErr = fmt.Errorf("advised move rejected, rested instead")
	}
	return OpponentMove{Record: rec, Advised: advised, AdviceErr: adviceErr}, err
}
