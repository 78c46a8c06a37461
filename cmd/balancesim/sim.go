package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/aviary/internal/game/balance"
	"github.com/cory-johannsen/aviary/internal/game/combat"
	"github.com/cory-johannsen/aviary/internal/game/creature"
	"github.com/cory-johannsen/aviary/internal/game/dice"
	"github.com/cory-johannsen/aviary/internal/game/forge"
	"github.com/cory-johannsen/aviary/internal/game/rarity"
)

// maxTurns caps one simulated battle; a battle reaching it counts as a draw.
const maxTurns = 500

// Distribution counts rolls per tier.
type Distribution [rarity.NumTiers]int

// Total returns the number of rolls counted.
func (d Distribution) Total() int {
	n := 0
	for _, c := range d {
		n += c
	}
	return n
}

// RollDistribution draws n rarity rolls in ctx at upgrade level.
func RollDistribution(src dice.Source, t rarity.Table, level int, ctx rarity.Context, multiplier float64, n int) Distribution {
	var d Distribution
	for range n {
		d[rarity.Roll(src, t, level, ctx, multiplier)]++
	}
	return d
}

// BattleStats aggregates simulated battle outcomes.
type BattleStats struct {
	Wins, Losses, Draws int
	Turns               int
}

func (s *BattleStats) add(o BattleStats) {
	s.Wins += o.Wins
	s.Losses += o.Losses
	s.Draws += o.Draws
	s.Turns += o.Turns
}

// Battles returns the number of battles counted.
func (s BattleStats) Battles() int { return s.Wins + s.Losses + s.Draws }

// WinRate returns wins over battles, or 0 with no battles.
func (s BattleStats) WinRate() float64 {
	if s.Battles() == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Battles())
}

// BattlePlan describes one battle sample run.
type BattlePlan struct {
	Species *creature.Template
	Tier    rarity.Tier
	Zone    int
	Battles int
	Workers int
	Seed    uint64
}

// SimulateBattles plays plan.Battles battles split across plan.Workers
// goroutines. Each worker draws from its own seeded source so a plan is
// reproducible for a fixed worker count.
//
// Precondition: plan.Species is non-nil; roster is non-empty.
func SimulateBattles(ctx context.Context, tables *balance.Tables, roster []*creature.Template, plan BattlePlan) (BattleStats, error) {
	workers := max(plan.Workers, 1)
	var (
		mu    sync.Mutex
		total BattleStats
	)
	g, gctx := errgroup.WithContext(ctx)
	for w := range workers {
		n := plan.Battles / workers
		if w < plan.Battles%workers {
			n++
		}
		g.Go(func() error {
			src := dice.NewSeededSource(plan.Seed + uint64(w))
			gen := forge.NewGenerator(rarity.NewRoller(src, tables.Rarity, zap.NewNop()), tables, zap.NewNop())
			var local BattleStats
			for range n {
				if err := gctx.Err(); err != nil {
					return err
				}
				out, turns, err := playBattle(gctx, gen, tables, roster, plan)
				if err != nil {
					return err
				}
				local.Turns += turns
				switch out {
				case combat.OutcomeWin:
					local.Wins++
				case combat.OutcomeLoss:
					local.Losses++
				default:
					local.Draws++
				}
			}
			mu.Lock()
			total.add(local)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BattleStats{}, err
	}
	return total, nil
}

func playBattle(ctx context.Context, gen *forge.Generator, tables *balance.Tables, roster []*creature.Template, plan BattlePlan) (combat.Outcome, int, error) {
	clock := combat.NewManualClock(time.Unix(0, 0))
	fighter := combat.NewCombatant(gen.Creature(plan.Species, plan.Tier), nil)
	opp := gen.Opponent(roster, plan.Zone)
	b := combat.NewBattle("sim", plan.Zone, opp.Modifier, fighter, combat.NewCombatant(opp.Creature, nil), gen.Roller().Source(), tables.Combat, clock)
	b.Start()
	for turn := 0; turn < maxTurns; turn++ {
		clock.Advance(time.Second)
		var err error
		switch b.Phase() {
		case combat.PhaseResolved:
			return b.Outcome(), turn, nil
		case combat.PhasePlayerTurn:
			_, err = b.Act(combat.SidePlayer, combat.Action{MoveID: strongestMove(b), Multiplier: 1})
		case combat.PhaseOpponentTurn:
			_, err = b.OpponentTurn(ctx, nil, time.Millisecond)
		}
		if err != nil {
			return combat.OutcomeNone, turn, fmt.Errorf("turn %d: %w", turn, err)
		}
	}
	return b.Outcome(), maxTurns, nil
}

// strongestMove picks the highest power legal attack, resting otherwise.
func strongestMove(b *combat.Battle) string {
	best, power := creature.RestMoveID, 0.0
	for _, m := range b.LegalMoves(combat.SidePlayer) {
		if m.Kind == creature.MoveAttack && m.Power > power {
			best, power = m.ID, m.Power
		}
	}
	return best
}

// WriteDistribution prints d as one percentage column per tier.
func WriteDistribution(w io.Writer, label string, d Distribution) {
	fmt.Fprintf(w, "%-10s", label)
	total := max(d.Total(), 1)
	for t, c := range d {
		fmt.Fprintf(w, " %s %6.2f%%", rarity.Tier(t), 100*float64(c)/float64(total))
	}
	fmt.Fprintln(w)
}

// WriteBattles prints the outcome summary of s.
func WriteBattles(w io.Writer, plan BattlePlan, s BattleStats) {
	avg := 0.0
	if s.Battles() > 0 {
		avg = float64(s.Turns) / float64(s.Battles())
	}
	fmt.Fprintf(w, "%s %s zone %d: %d battles, %.1f%% won, %d lost, %d drawn, %.1f turns avg\n",
		plan.Tier, plan.Species.Name, plan.Zone, s.Battles(), 100*s.WinRate(), s.Losses, s.Draws, avg)
}
