package gameserver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/aviary/internal/game/combat"
	"github.com/cory-johannsen/aviary/internal/game/command"
	"github.com/cory-johannsen/aviary/internal/game/forge"
	"github.com/cory-johannsen/aviary/internal/game/player"
	"github.com/cory-johannsen/aviary/internal/game/reward"
)

var (
	ErrBattleActive = errors.New("gameserver: a battle is already in progress")
	ErrNoBattle     = errors.New("gameserver: no battle in progress")
	ErrNoParty      = errors.New("gameserver: the battle party is empty")
	ErrZoneLocked   = errors.New("gameserver: zone is not unlocked")
	ErrNoOpponents  = errors.New("gameserver: no species loaded")
)

// Turn reports everything that happened in response to one player action,
// including the opponent's reply and, once resolved, the applied result.
type Turn struct {
	Player   combat.TurnRecord
	Opponent *combat.OpponentMove
	// Resolved is set once the battle has ended; Result then carries the
	// reward or the recorded loss.
	Resolved bool
	Outcome  combat.Outcome
	Result   command.Result
}

// session is the live state of the one battle in progress.
type session struct {
	battle    *combat.Battle
	opponent  *forge.Opponent
	fighterID string
	started   time.Time
}

// Arena runs battles for an engine's party leader against generated
// opponents. It serializes its own access; the final result is folded into
// the engine state through Engine.Apply.
type Arena struct {
	engine  *Engine
	advisor combat.Advisor
	timeout time.Duration
	clock   combat.Clock
	logger  *zap.Logger

	mu      sync.Mutex
	current *session
}

// NewArena creates an Arena.
//
// Precondition: engine, clock and logger must be non-nil; timeout must be > 0.
// A nil advisor makes every opponent turn use the random fallback.
func NewArena(engine *Engine, advisor combat.Advisor, timeout time.Duration, clock combat.Clock, logger *zap.Logger) *Arena {
	if engine == nil || clock == nil || logger == nil {
		panic("gameserver.NewArena: engine, clock and logger must not be nil")
	}
	if timeout <= 0 {
		panic("gameserver.NewArena: timeout must be > 0")
	}
	return &Arena{engine: engine, advisor: advisor, timeout: timeout, clock: clock, logger: logger}
}

// Active returns the battle in progress, or nil.
func (a *Arena) Active() *combat.Battle {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return nil
	}
	return a.current.battle
}

// Start begins a battle in zone with the first party member as fighter. A
// zone of zero selects the highest unlocked zone. When the opponent is faster
// its first move is played before Start returns.
//
// Postcondition: on success a battle is active unless the opponent's opening
// move already resolved it, in which case the returned Turn is Resolved.
func (a *Arena) Start(ctx context.Context, zone int) (*combat.Battle, *Turn, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current != nil {
		return nil, nil, ErrBattleActive
	}
	env := a.engine.Env()
	if len(env.Species) == 0 {
		return nil, nil, ErrNoOpponents
	}
	st := a.engine.Snapshot()
	if zone == 0 {
		zone = st.Zone.Highest
	}
	if zone < 1 || zone > st.Zone.Highest {
		return nil, nil, fmt.Errorf("%w: %d (highest %d)", ErrZoneLocked, zone, st.Zone.Highest)
	}
	if len(st.Party) == 0 {
		return nil, nil, ErrNoParty
	}
	fighterID := st.Party[0]
	fighter, ok := st.Combatant(fighterID)
	if !ok {
		return nil, nil, ErrNoParty
	}

	opp := env.Gen.Opponent(env.Species, zone)
	enemy := combat.NewCombatant(opp.Creature, nil)
	b := combat.NewBattle(uuid.NewString(), zone, opp.Modifier, fighter, enemy, env.Gen.Roller().Source(), env.Tables.Combat, a.clock)
	b.Start()
	a.current = &session{battle: b, opponent: opp, fighterID: fighterID, started: time.Now()}
	a.logger.Info("battle started",
		zap.String("battle", b.ID),
		zap.Int("zone", zone),
		zap.String("fighter", fighter.Name),
		zap.String("opponent", enemy.Name),
		zap.String("opponent_rarity", enemy.Rarity.String()),
		zap.Int("opponent_level", enemy.Level),
		zap.String("modifier", string(opp.Modifier)),
	)

	if b.Phase() != combat.PhaseOpponentTurn {
		return b, nil, nil
	}
	turn := &Turn{}
	if err := a.opponentTurn(ctx, turn); err != nil {
		return b, nil, err
	}
	if err := a.settle(ctx, turn); err != nil {
		return b, turn, err
	}
	return b, turn, nil
}

// Move plays the player's action, then the opponent's reply when the battle
// continues.
//
// Postcondition: on a rejected action the battle is unchanged and the error
// is one of the combat sentinels. When the battle resolves its result has
// been applied to the engine state and no battle is active.
func (a *Arena) Move(ctx context.Context, action combat.Action) (*Turn, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return nil, ErrNoBattle
	}
	b := a.current.battle
	rec, err := b.Act(combat.SidePlayer, action)
	if err != nil {
		return nil, err
	}
	turn := &Turn{Player: rec}
	if b.Phase() == combat.PhaseOpponentTurn {
		if err := a.opponentTurn(ctx, turn); err != nil {
			return turn, err
		}
	}
	if err := a.settle(ctx, turn); err != nil {
		return turn, err
	}
	return turn, nil
}

func (a *Arena) opponentTurn(ctx context.Context, turn *Turn) error {
	b := a.current.battle
	om, err := b.OpponentTurn(ctx, a.advisor, a.timeout)
	if err != nil {
		return fmt.Errorf("opponent turn: %w", err)
	}
	if !om.Advised {
		a.logger.Debug("advisor fallback",
			zap.String("battle", b.ID),
			zap.NamedError("reason", om.AdviceErr),
		)
	}
	turn.Opponent = &om
	return nil
}

// settle applies the battle result once it has resolved and ends the session.
func (a *Arena) settle(ctx context.Context, turn *Turn) error {
	s := a.current
	if s.battle.Phase() != combat.PhaseResolved {
		return nil
	}
	a.current = nil
	won := s.battle.Outcome() == combat.OutcomeWin
	turn.Resolved = true
	turn.Outcome = s.battle.Outcome()

	desc := reward.FromOpponent(s.opponent)
	res, err := a.engine.Apply(ctx, command.HandlerBattle, func(env *command.Env, st *player.State) (*player.State, command.Result) {
		return command.ApplyBattleResult(env, st, s.fighterID, desc, won)
	})
	turn.Result = res

	fields := []zap.Field{
		zap.String("battle", s.battle.ID),
		zap.String("outcome", turn.Outcome.String()),
		zap.Int("turns", s.battle.Turn()),
		zap.Duration("elapsed", time.Since(s.started)),
	}
	if res.Reward != nil {
		fields = append(fields,
			zap.Int("xp", res.Reward.XP),
			zap.Int("coins", res.Reward.Wallet.Coins),
			zap.Int("feathers", res.Reward.Wallet.Feathers),
			zap.Int("crystals", res.Reward.Wallet.Crystals),
		)
	}
	a.logger.Info("battle resolved", fields...)
	if res.Outcome != nil && res.Outcome.Zone.Advanced {
		a.logger.Info("zone advanced", zap.Int("zone", res.Outcome.Zone.Zone))
	}
	return err
}

// Forfeit abandons the battle in progress, which counts as a loss.
func (a *Arena) Forfeit(ctx context.Context) (command.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return command.Result{}, ErrNoBattle
	}
	s := a.current
	a.current = nil
	a.logger.Info("battle forfeited", zap.String("battle", s.battle.ID))
	return a.engine.Apply(ctx, command.HandlerBattle, func(env *command.Env, st *player.State) (*player.State, command.Result) {
		return command.ApplyBattleResult(env, st, s.fighterID, reward.FromOpponent(s.opponent), false)
	})
}
