package command

import (
	"github.com/cory-johannsen/aviary/internal/game/player"
	"github.com/cory-johannsen/aviary/internal/game/reward"
)

// ApplyBattleResult folds a finished battle into the state. A victory
// computes and credits the reward for fighterID and records zone progress; a
// loss only counts the loss.
//
// Postcondition: the zone advances at most once per call.
func ApplyBattleResult(env *Env, st *player.State, fighterID string, b reward.Battle, won bool) (*player.State, Result) {
	next := st.Clone()
	if !won {
		reward.RecordLoss(next)
		return next, Result{}
	}
	r := env.Rewards.Victory(next, fighterID, b)
	out := env.Rewards.Apply(next, fighterID, b, r)
	c, _ := next.Creature(fighterID)
	return next, Result{
		Reward:       &r,
		Outcome:      &out,
		Creature:     c,
		Gem:          r.Gem,
		Achievements: next.CheckAchievements(env.Tables),
	}
}
