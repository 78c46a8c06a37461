package ai

import (
	"context"

	"github.com/cory-johannsen/aviary/internal/game/combat"
	"github.com/cory-johannsen/aviary/internal/game/dice"
)

// RandomAdvisor picks a uniformly random legal move.
type RandomAdvisor struct {
	src dice.Source
}

// NewRandomAdvisor returns a RandomAdvisor drawing from src.
func NewRandomAdvisor(src dice.Source) *RandomAdvisor {
	return &RandomAdvisor{src: src}
}

// Choose implements combat.Advisor.
func (a *RandomAdvisor) Choose(_ context.Context, v combat.View) (combat.Choice, error) {
	return combat.RandomChoice(a.src, v), nil
}
