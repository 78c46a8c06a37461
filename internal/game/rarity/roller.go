package rarity

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/aviary/internal/game/dice"
)

// Roller wraps a Source, Table and logger to provide logged rarity rolls.
// All rolls are logged at debug level with context, level, multiplier and tier.
type Roller struct {
	src    dice.Source
	table  Table
	logger *zap.Logger
}

// NewRoller creates a Roller.
//
// Precondition: src and logger must be non-nil.
func NewRoller(src dice.Source, table Table, logger *zap.Logger) *Roller {
	return &Roller{src: src, table: table, logger: logger}
}

// Source returns the underlying random source.
func (r *Roller) Source() dice.Source { return r.src }

// Table returns the roll table.
func (r *Roller) Table() Table { return r.table }

// Roll delegates to the package-level Roll and logs the result.
//
// Postcondition: identical result to Roll(r.src, r.table, level, ctx, multiplier).
func (r *Roller) Roll(level int, ctx Context, multiplier float64) Tier {
	tier := Roll(r.src, r.table, level, ctx, multiplier)
	r.logger.Debug("rarity roll",
		zap.Stringer("context", ctx),
		zap.Int("upgrade_level", level),
		zap.Float64("multiplier", multiplier),
		zap.Stringer("tier", tier),
	)
	return tier
}

// Multiplier samples a stat multiplier for tier.
func (r *Roller) Multiplier(tier Tier) float64 {
	return SampleMultiplier(r.src, r.table, tier)
}
