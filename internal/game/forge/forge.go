// Package forge generates creatures, gear, gems, consumables and opponents
// from balance tables and a rarity roller.
package forge

import (
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/aviary/internal/game/balance"
	"github.com/cory-johannsen/aviary/internal/game/dice"
	"github.com/cory-johannsen/aviary/internal/game/rarity"
)

// Generator produces new game objects. Every random decision draws from the
// roller's source.
type Generator struct {
	roller *rarity.Roller
	tables *balance.Tables
	logger *zap.Logger
	newID  func() string
}

// NewGenerator creates a Generator.
//
// Precondition: roller, tables and logger must be non-nil.
// Postcondition: generated ids are random UUID strings.
func NewGenerator(roller *rarity.Roller, tables *balance.Tables, logger *zap.Logger) *Generator {
	return &Generator{roller: roller, tables: tables, logger: logger, newID: uuid.NewString}
}

// Tables returns the balance tables the generator reads.
func (g *Generator) Tables() *balance.Tables { return g.tables }

// Roller returns the rarity roller.
func (g *Generator) Roller() *rarity.Roller { return g.roller }

func (g *Generator) src() dice.Source { return g.roller.Source() }

// round returns v rounded half away from zero, with non-finite values mapped to 0.
func round(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Round(v))
}
