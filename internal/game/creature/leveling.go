package creature

import (
	"errors"
	"math"
	"strings"
)

// LevelTable configures experience curves and stat point rewards.
type LevelTable struct {
	// XPBase is the experience needed to leave level 1.
	XPBase float64 `yaml:"xp_base"`
	// XPGrowth multiplies the requirement per level.
	XPGrowth           float64 `yaml:"xp_growth"`
	StatPointsPerLevel int     `yaml:"stat_points_per_level"`
	// PointGain is what one spent point adds to each stat.
	PointGain Stats `yaml:"point_gain"`
}

// DefaultLevelTable returns the shipped leveling curve.
func DefaultLevelTable() LevelTable {
	return LevelTable{
		XPBase:             100,
		XPGrowth:           1.5,
		StatPointsPerLevel: 3,
		PointGain:          Stats{HP: 5, Energy: 5, Attack: 1, Defense: 1, Speed: 1},
	}
}

// Validate checks the table invariants.
func (t LevelTable) Validate() error {
	var errs []string
	if t.XPBase < 1 {
		errs = append(errs, "creature.xp_base must be >= 1")
	}
	if t.XPGrowth < 1 {
		errs = append(errs, "creature.xp_growth must be >= 1")
	}
	if t.StatPointsPerLevel < 0 {
		errs = append(errs, "creature.stat_points_per_level must be >= 0")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// XPToNext returns floor(XPBase * XPGrowth^(level-1)).
//
// Precondition: none; level < 1 is treated as 1.
// Postcondition: Returns >= 1.
func XPToNext(t LevelTable, level int) int {
	if level < 1 {
		level = 1
	}
	v := math.Floor(t.XPBase * math.Pow(t.XPGrowth, float64(level-1)))
	if math.IsInf(v, 0) || v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < 1 {
		return 1
	}
	return int(v)
}

// GainXP adds amount experience, rolling overflow through as many level
// thresholds as it covers.
//
// Precondition: i must not be nil.
// Postcondition: i.XP < i.XPToNext; i.Level is non-decreasing; returns the
// number of levels gained. Non-positive amounts are ignored.
func (i *Instance) GainXP(amount int, t LevelTable) int {
	if i.Level < 1 {
		i.Level = 1
	}
	if i.XPToNext < 1 {
		i.XPToNext = XPToNext(t, i.Level)
	}
	if amount <= 0 {
		return 0
	}
	i.XP += amount
	return i.rollOver(t)
}

// Settle repairs a creature loaded from storage: a missing requirement is
// recomputed from the table and stored overflow is rolled into levels exactly
// as GainXP would.
//
// Precondition: i must not be nil.
// Postcondition: i.Level >= 1; 0 <= i.XP < i.XPToNext; returns the number of
// levels gained.
func (i *Instance) Settle(t LevelTable) int {
	if i.Level < 1 {
		i.Level = 1
	}
	if i.XP < 0 {
		i.XP = 0
	}
	if i.XPToNext < 1 {
		i.XPToNext = XPToNext(t, i.Level)
	}
	return i.rollOver(t)
}

func (i *Instance) rollOver(t LevelTable) int {
	gained := 0
	for i.XP >= i.XPToNext {
		i.XP -= i.XPToNext
		i.Level++
		gained++
		i.StatPoints += t.StatPointsPerLevel
		i.XPToNext = XPToNext(t, i.Level)
	}
	return gained
}

// AllocatePoint spends one stat point on stat s.
//
// Postcondition: Returns false and leaves i unchanged if no points remain or s
// is unknown; otherwise StatPoints decreases by one and Allocated grows by the
// table's PointGain for s.
func (i *Instance) AllocatePoint(s Stat, t LevelTable) bool {
	if i.StatPoints <= 0 || !s.Valid() {
		return false
	}
	i.StatPoints--
	i.Allocated = i.Allocated.With(s, t.PointGain.Get(s))
	return true
}
