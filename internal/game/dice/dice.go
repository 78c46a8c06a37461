// Package dice provides the core randomness abstraction shared by every
// probabilistic rule in the Aviary engine: rarity rolls, stat sampling,
// combat accuracy and loot drops all draw from a single Source.
package dice

import "math"

// Source is the randomness provider for every roll in the engine.
//
// Implementations used by the live engine MUST be safe for concurrent use.
type Source interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
}

// unit clamps a raw draw into [0, 1) so that a misbehaving Source can never
// push an index or range computation out of bounds.
func unit(src Source) float64 {
	f := src.Float64()
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f >= 1 {
		return math.Nextafter(1, 0)
	}
	return f
}

// Chance reports whether an event with probability p happens.
// Exactly one draw is consumed regardless of p.
//
// Postcondition: p <= 0 always returns false; p >= 1 always returns true.
func Chance(src Source, p float64) bool {
	f := unit(src)
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return f < p
}

// FloatRange returns a uniform value in [lo, hi). If hi <= lo, lo is returned
// after consuming one draw.
func FloatRange(src Source, lo, hi float64) float64 {
	f := unit(src)
	if hi <= lo {
		return lo
	}
	// lo + f*(hi-lo) can round up to hi when f is the largest value below 1.
	v := lo + f*(hi-lo)
	if v >= hi {
		v = math.Nextafter(hi, lo)
	}
	return v
}

// IntRange returns a uniform int in the inclusive range [lo, hi].
//
// Precondition: none; if hi < lo, lo is returned.
// Postcondition: lo <= result <= hi when hi >= lo.
func IntRange(src Source, lo, hi int) int {
	f := unit(src)
	if hi <= lo {
		return lo
	}
	span := hi - lo + 1
	v := lo + int(f*float64(span))
	if v > hi {
		v = hi
	}
	return v
}

// Pick returns a uniform index in [0, n).
//
// Precondition: n > 0. Panics with "dice: Pick called with n <= 0" otherwise.
func Pick(src Source, n int) int {
	if n <= 0 {
		panic("dice: Pick called with n <= 0")
	}
	return IntRange(src, 0, n-1)
}

// Weighted returns an index into weights chosen proportionally to each weight.
// Non-positive weights are never chosen. When every weight is non-positive,
// the last index is returned.
//
// Precondition: len(weights) > 0.
func Weighted(src Source, weights []int) int {
	if len(weights) == 0 {
		panic("dice: Weighted called with no weights")
	}
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	f := unit(src)
	if total == 0 {
		return len(weights) - 1
	}
	target := int(f * float64(total))
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if target < w {
			return i
		}
		target -= w
	}
	return len(weights) - 1
}
