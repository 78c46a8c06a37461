// Package rarity implements the six-tier quality ladder and the roll engine
// that is the single source of truth for every probabilistic reward.
package rarity

import (
	"fmt"
	"strings"
)

// Tier is one of six ordered quality levels.
type Tier int

const (
	Common Tier = iota
	Uncommon
	Rare
	Epic
	Legendary
	Mythic
)

// NumTiers is the number of defined tiers.
const NumTiers = 6

var tierNames = [NumTiers]string{"common", "uncommon", "rare", "epic", "legendary", "mythic"}

// All returns every tier in ascending order.
func All() []Tier {
	return []Tier{Common, Uncommon, Rare, Epic, Legendary, Mythic}
}

// Valid reports whether t is a defined tier.
func (t Tier) Valid() bool { return t >= Common && t <= Mythic }

// String returns the lower-case tier name.
func (t Tier) String() string {
	if !t.Valid() {
		return fmt.Sprintf("tier(%d)", int(t))
	}
	return tierNames[t]
}

// ParseTier converts a tier name (case-insensitive) into a Tier.
//
// Postcondition: Returns a valid Tier or a non-nil error.
func ParseTier(s string) (Tier, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range tierNames {
		if n == name {
			return Tier(i), nil
		}
	}
	return Common, fmt.Errorf("rarity: unknown tier %q", s)
}

// MarshalText encodes the tier as its name.
func (t Tier) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("rarity: cannot marshal invalid tier %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText decodes a tier name.
func (t *Tier) UnmarshalText(b []byte) error {
	v, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Clamp bounds t into [Common, Mythic].
func Clamp(t Tier) Tier {
	if t < Common {
		return Common
	}
	if t > Mythic {
		return Mythic
	}
	return t
}

// Lower returns the tier steps below t, floored at Common.
func Lower(t Tier, steps int) Tier {
	return Clamp(t - Tier(steps))
}

// Min returns the lower of a and b.
func Min(a, b Tier) Tier {
	if a < b {
		return a
	}
	return b
}
