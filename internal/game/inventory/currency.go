// Package inventory holds the owned item model: the currency wallet, gear,
// socketable gems and consumable buffs.
package inventory

import (
	"fmt"
	"strings"
)

// Currency names one of the three wallet balances.
type Currency string

const (
	Coins    Currency = "coins"
	Feathers Currency = "feathers"
	Crystals Currency = "crystals"
)

// Wallet holds the three currency balances. It doubles as a cost value.
//
// Invariant: every balance is >= 0.
type Wallet struct {
	Coins    int `json:"coins" yaml:"coins"`
	Feathers int `json:"feathers" yaml:"feathers"`
	Crystals int `json:"crystals" yaml:"crystals"`
}

// Get returns the balance of c, or 0 for an unknown currency.
func (w Wallet) Get(c Currency) int {
	switch c {
	case Coins:
		return w.Coins
	case Feathers:
		return w.Feathers
	case Crystals:
		return w.Crystals
	}
	return 0
}

// IsZero reports whether every balance is zero.
func (w Wallet) IsZero() bool { return w == Wallet{} }

// CanAfford reports whether w covers cost in every currency.
func (w Wallet) CanAfford(cost Wallet) bool {
	return w.Coins >= cost.Coins && w.Feathers >= cost.Feathers && w.Crystals >= cost.Crystals
}

// Spend deducts cost from w.
//
// Precondition: cost balances are >= 0.
// Postcondition: Returns false and leaves w unchanged if w cannot afford cost.
func (w *Wallet) Spend(cost Wallet) bool {
	if !w.CanAfford(cost) {
		return false
	}
	w.Coins -= cost.Coins
	w.Feathers -= cost.Feathers
	w.Crystals -= cost.Crystals
	return true
}

// Add credits gain to w. Negative components are ignored.
func (w *Wallet) Add(gain Wallet) {
	w.Coins += max(gain.Coins, 0)
	w.Feathers += max(gain.Feathers, 0)
	w.Crystals += max(gain.Crystals, 0)
}

// Format returns a human-readable list of the non-zero balances of w,
// or "nothing" when every balance is zero.
//
// Postcondition: uses singular/plural forms and the order coins, feathers, crystals.
func Format(w Wallet) string {
	var parts []string
	if w.Coins != 0 {
		parts = append(parts, fmt.Sprintf("%d %s", w.Coins, plural(w.Coins, "Coin")))
	}
	if w.Feathers != 0 {
		parts = append(parts, fmt.Sprintf("%d %s", w.Feathers, plural(w.Feathers, "Feather")))
	}
	if w.Crystals != 0 {
		parts = append(parts, fmt.Sprintf("%d %s", w.Crystals, plural(w.Crystals, "Crystal")))
	}
	if len(parts) == 0 {
		return "nothing"
	}
	return strings.Join(parts, ", ")
}

// plural returns the singular form if n == 1, otherwise appends "s".
func plural(n int, singular string) string {
	if n == 1 {
		return singular
	}
	return singular + "s"
}
