package gameserver

import (
	"fmt"

	"github.com/cory-johannsen/aviary/internal/game/rarity"
)

// ANSI escape codes used by the console renderer.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"

	BrightRed    = "\033[91m"
	BrightYellow = "\033[93m"
	BrightCyan   = "\033[96m"
)

// tierColors indexes a display color by rarity tier.
var tierColors = [rarity.NumTiers]string{White, Green, Blue, Magenta, BrightYellow, BrightRed}

// Palette renders styled text, or plain text when color is disabled.
type Palette struct {
	Color bool
}

// Paint wraps text with color and a reset suffix when color is enabled.
//
// Postcondition: with color disabled text is returned unchanged.
func (p Palette) Paint(color, text string) string {
	if !p.Color {
		return text
	}
	return color + text + Reset
}

// Paintf formats and paints.
func (p Palette) Paintf(color, format string, args ...any) string {
	return p.Paint(color, fmt.Sprintf(format, args...))
}

// Tier paints text in the display color of tier t.
func (p Palette) Tier(t rarity.Tier, text string) string {
	if !t.Valid() {
		return text
	}
	return p.Paint(tierColors[t], text)
}

// StripANSI removes all ANSI escape sequences from s.
//
// Postcondition: returns s with every \033[...m sequence removed.
func StripANSI(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && s[j] != 'm' {
				j++
			}
			if j < len(s) {
				i = j
				continue
			}
		}
		out = append(out, s[i])
	}
	return string(out)
}
