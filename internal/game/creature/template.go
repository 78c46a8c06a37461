// Package creature provides species templates loaded from YAML and the owned,
// leveled creature instances derived from them.
package creature

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MoveKind classifies what a move does.
type MoveKind string

const (
	MoveAttack MoveKind = "attack"
	MoveHeal   MoveKind = "heal"
	MoveDefend MoveKind = "defend"
	MoveRest   MoveKind = "rest"
)

// RestMoveID is the id of the built-in move every creature knows.
const RestMoveID = "rest"

// Move is one entry of a species' fixed move list.
type Move struct {
	ID       string   `yaml:"id" json:"id"`
	Name     string   `yaml:"name" json:"name"`
	Kind     MoveKind `yaml:"kind" json:"kind"`
	Power    float64  `yaml:"power" json:"power"`
	Accuracy float64  `yaml:"accuracy" json:"accuracy"` // percent, 0-100
	// EnergyCost is paid whether the move hits or not.
	EnergyCost int `yaml:"energy_cost" json:"energy_cost"`
	// Cooldown is wall-clock time before the move may be used again.
	Cooldown            time.Duration `yaml:"cooldown" json:"cooldown"`
	RequiresTopAltitude bool          `yaml:"requires_top_altitude" json:"requires_top_altitude"`
	// HealFraction is the fraction of max HP restored by a heal move.
	HealFraction float64 `yaml:"heal_fraction" json:"heal_fraction"`
}

// IsDamaging reports whether the move goes through the damage formula.
func (m Move) IsDamaging() bool { return m.Kind == MoveAttack }

// RestMove returns the built-in zero-cost move that is always legal.
func RestMove() Move {
	return Move{ID: RestMoveID, Name: "Rest", Kind: MoveRest, Accuracy: 100}
}

// PassiveKind selects a species passive ability.
type PassiveKind string

const (
	PassiveNone PassiveKind = "none"
	// PassiveKeenEye makes the holder immune to speed-based evasion.
	PassiveKeenEye PassiveKind = "keen_eye"
	// PassiveExecutioner multiplies damage by 1+Magnitude against targets whose
	// HP fraction is below Threshold.
	PassiveExecutioner PassiveKind = "executioner"
	// PassiveThermalRider adds Magnitude energy on every regen step.
	PassiveThermalRider PassiveKind = "thermal_rider"
	// PassiveRegenerator restores Magnitude of max HP on every regen step.
	PassiveRegenerator PassiveKind = "regenerator"
)

// Passive describes a species passive.
type Passive struct {
	Kind      PassiveKind `yaml:"kind" json:"kind"`
	Magnitude float64     `yaml:"magnitude" json:"magnitude"`
	Threshold float64     `yaml:"threshold" json:"threshold"`
}

// Hunting describes a species' idle yield.
type Hunting struct {
	CoinsPerTick     float64 `yaml:"coins_per_tick" json:"coins_per_tick"`
	FeatherChance    float64 `yaml:"feather_chance" json:"feather_chance"`
	ConsumableChance float64 `yaml:"consumable_chance" json:"consumable_chance"`
	GemChance        float64 `yaml:"gem_chance" json:"gem_chance"`
}

// Template defines an immutable species loaded from YAML.
type Template struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Stats       StatRanges `yaml:"stats"`
	// EnergyRegen scales the flat per-turn energy regeneration.
	EnergyRegen float64 `yaml:"energy_regen"`
	Moves       []Move  `yaml:"moves"`
	Passive     Passive `yaml:"passive"`
	Hunting     Hunting `yaml:"hunting"`
}

// MoveByID returns the template move with id, including the built-in rest move.
func (t *Template) MoveByID(id string) (Move, bool) {
	return findMove(t.Moves, id)
}

func findMove(moves []Move, id string) (Move, bool) {
	if id == RestMoveID {
		return RestMove(), true
	}
	for _, m := range moves {
		if m.ID == id {
			return m, true
		}
	}
	return Move{}, false
}

func validChance(p float64) bool { return p >= 0 && p <= 1 }

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, every stat range is
// well formed with HP.Min >= 1, there is at least one move, move ids are unique
// and do not shadow the built-in rest move, and hunting chances are in [0, 1].
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("creature template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("creature template %q: name must not be empty", t.ID)
	}
	for _, s := range AllStats() {
		if err := t.Stats.Get(s).Validate(string(s)); err != nil {
			return fmt.Errorf("creature template %q: %w", t.ID, err)
		}
	}
	if t.Stats.HP.Min < 1 {
		return fmt.Errorf("creature template %q: hp.min must be >= 1", t.ID)
	}
	if t.EnergyRegen < 0 {
		return fmt.Errorf("creature template %q: energy_regen must be >= 0", t.ID)
	}
	if len(t.Moves) == 0 {
		return fmt.Errorf("creature template %q: at least one move is required", t.ID)
	}
	seen := make(map[string]bool, len(t.Moves))
	for i, m := range t.Moves {
		if m.ID == "" {
			return fmt.Errorf("creature template %q: move[%d] id must not be empty", t.ID, i)
		}
		if m.ID == RestMoveID {
			return fmt.Errorf("creature template %q: move id %q is reserved", t.ID, RestMoveID)
		}
		if seen[m.ID] {
			return fmt.Errorf("creature template %q: duplicate move id %q", t.ID, m.ID)
		}
		seen[m.ID] = true
		switch m.Kind {
		case MoveAttack, MoveHeal, MoveDefend:
		default:
			return fmt.Errorf("creature template %q: move %q has invalid kind %q", t.ID, m.ID, m.Kind)
		}
		if m.Accuracy < 0 || m.Accuracy > 100 {
			return fmt.Errorf("creature template %q: move %q accuracy must be in [0, 100]", t.ID, m.ID)
		}
		if m.EnergyCost < 0 {
			return fmt.Errorf("creature template %q: move %q energy_cost must be >= 0", t.ID, m.ID)
		}
		if m.Cooldown < 0 {
			return fmt.Errorf("creature template %q: move %q cooldown must be >= 0", t.ID, m.ID)
		}
	}
	switch t.Passive.Kind {
	case "", PassiveNone, PassiveKeenEye, PassiveExecutioner, PassiveThermalRider, PassiveRegenerator:
	default:
		return fmt.Errorf("creature template %q: unknown passive %q", t.ID, t.Passive.Kind)
	}
	h := t.Hunting
	if h.CoinsPerTick < 0 {
		return fmt.Errorf("creature template %q: hunting.coins_per_tick must be >= 0", t.ID)
	}
	if !validChance(h.FeatherChance) || !validChance(h.ConsumableChance) || !validChance(h.GemChance) {
		return fmt.Errorf("creature template %q: hunting chances must be in [0, 1]", t.ID)
	}
	return nil
}

// LoadTemplateFromBytes parses a single creature template from raw YAML bytes.
//
// Precondition: data must be valid YAML for a single Template.
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if tmpl.Passive.Kind == "" {
		tmpl.Passive.Kind = PassiveNone
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed templates.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or validate
// failure; duplicate ids are rejected.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading species dir %q: %w", dir, err)
	}

	var templates []*Template
	ids := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}

		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		if prev, dup := ids[tmpl.ID]; dup {
			return nil, fmt.Errorf("loading %q: template id %q already defined in %q", path, tmpl.ID, prev)
		}
		ids[tmpl.ID] = path
		templates = append(templates, tmpl)
	}
	return templates, nil
}
