package ai

import (
	"fmt"
	"sort"

	"github.com/cory-johannsen/aviary/internal/game/combat"
)

// Registry indexes advisors by name.
//
// Invariant: each name is registered at most once.
type Registry struct {
	advisors map[string]combat.Advisor
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{advisors: make(map[string]combat.Advisor)}
}

// Register stores advisor under name.
//
// Precondition: advisor must not be nil.
// Postcondition: returns error on name collision.
func (r *Registry) Register(name string, advisor combat.Advisor) error {
	if advisor == nil {
		return fmt.Errorf("ai.Registry: advisor %q must not be nil", name)
	}
	if _, exists := r.advisors[name]; exists {
		return fmt.Errorf("ai.Registry: advisor %q already registered", name)
	}
	r.advisors[name] = advisor
	return nil
}

// AdvisorFor returns the advisor registered under name, or false.
func (r *Registry) AdvisorFor(name string) (combat.Advisor, bool) {
	a, ok := r.advisors[name]
	return a, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.advisors))
	for k := range r.advisors {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
