package creature

import "fmt"

// Stat names one of the five combat statistics.
type Stat string

const (
	StatHP      Stat = "hp"
	StatEnergy  Stat = "energy"
	StatAttack  Stat = "attack"
	StatDefense Stat = "defense"
	StatSpeed   Stat = "speed"
)

// AllStats returns every stat in canonical order.
func AllStats() []Stat {
	return []Stat{StatHP, StatEnergy, StatAttack, StatDefense, StatSpeed}
}

// Valid reports whether s is a known stat.
func (s Stat) Valid() bool {
	switch s {
	case StatHP, StatEnergy, StatAttack, StatDefense, StatSpeed:
		return true
	}
	return false
}

// Stats is a full stat block.
type Stats struct {
	HP      int `json:"hp" yaml:"hp"`
	Energy  int `json:"energy" yaml:"energy"`
	Attack  int `json:"attack" yaml:"attack"`
	Defense int `json:"defense" yaml:"defense"`
	Speed   int `json:"speed" yaml:"speed"`
}

// Get returns the value of stat s, or 0 for an unknown stat.
func (b Stats) Get(s Stat) int {
	switch s {
	case StatHP:
		return b.HP
	case StatEnergy:
		return b.Energy
	case StatAttack:
		return b.Attack
	case StatDefense:
		return b.Defense
	case StatSpeed:
		return b.Speed
	}
	return 0
}

// With returns a copy of b with n added to stat s. Unknown stats are ignored.
func (b Stats) With(s Stat, n int) Stats {
	switch s {
	case StatHP:
		b.HP += n
	case StatEnergy:
		b.Energy += n
	case StatAttack:
		b.Attack += n
	case StatDefense:
		b.Defense += n
	case StatSpeed:
		b.Speed += n
	}
	return b
}

// Plus returns the field-wise sum of b and o.
func (b Stats) Plus(o Stats) Stats {
	return Stats{
		HP:      b.HP + o.HP,
		Energy:  b.Energy + o.Energy,
		Attack:  b.Attack + o.Attack,
		Defense: b.Defense + o.Defense,
		Speed:   b.Speed + o.Speed,
	}
}

// StatRange is an inclusive integer range for one template stat.
type StatRange struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// Validate checks 0 <= Min <= Max.
func (r StatRange) Validate(name string) error {
	if r.Min < 0 {
		return fmt.Errorf("%s.min must be >= 0, got %d", name, r.Min)
	}
	if r.Max < r.Min {
		return fmt.Errorf("%s.min (%d) must be <= max (%d)", name, r.Min, r.Max)
	}
	return nil
}

// StatRanges holds one range per stat.
type StatRanges struct {
	HP      StatRange `yaml:"hp" json:"hp"`
	Energy  StatRange `yaml:"energy" json:"energy"`
	Attack  StatRange `yaml:"attack" json:"attack"`
	Defense StatRange `yaml:"defense" json:"defense"`
	Speed   StatRange `yaml:"speed" json:"speed"`
}

// Get returns the range for stat s.
func (r StatRanges) Get(s Stat) StatRange {
	switch s {
	case StatHP:
		return r.HP
	case StatEnergy:
		return r.Energy
	case StatAttack:
		return r.Attack
	case StatDefense:
		return r.Defense
	case StatSpeed:
		return r.Speed
	}
	return StatRange{}
}
