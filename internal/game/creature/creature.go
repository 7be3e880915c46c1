// Package creature loads minimal creature stat blocks used to drive attack
// and saving throw rolls.
package creature

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultScore            = 10
	defaultProficiencyBonus = 2
)

// Abilities holds the six core ability scores.
type Abilities struct {
	Str int `yaml:"str"`
	Dex int `yaml:"dex"`
	Con int `yaml:"con"`
	Int int `yaml:"int"`
	Wis int `yaml:"wis"`
	Cha int `yaml:"cha"`
}

// DefaultAbilities returns a score of 10 in every ability.
func DefaultAbilities() Abilities {
	return Abilities{
		Str: defaultScore, Dex: defaultScore, Con: defaultScore,
		Int: defaultScore, Wis: defaultScore, Cha: defaultScore,
	}
}

// UnmarshalYAML accepts both short ("str") and long ("Strength") ability
// keys. Keys that are absent keep their current value.
func (a *Abilities) UnmarshalYAML(value *yaml.Node) error {
	var raw map[string]int
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("decoding abilities: %w", err)
	}
	for k, v := range raw {
		switch abbreviate(k) {
		case "str":
			a.Str = v
		case "dex":
			a.Dex = v
		case "con":
			a.Con = v
		case "int":
			a.Int = v
		case "wis":
			a.Wis = v
		case "cha":
			a.Cha = v
		}
	}
	return nil
}

// Score returns the score for an ability abbreviation or name.
func (a Abilities) Score(ability string) (int, bool) {
	switch abbreviate(ability) {
	case "str":
		return a.Str, true
	case "dex":
		return a.Dex, true
	case "con":
		return a.Con, true
	case "int":
		return a.Int, true
	case "wis":
		return a.Wis, true
	case "cha":
		return a.Cha, true
	}
	return 0, false
}

// Damage is one damage component of an attack.
type Damage struct {
	Expr string
	Type string
}

// UnmarshalYAML decodes a damage entry from either a bare dice string or a
// mapping using expr/dice/damage_dice and type/damage_type keys.
func (d *Damage) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		d.Expr = strings.TrimSpace(value.Value)
		d.Type = ""
		return nil
	case yaml.MappingNode:
		var raw struct {
			Expr       string `yaml:"expr"`
			Dice       string `yaml:"dice"`
			DamageDice string `yaml:"damage_dice"`
			Type       string `yaml:"type"`
			DamageType string `yaml:"damage_type"`
		}
		if err := value.Decode(&raw); err != nil {
			return fmt.Errorf("decoding damage: %w", err)
		}
		d.Expr = strings.TrimSpace(firstNonEmpty(raw.Expr, raw.Dice, raw.DamageDice))
		d.Type = firstNonEmpty(raw.Type, raw.DamageType)
		return nil
	default:
		return fmt.Errorf("line %d: damage must be a string or a mapping", value.Line)
	}
}

// DamageList is an attack's damage components. A single entry may be written
// without an enclosing sequence.
type DamageList []Damage

// UnmarshalYAML decodes a sequence of damage entries or a single entry.
// Entries without a dice expression are dropped.
func (l *DamageList) UnmarshalYAML(value *yaml.Node) error {
	var items []Damage
	if value.Kind == yaml.SequenceNode {
		if err := value.Decode(&items); err != nil {
			return err
		}
	} else {
		var one Damage
		if err := value.Decode(&one); err != nil {
			return err
		}
		items = []Damage{one}
	}

	out := make(DamageList, 0, len(items))
	for _, d := range items {
		if d.Expr == "" {
			continue
		}
		out = append(out, d)
	}
	*l = out
	return nil
}

// Attack is the creature's primary attack. A nil ToHit means the bonus is
// derived from ability scores.
type Attack struct {
	Name   string     `yaml:"name"`
	ToHit  *int       `yaml:"to_hit"`
	Damage DamageList `yaml:"damage"`
}

// Creature is a minimal stat block.
type Creature struct {
	Name             string         `yaml:"name"`
	Abilities        Abilities      `yaml:"abilities"`
	ProficiencyBonus int            `yaml:"proficiency_bonus"`
	SavingThrows     map[string]int `yaml:"saving_throws"`
	Attack           *Attack        `yaml:"attack"`
}

// SavingThrow returns the explicit saving throw bonus for the ability
// abbreviation ("str", "dex", ...), if the stat block lists one.
func (c *Creature) SavingThrow(ability string) (int, bool) {
	v, ok := c.SavingThrows[abbreviate(ability)]
	return v, ok
}

// Validate checks that the creature satisfies basic invariants.
//
// Precondition: c must not be nil.
// Postcondition: Returns nil iff Name is non-empty.
func (c *Creature) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("creature: name must not be empty")
	}
	return nil
}

// LoadFromBytes parses a creature from YAML or JSON bytes.
//
// Postcondition: Returns a validated *Creature with defaults applied to absent
// ability scores and proficiency bonus, or an error.
func LoadFromBytes(data []byte) (*Creature, error) {
	c := Creature{
		Abilities:        DefaultAbilities(),
		ProficiencyBonus: defaultProficiencyBonus,
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing creature: %w", err)
	}

	saves := make(map[string]int, len(c.SavingThrows))
	for k, v := range c.SavingThrows {
		saves[abbreviate(k)] = v
	}
	c.SavingThrows = saves

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFile reads and parses a creature stat block from path.
//
// Precondition: path must name a readable .yaml, .yml or .json file.
// Postcondition: Returns a validated *Creature or an error naming path.
func LoadFile(path string) (*Creature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	c, err := LoadFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", path, err)
	}
	return c, nil
}

// AbilityMod returns the ability modifier for score, rounding toward negative
// infinity.
//
// Postcondition: Returns floor((score-10)/2).
func AbilityMod(score int) int {
	diff := score - 10
	if diff >= 0 {
		return diff / 2
	}
	return (diff - 1) / 2
}

// AbilityKey returns the three-letter key ("str", "dex", ...) that names the
// same ability as name, e.g. "Strength" -> "str".
func AbilityKey(name string) string {
	return abbreviate(name)
}

// abbreviate lowercases k and keeps its first three letters, so
// "Strength" and "str" name the same ability.
func abbreviate(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	if len(k) > 3 {
		return k[:3]
	}
	return k
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
