// Package combat resolves creature attacks and saving throws on top of the
// dice engine.
package combat

import (
	"github.com/cory-johannsen/dicetrace/internal/game/creature"
	"github.com/cory-johannsen/dicetrace/internal/game/dice"
)

const defaultAttackName = "Attack"

// Profile is the attack a creature makes: a name, a to-hit bonus and its
// damage components.
type Profile struct {
	Name   string
	ToHit  int
	Damage []creature.Damage
}

// PickAttack derives the attack profile for c.
//
// A missing to-hit bonus falls back to the better of the STR and DEX
// modifiers plus the proficiency bonus. A missing name becomes "Attack".
//
// Precondition: c must not be nil.
// Postcondition: Returns a Profile whose Damage entries all carry an expression.
func PickAttack(c *creature.Creature) Profile {
	p := Profile{Name: defaultAttackName}
	if c.Attack != nil {
		if c.Attack.Name != "" {
			p.Name = c.Attack.Name
		}
		for _, d := range c.Attack.Damage {
			if d.Expr != "" {
				p.Damage = append(p.Damage, d)
			}
		}
	}

	if c.Attack != nil && c.Attack.ToHit != nil {
		p.ToHit = *c.Attack.ToHit
	} else {
		p.ToHit = max(creature.AbilityMod(c.Abilities.Str), creature.AbilityMod(c.Abilities.Dex)) + c.ProficiencyBonus
	}
	return p
}

// Roller is the subset of *dice.Roller used by the resolver.
type Roller interface {
	RollExpr(expr string) (dice.Result, error)
	RollExprMode(expr string, mode dice.Mode) (dice.AdvantageResult, error)
}
