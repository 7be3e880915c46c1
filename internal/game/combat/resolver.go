package combat

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dicetrace/internal/game/creature"
	"github.com/cory-johannsen/dicetrace/internal/game/dice"
)

// DamageResult is one rolled damage component. Err is set when that component
// alone could not be rolled.
type DamageResult struct {
	Expr   string
	Type   string
	Result dice.Result
	Err    error
}

// AttackResult holds the outcome of a single attack.
type AttackResult struct {
	// ID uniquely identifies this attack in logs.
	ID string
	// Name is the attack's name from its Profile.
	Name string
	// ToHitExpr is the to-hit expression, e.g. "1d20+4".
	ToHitExpr string
	// ToHit is the to-hit evaluation that counts.
	ToHit dice.Result
	// ToHitPair holds both evaluations when the attack was rolled with
	// advantage or disadvantage; nil for a straight roll.
	ToHitPair *dice.AdvantageResult
	Damage    []DamageResult
}

// TotalDamage sums every damage component that rolled successfully.
func (r AttackResult) TotalDamage() int {
	total := 0
	for _, d := range r.Damage {
		if d.Err == nil {
			total += d.Result.Total
		}
	}
	return total
}

// SaveResult is a rolled saving throw.
type SaveResult struct {
	Expr           string
	Result         dice.Result
	Pair           *dice.AdvantageResult
	ModifierDetail string
}

// Resolver rolls attacks and saves through a Roller.
type Resolver struct {
	roller Roller
	ids    func() string
	logger *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithIDGenerator replaces the attack ID generator.
func WithIDGenerator(gen func() string) Option {
	return func(r *Resolver) {
		r.ids = gen
	}
}

// NewResolver creates a Resolver.
//
// Precondition: roller and logger must be non-nil.
func NewResolver(roller Roller, logger *zap.Logger, opts ...Option) *Resolver {
	r := &Resolver{roller: roller, ids: uuid.NewString, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveAttack rolls the to-hit and then every damage component of p. The
// zero Mode rolls the to-hit once; Advantage and Disadvantage roll it twice.
// Damage is always rolled once per component.
//
// Postcondition: A to-hit failure returns an error and no result. Damage
// failures are recorded per component and do not stop the others.
func (r *Resolver) ResolveAttack(p Profile, mode dice.Mode) (AttackResult, error) {
	res := AttackResult{
		ID:        r.ids(),
		Name:      p.Name,
		ToHitExpr: dice.D20Expression(p.ToHit),
	}

	toHit, pair, err := r.roll(res.ToHitExpr, mode)
	if err != nil {
		return AttackResult{}, fmt.Errorf("rolling to-hit for %q: %w", p.Name, err)
	}
	res.ToHit = toHit
	res.ToHitPair = pair

	res.Damage = make([]DamageResult, 0, len(p.Damage))
	for _, d := range p.Damage {
		dr := DamageResult{Expr: d.Expr, Type: d.Type}
		dr.Result, dr.Err = r.roller.RollExpr(d.Expr)
		if dr.Err != nil {
			r.logger.Warn("damage roll failed",
				zap.String("attack_id", res.ID),
				zap.String("expression", d.Expr),
				zap.Error(dr.Err),
			)
		}
		res.Damage = append(res.Damage, dr)
	}

	r.logger.Debug("attack resolved",
		zap.String("attack_id", res.ID),
		zap.String("name", res.Name),
		zap.Int("to_hit", res.ToHit.Total),
		zap.Int("damage", res.TotalDamage()),
	)
	return res, nil
}

// StrengthSave rolls a straight Strength saving throw for c.
func (r *Resolver) StrengthSave(c *creature.Creature) (SaveResult, error) {
	return r.Save(c, "str", 0)
}

// Save rolls a saving throw for the named ability. An explicit saving throw
// bonus on the stat block wins over the ability modifier.
//
// Precondition: c must not be nil.
// Postcondition: ModifierDetail reads "STR save (explicit)" or "STR mod (default)"
// for the given ability.
func (r *Resolver) Save(c *creature.Creature, ability string, mode dice.Mode) (SaveResult, error) {
	label := strings.ToUpper(creature.AbilityKey(ability))
	var mod int
	var detail string
	if v, ok := c.SavingThrow(ability); ok {
		mod = v
		detail = label + " save (explicit)"
	} else {
		score, ok := c.Abilities.Score(ability)
		if !ok {
			return SaveResult{}, fmt.Errorf("unknown ability %q", ability)
		}
		mod = creature.AbilityMod(score)
		detail = label + " mod (default)"
	}

	expr := dice.D20Expression(mod)
	result, pair, err := r.roll(expr, mode)
	if err != nil {
		return SaveResult{}, fmt.Errorf("rolling %s save for %q: %w", label, c.Name, err)
	}
	return SaveResult{Expr: expr, Result: result, Pair: pair, ModifierDetail: detail}, nil
}

func (r *Resolver) roll(expr string, mode dice.Mode) (dice.Result, *dice.AdvantageResult, error) {
	if mode == 0 {
		res, err := r.roller.RollExpr(expr)
		return res, nil, err
	}
	pair, err := r.roller.RollExprMode(expr, mode)
	if err != nil {
		return dice.Result{}, nil, err
	}
	return pair.Chosen(), &pair, nil
}
