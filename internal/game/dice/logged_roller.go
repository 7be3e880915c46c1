package dice

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Roller wraps a Source and logger to provide logged dice evaluation.
// Every evaluation is logged at debug level with expression, rolls, total and
// detail. Contract violations are logged at error level.
type Roller struct {
	src     Source
	logger  *zap.Logger
	maxDice int
}

// RollerOption configures a Roller.
type RollerOption func(*Roller)

// WithMaxDice limits the number of dice one call may draw. n <= 0 disables the
// limit.
func WithMaxDice(n int) RollerOption {
	return func(r *Roller) {
		r.maxDice = n
	}
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to
// logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger, opts ...RollerOption) *Roller {
	r := &Roller{src: src, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Roll evaluates expr and logs the result at debug level.
//
// Precondition: expr must come from Parse.
// Postcondition: result logged; returns Result or error.
func (r *Roller) Roll(expr Expression) (Result, error) {
	if err := r.checkLimit(expr, 1); err != nil {
		return Result{}, err
	}
	result, err := Evaluate(expr, r.src)
	if err != nil {
		r.logFailure(expr.String(), err)
		return Result{}, err
	}
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Array("terms", termsMarshaler(result.Terms)),
		zap.Int("total", result.Total),
		zap.String("detail", result.Detail),
	)
	return result, nil
}

// RollExpr parses expr and rolls it, logging the result.
//
// Postcondition: Returns a Result or a parse/evaluation error.
func (r *Roller) RollExpr(expr string) (Result, error) {
	e, err := Parse(expr)
	if err != nil {
		r.logger.Debug("dice parse failed", zap.String("expression", expr), zap.Error(err))
		return Result{}, err
	}
	return r.Roll(e)
}

// RollMode evaluates expr twice with advantage or disadvantage and logs both
// evaluations.
func (r *Roller) RollMode(expr Expression, mode Mode) (AdvantageResult, error) {
	if err := r.checkLimit(expr, 2); err != nil {
		return AdvantageResult{}, err
	}
	result, err := EvaluateMode(expr, r.src, mode)
	if err != nil {
		r.logFailure(expr.String(), err)
		return AdvantageResult{}, err
	}
	r.logger.Debug("dice roll",
		zap.String("expression", result.First.Expression),
		zap.Stringer("mode", mode),
		zap.Int("first_total", result.First.Total),
		zap.Int("second_total", result.Second.Total),
		zap.Int("total", result.Total),
		zap.String("detail", result.Detail),
	)
	return result, nil
}

// RollExprMode parses expr and rolls it with advantage or disadvantage.
func (r *Roller) RollExprMode(expr string, mode Mode) (AdvantageResult, error) {
	e, err := Parse(expr)
	if err != nil {
		r.logger.Debug("dice parse failed", zap.String("expression", expr), zap.Error(err))
		return AdvantageResult{}, err
	}
	return r.RollMode(e, mode)
}

// RollD20 performs the single-die advantage/disadvantage roll and logs it.
func (r *Roller) RollD20(mode Mode, modifier int) (D20Result, error) {
	result, err := RollD20(mode, modifier, r.src)
	if err != nil {
		r.logFailure(d20Expression(modifier, mode), err)
		return D20Result{}, err
	}
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("rolls", result.Rolls[:]),
		zap.Int("kept", result.Kept),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total),
	)
	return result, nil
}

func (r *Roller) checkLimit(expr Expression, evaluations int) error {
	if r.maxDice <= 0 {
		return nil
	}
	// Compare by division so a huge count cannot wrap past the limit.
	if n := expr.DiceCount(); n > r.maxDice/evaluations {
		return fmt.Errorf("%w: %q draws %d dice %d time(s), limit is %d", ErrTooManyDice, expr.String(), n, evaluations, r.maxDice)
	}
	return nil
}

func (r *Roller) logFailure(expr string, err error) {
	if errors.Is(err, ErrEvaluation) {
		r.logger.Error("dice evaluation failed", zap.String("expression", expr), zap.Error(err))
		return
	}
	r.logger.Debug("dice roll failed", zap.String("expression", expr), zap.Error(err))
}
