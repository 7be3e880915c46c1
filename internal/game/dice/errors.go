package dice

import (
	"errors"
	"fmt"
)

var (
	// ErrParse matches every *ParseError via errors.Is.
	ErrParse = errors.New("dice: parse error")
	// ErrEvaluation matches every *EvaluationError via errors.Is.
	ErrEvaluation = errors.New("dice: evaluation error")
	// ErrSourceExhausted is returned by a Source that has no values left.
	ErrSourceExhausted = errors.New("dice: source exhausted")
	// ErrTooManyDice is returned by Roller when an expression draws more dice
	// than the configured limit.
	ErrTooManyDice = errors.New("dice: too many dice")
)

// ParseError reports malformed expression text.
type ParseError struct {
	Expr     string // full input
	Fragment string // offending substring, empty when not applicable
	Offset   int    // byte offset of Fragment in Expr, -1 when unknown
	Reason   string
}

func (e *ParseError) Error() string {
	if e.Fragment == "" {
		return "dice: " + e.Reason
	}
	return fmt.Sprintf("dice: %s at %q (offset %d) in %q", e.Reason, e.Fragment, e.Offset, e.Expr)
}

// Is reports whether target is ErrParse.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// EvaluationError reports an internal-contract violation during evaluation:
// a malformed term or a misbehaving Source. It is never retried.
type EvaluationError struct {
	Expr   string
	Reason string
	Err    error // underlying Source error, if any
}

func (e *EvaluationError) Error() string {
	msg := fmt.Sprintf("dice: evaluating %q: %s", e.Expr, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is ErrEvaluation.
func (e *EvaluationError) Is(target error) bool {
	return target == ErrEvaluation
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}
