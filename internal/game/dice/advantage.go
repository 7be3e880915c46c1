package dice

import "fmt"

// AdvantageResult holds both evaluations of an advantage or disadvantage roll.
//
// Invariant: Total == Chosen().Total.
type AdvantageResult struct {
	Mode   Mode
	First  Result
	Second Result
	Index  int // 0 when First was chosen, 1 when Second was chosen
	Total  int
	Detail string // e.g. "adv 1d20+5: (1d20[14] +5 = 19) vs (1d20[9] +5 = 14) -> 19"
}

// Chosen returns the evaluation selected by the mode.
func (r AdvantageResult) Chosen() Result {
	if r.Index == 1 {
		return r.Second
	}
	return r.First
}

// Other returns the evaluation that was not selected.
func (r AdvantageResult) Other() Result {
	if r.Index == 1 {
		return r.First
	}
	return r.Second
}

// EvaluateAdvantage evaluates expr twice with fresh draws and keeps the higher
// total. Ties keep the first evaluation.
func EvaluateAdvantage(expr Expression, src Source) (AdvantageResult, error) {
	return evaluateTwice(expr, src, Advantage)
}

// EvaluateDisadvantage evaluates expr twice with fresh draws and keeps the
// lower total. Ties keep the first evaluation.
func EvaluateDisadvantage(expr Expression, src Source) (AdvantageResult, error) {
	return evaluateTwice(expr, src, Disadvantage)
}

// EvaluateMode dispatches to EvaluateAdvantage or EvaluateDisadvantage.
func EvaluateMode(expr Expression, src Source, mode Mode) (AdvantageResult, error) {
	switch mode {
	case Advantage, Disadvantage:
		return evaluateTwice(expr, src, mode)
	default:
		return AdvantageResult{}, &EvaluationError{Expr: expr.String(), Reason: fmt.Sprintf("unknown mode %d", mode)}
	}
}

func evaluateTwice(expr Expression, src Source, mode Mode) (AdvantageResult, error) {
	first, err := Evaluate(expr, src)
	if err != nil {
		return AdvantageResult{}, err
	}
	second, err := Evaluate(expr, src)
	if err != nil {
		return AdvantageResult{}, err
	}
	return pickResult(mode, first, second), nil
}

// pickResult selects between two completed evaluations. Only a strictly
// better second total displaces the first.
func pickResult(mode Mode, first, second Result) AdvantageResult {
	index := 0
	switch mode {
	case Advantage:
		if second.Total > first.Total {
			index = 1
		}
	case Disadvantage:
		if second.Total < first.Total {
			index = 1
		}
	}
	r := AdvantageResult{Mode: mode, First: first, Second: second, Index: index}
	r.Total = r.Chosen().Total
	r.Detail = fmt.Sprintf("%s %s: (%s) vs (%s) -> %d", mode, first.Expression, first.Detail, second.Detail, r.Total)
	return r
}

// D20Result is the single-die convenience form of advantage/disadvantage: two
// d20 draws, one kept, plus a flat modifier.
//
// Postcondition: Total == Kept + Modifier.
type D20Result struct {
	Mode       Mode
	Rolls      [2]int // raw draws in order
	Kept       int
	Dropped    int
	Modifier   int
	Total      int
	Expression string // e.g. "1d20+5 adv"
	Detail     string // e.g. "1d20+5 adv [14,9] keep 14 drop 9 +5 = 19"
}

// String returns the detail string.
func (r D20Result) String() string {
	return r.Detail
}

// RollD20Advantage draws two d20s, keeps the higher and adds modifier.
func RollD20Advantage(modifier int, src Source) (D20Result, error) {
	return rollD20(Advantage, modifier, src)
}

// RollD20Disadvantage draws two d20s, keeps the lower and adds modifier.
func RollD20Disadvantage(modifier int, src Source) (D20Result, error) {
	return rollD20(Disadvantage, modifier, src)
}

// RollD20 dispatches to RollD20Advantage or RollD20Disadvantage.
func RollD20(mode Mode, modifier int, src Source) (D20Result, error) {
	if mode != Advantage && mode != Disadvantage {
		return D20Result{}, &EvaluationError{Expr: d20Expression(modifier, mode), Reason: fmt.Sprintf("unknown mode %d", mode)}
	}
	return rollD20(mode, modifier, src)
}

func rollD20(mode Mode, modifier int, src Source) (D20Result, error) {
	expr := d20Expression(modifier, mode)
	var rolls [2]int
	for i := range rolls {
		v, err := src.Draw(1, 20)
		if err != nil {
			return D20Result{}, &EvaluationError{Expr: expr, Reason: "drawing die", Err: err}
		}
		if v < 1 || v > 20 {
			return D20Result{}, &EvaluationError{Expr: expr, Reason: fmt.Sprintf("source returned %d outside [1, 20]", v)}
		}
		rolls[i] = v
	}

	kept, dropped := rolls[0], rolls[1]
	if (mode == Advantage && rolls[1] > rolls[0]) || (mode == Disadvantage && rolls[1] < rolls[0]) {
		kept, dropped = rolls[1], rolls[0]
	}
	total := kept + modifier
	return D20Result{
		Mode:       mode,
		Rolls:      rolls,
		Kept:       kept,
		Dropped:    dropped,
		Modifier:   modifier,
		Total:      total,
		Expression: expr,
		Detail: fmt.Sprintf("%s [%d,%d] keep %d drop %d %+d = %d",
			expr, rolls[0], rolls[1], kept, dropped, modifier, total),
	}, nil
}

func d20Expression(modifier int, mode Mode) string {
	s := "1d20"
	if modifier != 0 {
		s += fmt.Sprintf("%+d", modifier)
	}
	return s + " " + mode.String()
}

// D20Expression returns the composite expression "1d20%+d" used for to-hit
// rolls and saving throws, e.g. "1d20+5" or "1d20-1".
func D20Expression(modifier int) string {
	return fmt.Sprintf("1d20%+d", modifier)
}
