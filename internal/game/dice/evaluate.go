package dice

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// TermResult is the outcome of evaluating one term.
//
// Invariant: Kept and Dropped are subsequences of Rolls in draw order and
// together hold exactly the values of Rolls. Constant terms have no rolls.
type TermResult struct {
	Term     Term
	Rolls    []int
	Kept     []int
	Dropped  []int
	Subtotal int // signed contribution to the total
}

// Result holds the full audit trail for one evaluation of an expression.
//
// Postcondition: Total == sum of Terms[i].Subtotal.
type Result struct {
	Expression string // canonical normalized form, e.g. "4d6kh3+2"
	Terms      []TermResult
	Total      int
	Detail     string // e.g. "4d6kh3[4,6,5]~[2] +2 = 17"
}

// String returns the detail string.
func (r Result) String() string {
	return r.Detail
}

// Evaluate rolls every term of expr left to right using src.
//
// Precondition: expr should come from Parse; src must be non-nil.
// Postcondition: Returns a complete Result, or an *EvaluationError and no
// partial result when a term is malformed or src misbehaves.
func Evaluate(expr Expression, src Source) (Result, error) {
	canonical := expr.String()
	if len(expr.Terms) == 0 {
		return Result{}, &EvaluationError{Expr: canonical, Reason: "no terms"}
	}

	terms := make([]TermResult, 0, len(expr.Terms))
	fragments := make([]string, 0, len(expr.Terms))
	total := 0
	for i, t := range expr.Terms {
		tr, err := evaluateTerm(t, src)
		if err != nil {
			err.Expr = canonical
			return Result{}, err
		}
		terms = append(terms, tr)
		fragments = append(fragments, renderTerm(tr, i == 0))
		total += tr.Subtotal
	}

	return Result{
		Expression: canonical,
		Terms:      terms,
		Total:      total,
		Detail:     strings.Join(fragments, " ") + " = " + strconv.Itoa(total),
	}, nil
}

// EvaluateString parses text and evaluates it using src in a single call.
//
// Postcondition: Returns a Result, a *ParseError, or an *EvaluationError.
func EvaluateString(text string, src Source) (Result, error) {
	expr, err := Parse(text)
	if err != nil {
		return Result{}, err
	}
	return Evaluate(expr, src)
}

func evaluateTerm(t Term, src Source) (TermResult, *EvaluationError) {
	if t.Sign != Plus && t.Sign != Minus {
		return TermResult{}, &EvaluationError{Reason: fmt.Sprintf("invalid sign %d", t.Sign)}
	}

	switch t.Kind {
	case ConstantTerm:
		return TermResult{Term: t, Subtotal: int(t.Sign) * t.Value}, nil
	case DiceTerm:
	default:
		return TermResult{}, &EvaluationError{Reason: fmt.Sprintf("unknown term kind %d", t.Kind)}
	}

	if t.Count < 1 || t.Faces < 1 {
		return TermResult{}, &EvaluationError{Reason: fmt.Sprintf("invalid dice group %dd%d", t.Count, t.Faces)}
	}
	if t.Count > MaxGroupDice {
		return TermResult{}, &EvaluationError{Reason: fmt.Sprintf("dice group %dd%d exceeds %d dice", t.Count, t.Faces, MaxGroupDice)}
	}
	if t.Selector.Op != NoSelector && (t.Selector.Count < 0 || t.Selector.Count > t.Count) {
		return TermResult{}, &EvaluationError{Reason: fmt.Sprintf("keep/drop count %d out of range for %d dice", t.Selector.Count, t.Count)}
	}

	rolls := make([]int, t.Count)
	for i := range rolls {
		v, err := src.Draw(1, t.Faces)
		if err != nil {
			return TermResult{}, &EvaluationError{Reason: "drawing die", Err: err}
		}
		if v < 1 || v > t.Faces {
			return TermResult{}, &EvaluationError{Reason: fmt.Sprintf("source returned %d outside [1, %d]", v, t.Faces)}
		}
		rolls[i] = v
	}

	kept, dropped := applySelector(rolls, t.Selector)
	sum := 0
	for _, v := range kept {
		sum += v
	}
	return TermResult{
		Term:     t,
		Rolls:    rolls,
		Kept:     kept,
		Dropped:  dropped,
		Subtotal: int(t.Sign) * sum,
	}, nil
}

// applySelector splits rolls into kept and dropped dice using rank. Both
// returned slices are in draw order and non-nil.
func applySelector(rolls []int, sel Selector) (kept, dropped []int) {
	kept = make([]int, 0, len(rolls))
	dropped = make([]int, 0, len(rolls))
	if sel.Op == NoSelector {
		return append(kept, rolls...), dropped
	}

	ranked := rank(rolls, sel.Op)
	selected := make([]bool, len(rolls))
	for _, idx := range ranked[:sel.Count] {
		selected[idx] = true
	}
	keepSelected := sel.Op.keeps()
	for i, v := range rolls {
		if selected[i] == keepSelected {
			kept = append(kept, v)
		} else {
			dropped = append(dropped, v)
		}
	}
	return kept, dropped
}

// rank returns the draw indices of rolls ordered for op: by value (highest
// first for kh/dh, lowest first for kl/dl), equal values by lower index first.
func rank(rolls []int, op SelectorOp) []int {
	ranked := make([]int, len(rolls))
	for i := range ranked {
		ranked[i] = i
	}
	slices.SortFunc(ranked, func(a, b int) int {
		if c := cmp.Compare(rolls[a], rolls[b]); c != 0 {
			if op.highestFirst() {
				return -c
			}
			return c
		}
		return cmp.Compare(a, b)
	})
	return ranked
}

// renderTerm renders one term fragment of the detail string, e.g.
// "+4d6kh3[4,6,5]~[2]" or "-3". The leading "+" is omitted on the first term.
func renderTerm(tr TermResult, first bool) string {
	var b strings.Builder
	if !first || tr.Term.Sign == Minus {
		b.WriteString(tr.Term.Sign.String())
	}
	b.WriteString(tr.Term.notation())
	if tr.Term.Kind == DiceTerm {
		b.WriteString(joinInts(tr.Kept))
		if len(tr.Dropped) > 0 {
			b.WriteByte('~')
			b.WriteString(joinInts(tr.Dropped))
		}
	}
	return b.String()
}

// joinInts renders values as "[a,b,c]".
func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
