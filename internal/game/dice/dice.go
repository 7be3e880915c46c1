// Package dice parses and evaluates tabletop dice-notation expressions such as
// "4d6kh3+2", "2d8+1d4+3" and "1d20-1", producing a total and a canonical
// trace of how the total was reached.
package dice

import (
	"math"
	"strconv"
	"strings"
)

// Source is the randomness provider for dice rolls.
//
// Implementations supplied by this package are safe for concurrent use. A
// caller-supplied Source shared between goroutines must synchronize itself.
type Source interface {
	// Draw returns a uniformly distributed int in [low, high].
	//
	// Precondition: low <= high.
	Draw(low, high int) (int, error)
}

// Sign is the sign applied to a term's contribution.
type Sign int

const (
	Plus  Sign = 1
	Minus Sign = -1
)

// String returns "+" or "-".
func (s Sign) String() string {
	if s == Minus {
		return "-"
	}
	return "+"
}

// TermKind distinguishes constant terms from dice groups.
type TermKind int

const (
	ConstantTerm TermKind = iota + 1
	DiceTerm
)

// SelectorOp is a keep/drop rule applied to a dice group.
type SelectorOp int

const (
	NoSelector SelectorOp = iota
	KeepHighest
	KeepLowest
	DropHighest
	DropLowest
)

// String returns the notation tag of the operator ("kh", "kl", "dh", "dl"),
// or "" for NoSelector.
func (op SelectorOp) String() string {
	switch op {
	case KeepHighest:
		return "kh"
	case KeepLowest:
		return "kl"
	case DropHighest:
		return "dh"
	case DropLowest:
		return "dl"
	default:
		return ""
	}
}

// highestFirst reports whether the operator ranks dice from highest to lowest.
func (op SelectorOp) highestFirst() bool {
	return op == KeepHighest || op == DropHighest
}

// keeps reports whether the first Count ranked dice are kept (true) or
// dropped (false).
func (op SelectorOp) keeps() bool {
	return op == KeepHighest || op == KeepLowest
}

// MaxGroupDice is the largest dice count a single group may roll.
const MaxGroupDice = 10_000

// Selector pairs a keep/drop operator with its count.
type Selector struct {
	Op    SelectorOp
	Count int
}

// Term is one signed component of an expression: either a constant or a dice
// group.
//
// Invariant (after Parse): Count >= 1 and Faces >= 1 for dice groups;
// 0 <= Selector.Count <= Count when Selector.Op != NoSelector.
type Term struct {
	Kind     TermKind
	Sign     Sign
	Value    int // constant terms only
	Count    int // dice groups only
	Faces    int // dice groups only
	Selector Selector
}

// String renders the term with its sign, e.g. "+4d6kh3" or "-2".
func (t Term) String() string {
	return t.Sign.String() + t.notation()
}

// notation renders the term without its sign, e.g. "4d6kh3" or "2".
func (t Term) notation() string {
	if t.Kind == ConstantTerm {
		return strconv.Itoa(t.Value)
	}
	var b strings.Builder
	b.WriteString(strconv.Itoa(t.Count))
	b.WriteByte('d')
	b.WriteString(strconv.Itoa(t.Faces))
	if t.Selector.Op != NoSelector {
		b.WriteString(t.Selector.Op.String())
		b.WriteString(strconv.Itoa(t.Selector.Count))
	}
	return b.String()
}

// Expression is a parsed dice expression ready to be evaluated.
type Expression struct {
	Raw   string // original input string
	Terms []Term
}

// String returns the canonical normalized form of the expression, e.g.
// "4d6kh3+2". The first term carries no leading "+".
//
// Postcondition: Parse(e.String()) yields the same Terms.
func (e Expression) String() string {
	var b strings.Builder
	for i, t := range e.Terms {
		if i > 0 || t.Sign == Minus {
			b.WriteString(t.Sign.String())
		}
		b.WriteString(t.notation())
	}
	return b.String()
}

// DiceCount returns the total number of dice drawn by one evaluation of e.
// The sum saturates at math.MaxInt.
func (e Expression) DiceCount() int {
	n := 0
	for _, t := range e.Terms {
		if t.Kind != DiceTerm || t.Count <= 0 {
			continue
		}
		if t.Count > math.MaxInt-n {
			return math.MaxInt
		}
		n += t.Count
	}
	return n
}

// Mode selects advantage or disadvantage for a double evaluation.
type Mode int

const (
	Advantage Mode = iota + 1
	Disadvantage
)

// String returns "adv" or "dis".
func (m Mode) String() string {
	switch m {
	case Advantage:
		return "adv"
	case Disadvantage:
		return "dis"
	default:
		return "unknown"
	}
}

// ParseMode converts "adv"/"advantage" or "dis"/"disadvantage" (any case) to a
// Mode.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "adv", "advantage":
		return Advantage, true
	case "dis", "disadvantage":
		return Disadvantage, true
	default:
		return 0, false
	}
}
