package dice

import (
	"errors"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// diceLexer tokenizes dice notation. Rules are tried in order, so the
// two-letter selector tags win over the bare 'd' of a dice group.
var diceLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Selector", Pattern: `(?i)[kd][hl]`},
	{Name: "Die", Pattern: `(?i)d`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Sign", Pattern: `[+-]`},
})

var (
	symbols     = diceLexer.Symbols()
	tokSpace    = symbols["Whitespace"]
	tokSelector = symbols["Selector"]
	tokDie      = symbols["Die"]
	tokInt      = symbols["Int"]
	tokSign     = symbols["Sign"]
)

// Parse parses a dice expression string into an Expression.
//
// Supported forms: "d20", "2d6", "2d6+3", "4d8-2", "4d6kh3", "4d6dl1+1d4-1".
// Notation is case-insensitive; whitespace may appear between terms and around
// signs but not inside a term.
//
// Postcondition: Returns an Expression with at least one term, or a
// *ParseError. Parse is pure: the same text always yields the same terms.
func Parse(expr string) (Expression, error) {
	if strings.TrimSpace(expr) == "" {
		return Expression{}, &ParseError{Expr: expr, Offset: -1, Reason: "empty expression"}
	}

	lex, err := diceLexer.LexString("", expr)
	if err != nil {
		return Expression{}, residueError(expr, err)
	}
	toks, err := lexer.ConsumeAll(lex)
	if err != nil {
		return Expression{}, residueError(expr, err)
	}

	p := &parser{raw: expr, toks: toks}
	terms, err := p.parseExpr()
	if err != nil {
		return Expression{}, err
	}
	return Expression{Raw: expr, Terms: terms}, nil
}

// MustParse parses expr and panics on error. Useful for package-level values.
//
// Precondition: expr must be a valid dice expression.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic("dice: MustParse failed for expression " + expr + ": " + err.Error())
	}
	return e
}

// residueError converts a lexer failure into a ParseError pointing at the
// first character the lexer could not match.
func residueError(expr string, err error) *ParseError {
	offset := 0
	var lexErr *lexer.Error
	if errors.As(err, &lexErr) {
		offset = lexErr.Pos.Offset
	}
	if offset < 0 || offset > len(expr) {
		offset = 0
	}
	return &ParseError{
		Expr:     expr,
		Fragment: strings.TrimSpace(expr[offset:]),
		Offset:   offset,
		Reason:   "unrecognized input",
	}
}

type parser struct {
	raw  string
	toks []lexer.Token
	pos  int
}

func (p *parser) peek() lexer.Token {
	return p.toks[p.pos]
}

// offset returns the byte offset of the current token, or len(raw) at EOF.
func (p *parser) offset() int {
	t := p.peek()
	if t.EOF() {
		return len(p.raw)
	}
	return t.Pos.Offset
}

func (p *parser) skipSpace() {
	for !p.peek().EOF() && p.peek().Type == tokSpace {
		p.pos++
	}
}

// fail reports a ParseError spanning raw[start:end]. An empty span falls back
// to the remaining input.
func (p *parser) fail(start, end int, reason string) *ParseError {
	frag := strings.TrimSpace(p.raw[start:end])
	if frag == "" {
		frag = strings.TrimSpace(p.raw[start:])
	}
	if frag == "" {
		frag = p.raw
		start = 0
	}
	return &ParseError{Expr: p.raw, Fragment: frag, Offset: start, Reason: reason}
}

// failHere reports a ParseError at the current token.
func (p *parser) failHere(reason string) *ParseError {
	start := p.offset()
	end := len(p.raw)
	if p.pos+1 < len(p.toks) && !p.toks[p.pos+1].EOF() {
		end = p.toks[p.pos+1].Pos.Offset
	}
	return p.fail(start, end, reason)
}

func (p *parser) parseExpr() ([]Term, error) {
	var terms []Term
	for {
		p.skipSpace()
		if p.peek().EOF() {
			break
		}

		sign := Plus
		tok := p.peek()
		switch {
		case tok.Type == tokSign:
			if tok.Value == "-" {
				sign = Minus
			}
			p.pos++
			p.skipSpace()
			if p.peek().EOF() {
				return nil, p.fail(tok.Pos.Offset, len(p.raw), "dangling operator")
			}
		case len(terms) > 0:
			return nil, p.failHere("expected '+' or '-' between terms")
		}

		term, err := p.parseTerm(sign)
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	if len(terms) == 0 {
		return nil, &ParseError{Expr: p.raw, Offset: -1, Reason: "empty expression"}
	}
	return terms, nil
}

func (p *parser) parseTerm(sign Sign) (Term, error) {
	start := p.offset()
	tok := p.peek()

	count := 1
	switch tok.Type {
	case tokInt:
		n, err := strconv.Atoi(tok.Value)
		if err != nil {
			return Term{}, p.failHere("number out of range")
		}
		p.pos++
		if p.peek().EOF() || p.peek().Type != tokDie {
			return Term{Kind: ConstantTerm, Sign: sign, Value: n}, nil
		}
		count = n
	case tokDie:
	default:
		return Term{}, p.failHere("expected a dice group or a constant")
	}

	// 'd' sides
	p.pos++
	if p.peek().EOF() || p.peek().Type != tokInt {
		return Term{}, p.fail(start, p.offset(), "missing die faces")
	}
	faces, err := strconv.Atoi(p.peek().Value)
	if err != nil {
		return Term{}, p.failHere("number out of range")
	}
	p.pos++
	if count <= 0 {
		return Term{}, p.fail(start, p.offset(), "dice count must be positive")
	}
	if count > MaxGroupDice {
		return Term{}, p.fail(start, p.offset(), "dice count out of range")
	}
	if faces <= 0 {
		return Term{}, p.fail(start, p.offset(), "die faces must be positive")
	}
	term := Term{Kind: DiceTerm, Sign: sign, Count: count, Faces: faces}

	if p.peek().EOF() || p.peek().Type != tokSelector {
		return term, nil
	}
	op := selectorOp(p.peek().Value)
	p.pos++
	if p.peek().EOF() || p.peek().Type != tokInt {
		return Term{}, p.fail(start, p.offset(), "missing keep/drop count")
	}
	k, err := strconv.Atoi(p.peek().Value)
	p.pos++
	if err != nil || k < 0 || k > count {
		return Term{}, p.fail(start, p.offset(), "keep/drop count out of range")
	}
	term.Selector = Selector{Op: op, Count: k}
	return term, nil
}

func selectorOp(tag string) SelectorOp {
	switch strings.ToLower(tag) {
	case "kh":
		return KeepHighest
	case "kl":
		return KeepLowest
	case "dh":
		return DropHighest
	default:
		return DropLowest
	}
}
