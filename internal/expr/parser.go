package expr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/ledgerpipe/internal/resolver"
)

// Expr is a compiled when-condition. It is immutable and safe for
// concurrent evaluation; it implements resolver.Condition.
type Expr struct {
	src  string
	root boolExpr
}

// Source returns the original expression text.
func (e *Expr) Source() string { return e.src }

// Eval evaluates the expression against the given context variables.
func (e *Expr) Eval(vars resolver.Vars) (resolver.Verdict, error) {
	ok, m, err := e.root.eval(vars)
	if err != nil {
		return resolver.Verdict{}, err
	}
	if ok {
		return resolver.Verdict{Matched: true}, nil
	}
	return resolver.Verdict{
		Matched:     false,
		FailedVar:   m.variable,
		FailedValue: m.value,
	}, nil
}

// Compile parses src into an evaluable expression. Unknown identifiers
// are rejected here; the only variables are period, table and dataset.
func Compile(src string) (*Expr, error) {
	p := newParser(src)
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != EOF {
		return nil, p.errorf(errUnexpectedToken, p.cur.Type, "end of expression")
	}
	return &Expr{src: strings.TrimSpace(src), root: root}, nil
}

// MustCompile is like Compile but panics on error. For tests and
// hard-coded expressions.
func MustCompile(src string) *Expr {
	e, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return e
}

type parser struct {
	lexer *Lexer
	cur   Token
	peek  Token
}

func newParser(src string) *parser {
	p := &parser{lexer: NewLexer(src)}
	p.next()
	p.next()
	return p
}

func (p *parser) next() {
	p.cur = p.peek
	p.peek = p.lexer.NextToken()
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Pos: p.cur.Pos, Message: fmt.Sprintf(format, args...)}
}

// parseOr := parseAnd ( OR parseAnd )*
func (p *parser) parseOr() (boolExpr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == OR {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = binary{op: OR, left: left, right: right}
	}
	return left, nil
}

// parseAnd := parseUnary ( AND parseUnary )*
func (p *parser) parseAnd() (boolExpr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == AND {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binary{op: AND, left: left, right: right}
	}
	return left, nil
}

// parseUnary := NOT parseUnary | parsePrimary
func (p *parser) parseUnary() (boolExpr, error) {
	if p.cur.Type == NOT {
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notExpr{x: x}, nil
	}
	return p.parsePrimary()
}

// parsePrimary := '(' parseOr ')' | TRUE | FALSE | comparison
func (p *parser) parsePrimary() (boolExpr, error) {
	switch p.cur.Type {
	case LPAREN:
		p.next()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.cur.Type != RPAREN {
			return nil, p.errorf(errUnexpectedToken, p.cur.Type, ")")
		}
		p.next()
		return inner, nil
	case TRUE:
		p.next()
		return boolLit{val: true}, nil
	case FALSE:
		p.next()
		return boolLit{val: false}, nil
	}
	return p.parseComparison()
}

// parseComparison := operand ( cmpOp operand | [NOT] IN '(' literals ')' )
func (p *parser) parseComparison() (boolExpr, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	switch p.cur.Type {
	case EQ, NE, LT, LE, GT, GE:
		op := p.cur.Type
		p.next()
		right, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		return comparison{op: op, left: left, right: right}, nil

	case NOT:
		p.next()
		if p.cur.Type != IN {
			return nil, p.errorf(errUnexpectedToken, p.cur.Type, "IN")
		}
		return p.parseInList(left, true)

	case IN:
		return p.parseInList(left, false)
	}

	return nil, p.errorf(errUnexpectedToken, p.cur.Type, "comparison operator")
}

// parseInList parses IN '(' literal (',' literal)* ')' with IN current.
func (p *parser) parseInList(left operand, negated bool) (boolExpr, error) {
	p.next() // consume IN
	if p.cur.Type != LPAREN {
		return nil, p.errorf(errUnexpectedToken, p.cur.Type, "(")
	}
	p.next()

	var values []value
	for {
		switch p.cur.Type {
		case STRING:
			values = append(values, value{kind: valString, str: p.cur.Literal})
		case NUMBER:
			num, err := strconv.ParseInt(p.cur.Literal, 10, 64)
			if err != nil {
				return nil, p.errorf(errInvalidNumber, p.cur.Literal)
			}
			values = append(values, value{kind: valNumber, num: num})
		default:
			return nil, p.errorf(errUnexpectedToken, p.cur.Type, "string or number literal")
		}
		p.next()

		if p.cur.Type == COMMA {
			p.next()
			continue
		}
		break
	}

	if p.cur.Type != RPAREN {
		return nil, p.errorf(errUnexpectedToken, p.cur.Type, ")")
	}
	p.next()

	return inList{left: left, values: values, negated: negated}, nil
}

// parseOperand := IDENT | STRING | NUMBER
func (p *parser) parseOperand() (operand, error) {
	switch p.cur.Type {
	case IDENT:
		name := p.cur.Literal
		switch name {
		case "period", "table", "dataset":
			p.next()
			return varRef{name: name}, nil
		}
		return nil, p.errorf(errUnknownVariable, name)
	case STRING:
		lit := p.cur.Literal
		p.next()
		return stringLit{val: lit}, nil
	case NUMBER:
		num, err := strconv.ParseInt(p.cur.Literal, 10, 64)
		if err != nil {
			return nil, p.errorf(errInvalidNumber, p.cur.Literal)
		}
		p.next()
		return numberLit{val: num}, nil
	case ILLEGAL:
		return nil, p.errorf("illegal token %q", p.cur.Literal)
	}
	return nil, p.errorf(errUnexpectedToken, p.cur.Type, "variable or literal")
}
