package expr

import (
	"fmt"
	"strconv"

	"github.com/leapstack-labs/ledgerpipe/internal/resolver"
)

// value is an evaluated operand: a string or an integer. The when
// language has no other types.
type valueKind int

const (
	valString valueKind = iota
	valNumber
)

func (k valueKind) String() string {
	if k == valNumber {
		return "number"
	}
	return "string"
}

type value struct {
	kind valueKind
	str  string
	num  int64
}

// text renders the value for diagnostics, without quoting.
func (v value) text() string {
	if v.kind == valNumber {
		return strconv.FormatInt(v.num, 10)
	}
	return v.str
}

// operand is a leaf that evaluates to a value: a variable reference or a
// literal.
type operand interface {
	eval(vars resolver.Vars) (value, error)
	// variable returns the referenced variable name, or "" for literals.
	variable() string
}

type varRef struct {
	name string
}

func (r varRef) eval(vars resolver.Vars) (value, error) {
	switch r.name {
	case "period":
		return value{kind: valString, str: vars.Period}, nil
	case "table":
		return value{kind: valString, str: vars.Table}, nil
	case "dataset":
		return value{kind: valString, str: vars.Dataset}, nil
	}
	// Unreachable when compiled through Compile, which rejects unknown
	// identifiers; kept as a hard failure for hand-built nodes.
	return value{}, fmt.Errorf("unknown variable %q", r.name)
}

func (r varRef) variable() string { return r.name }

type stringLit struct {
	val string
}

func (s stringLit) eval(resolver.Vars) (value, error) {
	return value{kind: valString, str: s.val}, nil
}

func (stringLit) variable() string { return "" }

type numberLit struct {
	val int64
}

func (n numberLit) eval(resolver.Vars) (value, error) {
	return value{kind: valNumber, num: n.val}, nil
}

func (numberLit) variable() string { return "" }

// miss describes why a condition evaluated to false: the variable behind
// the first failing comparison and its context value.
type miss struct {
	variable string
	value    string
}

// boolExpr is a node that evaluates to a boolean.
type boolExpr interface {
	eval(vars resolver.Vars) (bool, miss, error)
	// principal returns the first variable referenced in the subtree,
	// or "" if the subtree is all literals.
	principal() string
}

type boolLit struct {
	val bool
}

func (b boolLit) eval(resolver.Vars) (bool, miss, error) {
	// A constant has no failing variable to report.
	return b.val, miss{}, nil
}

func (boolLit) principal() string { return "" }

// comparison is a binary comparison between two operands.
type comparison struct {
	op    TokenType
	left  operand
	right operand
}

func (c comparison) eval(vars resolver.Vars) (bool, miss, error) {
	lv, err := c.left.eval(vars)
	if err != nil {
		return false, miss{}, err
	}
	rv, err := c.right.eval(vars)
	if err != nil {
		return false, miss{}, err
	}
	if lv.kind != rv.kind {
		return false, miss{}, fmt.Errorf("type mismatch: cannot compare %s to %s", lv.kind, rv.kind)
	}

	var cmp int
	if lv.kind == valNumber {
		switch {
		case lv.num < rv.num:
			cmp = -1
		case lv.num > rv.num:
			cmp = 1
		}
	} else {
		switch {
		case lv.str < rv.str:
			cmp = -1
		case lv.str > rv.str:
			cmp = 1
		}
	}

	var ok bool
	switch c.op {
	case EQ:
		ok = cmp == 0
	case NE:
		ok = cmp != 0
	case LT:
		ok = cmp < 0
	case LE:
		ok = cmp <= 0
	case GT:
		ok = cmp > 0
	case GE:
		ok = cmp >= 0
	default:
		return false, miss{}, fmt.Errorf("unsupported comparison operator %s", c.op)
	}

	if ok {
		return true, miss{}, nil
	}
	return false, c.miss(lv, rv), nil
}

// miss names the variable side of the comparison. When both sides are
// literals the left value stands in for the variable name.
func (c comparison) miss(lv, rv value) miss {
	if name := c.left.variable(); name != "" {
		return miss{variable: name, value: lv.text()}
	}
	if name := c.right.variable(); name != "" {
		return miss{variable: name, value: rv.text()}
	}
	return miss{variable: lv.text(), value: lv.text()}
}

func (c comparison) principal() string {
	if name := c.left.variable(); name != "" {
		return name
	}
	return c.right.variable()
}

// inList tests membership of an operand in a literal list.
type inList struct {
	left    operand
	values  []value
	negated bool
}

func (n inList) eval(vars resolver.Vars) (bool, miss, error) {
	lv, err := n.left.eval(vars)
	if err != nil {
		return false, miss{}, err
	}

	found := false
	for _, v := range n.values {
		if v.kind != lv.kind {
			return false, miss{}, fmt.Errorf("type mismatch: cannot compare %s to %s", lv.kind, v.kind)
		}
		if (lv.kind == valString && lv.str == v.str) || (lv.kind == valNumber && lv.num == v.num) {
			found = true
			break
		}
	}

	ok := found != n.negated
	if ok {
		return true, miss{}, nil
	}

	name := n.left.variable()
	if name == "" {
		name = lv.text()
	}
	return false, miss{variable: name, value: lv.text()}, nil
}

func (n inList) principal() string { return n.left.variable() }

// notExpr negates a boolean expression.
type notExpr struct {
	x boolExpr
}

func (n notExpr) eval(vars resolver.Vars) (bool, miss, error) {
	ok, _, err := n.x.eval(vars)
	if err != nil {
		return false, miss{}, err
	}
	if !ok {
		return true, miss{}, nil
	}
	name := n.x.principal()
	return false, miss{variable: name, value: lookupVar(vars, name)}, nil
}

func (n notExpr) principal() string { return n.x.principal() }

// binary combines two boolean expressions with and/or.
type binary struct {
	op    TokenType // AND or OR
	left  boolExpr
	right boolExpr
}

func (b binary) eval(vars resolver.Vars) (bool, miss, error) {
	lok, lmiss, err := b.left.eval(vars)
	if err != nil {
		return false, miss{}, err
	}

	if b.op == AND {
		if !lok {
			return false, lmiss, nil
		}
		return b.right.eval(vars)
	}

	// OR
	if lok {
		return true, miss{}, nil
	}
	rok, _, err := b.right.eval(vars)
	if err != nil {
		return false, miss{}, err
	}
	if rok {
		return true, miss{}, nil
	}
	// Report the first failing branch.
	return false, lmiss, nil
}

func (b binary) principal() string {
	if name := b.left.principal(); name != "" {
		return name
	}
	return b.right.principal()
}

func lookupVar(vars resolver.Vars, name string) string {
	switch name {
	case "period":
		return vars.Period
	case "table":
		return vars.Table
	case "dataset":
		return vars.Dataset
	}
	return ""
}
