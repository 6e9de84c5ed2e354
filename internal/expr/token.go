// Package expr compiles the boolean when-conditions attached to
// resolution rules. The language is a small predicate grammar over the
// string variables period, table and dataset: comparisons, in-lists,
// and/or/not, parentheses. Compiled expressions implement
// resolver.Condition and are safe for concurrent evaluation.
package expr

import "strings"

// TokenType identifies a lexical token.
type TokenType int

// Token types.
const (
	EOF TokenType = iota
	ILLEGAL

	IDENT  // period, table, dataset
	STRING // 'orders'
	NUMBER // 2024

	EQ // == or =
	NE // != or <>
	LT // <
	LE // <=
	GT // >
	GE // >=

	LPAREN
	RPAREN
	COMMA

	// Keywords
	AND
	OR
	NOT
	IN
	TRUE
	FALSE
)

var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",
	IDENT:   "IDENT",
	STRING:  "STRING",
	NUMBER:  "NUMBER",
	EQ:      "==",
	NE:      "!=",
	LT:      "<",
	LE:      "<=",
	GT:      ">",
	GE:      ">=",
	LPAREN:  "(",
	RPAREN:  ")",
	COMMA:   ",",
	AND:     "AND",
	OR:      "OR",
	NOT:     "NOT",
	IN:      "IN",
	TRUE:    "TRUE",
	FALSE:   "FALSE",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// Position tracks source location for error reporting.
type Position struct {
	Line   int // 1-based
	Column int // 1-based
	Offset int // 0-based byte offset
}

// Token is one lexical token with its source position.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

// Keywords are matched case-insensitively.
var keywords = map[string]TokenType{
	"and":   AND,
	"or":    OR,
	"not":   NOT,
	"in":    IN,
	"true":  TRUE,
	"false": FALSE,
}

// LookupIdent returns the keyword token type for an identifier, or IDENT.
func LookupIdent(ident string) TokenType {
	if t, ok := keywords[strings.ToLower(ident)]; ok {
		return t
	}
	return IDENT
}
