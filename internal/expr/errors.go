package expr

import "fmt"

// ParseError represents a compilation error with position information.
type ParseError struct {
	Pos     Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Common error messages.
const (
	errUnexpectedToken = "unexpected token %s, expected %s"
	errUnknownVariable = "unknown variable %q (expected period, table, or dataset)"
	errInvalidNumber   = "invalid number literal %q"
)
