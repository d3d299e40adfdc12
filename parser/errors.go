package parser

import (
	"errors"
	"fmt"
)

var ErrSyntax = errors.New("syntax error")

// SyntaxError is returned for any statement the parser cannot match. Expected
// carries the shape of the statement that was being parsed.
type SyntaxError struct {
	Statement string
	Expected  string
	Detail    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid %s syntax: %s. Expected: %s", e.Statement, e.Detail, e.Expected)
}

func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}
