package executor

import "errors"

var (
	ErrMissingWhereClause = errors.New("WHERE clause is required")
	ErrUnknownType        = errors.New("unknown column type")
	ErrInvalidLiteral     = errors.New("invalid literal")
	ErrValueCount         = errors.New("column and value counts differ")
)
