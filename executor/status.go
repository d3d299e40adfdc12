package executor

import (
	"errors"

	"github.com/danthegoodman1/tinyrdb/database"
	"github.com/danthegoodman1/tinyrdb/parser"
	"github.com/danthegoodman1/tinyrdb/table"
)

type Status int

const (
	StatusOK Status = iota
	StatusBadRequest
	StatusNotFound
	StatusInternal
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusBadRequest:
		return "bad_request"
	case StatusNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

var badRequestErrors = []error{
	parser.ErrSyntax,
	table.ErrUnknownColumn,
	table.ErrTypeMismatch,
	table.ErrConstraintViolation,
	table.ErrImmutableKey,
	table.ErrInvalidSchema,
	table.ErrAutoIDExhausted,
	ErrUnknownType,
	ErrMissingWhereClause,
	ErrInvalidLiteral,
	ErrValueCount,
}

// Classify maps a statement error to a coarse status. Anything not
// recognized, including snapshot write failures, is internal.
func Classify(err error) Status {
	if err == nil {
		return StatusOK
	}
	if errors.Is(err, database.ErrUnknownTable) || errors.Is(err, table.ErrNotFound) {
		return StatusNotFound
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return StatusBadRequest
		}
	}
	return StatusInternal
}
