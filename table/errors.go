package table

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownColumn       = errors.New("unknown column")
	ErrTypeMismatch        = errors.New("type mismatch")
	ErrNotFound            = errors.New("row not found")
	ErrImmutableKey        = errors.New("primary key cannot be updated")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrInvalidSchema       = errors.New("invalid schema")
	ErrAutoIDExhausted     = errors.New("auto id counter exhausted")
)

type ConstraintKind string

const (
	PrimaryKeyConstraint ConstraintKind = "primary key"
	UniqueConstraint     ConstraintKind = "unique"
)

// ConstraintError reports a primary key or unique key collision.
// errors.Is(err, ErrConstraintViolation) matches it.
type ConstraintError struct {
	Kind   ConstraintKind
	Column string
	Value  any
}

func (e *ConstraintError) Error() string {
	if e.Kind == PrimaryKeyConstraint {
		return fmt.Sprintf("primary key '%s' violation: %v", e.Column, e.Value)
	}
	return fmt.Sprintf("unique constraint violated on '%s': %v", e.Column, e.Value)
}

func (e *ConstraintError) Is(target error) bool {
	return target == ErrConstraintViolation
}
