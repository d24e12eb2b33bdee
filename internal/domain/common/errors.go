package common

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Entity string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

func NewNotFound(entity string) error {
	return NotFoundError{Entity: entity}
}

func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

type ConflictError struct {
	Entity string
	Reason string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Entity, e.Reason)
}

func NewConflict(entity, reason string) error {
	return ConflictError{Entity: entity, Reason: reason}
}

func IsConflict(err error) bool {
	var c ConflictError
	return errors.As(err, &c)
}
