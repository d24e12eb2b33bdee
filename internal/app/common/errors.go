package common

import (
	"errors"

	domcommon "tasklane/internal/domain/common"
)

type ValidationError struct {
	Msg string
}

func (e ValidationError) Error() string {
	return e.Msg
}

func NewValidation(msg string) error {
	return ValidationError{Msg: msg}
}

func IsValidation(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}

func IsNotFound(err error) bool {
	return domcommon.IsNotFound(err)
}

func IsConflict(err error) bool {
	return domcommon.IsConflict(err)
}
