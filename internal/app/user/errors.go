package user

import (
	"errors"

	domcommon "tasklane/internal/domain/common"
)

// ErrInvalidCredentials deliberately hides whether the username or the
// password was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

func IsNotFound(err error) bool {
	return domcommon.IsNotFound(err)
}

func IsConflict(err error) bool {
	return domcommon.IsConflict(err)
}
