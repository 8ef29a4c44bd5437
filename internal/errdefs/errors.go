package errdefs

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrValidation       = errors.New("validation error")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidArgument  = errors.New("invalid argument")

	// ErrUnavailable marks transient collaborator failures that are safe to retry.
	ErrUnavailable = errors.New("collaborator unavailable")

	ErrGradeOutOfRange    = fmt.Errorf("grade out of range: %w", ErrValidation)
	ErrInvalidTransition  = fmt.Errorf("invalid submission transition: %w", ErrValidation)
	ErrTooManyAttachments = fmt.Errorf("attachment limit reached: %w", ErrValidation)
)

func IsTransient(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
