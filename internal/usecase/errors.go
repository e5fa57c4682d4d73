package usecase

import (
	"errors"
	"strings"
)

type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var target *TechnicalError
	return errors.As(err, &target)
}

// ValidationFailedError is returned before any side effect happens.
type ValidationFailedError struct {
	Issues []ValidationError
}

func (e *ValidationFailedError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Error())
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func AsValidationFailed(err error) (*ValidationFailedError, bool) {
	var target *ValidationFailedError
	ok := errors.As(err, &target)
	return target, ok
}
