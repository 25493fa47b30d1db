package services

import (
	"errors"
	"fmt"

	"tintura-sst/internal/store"
)

// ValidationError is a rejected request. Nothing was written.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// ErrPartialBatch is re-exported so handlers only need this package.
var ErrPartialBatch = store.ErrPartialBatch
