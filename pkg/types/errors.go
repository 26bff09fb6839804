package types

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by keeper packages wraps exactly one
// of these, so callers can branch on the category with errors.Is.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation error")
	ErrStorage       = errors.New("storage error")
)

// Configuration errors.
var (
	ErrColumnsRequired = fmt.Errorf("%w: columns must be provided when CSV has no header", ErrConfiguration)
	ErrJSONRoot        = fmt.Errorf("%w: JSON root must be an object or an array of objects", ErrConfiguration)
	ErrBatchSize       = fmt.Errorf("%w: batch size must be positive", ErrConfiguration)
	ErrDBPathEmpty     = fmt.Errorf("%w: database path must not be empty", ErrConfiguration)
	ErrUsersFileEmpty  = fmt.Errorf("%w: users file path must not be empty", ErrConfiguration)
	ErrTimeoutInvalid  = fmt.Errorf("%w: timeout must not be negative", ErrConfiguration)
	ErrBcryptCost      = fmt.Errorf("%w: bcrypt cost out of range", ErrConfiguration)
)

// Validation errors.
var (
	ErrJSONElement       = fmt.Errorf("%w: JSON array elements must be objects", ErrValidation)
	ErrRowArity          = fmt.Errorf("%w: row does not match column count", ErrValidation)
	ErrInvalidIdentifier = fmt.Errorf("%w: invalid SQL identifier", ErrValidation)
	ErrInvalidUsername   = fmt.Errorf("%w: username must be 3-20 alphanumeric characters", ErrValidation)
	ErrInvalidPassword   = fmt.Errorf("%w: password must be 6-50 characters long", ErrValidation)
)

// Not-found errors.
var (
	ErrFileNotFound = fmt.Errorf("%w: file", ErrNotFound)
)

// StorageError wraps cause with ErrStorage and a short description of the
// operation that failed. A nil cause yields nil.
func StorageError(op string, cause error) error {
	if cause == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, cause)
}
