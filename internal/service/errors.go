package service

import "errors"

// Error taxonomy surfaced to handlers. Wrap with fmt.Errorf("%w: ...") for
// detail and match with errors.Is.
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
)
