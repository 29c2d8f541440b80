// Package errs holds the error kinds shared by the domain services.
// Callers wrap them with fmt.Errorf("%w: ...") and the HTTP layer maps
// each kind to a status code once.
package errs

import "errors"

var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrPersistence     = errors.New("persistence failure")
)
