// Package common defines shared constants and sentinel errors used across
// the layers of the helpdesk server. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Authentication errors. ErrInvalidCredentials is returned for both an
	// unknown email and a wrong password so responses do not reveal which
	// accounts exist.
	ErrorUnauthorized     = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInvalidToken       = errors.New("invalid token")

	// Authorization errors (verified identity, insufficient capability).
	ErrForbidden = errors.New("forbidden")

	// Account lifecycle errors.
	ErrEmailTaken = errors.New("email already registered")

	// Validation errors.
	ErrorValidation = errors.New("validation error")
)
