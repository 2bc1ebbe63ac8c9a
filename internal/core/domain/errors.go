package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid data")
	ErrSamePassword = fmt.Errorf("%w: new password must differ from the old one", ErrInvalidInput)
	// ErrIdempotencyKeyReused rejects a registration whose key already
	// created an account for another email.
	ErrIdempotencyKeyReused = fmt.Errorf("%w: idempotency key already used for a different registration", ErrInvalidInput)

	ErrUserExists = errors.New("email already registered")
	ErrSlugTaken  = errors.New("slug already taken")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongPassword      = fmt.Errorf("%w: old password is incorrect", ErrInvalidCredentials)
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrInvalidSession     = errors.New("invalid session")

	ErrUserNotFound = errors.New("user not found")

	ErrMissingSecret = errors.New("session signing secret is not configured")
)

// Kind is the failure category a boundary layer maps to a response.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuth
	KindNotFound
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindConfiguration:
		return "configuration"
	default:
		return "internal"
	}
}

// KindOf classifies err. Anything unrecognised is internal; ErrSlugTaken is
// internal as well because callers are expected to retry it away.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrInvalidInput):
		return KindValidation
	case errors.Is(err, ErrUserExists):
		return KindConflict
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrUnauthenticated),
		errors.Is(err, ErrInvalidSession):
		return KindAuth
	case errors.Is(err, ErrUserNotFound):
		return KindNotFound
	case errors.Is(err, ErrMissingSecret):
		return KindConfiguration
	default:
		return KindInternal
	}
}

// Invalid wraps a validation detail so it classifies as KindValidation.
func Invalid(detail string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, detail)
}
