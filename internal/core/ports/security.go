package ports

import "time"

// PasswordHasher produces and checks salted one-way password digests.
// A mismatch is reported as (false, nil); only a malformed digest is an error.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) (bool, error)
}

// TokenCodec issues and verifies signed, time-bound session tokens.
type TokenCodec interface {
	Issue(userID string, ttl time.Duration) (token string, expiresAt time.Time, err error)
	// Verify returns the user id claim. Every failure is domain.ErrInvalidSession.
	Verify(token string) (userID string, expiresAt time.Time, err error)
}
