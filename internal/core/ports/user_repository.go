package ports

import (
	"context"
	"time"

	"github.com/slugboard/slugboard/internal/core/domain"
)

// UserRepository is the credential store. Every method is a single atomic
// record operation; uniqueness of email and slug is enforced by the store.
type UserRepository interface {
	// Create inserts a new user. A duplicate email yields domain.ErrUserExists,
	// a duplicate slug yields domain.ErrSlugTaken.
	Create(ctx context.Context, user *domain.User) error

	// FindByEmail, FindBySlug and FindByID return domain.ErrUserNotFound when
	// no record matches.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindBySlug(ctx context.Context, slug string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)

	// UpdatePassword replaces the stored hash. It returns
	// domain.ErrUserNotFound when no record was updated.
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}

// RegistrationReplay remembers which user an Idempotency-Key created so a
// retried registration returns the same account instead of a conflict.
type RegistrationReplay interface {
	Lookup(ctx context.Context, key string) (userID string, found bool, err error)
	Remember(ctx context.Context, key, userID string) error
}
