package ports

import (
	"context"
	"time"

	"github.com/slugboard/slugboard/internal/core/domain"
)

// SessionToken is a freshly issued bearer token and its expiry.
type SessionToken struct {
	Value     string
	ExpiresAt time.Time
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	User  *domain.User
	Token SessionToken
}

// SessionService verifies credentials and session tokens.
type SessionService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	// GetSession never fails: a missing or invalid token is simply no session.
	GetSession(token string) (*domain.Session, bool)
}

// RegisterInput carries a registration request.
type RegisterInput struct {
	Name            string `validate:"required,min=2"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=6,maxbytes=72"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
	IdempotencyKey  string `validate:"-"`
}

// ChangePasswordInput carries a password change for an authenticated user.
type ChangePasswordInput struct {
	UserID      string `validate:"required"`
	OldPassword string `validate:"required,min=6"`
	NewPassword string `validate:"required,min=6,maxbytes=72"`
}

// ChangePasswordResult reports the outcome of a password change. The new
// password is persisted even when Rotated is false; the caller keeps its
// previous, still valid, session in that case.
type ChangePasswordResult struct {
	Token   SessionToken
	Rotated bool
}

// CredentialService manages account creation and password rotation.
type CredentialService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	ChangePassword(ctx context.Context, in ChangePasswordInput) (*ChangePasswordResult, error)
}

// AccessGuard classifies request paths and checks slug ownership.
type AccessGuard interface {
	IsPublicPath(path string) bool
	// Authorize returns the user addressed by slug when it belongs to userID.
	// A missing slug and a slug owned by someone else both yield
	// domain.ErrUserNotFound.
	Authorize(ctx context.Context, userID, slug string) (*domain.User, error)
}
