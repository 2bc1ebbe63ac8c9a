package domain

import (
	"strings"
	"time"
)

// User models a registered account. The slug addresses the user's dashboard
// and never changes after creation.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Slug         string    `json:"slug"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PublicUser is the client-facing view of a User.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Slug  string `json:"slug"`
}

// Public strips everything a client must not see.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Slug: u.Slug}
}

// Session is the identity carried by a verified session token.
type Session struct {
	UserID    string
	ExpiresAt time.Time
}

// NormalizeEmail is applied at registration and login alike.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
