// Package session carries session tokens between the browser and the
// services as the "token" cookie.
package session

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/slugboard/slugboard/internal/core/ports"
)

// CookieName is the name of the session cookie.
const CookieName = "token"

// userIDKey is the echo context key holding the authenticated user id.
const userIDKey = "session.user_id"

// Cookies writes and reads the session cookie. Secure should be true
// whenever the service is reached over TLS.
type Cookies struct {
	Secure bool
}

// Set stores tok in the session cookie. Max-Age follows the token expiry.
func (ck Cookies) Set(c echo.Context, tok ports.SessionToken) {
	maxAge := int(time.Until(tok.ExpiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	c.SetCookie(ck.cookie(tok.Value, maxAge, tok.ExpiresAt))
}

// Clear expires the session cookie. It is safe to call without a session.
func (ck Cookies) Clear(c echo.Context) {
	c.SetCookie(ck.cookie("", -1, time.Unix(0, 0)))
}

// Read returns the raw session token, or "" when the cookie is absent.
func (ck Cookies) Read(c echo.Context) string {
	cookie, err := c.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (ck Cookies) cookie(value string, maxAge int, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  expires.UTC(),
		HttpOnly: true,
		Secure:   ck.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// SetUserID records the authenticated user on the request context.
func SetUserID(c echo.Context, userID string) { c.Set(userIDKey, userID) }

// UserID returns the authenticated user id, or "" when the request carries
// no valid session.
func UserID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}
