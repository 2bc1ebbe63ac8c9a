package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/slugboard/slugboard/internal/api/metrics"
	"github.com/slugboard/slugboard/internal/api/session"
	"github.com/slugboard/slugboard/internal/core/ports"
)

// Session verifies the session cookie and injects the user id into context.
// A missing or invalid cookie is not an error: the request simply continues
// without an identity.
func Session(sessions ports.SessionService, cookies session.Cookies) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := cookies.Read(c)
			if token == "" {
				metrics.SessionChecksTotal.WithLabelValues("absent").Inc()
				return next(c)
			}

			sess, ok := sessions.GetSession(token)
			if !ok {
				metrics.SessionChecksTotal.WithLabelValues("invalid").Inc()
				return next(c)
			}

			metrics.SessionChecksTotal.WithLabelValues("valid").Inc()
			session.SetUserID(c, sess.UserID)
			return next(c)
		}
	}
}

// RequireSession rejects API requests without a valid session with 401.
func RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if session.UserID(c) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}
			return next(c)
		}
	}
}
