package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/slugboard/slugboard/internal/api/metrics"
	"github.com/slugboard/slugboard/internal/api/session"
	"github.com/slugboard/slugboard/internal/core/ports"
)

// EntryPoint is where unauthenticated visitors of protected pages are sent.
const EntryPoint = "/"

// Guard lets public paths through, redirects protected paths without a
// session to EntryPoint and passes authenticated requests on. Ownership of
// slug-addressed pages is checked by the page handlers. Session must run
// before Guard.
func Guard(access ports.AccessGuard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if access.IsPublicPath(c.Request().URL.Path) {
				metrics.GuardDecisionsTotal.WithLabelValues("public").Inc()
				return next(c)
			}
			if session.UserID(c) == "" {
				metrics.GuardDecisionsTotal.WithLabelValues("redirect").Inc()
				return c.Redirect(http.StatusFound, EntryPoint)
			}
			metrics.GuardDecisionsTotal.WithLabelValues("allow").Inc()
			return next(c)
		}
	}
}
