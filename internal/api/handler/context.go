package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/slugboard/slugboard/internal/api/session"
)

// sessionUserID returns the identity injected by the Session middleware, or
// a 401 when the request carries no valid session.
func sessionUserID(c echo.Context) (string, error) {
	userID := session.UserID(c)
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return userID, nil
}

// bindAndValidate decodes the body into req and runs the registered
// validator. Both failures are reported as 400.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
