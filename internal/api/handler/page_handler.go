package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/slugboard/slugboard/internal/api/middleware"
	"github.com/slugboard/slugboard/internal/api/session"
	"github.com/slugboard/slugboard/internal/api/view"
	"github.com/slugboard/slugboard/internal/core/domain"
	"github.com/slugboard/slugboard/internal/core/ports"
)

// PageHandler renders the HTML pages.
type PageHandler struct {
	access ports.AccessGuard
	log    zerolog.Logger
}

func NewPageHandler(access ports.AccessGuard, log zerolog.Logger) *PageHandler {
	return &PageHandler{access: access, log: log}
}

// Home renders the login page.
func (h *PageHandler) Home(c echo.Context) error {
	return c.Render(http.StatusOK, view.PageLogin, view.PageData{Title: "Login"})
}

// Register renders the registration page.
func (h *PageHandler) Register(c echo.Context) error {
	return c.Render(http.StatusOK, view.PageRegister, view.PageData{Title: "Register"})
}

// Dashboard renders the page of the user addressed by :slug.
func (h *PageHandler) Dashboard(c echo.Context) error {
	return h.ownedPage(c, view.PageDashboard, "Dashboard")
}

// UpdatePassword renders the password form of the user addressed by :slug.
func (h *PageHandler) UpdatePassword(c echo.Context) error {
	return h.ownedPage(c, view.PageUpdatePassword, "Change password")
}

// NotFound renders the not-found page for unknown routes.
func (h *PageHandler) NotFound(c echo.Context) error {
	return c.Render(http.StatusNotFound, view.PageNotFound, view.PageData{Title: "Not found"})
}

// ownedPage renders page when the slug belongs to the session user. Foreign
// and missing slugs both render the not-found page.
func (h *PageHandler) ownedPage(c echo.Context, page, title string) error {
	userID := session.UserID(c)
	if userID == "" {
		return c.Redirect(http.StatusFound, middleware.EntryPoint)
	}

	user, err := h.access.Authorize(c.Request().Context(), userID, c.Param("slug"))
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return h.NotFound(c)
	case errors.Is(err, domain.ErrUnauthenticated):
		return c.Redirect(http.StatusFound, middleware.EntryPoint)
	case err != nil:
		h.log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("page authorization failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.Render(http.StatusOK, page, view.PageData{
		Title: title,
		User:  &view.UserView{Name: user.Name, Email: user.Email, Slug: user.Slug},
	})
}
