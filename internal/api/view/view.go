// Package view renders the HTML pages and serves their static assets.
package view

import (
	"embed"
	"html/template"
	"io/fs"

	"github.com/labstack/echo/v4"
)

// Page template names.
const (
	PageLogin          = "login"
	PageRegister       = "register"
	PageDashboard      = "dashboard"
	PageUpdatePassword = "update_password"
	PageNotFound       = "not_found"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// PageData is passed to every page template.
type PageData struct {
	Title string
	User  *UserView
}

// UserView is the part of a user a page may display.
type UserView struct {
	Name  string
	Email string
	Slug  string
}

// NewRenderer parses the embedded templates into an echo renderer.
func NewRenderer() (*echo.TemplateRenderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &echo.TemplateRenderer{Template: tmpl}, nil
}

// Static returns the embedded asset tree rooted at "static".
func Static() fs.FS {
	return echo.MustSubFS(staticFS, "static")
}
