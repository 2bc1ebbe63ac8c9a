package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	_ "github.com/slugboard/slugboard/docs" // registers the Swagger document
	"github.com/slugboard/slugboard/internal/api/handler"
	"github.com/slugboard/slugboard/internal/api/middleware"
	"github.com/slugboard/slugboard/internal/api/session"
	"github.com/slugboard/slugboard/internal/api/view"
	"github.com/slugboard/slugboard/internal/core/ports"
	opshttp "github.com/slugboard/slugboard/internal/infrastructure/http"
	"github.com/slugboard/slugboard/internal/infrastructure/http/handlers"
)

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	Credentials ports.CredentialService
	Sessions    ports.SessionService
	Access      ports.AccessGuard
	Cookies     session.Cookies

	// Checks are pinged by /health/ready, keyed by dependency name.
	Checks map[string]handlers.Pinger

	// Registerer receives the HTTP metrics; Gatherer backs /metrics.
	// Both default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) (*echo.Echo, error) {
	renderer, err := view.NewRenderer()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.Renderer = renderer
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "slugboard",
		Subsystem:  "http",
		Registerer: deps.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	e.Use(middleware.Session(deps.Sessions, deps.Cookies))
	e.Use(middleware.Guard(deps.Access))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.Credentials, deps.Sessions, deps.Cookies)
	pageHandler := handler.NewPageHandler(deps.Access, deps.Logger)

	// --- Auth API ---
	apiGroup := e.Group("/api")
	apiGroup.POST("/register", authHandler.Register)
	apiGroup.POST("/login", authHandler.Login)
	apiGroup.POST("/logout", authHandler.Logout)
	apiGroup.PUT("/update-password", authHandler.UpdatePassword, middleware.RequireSession())

	// --- Operational endpoints ---
	opshttp.RegisterOps(e, deps.Checks, deps.Gatherer)
	e.StaticFS("/static", view.Static())
	e.GET("/favicon.ico", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	// --- Pages ---
	e.GET("/", pageHandler.Home)
	e.GET("/register", pageHandler.Register)
	e.GET("/:slug", pageHandler.Dashboard)
	e.GET("/:slug/update-password", pageHandler.UpdatePassword)

	return e, nil
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
