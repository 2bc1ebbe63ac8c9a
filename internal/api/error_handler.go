package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/slugboard/slugboard/internal/api/view"
	"github.com/slugboard/slugboard/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain error kinds to their HTTP status codes.
//   - Logs configuration and unexpected errors without leaking details to the client.
//   - Renders {"error": "<message>"}, or the not-found page for browser GETs.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if code == http.StatusNotFound && wantsPage(c) {
			if rerr := c.Render(code, view.PageNotFound, view.PageData{Title: "Not found"}); rerr == nil {
				return
			}
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError && he.Internal != nil {
			logError(log, c, he.Internal, "http error")
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest, clientMessage(err)
	case domain.KindConflict:
		return http.StatusConflict, domain.ErrUserExists.Error()
	case domain.KindAuth:
		return http.StatusUnauthorized, authMessage(err)
	case domain.KindNotFound:
		return http.StatusNotFound, domain.ErrUserNotFound.Error()
	case domain.KindConfiguration:
		logError(log, c, err, "server misconfigured")
		return http.StatusInternalServerError, "internal server error"
	}

	// Unexpected error: log the real cause, return a generic message.
	logError(log, c, err, "unhandled error")
	return http.StatusInternalServerError, "internal server error"
}

// clientMessage strips operation prefixes added while wrapping, keeping the
// validation detail.
func clientMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, domain.ErrInvalidInput.Error()); i > 0 {
		return msg[i:]
	}
	return msg
}

// authMessage keeps login failures generic while still telling a password
// change apart from a missing session.
func authMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrWrongPassword):
		return domain.ErrWrongPassword.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return domain.ErrInvalidCredentials.Error()
	default:
		return domain.ErrUnauthenticated.Error()
	}
}

func wantsPage(c echo.Context) bool {
	req := c.Request()
	return req.Method == http.MethodGet &&
		!strings.HasPrefix(req.URL.Path, "/api/") &&
		strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMETextHTML)
}

func logError(log zerolog.Logger, c echo.Context, err error, msg string) {
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg(msg)
}
