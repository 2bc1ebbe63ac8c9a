package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/slugboard/slugboard/internal/api/metrics"
	"github.com/slugboard/slugboard/internal/api/session"
	"github.com/slugboard/slugboard/internal/core/domain"
	"github.com/slugboard/slugboard/internal/core/ports"
)

// AuthHandler serves the JSON authentication API under /api.
type AuthHandler struct {
	credentials ports.CredentialService
	sessions    ports.SessionService
	cookies     session.Cookies
}

func NewAuthHandler(credentials ports.CredentialService, sessions ports.SessionService, cookies session.Cookies) *AuthHandler {
	return &AuthHandler{credentials: credentials, sessions: sessions, cookies: cookies}
}

type registerRequest struct {
	Name            string `json:"name" form:"name"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type updatePasswordRequest struct {
	OldPassword string `json:"oldPassword" form:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" form:"newPassword" validate:"required"`
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Slug  string `json:"slug"`
}

type authResponse struct {
	Message string        `json:"message"`
	User    *userResponse `json:"user,omitempty"`
}

type updatePasswordResponse struct {
	Message        string `json:"message"`
	SessionRotated bool   `json:"session_rotated"`
}

func toUserResponse(u *domain.User) *userResponse {
	p := u.Public()
	return &userResponse{ID: p.ID, Name: p.Name, Email: p.Email, Slug: p.Slug}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string           false  "Replays the original response for a retried request"
// @Param        body             body      registerRequest  true   "User registration details"
// @Success      201              {object}  authResponse
// @Failure      400              {object}  map[string]string
// @Failure      409              {object}  map[string]string
// @Failure      500              {object}  map[string]string
// @Router       /api/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues(metrics.ResultRejected).Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.credentials.Register(c.Request().Context(), ports.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		IdempotencyKey:  c.Request().Header.Get("Idempotency-Key"),
	})
	metrics.RegistrationsTotal.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{Message: "user created", User: toUserResponse(user)})
}

// Login authenticates a user and sets the session cookie.
//
// @Summary      Login
// @Description  On success the session token is returned only as the HttpOnly "token" cookie.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.ResultRejected).Inc()
		return err
	}

	res, err := h.sessions.Login(c.Request().Context(), req.Email, req.Password)
	metrics.LoginAttemptsTotal.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		return err
	}

	h.cookies.Set(c, res.Token)
	return c.JSON(http.StatusOK, authResponse{Message: "login successful", User: toUserResponse(res.User)})
}

// Logout clears the session cookie. It succeeds without a session too.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  authResponse
// @Router       /api/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	h.cookies.Clear(c)
	return c.JSON(http.StatusOK, authResponse{Message: "logged out"})
}

// UpdatePassword changes the password of the signed-in user and rotates the
// session cookie.
//
// @Summary      Change password
// @Description  session_rotated is false when the password was stored but a new session could not be issued; the current cookie stays valid.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      updatePasswordRequest  true  "Current and new password"
// @Success      200   {object}  updatePasswordResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/update-password [put]
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return err
	}

	var req updatePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.PasswordChangesTotal.WithLabelValues(metrics.ResultRejected).Inc()
		return err
	}

	res, err := h.credentials.ChangePassword(c.Request().Context(), ports.ChangePasswordInput{
		UserID:      userID,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		metrics.PasswordChangesTotal.WithLabelValues(metrics.Outcome(err)).Inc()
		return err
	}

	if !res.Rotated {
		metrics.PasswordChangesTotal.WithLabelValues(metrics.ResultUnrotated).Inc()
		return c.JSON(http.StatusOK, updatePasswordResponse{
			Message:        "password updated, session not rotated",
			SessionRotated: false,
		})
	}

	metrics.PasswordChangesTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	h.cookies.Set(c, res.Token)
	return c.JSON(http.StatusOK, updatePasswordResponse{Message: "password updated", SessionRotated: true})
}
