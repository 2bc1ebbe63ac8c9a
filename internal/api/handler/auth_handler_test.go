package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/slugboard/slugboard/internal/api/session"
	"github.com/slugboard/slugboard/internal/core/domain"
	"github.com/slugboard/slugboard/internal/core/ports"
)

type stubCredentialService struct {
	registerFn       func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	changePasswordFn func(ctx context.Context, in ports.ChangePasswordInput) (*ports.ChangePasswordResult, error)
}

func (s *stubCredentialService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubCredentialService) ChangePassword(ctx context.Context, in ports.ChangePasswordInput) (*ports.ChangePasswordResult, error) {
	return s.changePasswordFn(ctx, in)
}

type stubSessionService struct {
	loginFn func(ctx context.Context, email, password string) (*ports.LoginResult, error)
}

func (s *stubSessionService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubSessionService) GetSession(string) (*domain.Session, bool) { return nil, false }

var ana = &domain.User{ID: "u1", Name: "Ana", Email: "ana@x.com", Slug: "ana-1a2b3c", PasswordHash: "$2a$10$hash"}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

// serve runs h and routes any returned error through echo's error handler.
func serve(e *echo.Echo, c echo.Context, h echo.HandlerFunc) {
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newEcho()
	stub := &stubCredentialService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Name != "Ana" || in.Email != "ana@x.com" || in.ConfirmPassword != "secret1" {
				t.Fatalf("unexpected input: %+v", in)
			}
			if in.IdempotencyKey != "k-1" {
				t.Fatalf("idempotency key not forwarded: %q", in.IdempotencyKey)
			}
			return ana, nil
		},
	}
	h := NewAuthHandler(stub, &stubSessionService{}, session.Cookies{})

	req := jsonRequest(http.MethodPost, "/api/register",
		`{"name":"Ana","email":"ana@x.com","password":"secret1","confirmPassword":"secret1"}`)
	req.Header.Set("Idempotency-Key", "k-1")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "hash") {
		t.Fatalf("password hash leaked: %s", rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["slug"] != "ana-1a2b3c" {
		t.Fatalf("unexpected user: %v", resp["user"])
	}
}

func TestAuthHandler_Register_Form(t *testing.T) {
	e := newEcho()
	stub := &stubCredentialService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Name != "Ana" || in.ConfirmPassword != "secret1" {
				t.Fatalf("form fields not bound: %+v", in)
			}
			return ana, nil
		},
	}
	h := NewAuthHandler(stub, &stubSessionService{}, session.Cookies{})

	req := httptest.NewRequest(http.MethodPost, "/api/register",
		strings.NewReader("name=Ana&email=ana%40x.com&password=secret1&confirmPassword=secret1"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()

	serve(e, e.NewContext(req, rec), h.Register)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestAuthHandler_Register_MalformedBody(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubCredentialService{}, &stubSessionService{}, session.Cookies{})

	rec := httptest.NewRecorder()
	serve(e, e.NewContext(jsonRequest(http.MethodPost, "/api/register", `{"name":`), rec), h.Register)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_SetsCookie(t *testing.T) {
	e := newEcho()
	expires := time.Now().Add(7 * 24 * time.Hour)
	stub := &stubSessionService{
		loginFn: func(ctx context.Context, email, password string) (*ports.LoginResult, error) {
			return &ports.LoginResult{User: ana, Token: ports.SessionToken{Value: "signed.jwt.value", ExpiresAt: expires}}, nil
		},
	}
	h := NewAuthHandler(&stubCredentialService{}, stub, session.Cookies{Secure: true})

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/login", `{"email":"ana@x.com","password":"secret1"}`), rec)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "token" || cookies[0].Value != "signed.jwt.value" {
		t.Fatalf("expected token cookie, got %+v", cookies)
	}
	if strings.Contains(rec.Body.String(), "signed.jwt.value") {
		t.Fatalf("token must not appear in the body")
	}
	if !strings.Contains(rec.Body.String(), `"slug":"ana-1a2b3c"`) {
		t.Fatalf("expected slug in body, got %s", rec.Body.String())
	}
}

func TestAuthHandler_Login_Failures(t *testing.T) {
	cases := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"missing password", `{"email":"ana@x.com"}`, nil, http.StatusBadRequest},
		{"malformed json", `{"email":`, nil, http.StatusBadRequest},
		{"bad credentials", `{"email":"ana@x.com","password":"nope12"}`, domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"missing secret", `{"email":"ana@x.com","password":"secret1"}`, domain.ErrMissingSecret, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEcho()
			e.HTTPErrorHandler = testErrorHandler
			stub := &stubSessionService{
				loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
					if tc.err == nil {
						t.Fatalf("service should not be called")
					}
					return nil, tc.err
				},
			}
			h := NewAuthHandler(&stubCredentialService{}, stub, session.Cookies{})

			rec := httptest.NewRecorder()
			serve(e, e.NewContext(jsonRequest(http.MethodPost, "/api/login", tc.body), rec), h.Login)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
			if len(rec.Result().Cookies()) != 0 {
				t.Fatalf("no cookie expected on failure")
			}
		})
	}
}

func TestAuthHandler_Logout_Idempotent(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubCredentialService{}, &stubSessionService{}, session.Cookies{})

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/logout", nil), rec)
		if err := h.Logout(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		ck := rec.Result().Cookies()
		if len(ck) != 1 || ck[0].Name != "token" || ck[0].MaxAge >= 0 {
			t.Fatalf("expected cleared cookie, got %+v", ck)
		}
	}
}

func TestAuthHandler_UpdatePassword_Rotates(t *testing.T) {
	e := newEcho()
	stub := &stubCredentialService{
		changePasswordFn: func(ctx context.Context, in ports.ChangePasswordInput) (*ports.ChangePasswordResult, error) {
			if in.UserID != "u1" || in.OldPassword != "secret1" || in.NewPassword != "secret2" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.ChangePasswordResult{
				Token:   ports.SessionToken{Value: "rotated", ExpiresAt: time.Now().Add(time.Hour)},
				Rotated: true,
			}, nil
		},
	}
	h := NewAuthHandler(stub, &stubSessionService{}, session.Cookies{})

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPut, "/api/update-password", `{"oldPassword":"secret1","newPassword":"secret2"}`), rec)
	session.SetUserID(c, "u1")

	if err := h.UpdatePassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	ck := rec.Result().Cookies()
	if len(ck) != 1 || ck[0].Value != "rotated" {
		t.Fatalf("expected rotated cookie, got %+v", ck)
	}
	if !strings.Contains(rec.Body.String(), `"session_rotated":true`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestAuthHandler_UpdatePassword_NotRotated(t *testing.T) {
	e := newEcho()
	stub := &stubCredentialService{
		changePasswordFn: func(context.Context, ports.ChangePasswordInput) (*ports.ChangePasswordResult, error) {
			return &ports.ChangePasswordResult{Rotated: false}, nil
		},
	}
	h := NewAuthHandler(stub, &stubSessionService{}, session.Cookies{})

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPut, "/api/update-password", `{"oldPassword":"secret1","newPassword":"secret2"}`), rec)
	session.SetUserID(c, "u1")

	if err := h.UpdatePassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || len(rec.Result().Cookies()) != 0 {
		t.Fatalf("expected 200 without a new cookie, got %d %+v", rec.Code, rec.Result().Cookies())
	}
	if !strings.Contains(rec.Body.String(), `"session_rotated":false`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestAuthHandler_UpdatePassword_Failures(t *testing.T) {
	cases := []struct {
		name   string
		userID string
		body   string
		err    error
		want   int
	}{
		{"no session", "", `{"oldPassword":"secret1","newPassword":"secret2"}`, nil, http.StatusUnauthorized},
		{"missing field", "u1", `{"oldPassword":"secret1"}`, nil, http.StatusBadRequest},
		{"same password", "u1", `{"oldPassword":"secret1","newPassword":"secret1"}`, domain.ErrSamePassword, http.StatusBadRequest},
		{"wrong old", "u1", `{"oldPassword":"wrong12","newPassword":"secret2"}`, domain.ErrWrongPassword, http.StatusUnauthorized},
		{"user vanished", "u1", `{"oldPassword":"secret1","newPassword":"secret2"}`, domain.ErrUserNotFound, http.StatusNotFound},
		{"store down", "u1", `{"oldPassword":"secret1","newPassword":"secret2"}`, errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEcho()
			e.HTTPErrorHandler = testErrorHandler
			stub := &stubCredentialService{
				changePasswordFn: func(context.Context, ports.ChangePasswordInput) (*ports.ChangePasswordResult, error) {
					if tc.err == nil {
						t.Fatalf("service should not be called")
					}
					return nil, tc.err
				},
			}
			h := NewAuthHandler(stub, &stubSessionService{}, session.Cookies{})

			rec := httptest.NewRecorder()
			c := e.NewContext(jsonRequest(http.MethodPut, "/api/update-password", tc.body), rec)
			if tc.userID != "" {
				session.SetUserID(c, tc.userID)
			}
			serve(e, c, h.UpdatePassword)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

// testErrorHandler mirrors the production mapping of domain kinds so the
// handler package can be tested on its own.
func testErrorHandler(err error, c echo.Context) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		_ = c.JSON(he.Code, map[string]any{"error": he.Message})
		return
	}
	status := http.StatusInternalServerError
	switch domain.KindOf(err) {
	case domain.KindValidation:
		status = http.StatusBadRequest
	case domain.KindConflict:
		status = http.StatusConflict
	case domain.KindAuth:
		status = http.StatusUnauthorized
	case domain.KindNotFound:
		status = http.StatusNotFound
	}
	_ = c.JSON(status, map[string]string{"error": err.Error()})
}
