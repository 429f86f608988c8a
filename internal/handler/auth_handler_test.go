package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/exambel/exambel-api/internal/dto"
	"github.com/exambel/exambel-api/internal/identity"
	"github.com/exambel/exambel-api/internal/service"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type stubAuthService struct {
	registerFn func(ctx context.Context, payload dto.RegisterRequest) (dto.SessionResponse, error)
	loginFn    func(ctx context.Context, payload dto.LoginRequest) (dto.SessionResponse, error)
	resumeFn   func(ctx context.Context, accountID string) (dto.SessionResponse, error)
}

func (s *stubAuthService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.SessionResponse, error) {
	return s.registerFn(ctx, payload)
}

func (s *stubAuthService) Login(ctx context.Context, payload dto.LoginRequest) (dto.SessionResponse, error) {
	return s.loginFn(ctx, payload)
}

func (s *stubAuthService) Resume(ctx context.Context, accountID string) (dto.SessionResponse, error) {
	return s.resumeFn(ctx, accountID)
}

func newAuthApp(svc service.AuthService) *fiber.App {
	app := fiber.New()
	h := NewAuthHandler(svc, testLogger())
	h.Register(app.Group("/api/v1/auth"))

	session := app.Group("/api/v1/auth", func(c *fiber.Ctx) error {
		c.Locals("user_id", "u1")
		return c.Next()
	})
	h.RegisterSession(session)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func TestRegisterHandlerReturnsSession(t *testing.T) {
	svc := &stubAuthService{
		registerFn: func(_ context.Context, payload dto.RegisterRequest) (dto.SessionResponse, error) {
			require.Equal(t, "ava@example.com", payload.Email)
			return dto.SessionResponse{
				Token:   "jwt",
				Account: dto.AccountResponse{ID: "u1", Role: "admin", Status: "approved"},
				Route:   "admin_dashboard",
			}, nil
		},
	}
	app := newAuthApp(svc)

	resp := postJSON(t, app, "/api/v1/auth/register", `{"name":"Ava","workplace":"SMA 1","email":"ava@example.com","password":"secret123"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var payload struct {
		Success bool                `json:"success"`
		Data    dto.SessionResponse `json:"data"`
	}
	decodeBody(t, resp, &payload)
	require.True(t, payload.Success)
	require.Equal(t, "admin_dashboard", payload.Data.Route)
	require.Equal(t, "jwt", payload.Data.Token)
}

func TestRegisterHandlerDuplicateEmailConflicts(t *testing.T) {
	svc := &stubAuthService{
		registerFn: func(context.Context, dto.RegisterRequest) (dto.SessionResponse, error) {
			return dto.SessionResponse{}, identity.ErrEmailTaken
		},
	}
	app := newAuthApp(svc)

	resp := postJSON(t, app, "/api/v1/auth/register", `{"name":"Ava","workplace":"SMA 1","email":"ava@example.com","password":"secret123"}`)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestLoginHandlerRejectedAccountSignsOut(t *testing.T) {
	svc := &stubAuthService{
		loginFn: func(context.Context, dto.LoginRequest) (dto.SessionResponse, error) {
			return dto.SessionResponse{}, service.ErrAccountRejected
		},
	}
	app := newAuthApp(svc)

	resp := postJSON(t, app, "/api/v1/auth/login", `{"email":"ben@example.com","password":"secret123"}`)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	var payload struct {
		Data map[string]string `json:"data"`
	}
	decodeBody(t, resp, &payload)
	require.Equal(t, "signed_out", payload.Data["route"])
}

func TestLoginHandlerBadCredentials(t *testing.T) {
	svc := &stubAuthService{
		loginFn: func(context.Context, dto.LoginRequest) (dto.SessionResponse, error) {
			return dto.SessionResponse{}, identity.ErrInvalidCredentials
		},
	}
	app := newAuthApp(svc)

	resp := postJSON(t, app, "/api/v1/auth/login", `{"email":"ben@example.com","password":"wrong"}`)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSessionHandlerResumesForTokenHolder(t *testing.T) {
	svc := &stubAuthService{
		resumeFn: func(_ context.Context, accountID string) (dto.SessionResponse, error) {
			require.Equal(t, "u1", accountID)
			return dto.SessionResponse{Route: "teacher_dashboard"}, nil
		},
	}
	app := newAuthApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/session", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Data dto.SessionResponse `json:"data"`
	}
	decodeBody(t, resp, &payload)
	require.Equal(t, "teacher_dashboard", payload.Data.Route)
}
