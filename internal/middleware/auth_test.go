package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/danieliancu/AICodeMaster/internal/dto"
	"github.com/danieliancu/AICodeMaster/internal/middleware"
	"github.com/danieliancu/AICodeMaster/internal/models"
	"github.com/danieliancu/AICodeMaster/internal/service"
)

type stubAuthService struct {
	validToken string
	user       models.User
	lastToken  string
}

func (s *stubAuthService) Register(_ context.Context, _ dto.RegisterRequest, _, _ string) (dto.AuthResponse, error) {
	return dto.AuthResponse{}, nil
}

func (s *stubAuthService) Login(_ context.Context, _ dto.LoginRequest, _, _ string) (dto.AuthResponse, error) {
	return dto.AuthResponse{}, nil
}

func (s *stubAuthService) Logout(_ context.Context, _ string) error {
	return nil
}

func (s *stubAuthService) Authenticate(_ context.Context, token string) (models.User, error) {
	s.lastToken = token
	if token != s.validToken {
		return models.User{}, service.ErrSessionInvalid
	}
	return s.user, nil
}

func newProtectedApp(auth service.AuthService) *fiber.App {
	app := fiber.New()
	app.Get("/protected", middleware.SessionProtected(auth), func(c *fiber.Ctx) error {
		user, ok := middleware.UserFromContext(c)
		if !ok {
			return fiber.ErrInternalServerError
		}
		return c.JSON(fiber.Map{"user_id": user.ID, "token": middleware.TokenFromContext(c)})
	})
	return app
}

func TestSessionProtectedAcceptsBearerHeader(t *testing.T) {
	svc := &stubAuthService{validToken: "good-token", user: models.User{ID: 7}}
	app := newProtectedApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "good-token", svc.lastToken)
}

func TestSessionProtectedAcceptsQueryToken(t *testing.T) {
	svc := &stubAuthService{validToken: "good-token", user: models.User{ID: 7}}
	app := newProtectedApp(svc)

	// Websocket upgrades cannot carry custom headers.
	req := httptest.NewRequest(http.MethodGet, "/protected?token=good-token", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSessionProtectedRejectsMissingToken(t *testing.T) {
	app := newProtectedApp(&stubAuthService{validToken: "good-token"})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/protected", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSessionProtectedRejectsRevokedToken(t *testing.T) {
	svc := &stubAuthService{validToken: "good-token"}
	app := newProtectedApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer revoked-token")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "revoked-token", svc.lastToken)
}
