package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/danieliancu/AICodeMaster/internal/dto"
	"github.com/danieliancu/AICodeMaster/internal/handler"
	"github.com/danieliancu/AICodeMaster/internal/middleware"
	"github.com/danieliancu/AICodeMaster/internal/models"
	"github.com/danieliancu/AICodeMaster/internal/service"
)

type mockSettingsService struct {
	settings     dto.SettingsResponse
	settingsErr  error
	language     string
	languageErr  error
	lastUserID   uint
	lastLanguage string
}

func (m *mockSettingsService) GetSettings(_ context.Context, _ models.User) (dto.SettingsResponse, error) {
	if m.settingsErr != nil {
		return dto.SettingsResponse{}, m.settingsErr
	}
	return m.settings, nil
}

func (m *mockSettingsService) UpdateLanguage(_ context.Context, userID uint, payload dto.UpdateSettingsRequest) (string, error) {
	m.lastUserID = userID
	m.lastLanguage = payload.Language
	if m.languageErr != nil {
		return "", m.languageErr
	}
	return m.language, nil
}

func newSettingsApp(svc service.SettingsService, authenticated bool) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/settings", func(c *fiber.Ctx) error {
		if authenticated {
			c.Locals(middleware.LocalsUser, models.User{ID: 7, PreferredLanguage: "ro"})
		}
		return c.Next()
	})
	handler.NewSettingsHandler(svc, zerolog.New(io.Discard)).Register(group)
	return app
}

func TestSettingsHandler_GetSettings(t *testing.T) {
	svc := &mockSettingsService{settings: dto.SettingsResponse{
		Language:             "ro",
		Lessons:              []dto.LessonSummaryResponse{{ID: 1, Slug: "intro", Progress: models.ProgressInProgress}},
		LastAccessedLessonID: 1,
	}}
	app := newSettingsApp(svc, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool                 `json:"success"`
		Data    dto.SettingsResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Equal(t, "ro", response.Data.Language)
	require.Len(t, response.Data.Lessons, 1)
}

func TestSettingsHandler_GetSettingsRequiresUser(t *testing.T) {
	app := newSettingsApp(&mockSettingsService{}, false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSettingsHandler_UpdateLanguage(t *testing.T) {
	svc := &mockSettingsService{language: "en"}
	app := newSettingsApp(svc, true)

	resp := postJSON(t, app, "/api/v1/settings/language", dto.UpdateSettingsRequest{Language: "en"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(7), svc.lastUserID)
	require.Equal(t, "en", svc.lastLanguage)
}

func TestSettingsHandler_UpdateLanguageUnknownCode(t *testing.T) {
	app := newSettingsApp(&mockSettingsService{languageErr: service.ErrUnknownLanguage}, true)

	resp := postJSON(t, app, "/api/v1/settings/language", dto.UpdateSettingsRequest{Language: "xx"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var response struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &response)
	require.False(t, response.Success)
	require.Equal(t, "unknown language code", response.Message)
}
