package handler_test

import (
	"bytes"
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
	"github.com/danieliancu/AICodeMaster/internal/service"
)

type mockSeedService struct {
	affected  int64
	err       error
	lastToken string
	lastItems []dto.LessonSeed
}

func (m *mockSeedService) SeedLessons(_ context.Context, token string, items []dto.LessonSeed) (int64, error) {
	m.lastToken = token
	m.lastItems = items
	if m.err != nil {
		return 0, m.err
	}
	return m.affected, nil
}

func newSeedApp(svc *mockSeedService) *fiber.App {
	app := fiber.New()
	h := handler.NewSeedHandler(svc, zerolog.New(io.Discard))
	h.Register(app.Group("/seed"))
	return app
}

func postSeed(t *testing.T, app *fiber.App, token, body string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/seed/lessons", bytes.NewReader([]byte(body)))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("X-Seed-Token", token)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestSeedLessonsSuccess(t *testing.T) {
	svc := &mockSeedService{affected: 3}
	app := newSeedApp(svc)

	resp := postSeed(t, app, "seed-token", `{"items":[{"slug":"flex-nav","name":"Flexbox Navigation","title":"Flexbox Navigation","description":"Build a nav bar."}]}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "seed-token", svc.lastToken)
	require.Len(t, svc.lastItems, 1)
	require.Equal(t, "flex-nav", svc.lastItems[0].Slug)

	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			Affected int64 `json:"affected"`
		} `json:"data"`
	}
	decodeResponse(t, resp, &envelope)
	require.True(t, envelope.Success)
	require.EqualValues(t, 3, envelope.Data.Affected)
}

func TestSeedLessonsEmptyBodyUsesStarterCatalog(t *testing.T) {
	svc := &mockSeedService{affected: 3}
	app := newSeedApp(svc)

	resp := postSeed(t, app, "seed-token", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Empty(t, svc.lastItems)
}

func TestSeedLessonsErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{name: "disabled", err: service.ErrSeedDisabled, status: fiber.StatusForbidden},
		{name: "bad token", err: service.ErrSeedUnauthorized, status: fiber.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newSeedApp(&mockSeedService{err: tc.err})
			resp := postSeed(t, app, "anything", "")
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
