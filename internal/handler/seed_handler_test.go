package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ysxx86/classreport-go-api/internal/handler"
	"github.com/ysxx86/classreport-go-api/internal/models"
	"github.com/ysxx86/classreport-go-api/internal/repository"
	"github.com/ysxx86/classreport-go-api/internal/service"
	"github.com/ysxx86/classreport-go-api/internal/utils"
)

func newSeedApp(t *testing.T, dbName string, enabled bool, token string) *fiber.App {
	t.Helper()

	db := setupHandlerDB(t, dbName, &models.Student{}, &models.Grade{}, &models.Comment{})
	svc := service.NewSeedService(
		repository.NewStudentRepository(db),
		repository.NewGradeRepository(db),
		repository.NewCommentRepository(db),
		enabled,
		token,
		zerolog.Nop(),
	)

	app := fiber.New()
	handler.NewSeedHandler(svc, zerolog.Nop()).Register(app.Group("/api/v1/seed"))
	return app
}

func TestSeedHandler_SeedsDemoData(t *testing.T) {
	app := newSeedApp(t, "seed_ok", true, "dev-token")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/seed/demo", nil)
	req.Header.Set("X-Seed-Token", "dev-token")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope utils.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	data := envelope.Data.(map[string]interface{})
	require.Greater(t, data["seeded"].(float64), float64(0))
}

func TestSeedHandler_RejectsBadToken(t *testing.T) {
	app := newSeedApp(t, "seed_badtoken", true, "dev-token")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/seed/demo", nil)
	req.Header.Set("X-Seed-Token", "wrong")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSeedHandler_DisabledReturnsForbidden(t *testing.T) {
	app := newSeedApp(t, "seed_disabled", false, "dev-token")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/seed/demo", nil)
	req.Header.Set("X-Seed-Token", "dev-token")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}
