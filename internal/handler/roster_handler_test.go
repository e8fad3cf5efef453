package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ysxx86/classreport-go-api/internal/handler"
	"github.com/ysxx86/classreport-go-api/internal/models"
	"github.com/ysxx86/classreport-go-api/internal/repository"
	"github.com/ysxx86/classreport-go-api/internal/service"
	"github.com/ysxx86/classreport-go-api/internal/utils"
)

func newRosterApp(t *testing.T, dbName string) *fiber.App {
	t.Helper()

	db := setupHandlerDB(t, dbName, &models.Student{}, &models.Grade{}, &models.Comment{})
	svc := service.NewRosterService(
		repository.NewStudentRepository(db),
		repository.NewGradeRepository(db),
		repository.NewCommentRepository(db),
		validator.New(),
		zerolog.Nop(),
	)

	app := fiber.New()
	handler.NewRosterHandler(svc, zerolog.Nop()).Register(app.Group("/api/v1/students"))
	return app
}

func jsonRequest(t *testing.T, method, target string, payload interface{}) *http.Request {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func TestRosterHandler_CreateAndGet(t *testing.T) {
	app := newRosterApp(t, "roster_create")

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/students", map[string]string{
		"student_id": "1001",
		"name":       "Li Hua",
		"class":      "3-2",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	getResp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/students/1001", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, getResp.StatusCode)

	var envelope utils.APIResponse
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&envelope))
	student := envelope.Data.(map[string]interface{})
	require.Equal(t, "Li Hua", student["name"])
}

func TestRosterHandler_CreateDuplicateConflicts(t *testing.T) {
	app := newRosterApp(t, "roster_conflict")

	payload := map[string]string{"student_id": "1001", "name": "Li Hua"}
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/students", payload))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/v1/students", payload))
	require.NoError(t, err)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRosterHandler_GetUnknownStudent(t *testing.T) {
	app := newRosterApp(t, "roster_missing")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/students/9999", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRosterHandler_GradeRoundTrip(t *testing.T) {
	app := newRosterApp(t, "roster_grades")

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/students", map[string]string{
		"student_id": "1001",
		"name":       "Li Hua",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodPut, "/api/v1/students/1001/grades", map[string]interface{}{
		"semester": "Fall",
		"scores":   map[string]string{"math": "excellent", "chinese": "good"},
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	listResp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/students/1001/grades", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	var envelope utils.APIResponse
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&envelope))
	grades := envelope.Data.([]interface{})
	require.Len(t, grades, 1)
}

func TestRosterHandler_GradeRejectsUnknownLevel(t *testing.T) {
	app := newRosterApp(t, "roster_badgrade")

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/students", map[string]string{
		"student_id": "1001",
		"name":       "Li Hua",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodPut, "/api/v1/students/1001/grades", map[string]interface{}{
		"semester": "Fall",
		"scores":   map[string]string{"math": "stellar"},
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRosterHandler_CommentRoundTrip(t *testing.T) {
	app := newRosterApp(t, "roster_comment")

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/students", map[string]string{
		"student_id": "1001",
		"name":       "Li Hua",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodPut, "/api/v1/students/1001/comment", map[string]string{
		"content": "Shows <b>steady</b> progress.",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	getResp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/students/1001/comment", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, getResp.StatusCode)

	var envelope utils.APIResponse
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&envelope))
	comment := envelope.Data.(map[string]interface{})
	require.Equal(t, "Shows steady progress.", comment["content"])
}

func TestRosterHandler_DeleteStudent(t *testing.T) {
	app := newRosterApp(t, "roster_delete")

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/students", map[string]string{
		"student_id": "1001",
		"name":       "Li Hua",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/students/1001", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/students/1001", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
