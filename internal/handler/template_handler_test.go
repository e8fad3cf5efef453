package handler_test

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ysxx86/classreport-go-api/internal/handler"
	"github.com/ysxx86/classreport-go-api/internal/models"
	"github.com/ysxx86/classreport-go-api/internal/repository"
	"github.com/ysxx86/classreport-go-api/internal/service"
	"github.com/ysxx86/classreport-go-api/internal/utils"
)

func setupHandlerDB(t *testing.T, name string, models ...interface{}) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models...))
	return db
}

// documentPackage assembles a minimal valid document archive.
func documentPackage(t *testing.T) []byte {
	t.Helper()

	var out bytes.Buffer
	writer := zip.NewWriter(&out)
	for _, part := range []struct{ name, content string }{
		{"[Content_Types].xml", `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`},
		{"word/document.xml", `<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>【name】</w:t></w:r></w:p></w:body></w:document>`},
	} {
		entry, err := writer.Create(part.name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(part.content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return out.Bytes()
}

func multipartUpload(t *testing.T, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func newTemplateApp(t *testing.T, dbName string) *fiber.App {
	t.Helper()

	db := setupHandlerDB(t, dbName, &models.Template{})
	svc, err := service.NewTemplateService(repository.NewTemplateRepository(db), 10, zerolog.Nop())
	require.NoError(t, err)

	app := fiber.New()
	handler.NewTemplateHandler(svc, zerolog.Nop()).Register(app.Group("/api/v1/templates"))
	return app
}

func TestTemplateHandler_UploadAndList(t *testing.T) {
	app := newTemplateApp(t, "template_upload")

	body, contentType := multipartUpload(t, "term-report.docx", documentPackage(t))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/templates", body)
	req.Header.Set(fiber.HeaderContentType, contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var envelope utils.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.True(t, envelope.Success)
	uploaded := envelope.Data.(map[string]interface{})
	require.Equal(t, "term-report", uploaded["name"])

	listReq := httptest.NewRequest(http.MethodGet, "/api/v1/templates", nil)
	listResp, err := app.Test(listReq)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	var listEnvelope utils.APIResponse
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&listEnvelope))
	templates := listEnvelope.Data.([]interface{})
	require.Len(t, templates, 2)

	first := templates[0].(map[string]interface{})
	require.Equal(t, models.BuiltinTemplateID, first["template_id"])
}

func TestTemplateHandler_UploadRejectsPlainText(t *testing.T) {
	app := newTemplateApp(t, "template_reject")

	body, contentType := multipartUpload(t, "notes.txt", []byte("plain text"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/templates", body)
	req.Header.Set(fiber.HeaderContentType, contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTemplateHandler_UploadRequiresFile(t *testing.T) {
	app := newTemplateApp(t, "template_nofile")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/templates", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
