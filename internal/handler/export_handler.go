package handler

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/ysxx86/classreport-go-api/internal/dto"
	"github.com/ysxx86/classreport-go-api/internal/repository"
	"github.com/ysxx86/classreport-go-api/internal/service"
	"github.com/ysxx86/classreport-go-api/internal/utils"
	"github.com/ysxx86/classreport-go-api/pkg/docx"
)

// ExportHandler exposes the batch export operation and the deferred archive
// retrieval path.
type ExportHandler struct {
	service service.ExportService
	logger  zerolog.Logger
}

// NewExportHandler constructs an export handler.
func NewExportHandler(service service.ExportService, logger zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		service: service,
		logger:  logger.With().Str("component", "export_handler").Logger(),
	}
}

// Register wires export routes.
func (h *ExportHandler) Register(router fiber.Router) {
	router.Post("", h.export)
	router.Get("/archives/:name", h.fetchArchive)
}

func (h *ExportHandler) export(c *fiber.Ctx) error {
	var req dto.ExportRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid export payload")
	}

	result, err := h.service.Export(c.UserContext(), req)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrTemplateNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "template not found")
		case errors.Is(err, service.ErrTemplateCorrupt):
			return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, docx.ErrCapabilityUnavailable):
			return utils.SendError(c, fiber.StatusServiceUnavailable, "document generation capability unavailable")
		case errors.Is(err, service.ErrPackaging):
			requestLogger(h.logger, c).Error().Err(err).Msg("packaging failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to package export")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("export failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "export failed")
		}
	}

	// Zero successes is a failed export even though orchestration completed
	// normally; the per-job detail still ships with the response.
	if result.Status == dto.BatchAllFailed {
		return utils.SendErrorWithData(c, fiber.StatusUnprocessableEntity, "export produced no documents", result)
	}

	if result.Kind == dto.ResultKindBytes {
		c.Set(fiber.HeaderContentType, result.ContentType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", result.FileName))
		c.Set("X-Export-Batch-ID", result.BatchID)
		c.Set("X-Export-Succeeded", strconv.Itoa(result.Succeeded))
		c.Set("X-Export-Failed", strconv.Itoa(result.Failed))
		return c.Send(result.Data)
	}

	return utils.SendSuccess(c, "export completed", result)
}

func (h *ExportHandler) fetchArchive(c *fiber.Ctx) error {
	name := c.Params("name")

	data, err := h.service.FetchArchive(c.UserContext(), name)
	if err != nil {
		if errors.Is(err, repository.ErrArchiveNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "archive not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Str("archive", name).Msg("archive retrieval failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to retrieve archive")
	}

	c.Set(fiber.HeaderContentType, service.ZipContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Send(data)
}
