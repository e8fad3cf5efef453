package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/ysxx86/classreport-go-api/internal/dto"
	"github.com/ysxx86/classreport-go-api/internal/repository"
	"github.com/ysxx86/classreport-go-api/internal/service"
	"github.com/ysxx86/classreport-go-api/internal/utils"
)

// RosterHandler exposes the student/grade/comment CRUD surface the export
// pipeline reads from.
type RosterHandler struct {
	service service.RosterService
	logger  zerolog.Logger
}

// NewRosterHandler constructs a roster handler.
func NewRosterHandler(service service.RosterService, logger zerolog.Logger) *RosterHandler {
	return &RosterHandler{
		service: service,
		logger:  logger.With().Str("component", "roster_handler").Logger(),
	}
}

// Register wires roster routes.
func (h *RosterHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)

	router.Get("/:id/grades", h.listGrades)
	router.Put("/:id/grades", h.upsertGrade)

	router.Get("/:id/comment", h.getComment)
	router.Put("/:id/comment", h.upsertComment)
}

func (h *RosterHandler) list(c *fiber.Ctx) error {
	filter := repository.StudentFilter{
		Class:  c.Query("class"),
		Search: c.Query("search"),
	}

	students, err := h.service.ListStudents(c.UserContext(), filter)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("student listing failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list students")
	}

	return utils.SendSuccess(c, "students listed", students)
}

func (h *RosterHandler) get(c *fiber.Ctx) error {
	student, err := h.service.GetStudent(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.sendServiceError(c, err, "failed to load student")
	}
	return utils.SendSuccess(c, "student loaded", student)
}

func (h *RosterHandler) create(c *fiber.Ctx) error {
	var req dto.StudentCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student payload")
	}

	student, err := h.service.CreateStudent(c.UserContext(), req)
	if err != nil {
		if errors.Is(err, service.ErrStudentExists) {
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		}
		return h.sendServiceError(c, err, "failed to create student")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "student created", student)
}

func (h *RosterHandler) update(c *fiber.Ctx) error {
	var req dto.StudentUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student payload")
	}

	student, err := h.service.UpdateStudent(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return h.sendServiceError(c, err, "failed to update student")
	}
	return utils.SendSuccess(c, "student updated", student)
}

func (h *RosterHandler) delete(c *fiber.Ctx) error {
	if err := h.service.DeleteStudent(c.UserContext(), c.Params("id")); err != nil {
		return h.sendServiceError(c, err, "failed to delete student")
	}
	return utils.SendSuccess(c, "student deleted", nil)
}

func (h *RosterHandler) listGrades(c *fiber.Ctx) error {
	grades, err := h.service.ListGrades(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.sendServiceError(c, err, "failed to list grades")
	}
	return utils.SendSuccess(c, "grades listed", grades)
}

func (h *RosterHandler) upsertGrade(c *fiber.Ctx) error {
	var req dto.GradeUpsertRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid grade payload")
	}

	grade, err := h.service.UpsertGrade(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return h.sendServiceError(c, err, "failed to store grade")
	}
	return utils.SendSuccess(c, "grade stored", grade)
}

func (h *RosterHandler) getComment(c *fiber.Ctx) error {
	comment, err := h.service.GetComment(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.sendServiceError(c, err, "failed to load comment")
	}
	return utils.SendSuccess(c, "comment loaded", comment)
}

func (h *RosterHandler) upsertComment(c *fiber.Ctx) error {
	var req dto.CommentUpsertRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid comment payload")
	}

	comment, err := h.service.UpsertComment(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return h.sendServiceError(c, err, "failed to store comment")
	}
	return utils.SendSuccess(c, "comment stored", comment)
}

func (h *RosterHandler) sendServiceError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "student not found")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
