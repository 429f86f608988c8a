package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/exambel/exambel-api/internal/codegen"
	"github.com/exambel/exambel-api/internal/dto"
	"github.com/exambel/exambel-api/internal/service"
	"github.com/exambel/exambel-api/internal/utils"
)

// ExamHandler wires the teacher-facing exam endpoints and the public
// answer-free lookups.
type ExamHandler struct {
	service service.ExamService
	logger  zerolog.Logger
}

// NewExamHandler creates an exam handler instance.
func NewExamHandler(service service.ExamService, logger zerolog.Logger) *ExamHandler {
	return &ExamHandler{
		service: service,
		logger:  logger.With().Str("component", "exam_handler").Logger(),
	}
}

// Register binds exam routes under the provided router group.
func (h *ExamHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", h.create)
	router.Delete("/:id", h.remove)
}

// RegisterPublic binds the unauthenticated exam lookups used by students.
func (h *ExamHandler) RegisterPublic(router fiber.Router) {
	router.Get("/exams/code/:code", h.publicByCode)
	router.Get("/exams/:id", h.publicByID)
}

func (h *ExamHandler) list(c *fiber.Ctx) error {
	exams, err := h.service.List(c.UserContext(), userIDFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list exams")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list exams")
	}

	return utils.SendSuccess(c, "exams", exams)
}

func (h *ExamHandler) create(c *fiber.Ctx) error {
	var payload dto.ExamCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	exam, err := h.service.Create(c.UserContext(), userIDFromContext(c), payload)
	if err != nil {
		switch {
		case isValidationError(err), errors.Is(err, service.ErrInvalidQuestions):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid exam payload")
		case errors.Is(err, service.ErrClassNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		case errors.Is(err, service.ErrClassNotOwned):
			return utils.SendError(c, fiber.StatusForbidden, "class not owned by caller")
		case errors.Is(err, codegen.ErrSpaceExhausted):
			requestLogger(h.logger, c).Error().Err(err).Msg("exam code space exhausted")
			return utils.SendError(c, fiber.StatusConflict, "could not allocate a unique exam code")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create exam")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create exam")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "exam created", exam)
}

func (h *ExamHandler) remove(c *fiber.Ctx) error {
	err := h.service.Delete(c.UserContext(), userIDFromContext(c), c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "exam not found")
		case errors.Is(err, service.ErrExamNotOwned):
			return utils.SendError(c, fiber.StatusForbidden, "exam not owned by caller")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete exam")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete exam")
		}
	}

	return utils.SendSuccess(c, "exam deleted", nil)
}

func (h *ExamHandler) publicByID(c *fiber.Ctx) error {
	exam, err := h.service.PublicByID(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "exam not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("public exam lookup failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load exam")
	}

	return utils.SendSuccess(c, "exam", exam)
}

func (h *ExamHandler) publicByCode(c *fiber.Ctx) error {
	exam, err := h.service.PublicByCode(c.UserContext(), c.Params("code"))
	if err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "exam not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("public exam code lookup failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load exam")
	}

	return utils.SendSuccess(c, "exam", exam)
}
