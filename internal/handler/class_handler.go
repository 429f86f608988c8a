package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/exambel/exambel-api/internal/dto"
	"github.com/exambel/exambel-api/internal/service"
	"github.com/exambel/exambel-api/internal/utils"
)

// ClassHandler wires the teacher-facing class endpoints.
type ClassHandler struct {
	service service.ClassService
	logger  zerolog.Logger
}

// NewClassHandler creates a class handler instance.
func NewClassHandler(service service.ClassService, logger zerolog.Logger) *ClassHandler {
	return &ClassHandler{
		service: service,
		logger:  logger.With().Str("component", "class_handler").Logger(),
	}
}

// Register binds class routes under the provided router group.
func (h *ClassHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", h.create)
	router.Delete("/:id", h.remove)
}

func (h *ClassHandler) list(c *fiber.Ctx) error {
	classes, err := h.service.List(c.UserContext(), userIDFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list classes")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list classes")
	}

	return utils.SendSuccess(c, "classes", classes)
}

func (h *ClassHandler) create(c *fiber.Ctx) error {
	var payload dto.ClassCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	class, err := h.service.Create(c.UserContext(), userIDFromContext(c), payload)
	if err != nil {
		switch {
		case isValidationError(err), errors.Is(err, service.ErrClassNameRequired):
			return utils.SendError(c, fiber.StatusBadRequest, "class name is required")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create class")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create class")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "class created", class)
}

func (h *ClassHandler) remove(c *fiber.Ctx) error {
	err := h.service.Delete(c.UserContext(), userIDFromContext(c), c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClassNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		case errors.Is(err, service.ErrClassNotOwned):
			return utils.SendError(c, fiber.StatusForbidden, "class not owned by caller")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete class")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete class")
		}
	}

	return utils.SendSuccess(c, "class deleted", nil)
}
