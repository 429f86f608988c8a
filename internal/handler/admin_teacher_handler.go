package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/exambel/exambel-api/internal/dto"
	"github.com/exambel/exambel-api/internal/service"
	"github.com/exambel/exambel-api/internal/utils"
)

// AdminTeacherHandler wires the admin-side teacher management endpoints.
type AdminTeacherHandler struct {
	service service.AdminTeacherService
	logger  zerolog.Logger
}

// NewAdminTeacherHandler creates an admin teacher handler instance.
func NewAdminTeacherHandler(service service.AdminTeacherService, logger zerolog.Logger) *AdminTeacherHandler {
	return &AdminTeacherHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_teacher_handler").Logger(),
	}
}

// Register binds admin teacher routes under the provided router group.
func (h *AdminTeacherHandler) Register(router fiber.Router) {
	router.Get("/overview", h.overview)
	router.Get("/teachers", h.list)
	router.Get("/teachers/:id", h.detail)
	router.Patch("/teachers/:id/status", h.updateStatus)
	router.Delete("/teachers/:id", h.remove)
}

func (h *AdminTeacherHandler) overview(c *fiber.Ctx) error {
	overview, err := h.service.Overview(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build admin overview")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load overview")
	}

	return utils.SendSuccess(c, "admin overview", overview)
}

func (h *AdminTeacherHandler) list(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	req := dto.TeacherListRequest{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Limit:  limit,
	}

	teachers, err := h.service.List(c.UserContext(), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list teachers")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list teachers")
	}

	return utils.SendSuccess(c, "teachers", teachers)
}

func (h *AdminTeacherHandler) detail(c *fiber.Ctx) error {
	detail, err := h.service.Detail(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrTeacherNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "teacher not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load teacher detail")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load teacher detail")
	}

	return utils.SendSuccess(c, "teacher detail", detail)
}

func (h *AdminTeacherHandler) updateStatus(c *fiber.Ctx) error {
	var payload dto.TeacherStatusUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	updated, err := h.service.UpdateStatus(c.UserContext(), c.Params("id"), payload, actorFromContext(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrTeacherNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "teacher not found")
		case errors.Is(err, service.ErrInvalidTransition):
			return utils.SendError(c, fiber.StatusConflict, "status transition not permitted")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update teacher status")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update teacher status")
		}
	}

	return utils.SendSuccess(c, "teacher status updated", updated)
}

func (h *AdminTeacherHandler) remove(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id"), actorFromContext(c)); err != nil {
		if errors.Is(err, service.ErrTeacherNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "teacher not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete teacher")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete teacher")
	}

	return utils.SendSuccess(c, "teacher deleted", nil)
}
