package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/exambel/exambel-api/internal/service"
	"github.com/exambel/exambel-api/internal/utils"
)

// ActivityHandler exposes the audit trail to admins.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler creates an activity handler instance.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register binds activity routes under the provided router group.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("/activity", h.recent)
}

func (h *ActivityHandler) recent(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	entries, err := h.service.Recent(c.UserContext(), limit)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load activity feed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load activity feed")
	}

	return utils.SendSuccess(c, "recent activity", entries)
}
