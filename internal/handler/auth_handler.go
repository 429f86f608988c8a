package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/exambel/exambel-api/internal/dto"
	"github.com/exambel/exambel-api/internal/identity"
	"github.com/exambel/exambel-api/internal/models"
	"github.com/exambel/exambel-api/internal/service"
	"github.com/exambel/exambel-api/internal/utils"
)

// AuthHandler wires the registration, login and session endpoints.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler creates an auth handler instance.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register binds public auth routes under the provided router group.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/register", h.register)
	router.Post("/login", h.login)
}

// RegisterSession binds the token-protected session endpoint.
func (h *AuthHandler) RegisterSession(router fiber.Router) {
	router.Get("/session", h.session)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	session, err := h.service.Register(c.UserContext(), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, identity.ErrEmailTaken):
			return utils.SendError(c, fiber.StatusConflict, "email already registered")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("registration failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to register account")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "account registered", session)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	session, err := h.service.Login(c.UserContext(), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, identity.ErrInvalidCredentials):
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, service.ErrAccountRejected), errors.Is(err, service.ErrAccountNotFound):
			return utils.Fail(c, fiber.StatusUnauthorized, "account access revoked", fiber.Map{
				"route": string(models.RouteSignedOut),
			})
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("login failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to sign in")
		}
	}

	return utils.SendSuccess(c, "signed in", session)
}

// session re-runs the authorization gate for the current token holder. Clients
// call this on startup to decide which surface to render.
func (h *AuthHandler) session(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	session, err := h.service.Resume(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, service.ErrAccountRejected) || errors.Is(err, service.ErrAccountNotFound) {
			return utils.Fail(c, fiber.StatusUnauthorized, "account access revoked", fiber.Map{
				"route": string(models.RouteSignedOut),
			})
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("session resume failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to resume session")
	}

	return utils.SendSuccess(c, "session resumed", session)
}
