package handler

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/exambel/exambel-api/internal/dto"
	"github.com/exambel/exambel-api/internal/service"
	"github.com/exambel/exambel-api/internal/utils"
)

const maxRosterBytes = 1 << 20

// StudentHandler wires the teacher-facing student endpoints including the bulk
// roster import.
type StudentHandler struct {
	service service.StudentService
	logger  zerolog.Logger
}

// NewStudentHandler creates a student handler instance.
func NewStudentHandler(service service.StudentService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		service: service,
		logger:  logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register binds student routes under the provided router group.
func (h *StudentHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", h.create)
	router.Post("/import", h.bulkImport)
	router.Delete("/:id", h.remove)
}

func (h *StudentHandler) list(c *fiber.Ctx) error {
	students, err := h.service.List(c.UserContext(), userIDFromContext(c), c.Query("class_id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClassNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		case errors.Is(err, service.ErrClassNotOwned):
			return utils.SendError(c, fiber.StatusForbidden, "class not owned by caller")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to list students")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to list students")
		}
	}

	return utils.SendSuccess(c, "students", students)
}

func (h *StudentHandler) create(c *fiber.Ctx) error {
	var payload dto.StudentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	student, err := h.service.Create(c.UserContext(), userIDFromContext(c), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrClassNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		case errors.Is(err, service.ErrClassNotOwned):
			return utils.SendError(c, fiber.StatusForbidden, "class not owned by caller")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create student")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create student")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "student created", student)
}

// bulkImport accepts the roster either as a multipart "roster" file or as a
// plain text body, one student name per line.
func (h *StudentHandler) bulkImport(c *fiber.Ctx) error {
	classID := strings.TrimSpace(c.Query("class_id"))
	if classID == "" {
		classID = strings.TrimSpace(c.FormValue("class_id"))
	}
	if classID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "class_id required")
	}

	grade := strings.TrimSpace(c.Query("grade"))
	if grade == "" {
		grade = strings.TrimSpace(c.FormValue("grade"))
	}

	roster, err := h.rosterBody(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.BulkImport(c.UserContext(), userIDFromContext(c), classID, grade, bytes.NewReader(roster))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClassNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		case errors.Is(err, service.ErrClassNotOwned):
			return utils.SendError(c, fiber.StatusForbidden, "class not owned by caller")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("roster import failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to import roster")
		}
	}

	return utils.SendSuccess(c, "roster imported", result)
}

func (h *StudentHandler) rosterBody(c *fiber.Ctx) ([]byte, error) {
	if file, err := c.FormFile("roster"); err == nil {
		if file.Size > maxRosterBytes {
			return nil, errors.New("roster file too large")
		}

		src, err := file.Open()
		if err != nil {
			return nil, errors.New("failed to read roster file")
		}
		defer src.Close()

		buf, err := io.ReadAll(io.LimitReader(src, maxRosterBytes))
		if err != nil {
			return nil, errors.New("failed to read roster file")
		}

		kind := mimetype.Detect(buf)
		if !kind.Is("text/plain") && !strings.HasPrefix(kind.String(), "text/") {
			return nil, errors.New("roster must be a plain text file")
		}
		return buf, nil
	}

	body := c.Body()
	if len(body) == 0 {
		return nil, errors.New("roster body required")
	}
	if len(body) > maxRosterBytes {
		return nil, errors.New("roster body too large")
	}
	return body, nil
}

func (h *StudentHandler) remove(c *fiber.Ctx) error {
	err := h.service.Delete(c.UserContext(), userIDFromContext(c), c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStudentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		case errors.Is(err, service.ErrStudentNotOwned):
			return utils.SendError(c, fiber.StatusForbidden, "student not owned by caller")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete student")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete student")
		}
	}

	return utils.SendSuccess(c, "student deleted", nil)
}
