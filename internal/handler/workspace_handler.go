package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/danieliancu/AICodeMaster/internal/dto"
	"github.com/danieliancu/AICodeMaster/internal/middleware"
	"github.com/danieliancu/AICodeMaster/internal/service"
	"github.com/danieliancu/AICodeMaster/internal/utils"
)

// WorkspaceHandler exposes the lesson workspace: saved code, progress and
// the persisted tutoring transcript.
type WorkspaceHandler struct {
	workspace service.WorkspaceService
	logger    zerolog.Logger
}

// NewWorkspaceHandler constructs the handler.
func NewWorkspaceHandler(workspace service.WorkspaceService, logger zerolog.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspace: workspace,
		logger:    logger.With().Str("component", "workspace_handler").Logger(),
	}
}

// Register wires the workspace routes.
func (h *WorkspaceHandler) Register(router fiber.Router) {
	router.Get("/:lessonID", h.getWorkspace)
	router.Post("/code", h.saveCode)
}

func (h *WorkspaceHandler) getWorkspace(c *fiber.Ctx) error {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	lessonID, err := parseUintParam(c, "lessonID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.workspace.GetWorkspace(c.Context(), user, lessonID)
	if err != nil {
		if errors.Is(err, service.ErrLessonNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "lesson not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load workspace")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load workspace")
	}

	return utils.SendSuccess(c, "workspace retrieved", result)
}

func (h *WorkspaceHandler) saveCode(c *fiber.Ctx) error {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.SaveCodeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.workspace.SaveCode(c.Context(), user.ID, payload); err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrLessonNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "lesson not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to save code")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to save code")
		}
	}

	return utils.SendSuccess(c, "code saved", nil)
}
