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

// SettingsHandler exposes the workspace bootstrap and language preference.
type SettingsHandler struct {
	settings service.SettingsService
	logger   zerolog.Logger
}

// NewSettingsHandler constructs the handler.
func NewSettingsHandler(settings service.SettingsService, logger zerolog.Logger) *SettingsHandler {
	return &SettingsHandler{
		settings: settings,
		logger:   logger.With().Str("component", "settings_handler").Logger(),
	}
}

// Register wires the settings routes.
func (h *SettingsHandler) Register(router fiber.Router) {
	router.Get("/", h.getSettings)
	router.Post("/language", h.updateLanguage)
}

func (h *SettingsHandler) getSettings(c *fiber.Ctx) error {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	result, err := h.settings.GetSettings(c.Context(), user)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load settings")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load settings")
	}

	return utils.SendSuccess(c, "settings retrieved", result)
}

func (h *SettingsHandler) updateLanguage(c *fiber.Ctx) error {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.UpdateSettingsRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	language, err := h.settings.UpdateLanguage(c.Context(), user.ID, payload)
	if err != nil {
		switch {
		case isValidationError(err), errors.Is(err, service.ErrUnknownLanguage):
			return utils.SendError(c, fiber.StatusBadRequest, "unknown language code")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update language")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update language")
		}
	}

	return utils.SendSuccess(c, "language updated", fiber.Map{"language": language})
}
