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

// AuthHandler exposes account registration and session endpoints.
type AuthHandler struct {
	auth   service.AuthService
	logger zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(auth service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: logger.With().Str("component", "auth_handler").Logger(),
	}
}

// RegisterPublic wires the unauthenticated auth routes.
func (h *AuthHandler) RegisterPublic(router fiber.Router) {
	router.Post("/register", h.register)
	router.Post("/login", h.login)
}

// RegisterProtected wires the session-bound auth routes.
func (h *AuthHandler) RegisterProtected(router fiber.Router, auth fiber.Handler) {
	router.Post("/logout", auth, h.logout)
	router.Get("/me", auth, h.me)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.auth.Register(c.Context(), payload, c.IP(), c.Get("User-Agent"))
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrEmailTaken):
			return utils.SendError(c, fiber.StatusConflict, "email already registered")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to register account")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to register account")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "account registered", result)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.auth.Login(c.Context(), payload, c.IP(), c.Get("User-Agent"))
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrInvalidCredentials):
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid credentials")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to login")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to login")
		}
	}

	return utils.SendSuccess(c, "logged in", result)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	token := middleware.TokenFromContext(c)
	if err := h.auth.Logout(c.Context(), token); err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to revoke session")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to logout")
	}

	return utils.SendSuccess(c, "logged out", nil)
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	return utils.SendSuccess(c, "account retrieved", dto.NewUserResponse(user))
}
