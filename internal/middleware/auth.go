package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/danieliancu/AICodeMaster/internal/models"
	"github.com/danieliancu/AICodeMaster/internal/service"
	"github.com/danieliancu/AICodeMaster/internal/utils"
)

// Locals keys set by the auth middleware.
const (
	LocalsUser  = "user"
	LocalsToken = "session_token"
)

// bearerToken extracts the token from either the Authorization header or,
// for websocket upgrades where custom headers are unavailable, the "token"
// query parameter.
func bearerToken(c *fiber.Ctx) string {
	authorization := c.Get("Authorization")
	const bearer = "bearer "
	if len(authorization) > len(bearer) && strings.EqualFold(authorization[:len(bearer)], bearer) {
		return strings.TrimSpace(authorization[len(bearer):])
	}
	return strings.TrimSpace(c.Query("token"))
}

// SessionProtected returns a middleware that validates bearer tokens against
// the session store, so revoked tokens stop working immediately.
func SessionProtected(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization missing")
		}

		user, err := auth.Authenticate(c.Context(), token)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid or expired session")
		}

		c.Locals(LocalsUser, user)
		c.Locals(LocalsToken, token)
		c.Locals("user_id", user.ID)

		return c.Next()
	}
}

// UserFromContext returns the authenticated user bound to the request.
func UserFromContext(c *fiber.Ctx) (models.User, bool) {
	user, ok := c.Locals(LocalsUser).(models.User)
	return user, ok
}

// TokenFromContext returns the raw bearer token bound to the request.
func TokenFromContext(c *fiber.Ctx) string {
	if token, ok := c.Locals(LocalsToken).(string); ok {
		return token
	}
	return ""
}
