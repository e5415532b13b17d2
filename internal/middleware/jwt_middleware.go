package middleware

import (
	"errors"
	"strings"

	"cardkeep/internal/apperr"
	"cardkeep/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const emailKey = "email"

// AuthRequired is a Fiber middleware to check for a valid session token.
// The verified subject is stored in the context for UserEmail.
func AuthRequired(tokens *services.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"detail": "Not authenticated",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"detail": "Authorization header format must be 'Bearer <token>'",
			})
		}

		email, err := tokens.Verify(strings.TrimSpace(parts[1]), services.PurposeSession)
		if err != nil {
			zap.L().Debug("JWT validation failed", zap.String("path", c.Path()), zap.Error(err))
			detail := "Invalid token."
			if errors.Is(err, apperr.ErrExpiredToken) {
				detail = "Token expired."
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"detail": detail,
			})
		}

		c.Locals(emailKey, email)
		return c.Next()
	}
}

// UserEmail returns the subject stored by AuthRequired, or "" outside it.
func UserEmail(c *fiber.Ctx) string {
	email, _ := c.Locals(emailKey).(string)
	return email
}
