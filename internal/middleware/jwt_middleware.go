package middleware

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"valuta/internal/apperrors"
	"valuta/internal/security"
)

// AuthRequired is a Fiber middleware that verifies the bearer token and
// stores the authenticated username in the request locals.
func AuthRequired(tokens security.Codec) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		claims, err := tokens.Verify(parts[1])
		if err != nil {
			if errors.Is(err, apperrors.ErrTokenExpired) {
				log.Printf("WARN: rejected expired token")
			} else {
				log.Printf("WARN: rejected invalid token: %v", err)
			}
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}

		c.Locals("username", claims["sub"])
		return c.Next()
	}
}
