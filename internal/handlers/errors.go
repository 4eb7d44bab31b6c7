package handlers

import (
	"errors"
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"valuta/internal/apperrors"
)

// writeError is the single error-to-response mapping. It is total over
// the error taxonomy: every member gets a stable status code, a
// user-facing message and a log severity, and anything unrecognized
// falls back to a generic 500. External failures are logged with full
// diagnostics but answered generically so upstream details never leak.
func writeError(c *fiber.Ctx, err error) error {
	var validationErrs validator.ValidationErrors
	var uniqueField *apperrors.UniqueFieldError
	var statusErr *apperrors.StatusError
	var transportErr *apperrors.TransportError
	var dataErr *apperrors.DataError

	switch {
	case errors.As(err, &validationErrs):
		errorMessages := make(map[string]string, len(validationErrs))
		for _, e := range validationErrs {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' rule", e.Field(), e.Tag())
		}
		log.Printf("WARN: request validation failed: %v", err)
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})

	case errors.As(err, &uniqueField):
		log.Printf("WARN: registration conflict: %v", err)
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": fmt.Sprintf("The %s '%s' is already taken. Please use another one.", uniqueField.Field, uniqueField.Value),
		})

	case errors.Is(err, apperrors.ErrUniqueConstraint):
		// Race-condition duplicate caught by the storage layer; the
		// caller recovers the same way as from a pre-check conflict.
		log.Printf("WARN: duplicate insert rejected by storage: %v", err)
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "The username or email is already taken. Please use another one.",
		})

	case errors.Is(err, apperrors.ErrUnauthorized),
		errors.Is(err, apperrors.ErrTokenExpired),
		errors.Is(err, apperrors.ErrTokenInvalid):
		log.Printf("WARN: unauthorized: %v", err)
		c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Invalid credentials",
		})

	case errors.As(err, &statusErr):
		log.Printf("ERROR: external API status %d: %s", statusErr.Code, statusErr.Body)
		if statusErr.Code == 402 {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Currency code not found. Check /currency/list for the available codes.",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Problem with the external API response",
		})

	case errors.As(err, &transportErr):
		log.Printf("CRITICAL: external API unreachable: %v", transportErr.Err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Problem with the external API response",
		})

	case errors.As(err, &dataErr):
		log.Printf("CRITICAL: external API contract break: %v", dataErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Problem with the external API response",
		})

	default:
		log.Printf("ERROR: unhandled error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}
}
