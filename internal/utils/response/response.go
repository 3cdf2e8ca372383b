package response

import (
	"errors"

	domainErrors "qirsh/internal/errors"

	"github.com/gofiber/fiber/v2"
)

func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

// DomainError renders a typed error with its stable machine code so
// clients can branch on it. Anything else becomes a generic 500; raw
// internal error text is never echoed.
func DomainError(c *fiber.Ctx, err error) error {
	var de *domainErrors.DomainError
	if errors.As(err, &de) {
		return c.Status(de.Status).JSON(fiber.Map{
			"error": de.Message,
			"code":  de.Code,
		})
	}
	return Error(c, fiber.StatusInternalServerError, "internal server error")
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

func Unauthorized(c *fiber.Ctx) error {
	return Error(c, fiber.StatusUnauthorized, "Unauthorized")
}
