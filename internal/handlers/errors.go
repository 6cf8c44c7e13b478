package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/example/gamevault/internal/apperr"
)

// respondError maps the error taxonomy onto HTTP statuses. Store failures
// are logged in full server-side and surfaced with a generic message.
func respondError(c *fiber.Ctx, err error) error {
	var validationErr *apperr.ValidationError
	var notFoundErr *apperr.NotFoundError
	var duplicateErr *apperr.DuplicateAssociationError
	var storeErr *apperr.StoreError

	switch {
	case errors.Is(err, apperr.ErrNothingToUpdate):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "No values to update",
		})
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationErr.Fields,
		})
	case errors.As(err, &notFoundErr):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": notFoundErr.Error(),
		})
	case errors.As(err, &duplicateErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": duplicateErr.Error(),
		})
	case errors.As(err, &storeErr):
		log.Printf("store error: %v", storeErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Something went wrong",
		})
	default:
		log.Printf("unexpected error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Something went wrong",
		})
	}
}
