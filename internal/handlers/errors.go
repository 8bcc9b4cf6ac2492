package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jyothilaxmika/pls-travels-backend/internal/models"
)

// respondError maps domain errors to HTTP status codes. Every known
// precondition failure keeps its specific message; anything unexpected
// becomes a generic 500.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, models.ErrDriverNotFound),
		errors.Is(err, models.ErrVehicleNotFound),
		errors.Is(err, models.ErrDutyNotFound),
		errors.Is(err, models.ErrSchemeNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})

	case errors.Is(err, models.ErrDuplicateActiveDuty),
		errors.Is(err, models.ErrVehicleUnavailable),
		errors.Is(err, models.ErrDutyNotActive),
		errors.Is(err, models.ErrDutyNotPending):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})

	case errors.Is(err, models.ErrMissingOdometer),
		errors.Is(err, models.ErrOdometerRegression),
		errors.Is(err, models.ErrInvalidFuelLevel),
		errors.Is(err, models.ErrNoSchemeAvailable),
		errors.Is(err, models.ErrDriverNotActive):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Something went wrong, please try again",
	})
}
