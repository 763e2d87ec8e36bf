package handler

import (
	"errors"

	"go-bakery-ws/internal/model"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// getUserID pulls the acting user from the JWT context (set by RequireAuth).
func getUserID(c *fiber.Ctx) string {
	userID := c.Locals("user_id")
	if userID == nil {
		return "system"
	}
	return userID.(string)
}

func getUserName(c *fiber.Ctx) string {
	userName := c.Locals("user_name")
	if userName == nil {
		return "Unknown"
	}
	return userName.(string)
}

func parseUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}

// respondError maps the business error taxonomy to distinguishable HTTP
// responses. Every entry keeps its own code string so the dashboard can show
// a specific message per failure.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return c.Status(404).JSON(fiber.Map{"error": err.Error(), "code": "NOT_FOUND"})
	case errors.Is(err, model.ErrInsufficientStock):
		return c.Status(409).JSON(fiber.Map{"error": err.Error(), "code": "INSUFFICIENT_STOCK"})
	case errors.Is(err, model.ErrNotSellable):
		return c.Status(409).JSON(fiber.Map{"error": err.Error(), "code": "NOT_SELLABLE"})
	case errors.Is(err, model.ErrInvalidAmount):
		return c.Status(422).JSON(fiber.Map{"error": err.Error(), "code": "INVALID_AMOUNT"})
	case errors.Is(err, model.ErrInvalidTransition):
		return c.Status(409).JSON(fiber.Map{"error": err.Error(), "code": "INVALID_TRANSITION"})
	case errors.Is(err, model.ErrPartialApplication):
		return c.Status(500).JSON(fiber.Map{"error": err.Error(), "code": "PARTIAL_APPLICATION"})
	case errors.Is(err, model.ErrIngredientInUse):
		return c.Status(409).JSON(fiber.Map{"error": err.Error(), "code": "INGREDIENT_IN_USE"})
	default:
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
}
