package handler

import (
	"time"

	"go-bakery-ws/internal/model"
	"go-bakery-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IngredientHandler struct {
	service service.IngredientService
	ledger  service.LedgerService
	storeID uuid.UUID
}

func NewIngredientHandler(s service.IngredientService, ledger service.LedgerService, storeID uuid.UUID) *IngredientHandler {
	return &IngredientHandler{service: s, ledger: ledger, storeID: storeID}
}

func (h *IngredientHandler) GetIngredients(c *fiber.Ctx) error {
	ingredients, err := h.service.List(h.storeID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(ingredients)
}

func (h *IngredientHandler) GetRestockList(c *fiber.Ctx) error {
	ingredients, err := h.service.RestockList(h.storeID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(ingredients)
}

func (h *IngredientHandler) CreateIngredient(c *fiber.Ctx) error {
	var ingredient model.Ingredient
	if err := c.BodyParser(&ingredient); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	ingredient.StoreID = h.storeID

	if err := h.service.Create(&ingredient, getUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Ingredient created", "data": ingredient})
}

func (h *IngredientHandler) UpdateIngredient(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid ingredient ID"})
	}

	var req model.Ingredient
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	updated, err := h.service.Update(id, &req, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Ingredient updated", "data": updated})
}

func (h *IngredientHandler) DeleteIngredient(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid ingredient ID"})
	}
	if err := h.service.Delete(id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Ingredient deleted"})
}

// AppendStockLog records a manual ledger entry (production consumption, sale
// adjustment, correction).
func (h *IngredientHandler) AppendStockLog(c *fiber.Ctx) error {
	var in service.AppendEntryInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	entry, err := h.ledger.AppendEntry(in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Stock log recorded", "data": entry})
}

func (h *IngredientHandler) GetStockLogs(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid ingredient ID"})
	}
	entries, err := h.ledger.History(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entries)
}

// GetBalanceHistory returns the running balance series for the stock chart.
func (h *IngredientHandler) GetBalanceHistory(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid ingredient ID"})
	}

	var asOf time.Time
	if raw := c.Query("as_of"); raw != "" {
		asOf, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "as_of must be RFC3339"})
		}
	}

	seq, err := h.ledger.ProjectedBalance(id, asOf)
	if err != nil {
		return respondError(c, err)
	}

	points := []service.BalancePoint{}
	for p := range seq {
		points = append(points, p)
	}
	return c.JSON(points)
}
