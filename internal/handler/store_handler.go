package handler

import (
	"go-bakery-ws/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type StoreHandler struct {
	storeRepo repository.StoreRepository
	storeID   uuid.UUID
}

func NewStoreHandler(repo repository.StoreRepository, storeID uuid.UUID) *StoreHandler {
	return &StoreHandler{storeRepo: repo, storeID: storeID}
}

func (h *StoreHandler) GetStore(c *fiber.Ctx) error {
	store, err := h.storeRepo.FindByID(h.storeID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Store not found"})
	}
	return c.JSON(store)
}

// UpdateState toggles the open/closed flag shown on the landing page.
func (h *StoreHandler) UpdateState(c *fiber.Ctx) error {
	var req struct {
		CurState bool `json:"cur_state"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.storeRepo.UpdateState(h.storeID, req.CurState); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update store state"})
	}
	return c.JSON(fiber.Map{"message": "Store state updated", "cur_state": req.CurState})
}
