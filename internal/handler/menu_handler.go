package handler

import (
	"go-bakery-ws/internal/model"
	"go-bakery-ws/internal/repository"
	"go-bakery-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type MenuHandler struct {
	service        service.MenuService
	updateListRepo repository.UpdateListRepository
	storeID        uuid.UUID
}

func NewMenuHandler(s service.MenuService, ulRepo repository.UpdateListRepository, storeID uuid.UUID) *MenuHandler {
	return &MenuHandler{service: s, updateListRepo: ulRepo, storeID: storeID}
}

func (h *MenuHandler) GetMenus(c *fiber.Ctx) error {
	menus, err := h.service.List(h.storeID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(menus)
}

func (h *MenuHandler) GetMenu(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid menu ID"})
	}
	menu, err := h.service.Get(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(menu)
}

func (h *MenuHandler) CreateMenu(c *fiber.Ctx) error {
	var menu model.Menu
	if err := c.BodyParser(&menu); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	menu.StoreID = h.storeID

	if err := h.service.Create(&menu, getUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Menu created", "data": menu})
}

func (h *MenuHandler) UpdateMenu(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid menu ID"})
	}

	var req model.Menu
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	updated, err := h.service.Update(id, &req, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Menu updated", "data": updated})
}

func (h *MenuHandler) DeleteMenu(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid menu ID"})
	}
	if err := h.service.Delete(id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Menu deleted"})
}

func (h *MenuHandler) GetRecipe(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid menu ID"})
	}
	lines, err := h.service.GetRecipe(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(lines)
}

func (h *MenuHandler) SetRecipe(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid menu ID"})
	}
	var lines []model.MenuIngredient
	if err := c.BodyParser(&lines); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if err := h.service.SetRecipe(id, lines); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Recipe updated"})
}

// ApplyProduction is the callback the production pipeline hits once a batch
// of finished units exists.
func (h *MenuHandler) ApplyProduction(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid menu ID"})
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.service.ApplyProduction(id, req.Quantity); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Production applied"})
}

// GetUpdateLists lists recent production additions for the dashboard.
func (h *MenuHandler) GetUpdateLists(c *fiber.Ctx) error {
	lists, err := h.updateListRepo.FindAll()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(lists)
}
