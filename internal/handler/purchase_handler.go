package handler

import (
	"go-bakery-ws/internal/model"
	"go-bakery-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PurchaseHandler struct {
	service service.PurchaseService
	storeID uuid.UUID
}

func NewPurchaseHandler(s service.PurchaseService, storeID uuid.UUID) *PurchaseHandler {
	return &PurchaseHandler{service: s, storeID: storeID}
}

func (h *PurchaseHandler) GetPurchaseOrders(c *fiber.Ctx) error {
	orders, err := h.service.List(h.storeID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(orders)
}

func (h *PurchaseHandler) GetPurchaseOrder(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid purchase order ID"})
	}
	order, err := h.service.Get(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

func (h *PurchaseHandler) CreatePurchaseOrder(c *fiber.Ctx) error {
	var order model.PurchaseOrder
	if err := c.BodyParser(&order); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	order.StoreID = h.storeID
	order.CreatedBy = getUserID(c)
	order.UpdatedBy = getUserID(c)

	if err := h.service.Create(&order); err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Purchase order created", "data": order})
}

type statusRequest struct {
	Status model.PurchaseOrderStatus `json:"status"`
}

func (h *PurchaseHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid purchase order ID"})
	}

	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.service.UpdateStatus(id, req.Status); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Purchase order updated"})
}

// Receive finalizes a purchase order and applies its items to stock.
func (h *PurchaseHandler) Receive(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid purchase order ID"})
	}

	order, err := h.service.Receive(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Purchase order received", "data": order})
}

func (h *PurchaseHandler) AddItem(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid purchase order ID"})
	}

	var item model.PurchaseOrderItem
	if err := c.BodyParser(&item); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	item.PurchaseOrderID = id
	item.CreatedBy = getUserID(c)

	if err := h.service.AddItem(&item); err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Item added", "data": item})
}

func (h *PurchaseHandler) UpdateItem(c *fiber.Ctx) error {
	orderID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid purchase order ID"})
	}
	itemID, err := parseUUID(c.Params("itemId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	var item model.PurchaseOrderItem
	if err := c.BodyParser(&item); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	item.BaseModel.ID = itemID
	item.PurchaseOrderID = orderID
	item.UpdatedBy = getUserID(c)

	if err := h.service.UpdateItem(&item); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Item updated", "data": item})
}
