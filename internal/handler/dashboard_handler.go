package handler

import (
	"go-bakery-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type DashboardHandler struct {
	service service.DashboardService
	storeID uuid.UUID
}

func NewDashboardHandler(s service.DashboardService, storeID uuid.UUID) *DashboardHandler {
	return &DashboardHandler{service: s, storeID: storeID}
}

func (h *DashboardHandler) GetTodayStats(c *fiber.Ctx) error {
	stats, err := h.service.TodayStats(h.storeID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(stats)
}

func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	days := c.QueryInt("days", 7)
	data, err := h.service.StockMovement(h.storeID, days)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(data)
}

func (h *DashboardHandler) GetLowStockCount(c *fiber.Ctx) error {
	count, err := h.service.LowStockCount(h.storeID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"low_stock_count": count})
}
