package service

import (
	"time"

	"go-bakery-ws/internal/model"
	"go-bakery-ws/internal/repository"

	"github.com/google/uuid"
)

type DashboardService interface {
	TodayStats(storeID uuid.UUID) (*model.OrderStats, error)
	StockMovement(storeID uuid.UUID, days int) ([]repository.StockMovementData, error)
	LowStockCount(storeID uuid.UUID) (int, error)
}

type dashboardService struct {
	orderRepo      repository.OrderRepository
	logRepo        repository.StockLogRepository
	ingredientRepo repository.IngredientRepository
	now            func() time.Time
}

func NewDashboardService(oRepo repository.OrderRepository, lRepo repository.StockLogRepository, iRepo repository.IngredientRepository) DashboardService {
	return &dashboardService{
		orderRepo:      oRepo,
		logRepo:        lRepo,
		ingredientRepo: iRepo,
		now:            time.Now,
	}
}

func (s *dashboardService) TodayStats(storeID uuid.UUID) (*model.OrderStats, error) {
	return s.orderRepo.TodayStats(storeID, s.now())
}

func (s *dashboardService) StockMovement(storeID uuid.UUID, days int) ([]repository.StockMovementData, error) {
	if days <= 0 {
		days = 7
	}
	end := s.now()
	start := end.AddDate(0, 0, -days)
	return s.logRepo.MovementByDay(storeID, start.Format("2006-01-02"), end.Format("2006-01-02 15:04:05"))
}

func (s *dashboardService) LowStockCount(storeID uuid.UUID) (int, error) {
	ingredients, err := s.ingredientRepo.FindAll(storeID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, ing := range ingredients {
		if ing.NeedsRestock() {
			count++
		}
	}
	return count, nil
}
