package service

import (
	"errors"
	"time"

	"go-bakery-ws/internal/feed"
	"go-bakery-ws/internal/model"
	"go-bakery-ws/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderService validates and commits customer orders against menu stock.
type OrderService interface {
	PlaceOrder(storeID, menuID uuid.UUID, quantity int) (*model.OrderRecord, error)
	ListOrders(storeID uuid.UUID, page, limit int) ([]model.OrderRecord, int64, error)
	TodayStats(storeID uuid.UUID) (*model.OrderStats, error)
}

type orderService struct {
	menuRepo  repository.MenuRepository
	orderRepo repository.OrderRepository
	tx        repository.TxRunner
	pub       Publisher
	now       func() time.Time
}

func NewOrderService(menuRepo repository.MenuRepository, orderRepo repository.OrderRepository, tx repository.TxRunner, pub Publisher) OrderService {
	return &orderService{
		menuRepo:  menuRepo,
		orderRepo: orderRepo,
		tx:        tx,
		pub:       pub,
		now:       time.Now,
	}
}

// PlaceOrder commits one sale as a unit: the order record insert and the
// stock decrement either both happen or neither does. The decrement is a
// conditional update whose WHERE re-validates stock and status, so two
// concurrent orders can never both drain the same units; the pre-checks
// exist only to hand back the right business error without a write attempt.
// Business failures are terminal and must not be retried.
func (s *orderService) PlaceOrder(storeID, menuID uuid.UUID, quantity int) (*model.OrderRecord, error) {
	if quantity <= 0 {
		return nil, model.ErrInvalidAmount
	}

	menu, err := s.menuRepo.FindByID(menuID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	if !menu.IsOrderable() {
		if menu.Status != model.MenuStatusSelling {
			return nil, model.ErrNotSellable
		}
		return nil, model.ErrInsufficientStock
	}
	if menu.CurrentStock < quantity {
		return nil, model.ErrInsufficientStock
	}

	// Price as read now; later price changes never reprice this order.
	totalPrice := menu.Price * int64(quantity)

	order := &model.OrderRecord{
		StoreID:    storeID,
		MenuID:     menuID,
		Quantity:   quantity,
		TotalPrice: totalPrice,
		OrderTime:  s.now(),
	}

	var (
		newStock int
		version  int64
	)
	err = s.tx.Transaction(func(tx *gorm.DB) error {
		var err error
		newStock, version, err = s.menuRepo.DecrementStock(tx, menuID, quantity)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			// Lost the race since the pre-check. Re-read to report which
			// precondition now fails.
			current, rerr := s.menuRepo.FindByID(menuID)
			if rerr != nil {
				return model.ErrNotFound
			}
			if current.Status != model.MenuStatusSelling {
				return model.ErrNotSellable
			}
			return model.ErrInsufficientStock
		}
		return s.orderRepo.Create(tx, order)
	})
	if err != nil {
		return nil, err
	}

	s.publishOrderEvents(order, newStock, version)
	return order, nil
}

// publishOrderEvents broadcasts the committed sale. The menu update carries
// the stock and row version returned by the decrement itself, so caches apply
// concurrent sales in the order the database committed them.
func (s *orderService) publishOrderEvents(order *model.OrderRecord, newStock int, version int64) {
	s.pub.Publish(feed.NewEvent("order_record", feed.ActionInsert, order.ID, order))
	s.pub.Publish(feed.NewVersionedEvent("menus", feed.ActionUpdate, order.MenuID, version, map[string]interface{}{
		"id":            order.MenuID,
		"current_stock": newStock,
	}))
}

func (s *orderService) ListOrders(storeID uuid.UUID, page, limit int) ([]model.OrderRecord, int64, error) {
	return s.orderRepo.ListByStore(storeID, page, limit)
}

func (s *orderService) TodayStats(storeID uuid.UUID) (*model.OrderStats, error) {
	return s.orderRepo.TodayStats(storeID, s.now())
}
