package repository

import (
	"time"

	"go-bakery-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(tx *gorm.DB, order *model.OrderRecord) error
	// ListByStore returns one page of orders, newest first, with the menu
	// preloaded for display, plus the total count for paging.
	ListByStore(storeID uuid.UUID, page, limit int) ([]model.OrderRecord, int64, error)
	TodayStats(storeID uuid.UUID, now time.Time) (*model.OrderStats, error)
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db}
}

func (r *orderRepo) Create(tx *gorm.DB, order *model.OrderRecord) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(order).Error
}

func (r *orderRepo) ListByStore(storeID uuid.UUID, page, limit int) ([]model.OrderRecord, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 25
	}

	var total int64
	q := r.db.Model(&model.OrderRecord{}).Where("store_id = ?", storeID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []model.OrderRecord
	err := r.db.Preload("Menu").
		Where("store_id = ?", storeID).
		Order("order_time DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&orders).Error
	return orders, total, err
}

func (r *orderRepo) TodayStats(storeID uuid.UUID, now time.Time) (*model.OrderStats, error) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1)

	var stats model.OrderStats
	err := r.db.Model(&model.OrderRecord{}).
		Select(`
			COALESCE(SUM(total_price), 0) as total_sales,
			COUNT(*) as order_count,
			COALESCE(SUM(quantity), 0) as total_quantity
		`).
		Where("store_id = ? AND order_time >= ? AND order_time < ?", storeID, start, end).
		Scan(&stats).Error
	return &stats, err
}
