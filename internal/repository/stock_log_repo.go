package repository

import (
	"go-bakery-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockLogRepository is append-only: entries have no update or delete path.
type StockLogRepository interface {
	Create(tx *gorm.DB, entry *model.StockLogEntry) error
	ListByIngredient(ingredientID uuid.UUID) ([]model.StockLogEntry, error)
	// MovementByDay aggregates signed deltas into per-day inbound/outbound
	// totals for the dashboard chart.
	MovementByDay(storeID uuid.UUID, startDate, endDate string) ([]StockMovementData, error)
}

// StockMovementData is one chart bucket.
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

type stockLogRepo struct {
	db *gorm.DB
}

func NewStockLogRepo(db *gorm.DB) StockLogRepository {
	return &stockLogRepo{db}
}

func (r *stockLogRepo) Create(tx *gorm.DB, entry *model.StockLogEntry) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(entry).Error
}

func (r *stockLogRepo) ListByIngredient(ingredientID uuid.UUID) ([]model.StockLogEntry, error) {
	var entries []model.StockLogEntry
	err := r.db.Where("ingredient_id = ?", ingredientID).
		Order("timestamp ASC").
		Find(&entries).Error
	return entries, err
}

func (r *stockLogRepo) MovementByDay(storeID uuid.UUID, startDate, endDate string) ([]StockMovementData, error) {
	var results []StockMovementData

	rows, err := r.db.Model(&model.StockLogEntry{}).
		Select(`
			DATE(stock_logs.timestamp) as date,
			COALESCE(SUM(CASE WHEN change_amount > 0 THEN change_amount ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN change_amount < 0 THEN -change_amount ELSE 0 END), 0) as outbound
		`).
		Joins("JOIN ingredients ON ingredients.id = stock_logs.ingredient_id").
		Where("ingredients.store_id = ? AND stock_logs.timestamp BETWEEN ? AND ?", storeID, startDate, endDate).
		Group("DATE(stock_logs.timestamp)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		results = append(results, data)
	}
	return results, nil
}
