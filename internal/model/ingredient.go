package model

import "github.com/google/uuid"

// Ingredient is a raw material tracked by the stock ledger. CurrentStock is a
// denormalized projection of the ledger sum for this ingredient; every mutation
// must go through the ledger service so the two never drift.
type Ingredient struct {
	BaseModel
	StoreID       uuid.UUID `gorm:"type:uuid;index;not null" json:"store_id"`
	Name          string    `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Category      string    `gorm:"type:varchar(100)" json:"category"`
	Unit          string    `gorm:"type:varchar(20)" json:"unit" validate:"required"`
	CurrentStock  int       `gorm:"default:0" json:"current_stock"`
	MinStockLevel int       `gorm:"default:0" json:"min_stock_level"`

	// Version counts writes to this row; ledger appends bump it in the same
	// UPDATE that adjusts current_stock, and feed events carry it.
	Version int64 `gorm:"default:1" json:"version"`

	Logs []StockLogEntry `gorm:"foreignKey:IngredientID" json:"logs,omitempty"`
}

// NeedsRestock reports whether the ingredient is at or past the reorder
// warning threshold. The threshold is advisory only; it never blocks a
// ledger append.
func (i *Ingredient) NeedsRestock() bool {
	return i.CurrentStock < i.MinStockLevel
}
