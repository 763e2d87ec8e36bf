package model

import (
	"time"

	"github.com/google/uuid"
)

type ChangeType string

const (
	ChangeProduction      ChangeType = "production"
	ChangeSale            ChangeType = "sale"
	ChangePurchaseReceipt ChangeType = "purchase_receipt"
	ChangeCorrection      ChangeType = "correction"
)

// StockLogEntry is one signed stock delta for an ingredient. Entries are
// append-only: once written they are never updated or deleted, and the running
// sum of ChangeAmount up to any timestamp is the ingredient's balance at that
// point.
type StockLogEntry struct {
	BaseModel
	IngredientID  uuid.UUID  `gorm:"type:uuid;index;not null" json:"ingredient_id" validate:"uuid_required"`
	ChangeType    ChangeType `gorm:"type:varchar(20);not null" json:"change_type" validate:"required,oneof=production sale purchase_receipt correction"`
	ChangeAmount  int        `gorm:"not null" json:"change_amount"`
	RelatedMenuID *uuid.UUID `gorm:"type:uuid" json:"related_menu_id,omitempty"`
	Timestamp     time.Time  `gorm:"index;not null" json:"timestamp"`
	Note          string     `json:"note,omitempty"`

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty" validate:"-"`
}

// TableName keeps the persisted table on the same key the change feed
// publishes under.
func (StockLogEntry) TableName() string { return "stock_logs" }
