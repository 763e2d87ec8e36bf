package model

import (
	"time"

	"github.com/google/uuid"
)

type PurchaseOrderStatus string

const (
	PurchaseStatusRequested  PurchaseOrderStatus = "requested"
	PurchaseStatusInProgress PurchaseOrderStatus = "in_progress"
	PurchaseStatusReceived   PurchaseOrderStatus = "received"
	PurchaseStatusCancelled  PurchaseOrderStatus = "cancelled"
)

// PurchaseOrder tracks a supplier order from request to receipt.
// received and cancelled are terminal.
type PurchaseOrder struct {
	BaseModel
	StoreID         uuid.UUID           `gorm:"type:uuid;index;not null" json:"store_id"`
	SupplierName    string              `gorm:"type:varchar(255);not null" json:"supplier_name" validate:"required"`
	OrderNumber     string              `gorm:"type:varchar(100);uniqueIndex" json:"order_number" validate:"required"`
	Status          PurchaseOrderStatus `gorm:"type:varchar(20);default:'requested'" json:"status"`
	RequestedAt     time.Time           `gorm:"index;not null" json:"requested_at"`
	ExpectedArrival *time.Time          `json:"expected_arrival,omitempty"`
	ReceivedAt      *time.Time          `json:"received_at,omitempty"`
	TotalCost       int64               `gorm:"default:0" json:"total_cost"`
	Note            string              `json:"note,omitempty"`

	Items []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID" json:"items,omitempty"`
}

// IsFinal reports whether the order has reached a terminal state.
func (p *PurchaseOrder) IsFinal() bool {
	return p.Status == PurchaseStatusReceived || p.Status == PurchaseStatusCancelled
}

// PurchaseOrderItem is one supplier line item. ReceivedQty is recorded per
// line but receipt applies RequestedQty to stock by default; see the receipt
// quantity mode in config.
type PurchaseOrderItem struct {
	BaseModel
	PurchaseOrderID uuid.UUID `gorm:"type:uuid;index;not null" json:"purchase_order_id" validate:"uuid_required"`
	IngredientID    uuid.UUID `gorm:"type:uuid;index;not null" json:"ingredient_id" validate:"uuid_required"`
	Unit            string    `gorm:"type:varchar(20)" json:"unit"`
	RequestedQty    int       `gorm:"not null" json:"requested_qty" validate:"required,gt=0"`
	ReceivedQty     int       `gorm:"default:0" json:"received_qty"`
	UnitPrice       int64     `gorm:"default:0" json:"unit_price"`
	TotalPrice      int64     `gorm:"default:0" json:"total_price"`
	Note            string    `json:"note,omitempty"`

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty" validate:"-"`
}
