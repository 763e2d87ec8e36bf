package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderRecord is an immutable sale record. TotalPrice is frozen at order time
// (menu price * quantity as read when the order was placed); later menu price
// changes never reprice existing orders.
type OrderRecord struct {
	BaseModel
	StoreID    uuid.UUID `gorm:"type:uuid;index;not null" json:"store_id"`
	MenuID     uuid.UUID `gorm:"type:uuid;index;not null" json:"menu_id" validate:"uuid_required"`
	Quantity   int       `gorm:"not null" json:"quantity" validate:"required,gt=0"`
	TotalPrice int64     `gorm:"not null" json:"total_price"`
	OrderTime  time.Time `gorm:"index;not null" json:"order_time"`

	Menu *Menu `gorm:"foreignKey:MenuID" json:"menu,omitempty" validate:"-"`
}

// TableName keeps the persisted table on the same key the change feed
// publishes under.
func (OrderRecord) TableName() string { return "order_record" }

// OrderStats is the today-at-a-glance aggregate shown on the landing page.
type OrderStats struct {
	TotalSales    int64 `json:"total_sales"`
	OrderCount    int64 `json:"order_count"`
	TotalQuantity int64 `json:"total_quantity"`
}
