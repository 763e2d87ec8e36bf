package model

import "github.com/google/uuid"

// UpdateList records an out-of-band production addition for a menu (the "make
// bread" pipeline writes these alongside the stock increment). The dashboard
// reads them to show what was recently baked; the core never writes them.
type UpdateList struct {
	BaseModel
	MenuID        uuid.UUID `gorm:"type:uuid;index;not null" json:"menu_id"`
	AddedQuantity int       `gorm:"not null" json:"added_quantity"`

	Menu *Menu `gorm:"foreignKey:MenuID" json:"menu,omitempty"`
}
