package model

import "github.com/google/uuid"

const (
	MenuStatusSelling = "selling"
	MenuStatusSoldOut = "sold_out"
)

// Menu is a finished product sold per unit. CurrentStock counts pre-baked
// units and is tracked independently from ingredient stock: it is decremented
// by the order processor and incremented by production events. Status is
// informational and independently settable (a menu can be marked sold out for
// quality reasons while physical stock remains).
type Menu struct {
	BaseModel
	StoreID      uuid.UUID `gorm:"type:uuid;index;not null" json:"store_id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Price        int64     `gorm:"not null" json:"price" validate:"gte=0"`
	CurrentStock int       `gorm:"default:0" json:"current_stock"`
	Status       string    `gorm:"type:varchar(30);default:'selling'" json:"status"`
	Photo        string    `gorm:"type:text" json:"photo,omitempty"`
	Description  string    `json:"description,omitempty"`

	// Version counts writes to this row. Stock mutations bump it in the same
	// UPDATE that changes current_stock, and feed events carry it so event
	// order for a row always follows commit order.
	Version int64 `gorm:"default:1" json:"version"`

	Ingredients []MenuIngredient `gorm:"foreignKey:MenuID" json:"ingredients,omitempty"`
}

// IsOrderable is the sellability predicate: "effectively available" means
// selling status with stock on hand. The order path checks this first, then
// the requested quantity against stock.
func (m *Menu) IsOrderable() bool {
	return m.Status == MenuStatusSelling && m.CurrentStock > 0
}

// MenuIngredient is one recipe line: the amount of an ingredient consumed per
// unit of the menu item produced. Changing a line never rewrites past ledger
// entries.
type MenuIngredient struct {
	BaseModel
	MenuID       uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_menu_ingredient;not null" json:"menu_id" validate:"uuid_required"`
	IngredientID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_menu_ingredient;not null" json:"ingredient_id" validate:"uuid_required"`
	Quantity     int       `gorm:"not null" json:"quantity" validate:"required,gt=0"`

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty" validate:"-"`
}
