package model

// Store is a single bakery location. The deployment is single-tenant today
// (one configured store id), but the schema stays store-scoped so multi-store
// support is a configuration change.
type Store struct {
	BaseModel
	Name        string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	Address     string `gorm:"type:varchar(500)" json:"address"`
	OpenTime    string `gorm:"type:varchar(10)" json:"open_time"`
	CloseTime   string `gorm:"type:varchar(10)" json:"close_time"`
	CurState    bool   `gorm:"default:true" json:"cur_state"` // open/closed toggle
}
