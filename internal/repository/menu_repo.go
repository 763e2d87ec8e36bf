package repository

import (
	"go-bakery-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MenuRepository interface {
	Create(menu *model.Menu) error
	FindAll(storeID uuid.UUID) ([]model.Menu, error)
	FindByID(id uuid.UUID) (*model.Menu, error)
	Update(menu *model.Menu) error
	Delete(id uuid.UUID) error
	// DecrementStock is the conditional decrement behind order placement:
	// it only fires while the menu is selling and holds at least qty units,
	// and the guard runs in the same statement as the write. It returns the
	// remaining stock and the row version written by that statement;
	// gorm.ErrRecordNotFound means the precondition failed under the
	// committed state.
	DecrementStock(tx *gorm.DB, id uuid.UUID, qty int) (int, int64, error)
	IncrementStock(tx *gorm.DB, id uuid.UUID, qty int) (int, int64, error)

	ReplaceRecipe(menuID uuid.UUID, lines []model.MenuIngredient) error
	FindRecipe(menuID uuid.UUID) ([]model.MenuIngredient, error)
}

type menuRepo struct {
	db *gorm.DB
}

func NewMenuRepo(db *gorm.DB) MenuRepository {
	return &menuRepo{db}
}

func (r *menuRepo) Create(menu *model.Menu) error {
	return r.db.Create(menu).Error
}

func (r *menuRepo) FindAll(storeID uuid.UUID) ([]model.Menu, error) {
	var menus []model.Menu
	err := r.db.Where("store_id = ?", storeID).Order("created_at ASC").Find(&menus).Error
	return menus, err
}

func (r *menuRepo) FindByID(id uuid.UUID) (*model.Menu, error) {
	var menu model.Menu
	err := r.db.First(&menu, "id = ?", id).Error
	return &menu, err
}

func (r *menuRepo) Update(menu *model.Menu) error {
	return r.db.Save(menu).Error
}

func (r *menuRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&model.Menu{}, "id = ?", id).Error
}

func (r *menuRepo) DecrementStock(tx *gorm.DB, id uuid.UUID, qty int) (int, int64, error) {
	if tx == nil {
		tx = r.db
	}
	var row struct {
		CurrentStock int
		Version      int64
	}
	res := tx.Raw(
		`UPDATE menus
		 SET current_stock = current_stock - ?, version = version + 1, updated_at = NOW()
		 WHERE id = ? AND status = ? AND current_stock >= ? AND deleted_at IS NULL
		 RETURNING current_stock, version`,
		qty, id, model.MenuStatusSelling, qty,
	).Scan(&row)
	if res.Error != nil {
		return 0, 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, 0, gorm.ErrRecordNotFound
	}
	return row.CurrentStock, row.Version, nil
}

func (r *menuRepo) IncrementStock(tx *gorm.DB, id uuid.UUID, qty int) (int, int64, error) {
	if tx == nil {
		tx = r.db
	}
	var row struct {
		CurrentStock int
		Version      int64
	}
	res := tx.Raw(
		`UPDATE menus
		 SET current_stock = current_stock + ?, version = version + 1, updated_at = NOW()
		 WHERE id = ? AND deleted_at IS NULL
		 RETURNING current_stock, version`,
		qty, id,
	).Scan(&row)
	if res.Error != nil {
		return 0, 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, 0, gorm.ErrRecordNotFound
	}
	return row.CurrentStock, row.Version, nil
}

// ReplaceRecipe swaps all recipe lines for a menu in one transaction.
func (r *menuRepo) ReplaceRecipe(menuID uuid.UUID, lines []model.MenuIngredient) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("menu_id = ?", menuID).Delete(&model.MenuIngredient{}).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].MenuID = menuID
			if err := tx.Create(&lines[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *menuRepo) FindRecipe(menuID uuid.UUID) ([]model.MenuIngredient, error) {
	var lines []model.MenuIngredient
	err := r.db.Preload("Ingredient").Where("menu_id = ?", menuID).Find(&lines).Error
	return lines, err
}
