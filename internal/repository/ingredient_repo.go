package repository

import (
	"go-bakery-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IngredientRepository interface {
	Create(tx *gorm.DB, ingredient *model.Ingredient) error
	FindAll(storeID uuid.UUID) ([]model.Ingredient, error)
	FindByID(id uuid.UUID) (*model.Ingredient, error)
	Update(ingredient *model.Ingredient) error
	Delete(id uuid.UUID) error
	// AdjustStock applies a signed delta atomically at the storage layer
	// (current_stock = current_stock + delta, the same shape as the
	// increment_ingredient_stock database routine). The row version is
	// bumped in the same UPDATE, and the new balance and version are
	// returned. gorm.ErrRecordNotFound when the ingredient is missing.
	AdjustStock(tx *gorm.DB, id uuid.UUID, delta int) (int, int64, error)
	CountRecipeRefs(id uuid.UUID) (int64, error)
}

type ingredientRepo struct {
	db *gorm.DB
}

func NewIngredientRepo(db *gorm.DB) IngredientRepository {
	return &ingredientRepo{db}
}

func (r *ingredientRepo) Create(tx *gorm.DB, ingredient *model.Ingredient) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(ingredient).Error
}

func (r *ingredientRepo) FindAll(storeID uuid.UUID) ([]model.Ingredient, error) {
	var ingredients []model.Ingredient
	err := r.db.Where("store_id = ?", storeID).Order("name ASC").Find(&ingredients).Error
	return ingredients, err
}

func (r *ingredientRepo) FindByID(id uuid.UUID) (*model.Ingredient, error) {
	var ingredient model.Ingredient
	err := r.db.First(&ingredient, "id = ?", id).Error
	return &ingredient, err
}

func (r *ingredientRepo) Update(ingredient *model.Ingredient) error {
	return r.db.Save(ingredient).Error
}

func (r *ingredientRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&model.Ingredient{}, "id = ?", id).Error
}

func (r *ingredientRepo) AdjustStock(tx *gorm.DB, id uuid.UUID, delta int) (int, int64, error) {
	if tx == nil {
		tx = r.db
	}
	var row struct {
		CurrentStock int
		Version      int64
	}
	res := tx.Raw(
		`UPDATE ingredients
		 SET current_stock = current_stock + ?, version = version + 1, updated_at = NOW()
		 WHERE id = ? AND deleted_at IS NULL
		 RETURNING current_stock, version`,
		delta, id,
	).Scan(&row)
	if res.Error != nil {
		return 0, 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, 0, gorm.ErrRecordNotFound
	}
	return row.CurrentStock, row.Version, nil
}

func (r *ingredientRepo) CountRecipeRefs(id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.MenuIngredient{}).Where("ingredient_id = ?", id).Count(&count).Error
	return count, err
}
