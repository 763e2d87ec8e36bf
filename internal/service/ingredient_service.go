package service

import (
	"errors"
	"fmt"
	"time"

	"go-bakery-ws/internal/feed"
	"go-bakery-ws/internal/model"
	"go-bakery-ws/internal/repository"
	"go-bakery-ws/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IngredientService manages the raw-material catalog. Stock itself belongs to
// the ledger; the only stock write here is the initial correction entry when
// an ingredient is created with units already on hand, so the ledger-sum
// invariant holds from the first row.
type IngredientService interface {
	Create(ingredient *model.Ingredient, updatedBy string) error
	Update(id uuid.UUID, req *model.Ingredient, updatedBy string) (*model.Ingredient, error)
	Delete(id uuid.UUID) error
	List(storeID uuid.UUID) ([]model.Ingredient, error)
	Get(id uuid.UUID) (*model.Ingredient, error)
	// RestockList returns ingredients at or near the reorder threshold,
	// using the dashboard's warning margin (threshold * 1.2).
	RestockList(storeID uuid.UUID) ([]model.Ingredient, error)
}

type ingredientService struct {
	ingredientRepo repository.IngredientRepository
	logRepo        repository.StockLogRepository
	tx             repository.TxRunner
	pub            Publisher
}

func NewIngredientService(iRepo repository.IngredientRepository, lRepo repository.StockLogRepository, tx repository.TxRunner, pub Publisher) IngredientService {
	return &ingredientService{
		ingredientRepo: iRepo,
		logRepo:        lRepo,
		tx:             tx,
		pub:            pub,
	}
}

func (s *ingredientService) Create(ingredient *model.Ingredient, updatedBy string) error {
	if errs := validator.ValidateStruct(ingredient); len(errs) > 0 {
		first := errs[0]
		return fmt.Errorf("validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}
	ingredient.Version = 1
	ingredient.CreatedBy = updatedBy
	ingredient.UpdatedBy = updatedBy

	initialStock := ingredient.CurrentStock
	var entry *model.StockLogEntry

	err := s.tx.Transaction(func(tx *gorm.DB) error {
		if err := s.ingredientRepo.Create(tx, ingredient); err != nil {
			return err
		}
		if initialStock != 0 {
			at := ingredient.CreatedAt
			if at.IsZero() {
				at = time.Now()
			}
			entry = &model.StockLogEntry{
				IngredientID: ingredient.ID,
				ChangeType:   model.ChangeCorrection,
				ChangeAmount: initialStock,
				Timestamp:    at,
				Note:         "initial stock",
			}
			return s.logRepo.Create(tx, entry)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.pub.Publish(feed.NewVersionedEvent("ingredients", feed.ActionInsert, ingredient.ID, ingredient.Version, ingredient))
	if entry != nil {
		s.pub.Publish(feed.NewEvent("stock_logs", feed.ActionInsert, entry.ID, entry))
	}
	return nil
}

// Update changes catalog fields; current_stock is ledger-owned and ignored
// here.
func (s *ingredientService) Update(id uuid.UUID, req *model.Ingredient, updatedBy string) (*model.Ingredient, error) {
	ingredient, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	ingredient.Name = req.Name
	ingredient.Category = req.Category
	ingredient.Unit = req.Unit
	ingredient.MinStockLevel = req.MinStockLevel
	ingredient.UpdatedBy = updatedBy
	ingredient.Version++

	if err := s.ingredientRepo.Update(ingredient); err != nil {
		return nil, err
	}
	s.pub.Publish(feed.NewVersionedEvent("ingredients", feed.ActionUpdate, ingredient.ID, ingredient.Version, ingredient))
	return ingredient, nil
}

func (s *ingredientService) Delete(id uuid.UUID) error {
	ingredient, err := s.Get(id)
	if err != nil {
		return err
	}
	refs, err := s.ingredientRepo.CountRecipeRefs(id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return model.ErrIngredientInUse
	}
	if err := s.ingredientRepo.Delete(id); err != nil {
		return err
	}
	// Published above the last written row version so the delete is never
	// mistaken for a stale event.
	s.pub.Publish(feed.NewVersionedEvent("ingredients", feed.ActionDelete, id, ingredient.Version+1, nil))
	return nil
}

func (s *ingredientService) List(storeID uuid.UUID) ([]model.Ingredient, error) {
	return s.ingredientRepo.FindAll(storeID)
}

func (s *ingredientService) Get(id uuid.UUID) (*model.Ingredient, error) {
	ingredient, err := s.ingredientRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return ingredient, nil
}

func (s *ingredientService) RestockList(storeID uuid.UUID) ([]model.Ingredient, error) {
	ingredients, err := s.ingredientRepo.FindAll(storeID)
	if err != nil {
		return nil, err
	}
	var need []model.Ingredient
	for _, ing := range ingredients {
		if float64(ing.CurrentStock) < float64(ing.MinStockLevel)*1.2 {
			need = append(need, ing)
		}
	}
	return need, nil
}
