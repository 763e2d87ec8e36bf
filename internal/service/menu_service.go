package service

import (
	"errors"
	"fmt"
	"log"

	"go-bakery-ws/internal/feed"
	"go-bakery-ws/internal/model"
	"go-bakery-ws/internal/repository"
	"go-bakery-ws/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MenuService owns the menu catalog. It never writes current_stock directly:
// decrements belong to the order processor and increments to ApplyProduction.
type MenuService interface {
	Create(menu *model.Menu, updatedBy string) error
	Update(id uuid.UUID, req *model.Menu, updatedBy string) (*model.Menu, error)
	Delete(id uuid.UUID) error
	List(storeID uuid.UUID) ([]model.Menu, error)
	Get(id uuid.UUID) (*model.Menu, error)

	SetRecipe(menuID uuid.UUID, lines []model.MenuIngredient) error
	GetRecipe(menuID uuid.UUID) ([]model.MenuIngredient, error)

	// ApplyProduction records finished units arriving from the production
	// pipeline: menu stock up, an update_lists row for the dashboard, and
	// the change feed event.
	ApplyProduction(menuID uuid.UUID, quantity int) error
}

type menuService struct {
	menuRepo       repository.MenuRepository
	updateListRepo repository.UpdateListRepository
	tx             repository.TxRunner
	pub            Publisher
}

func NewMenuService(menuRepo repository.MenuRepository, ulRepo repository.UpdateListRepository, tx repository.TxRunner, pub Publisher) MenuService {
	return &menuService{
		menuRepo:       menuRepo,
		updateListRepo: ulRepo,
		tx:             tx,
		pub:            pub,
	}
}

func (s *menuService) Create(menu *model.Menu, updatedBy string) error {
	if errs := validator.ValidateStruct(menu); len(errs) > 0 {
		first := errs[0]
		return fmt.Errorf("validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}
	if menu.Status == "" {
		menu.Status = model.MenuStatusSelling
	}
	menu.Version = 1
	menu.CreatedBy = updatedBy
	menu.UpdatedBy = updatedBy

	if err := s.menuRepo.Create(menu); err != nil {
		return err
	}
	s.pub.Publish(feed.NewVersionedEvent("menus", feed.ActionInsert, menu.ID, menu.Version, menu))
	return nil
}

// Update changes catalog fields (name, price, status, photo, description).
// Stock is deliberately not taken from the request body.
func (s *menuService) Update(id uuid.UUID, req *model.Menu, updatedBy string) (*model.Menu, error) {
	menu, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	menu.Name = req.Name
	menu.Price = req.Price
	menu.Status = req.Status
	menu.Photo = req.Photo
	menu.Description = req.Description
	menu.UpdatedBy = updatedBy
	menu.Version++

	if err := s.menuRepo.Update(menu); err != nil {
		return nil, err
	}
	s.pub.Publish(feed.NewVersionedEvent("menus", feed.ActionUpdate, menu.ID, menu.Version, menu))
	return menu, nil
}

func (s *menuService) Delete(id uuid.UUID) error {
	menu, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := s.menuRepo.Delete(id); err != nil {
		return err
	}
	// Published above the last written row version so the delete is never
	// mistaken for a stale event.
	s.pub.Publish(feed.NewVersionedEvent("menus", feed.ActionDelete, id, menu.Version+1, nil))
	return nil
}

func (s *menuService) List(storeID uuid.UUID) ([]model.Menu, error) {
	return s.menuRepo.FindAll(storeID)
}

func (s *menuService) Get(id uuid.UUID) (*model.Menu, error) {
	menu, err := s.menuRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return menu, nil
}

func (s *menuService) SetRecipe(menuID uuid.UUID, lines []model.MenuIngredient) error {
	if _, err := s.Get(menuID); err != nil {
		return err
	}
	for i := range lines {
		lines[i].MenuID = menuID
		if errs := validator.ValidateStruct(&lines[i]); len(errs) > 0 {
			first := errs[0]
			return fmt.Errorf("validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
		}
	}
	return s.menuRepo.ReplaceRecipe(menuID, lines)
}

func (s *menuService) GetRecipe(menuID uuid.UUID) ([]model.MenuIngredient, error) {
	if _, err := s.Get(menuID); err != nil {
		return nil, err
	}
	return s.menuRepo.FindRecipe(menuID)
}

func (s *menuService) ApplyProduction(menuID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return model.ErrInvalidAmount
	}

	var (
		newStock int
		version  int64
	)
	err := s.tx.Transaction(func(tx *gorm.DB) error {
		var err error
		newStock, version, err = s.menuRepo.IncrementStock(tx, menuID, quantity)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.ErrNotFound
		}
		return err
	})
	if err != nil {
		return err
	}

	// The update_lists row is display history, not part of the stock unit
	// of work; a failure must not undo the committed increment.
	if err := s.updateListRepo.Create(&model.UpdateList{MenuID: menuID, AddedQuantity: quantity}); err != nil {
		log.Printf("production history write failed for menu %s: %v", menuID, err)
	}

	s.pub.Publish(feed.NewVersionedEvent("menus", feed.ActionUpdate, menuID, version, map[string]interface{}{
		"id":            menuID,
		"current_stock": newStock,
	}))
	return nil
}
