package repository

import (
	"go-bakery-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StoreRepository interface {
	FindByID(id uuid.UUID) (*model.Store, error)
	Create(store *model.Store) error
	Update(store *model.Store) error
	UpdateState(id uuid.UUID, open bool) error
}

type storeRepo struct {
	db *gorm.DB
}

func NewStoreRepo(db *gorm.DB) StoreRepository {
	return &storeRepo{db}
}

func (r *storeRepo) FindByID(id uuid.UUID) (*model.Store, error) {
	var store model.Store
	err := r.db.First(&store, "id = ?", id).Error
	return &store, err
}

func (r *storeRepo) Create(store *model.Store) error {
	return r.db.Create(store).Error
}

func (r *storeRepo) Update(store *model.Store) error {
	return r.db.Save(store).Error
}

func (r *storeRepo) UpdateState(id uuid.UUID, open bool) error {
	return r.db.Model(&model.Store{}).Where("id = ?", id).Update("cur_state", open).Error
}
