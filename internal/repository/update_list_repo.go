package repository

import (
	"go-bakery-ws/internal/model"

	"gorm.io/gorm"
)

type UpdateListRepository interface {
	FindAll() ([]model.UpdateList, error)
	Create(entry *model.UpdateList) error
}

type updateListRepo struct {
	db *gorm.DB
}

func NewUpdateListRepo(db *gorm.DB) UpdateListRepository {
	return &updateListRepo{db}
}

func (r *updateListRepo) FindAll() ([]model.UpdateList, error) {
	var lists []model.UpdateList
	err := r.db.Preload("Menu").Order("created_at DESC").Find(&lists).Error
	return lists, err
}

func (r *updateListRepo) Create(entry *model.UpdateList) error {
	return r.db.Create(entry).Error
}
