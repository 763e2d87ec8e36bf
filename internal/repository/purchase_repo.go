package repository

import (
	"time"

	"go-bakery-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PurchaseOrderRepository interface {
	Create(order *model.PurchaseOrder) error
	FindAll(storeID uuid.UUID) ([]model.PurchaseOrder, error)
	FindByID(id uuid.UUID) (*model.PurchaseOrder, error)
	Update(order *model.PurchaseOrder) error
	// UpdateStatus moves a non-terminal order to the given status. The
	// terminal-state guard runs in the same statement as the write, so a
	// concurrent receive and cancel cannot both land.
	UpdateStatus(tx *gorm.DB, id uuid.UUID, status model.PurchaseOrderStatus, receivedAt *time.Time) (int64, error)
	ListItems(tx *gorm.DB, orderID uuid.UUID) ([]model.PurchaseOrderItem, error)
	CreateItem(item *model.PurchaseOrderItem) error
	UpdateItem(item *model.PurchaseOrderItem) error
	FindItemByID(id uuid.UUID) (*model.PurchaseOrderItem, error)
}

type purchaseRepo struct {
	db *gorm.DB
}

func NewPurchaseOrderRepo(db *gorm.DB) PurchaseOrderRepository {
	return &purchaseRepo{db}
}

func (r *purchaseRepo) Create(order *model.PurchaseOrder) error {
	return r.db.Create(order).Error
}

func (r *purchaseRepo) FindAll(storeID uuid.UUID) ([]model.PurchaseOrder, error) {
	var orders []model.PurchaseOrder
	err := r.db.Preload("Items").
		Where("store_id = ?", storeID).
		Order("requested_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *purchaseRepo) FindByID(id uuid.UUID) (*model.PurchaseOrder, error) {
	var order model.PurchaseOrder
	err := r.db.Preload("Items").First(&order, "id = ?", id).Error
	return &order, err
}

func (r *purchaseRepo) Update(order *model.PurchaseOrder) error {
	return r.db.Save(order).Error
}

func (r *purchaseRepo) UpdateStatus(tx *gorm.DB, id uuid.UUID, status model.PurchaseOrderStatus, receivedAt *time.Time) (int64, error) {
	if tx == nil {
		tx = r.db
	}
	updates := map[string]interface{}{"status": status}
	if receivedAt != nil {
		updates["received_at"] = *receivedAt
	}
	res := tx.Model(&model.PurchaseOrder{}).
		Where("id = ? AND status NOT IN ?", id, []model.PurchaseOrderStatus{
			model.PurchaseStatusReceived,
			model.PurchaseStatusCancelled,
		}).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *purchaseRepo) ListItems(tx *gorm.DB, orderID uuid.UUID) ([]model.PurchaseOrderItem, error) {
	if tx == nil {
		tx = r.db
	}
	var items []model.PurchaseOrderItem
	err := tx.Where("purchase_order_id = ?", orderID).Order("created_at ASC").Find(&items).Error
	return items, err
}

func (r *purchaseRepo) CreateItem(item *model.PurchaseOrderItem) error {
	return r.db.Create(item).Error
}

func (r *purchaseRepo) UpdateItem(item *model.PurchaseOrderItem) error {
	return r.db.Save(item).Error
}

func (r *purchaseRepo) FindItemByID(id uuid.UUID) (*model.PurchaseOrderItem, error) {
	var item model.PurchaseOrderItem
	err := r.db.First(&item, "id = ?", id).Error
	return &item, err
}
