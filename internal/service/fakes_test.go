package service

import (
	"database/sql"
	"sort"
	"sync"
	"time"

	"go-bakery-ws/internal/feed"
	"go-bakery-ws/internal/model"
	"go-bakery-ws/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// fakeTx runs the transaction body directly against the in-memory repos.
// Rollback semantics belong to the real database; these tests assert the
// decisions the services make, not the storage engine.
type fakeTx struct{}

func (fakeTx) Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error {
	return fc(nil)
}

// rollbackTx snapshots the in-memory repos before the body runs and restores
// them when it returns an error, mirroring what the database does on abort.
type rollbackTx struct {
	snapshots []func() func()
}

func (t rollbackTx) Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error {
	restores := make([]func(), 0, len(t.snapshots))
	for _, snap := range t.snapshots {
		restores = append(restores, snap())
	}
	if err := fc(nil); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}

// capturePub records published events for assertions.
type capturePub struct {
	mu     sync.Mutex
	events []feed.Event
}

func (p *capturePub) Publish(ev feed.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *capturePub) byTable(table string) []feed.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []feed.Event
	for _, ev := range p.events {
		if ev.Table == table {
			out = append(out, ev)
		}
	}
	return out
}

// --- ingredient repo ---

type memIngredientRepo struct {
	mu         sync.Mutex
	items      map[uuid.UUID]*model.Ingredient
	recipeRefs map[uuid.UUID]int64
}

func newMemIngredientRepo() *memIngredientRepo {
	return &memIngredientRepo{
		items:      make(map[uuid.UUID]*model.Ingredient),
		recipeRefs: make(map[uuid.UUID]int64),
	}
}

func (r *memIngredientRepo) seed(ing *model.Ingredient) {
	if ing.ID == uuid.Nil {
		ing.ID = uuid.New()
	}
	if ing.Version == 0 {
		ing.Version = 1
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[ing.ID] = ing
}

func (r *memIngredientRepo) snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := make(map[uuid.UUID]model.Ingredient, len(r.items))
	for id, ing := range r.items {
		saved[id] = *ing
	}
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.items = make(map[uuid.UUID]*model.Ingredient, len(saved))
		for id, ing := range saved {
			cp := ing
			r.items[id] = &cp
		}
	}
}

func (r *memIngredientRepo) Create(tx *gorm.DB, ing *model.Ingredient) error {
	if ing.ID == uuid.Nil {
		ing.ID = uuid.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[ing.ID] = ing
	return nil
}

func (r *memIngredientRepo) FindAll(storeID uuid.UUID) ([]model.Ingredient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Ingredient
	for _, ing := range r.items {
		if ing.StoreID == storeID {
			out = append(out, *ing)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memIngredientRepo) FindByID(id uuid.UUID) (*model.Ingredient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ing, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *ing
	return &cp, nil
}

func (r *memIngredientRepo) Update(ing *model.Ingredient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[ing.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.items[ing.ID] = ing
	return nil
}

func (r *memIngredientRepo) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *memIngredientRepo) AdjustStock(tx *gorm.DB, id uuid.UUID, delta int) (int, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ing, ok := r.items[id]
	if !ok {
		return 0, 0, gorm.ErrRecordNotFound
	}
	ing.CurrentStock += delta
	ing.Version++
	return ing.CurrentStock, ing.Version, nil
}

func (r *memIngredientRepo) CountRecipeRefs(id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recipeRefs[id], nil
}

// --- update list repo ---

type memUpdateListRepo struct {
	mu      sync.Mutex
	entries []model.UpdateList
	fail    bool
}

func (r *memUpdateListRepo) FindAll() ([]model.UpdateList, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.UpdateList(nil), r.entries...), nil
}

func (r *memUpdateListRepo) Create(entry *model.UpdateList) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return gorm.ErrInvalidDB
	}
	r.entries = append(r.entries, *entry)
	return nil
}

// --- stock log repo ---

type memStockLogRepo struct {
	mu      sync.Mutex
	entries []model.StockLogEntry
}

func newMemStockLogRepo() *memStockLogRepo { return &memStockLogRepo{} }

func (r *memStockLogRepo) Create(tx *gorm.DB, entry *model.StockLogEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memStockLogRepo) ListByIngredient(ingredientID uuid.UUID) ([]model.StockLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.StockLogEntry
	for _, e := range r.entries {
		if e.IngredientID == ingredientID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (r *memStockLogRepo) MovementByDay(storeID uuid.UUID, startDate, endDate string) ([]repository.StockMovementData, error) {
	return nil, nil
}

func (r *memStockLogRepo) snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := append([]model.StockLogEntry(nil), r.entries...)
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.entries = append([]model.StockLogEntry(nil), saved...)
	}
}

func (r *memStockLogRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// --- menu repo ---

type memMenuRepo struct {
	mu      sync.Mutex
	items   map[uuid.UUID]*model.Menu
	recipes map[uuid.UUID][]model.MenuIngredient
}

func newMemMenuRepo() *memMenuRepo {
	return &memMenuRepo{
		items:   make(map[uuid.UUID]*model.Menu),
		recipes: make(map[uuid.UUID][]model.MenuIngredient),
	}
}

func (r *memMenuRepo) seed(menu *model.Menu) {
	if menu.ID == uuid.Nil {
		menu.ID = uuid.New()
	}
	if menu.Version == 0 {
		menu.Version = 1
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[menu.ID] = menu
}

func (r *memMenuRepo) Create(menu *model.Menu) error {
	if menu.ID == uuid.Nil {
		menu.ID = uuid.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[menu.ID] = menu
	return nil
}

func (r *memMenuRepo) FindAll(storeID uuid.UUID) ([]model.Menu, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Menu
	for _, m := range r.items {
		if m.StoreID == storeID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *memMenuRepo) FindByID(id uuid.UUID) (*model.Menu, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *memMenuRepo) Update(menu *model.Menu) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[menu.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.items[menu.ID] = menu
	return nil
}

func (r *memMenuRepo) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *memMenuRepo) DecrementStock(tx *gorm.DB, id uuid.UUID, qty int) (int, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.items[id]
	if !ok {
		return 0, 0, gorm.ErrRecordNotFound
	}
	if m.Status != model.MenuStatusSelling || m.CurrentStock < qty {
		return 0, 0, gorm.ErrRecordNotFound
	}
	m.CurrentStock -= qty
	m.Version++
	return m.CurrentStock, m.Version, nil
}

func (r *memMenuRepo) IncrementStock(tx *gorm.DB, id uuid.UUID, qty int) (int, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.items[id]
	if !ok {
		return 0, 0, gorm.ErrRecordNotFound
	}
	m.CurrentStock += qty
	m.Version++
	return m.CurrentStock, m.Version, nil
}

func (r *memMenuRepo) ReplaceRecipe(menuID uuid.UUID, lines []model.MenuIngredient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recipes[menuID] = lines
	return nil
}

func (r *memMenuRepo) FindRecipe(menuID uuid.UUID) ([]model.MenuIngredient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recipes[menuID], nil
}

// --- order repo ---

type memOrderRepo struct {
	mu     sync.Mutex
	orders []model.OrderRecord
}

func newMemOrderRepo() *memOrderRepo { return &memOrderRepo{} }

func (r *memOrderRepo) Create(tx *gorm.DB, order *model.OrderRecord) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, *order)
	return nil
}

func (r *memOrderRepo) ListByStore(storeID uuid.UUID, page, limit int) ([]model.OrderRecord, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.OrderRecord
	for _, o := range r.orders {
		if o.StoreID == storeID {
			out = append(out, o)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memOrderRepo) TodayStats(storeID uuid.UUID, now time.Time) (*model.OrderStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &model.OrderStats{}
	for _, o := range r.orders {
		if o.StoreID == storeID {
			stats.TotalSales += o.TotalPrice
			stats.OrderCount++
			stats.TotalQuantity += int64(o.Quantity)
		}
	}
	return stats, nil
}

func (r *memOrderRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

// --- purchase order repo ---

type memPurchaseRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*model.PurchaseOrder
	items  map[uuid.UUID][]model.PurchaseOrderItem
}

func newMemPurchaseRepo() *memPurchaseRepo {
	return &memPurchaseRepo{
		orders: make(map[uuid.UUID]*model.PurchaseOrder),
		items:  make(map[uuid.UUID][]model.PurchaseOrderItem),
	}
}

func (r *memPurchaseRepo) seed(order *model.PurchaseOrder, items ...model.PurchaseOrderItem) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		items[i].PurchaseOrderID = order.ID
	}
	r.items[order.ID] = items
}

func (r *memPurchaseRepo) snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	savedOrders := make(map[uuid.UUID]model.PurchaseOrder, len(r.orders))
	for id, o := range r.orders {
		savedOrders[id] = *o
	}
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.orders = make(map[uuid.UUID]*model.PurchaseOrder, len(savedOrders))
		for id, o := range savedOrders {
			cp := o
			r.orders[id] = &cp
		}
	}
}

func (r *memPurchaseRepo) Create(order *model.PurchaseOrder) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order
	return nil
}

func (r *memPurchaseRepo) FindAll(storeID uuid.UUID) ([]model.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.PurchaseOrder
	for _, o := range r.orders {
		if o.StoreID == storeID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *memPurchaseRepo) FindByID(id uuid.UUID) (*model.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	cp.Items = append([]model.PurchaseOrderItem(nil), r.items[id]...)
	return &cp, nil
}

func (r *memPurchaseRepo) Update(order *model.PurchaseOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.orders[order.ID] = order
	return nil
}

func (r *memPurchaseRepo) UpdateStatus(tx *gorm.DB, id uuid.UUID, status model.PurchaseOrderStatus, receivedAt *time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.IsFinal() {
		return 0, nil
	}
	o.Status = status
	if receivedAt != nil {
		o.ReceivedAt = receivedAt
	}
	return 1, nil
}

func (r *memPurchaseRepo) ListItems(tx *gorm.DB, orderID uuid.UUID) ([]model.PurchaseOrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.PurchaseOrderItem(nil), r.items[orderID]...), nil
}

func (r *memPurchaseRepo) CreateItem(item *model.PurchaseOrderItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.PurchaseOrderID] = append(r.items[item.PurchaseOrderID], *item)
	return nil
}

func (r *memPurchaseRepo) UpdateItem(item *model.PurchaseOrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.items[item.PurchaseOrderID]
	for i := range items {
		if items[i].ID == item.ID {
			items[i] = *item
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memPurchaseRepo) FindItemByID(id uuid.UUID) (*model.PurchaseOrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, items := range r.items {
		for _, it := range items {
			if it.ID == id {
				cp := it
				return &cp, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}
