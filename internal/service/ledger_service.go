package service

import (
	"errors"
	"iter"
	"time"

	"go-bakery-ws/internal/feed"
	"go-bakery-ws/internal/model"
	"go-bakery-ws/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Publisher is the change feed write side; *feed.Hub satisfies it.
type Publisher interface {
	Publish(ev feed.Event)
}

// AppendEntryInput describes one stock delta to record.
type AppendEntryInput struct {
	IngredientID  uuid.UUID        `json:"ingredient_id" validate:"uuid_required"`
	ChangeType    model.ChangeType `json:"change_type" validate:"required,oneof=production sale purchase_receipt correction"`
	Amount        int              `json:"amount"`
	RelatedMenuID *uuid.UUID       `json:"related_menu_id,omitempty"`
	Note          string           `json:"note,omitempty"`
}

// BalancePoint is one step of an ingredient's running balance.
type BalancePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Balance   int       `json:"balance"`
}

// LedgerService is the only write path for ingredient stock. Every change is
// an append-only StockLogEntry plus an atomic adjustment of the cached
// current_stock, committed together: the cache always equals the ledger sum.
type LedgerService interface {
	AppendEntry(in AppendEntryInput) (*model.StockLogEntry, error)
	// AppendEntryTx records an entry inside a caller-owned transaction and
	// returns the entry, the new balance and the ingredient row version
	// written with it. The caller publishes feed events once its
	// transaction commits.
	AppendEntryTx(tx *gorm.DB, in AppendEntryInput) (*model.StockLogEntry, int, int64, error)
	ProjectedBalance(ingredientID uuid.UUID, asOf time.Time) (iter.Seq[BalancePoint], error)
	History(ingredientID uuid.UUID) ([]model.StockLogEntry, error)
}

type ledgerService struct {
	ingredientRepo repository.IngredientRepository
	logRepo        repository.StockLogRepository
	tx             repository.TxRunner
	pub            Publisher
	now            func() time.Time
}

func NewLedgerService(iRepo repository.IngredientRepository, lRepo repository.StockLogRepository, tx repository.TxRunner, pub Publisher) LedgerService {
	return &ledgerService{
		ingredientRepo: iRepo,
		logRepo:        lRepo,
		tx:             tx,
		pub:            pub,
		now:            time.Now,
	}
}

func (s *ledgerService) AppendEntry(in AppendEntryInput) (*model.StockLogEntry, error) {
	var (
		entry    *model.StockLogEntry
		newStock int
		version  int64
	)
	err := s.tx.Transaction(func(tx *gorm.DB) error {
		var err error
		entry, newStock, version, err = s.AppendEntryTx(tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishLedgerEvents(entry, newStock, version)
	return entry, nil
}

func (s *ledgerService) AppendEntryTx(tx *gorm.DB, in AppendEntryInput) (*model.StockLogEntry, int, int64, error) {
	if in.Amount == 0 {
		return nil, 0, 0, model.ErrInvalidAmount
	}

	entry := &model.StockLogEntry{
		IngredientID:  in.IngredientID,
		ChangeType:    in.ChangeType,
		ChangeAmount:  in.Amount,
		RelatedMenuID: in.RelatedMenuID,
		Timestamp:     s.now(),
		Note:          in.Note,
	}

	// The adjustment doubles as the existence check: no row, no ingredient.
	// Negative balances are allowed on purpose; min_stock_level is a warning
	// threshold, never a hard stop on production.
	newStock, version, err := s.ingredientRepo.AdjustStock(tx, in.IngredientID, in.Amount)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, 0, model.ErrNotFound
		}
		return nil, 0, 0, err
	}

	if err := s.logRepo.Create(tx, entry); err != nil {
		return nil, 0, 0, err
	}
	return entry, newStock, version, nil
}

// publishLedgerEvents emits the feed events for one committed append. The
// ingredient update carries the row version from the same UPDATE that moved
// the stock, so subscribers apply concurrent appends in commit order.
func (s *ledgerService) publishLedgerEvents(entry *model.StockLogEntry, newStock int, version int64) {
	s.pub.Publish(feed.NewEvent("stock_logs", feed.ActionInsert, entry.ID, entry))
	s.pub.Publish(feed.NewVersionedEvent("ingredients", feed.ActionUpdate, entry.IngredientID, version, map[string]interface{}{
		"id":            entry.IngredientID,
		"current_stock": newStock,
	}))
}

// ProjectedBalance derives the running balance series from the ledger up to
// asOf (zero time means everything). The log is loaded once; the returned
// sequence is restartable and never touches the database again.
func (s *ledgerService) ProjectedBalance(ingredientID uuid.UUID, asOf time.Time) (iter.Seq[BalancePoint], error) {
	if _, err := s.ingredientRepo.FindByID(ingredientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}

	entries, err := s.logRepo.ListByIngredient(ingredientID)
	if err != nil {
		return nil, err
	}

	return func(yield func(BalancePoint) bool) {
		balance := 0
		for _, e := range entries {
			if !asOf.IsZero() && e.Timestamp.After(asOf) {
				return
			}
			balance += e.ChangeAmount
			if !yield(BalancePoint{Timestamp: e.Timestamp, Balance: balance}) {
				return
			}
		}
	}, nil
}

func (s *ledgerService) History(ingredientID uuid.UUID) ([]model.StockLogEntry, error) {
	if _, err := s.ingredientRepo.FindByID(ingredientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return s.logRepo.ListByIngredient(ingredientID)
}
