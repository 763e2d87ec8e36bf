package model

import "errors"

// Business-rule failures are terminal: they are surfaced to the caller
// as-is and never retried.
var (
	// ErrNotFound means the referenced entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrInsufficientStock means the requested quantity exceeds available menu stock.
	ErrInsufficientStock = errors.New("insufficient stock remaining")

	// ErrNotSellable means the menu is not in selling status.
	ErrNotSellable = errors.New("menu is not for sale")

	// ErrInvalidAmount rejects a zero ledger delta; a no-op entry is never recorded.
	ErrInvalidAmount = errors.New("stock change amount must be non-zero")

	// ErrInvalidTransition means a purchase order is already in a terminal state
	// (received or cancelled) and cannot move again.
	ErrInvalidTransition = errors.New("purchase order already finalized")

	// ErrPartialApplication marks a purchase receipt batch that failed partway.
	// The enclosing transaction rolls every increment back, but callers still
	// need to tell an aborted batch apart from one that never started.
	ErrPartialApplication = errors.New("purchase receipt partially applied and rolled back")

	// ErrIngredientInUse guards ingredient deletion while recipe lines reference it.
	ErrIngredientInUse = errors.New("ingredient is referenced by menu recipes")
)
