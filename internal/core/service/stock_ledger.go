package service

import (
	"github.com/google/uuid"

	"github.com/rl1809/resto-ops/internal/core/domain"
	"github.com/rl1809/resto-ops/internal/port"
)

// StockLedger keeps a per-ingredient balance consistent with its transaction
// history and rejects transactions that would violate the balance bounds.
type StockLedger struct {
	clock port.Clock
}

func NewStockLedger(clock port.Clock) *StockLedger {
	return &StockLedger{clock: clock}
}

// ValidateTransaction checks the balance bounds without mutating anything.
func (l *StockLedger) ValidateTransaction(stock *domain.Stock, tx domain.StockTransaction) error {
	if tx.Quantity <= 0 {
		return domain.Validationf("invalid_transaction", "transaction quantity must be positive, got %d", tx.Quantity)
	}

	switch tx.Type {
	case domain.TransactionOut:
		if stock.TotalStock < tx.Quantity {
			return domain.Validationf("invalid_transaction",
				"cannot withdraw %d with only %d on hand", tx.Quantity, stock.TotalStock)
		}
	case domain.TransactionIn:
		if stock.TotalStock+tx.Quantity > stock.OptimalStockQuantity {
			return domain.Validationf("invalid_transaction",
				"adding %d would exceed the optimal quantity %d (on hand %d)",
				tx.Quantity, stock.OptimalStockQuantity, stock.TotalStock)
		}
	default:
		return domain.Validationf("invalid_transaction", "unknown transaction type %q", tx.Type)
	}
	return nil
}

// ApplyTransaction adjusts the balance and appends the transaction to the
// history. Applying a transaction that does not pass validation is a caller
// contract violation and surfaces as an invariant failure, not a mutation.
func (l *StockLedger) ApplyTransaction(stock *domain.Stock, tx domain.StockTransaction) error {
	if err := l.ValidateTransaction(stock, tx); err != nil {
		return domain.Invariantf("unvalidated_transaction", "apply without validation: %v", err)
	}

	now := l.clock.Now()
	if tx.Reference == "" {
		tx.Reference = uuid.NewString()
	}
	if tx.Date.IsZero() {
		tx.Date = now
	}
	stock.Record(tx, now)
	return nil
}

// Clear performs the destructive administrative reset: zero balance, history
// discarded. It deliberately bypasses the transaction path.
func (l *StockLedger) Clear(stock *domain.Stock) {
	stock.Reset(l.clock.Now())
}
