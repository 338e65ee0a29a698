package domain

import "time"

type TransactionType string

const (
	TransactionIn  TransactionType = "in"
	TransactionOut TransactionType = "out"
)

// StockTransaction is immutable once recorded. Reference is assigned when the
// ledger applies it.
type StockTransaction struct {
	Reference    string
	Type         TransactionType
	Quantity     int
	Date         time.Time
	EmployeeName string
	ExpiresAt    *time.Time
}

// Stock tracks the on-hand quantity for a single ingredient. TotalStock must
// stay within [0, OptimalStockQuantity] after every applied transaction.
type Stock struct {
	ID                   int64
	IngredientID         int64
	TotalStock           int
	OptimalStockQuantity int
	Transactions         []StockTransaction
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Record adjusts the balance and appends to the history. Callers go through
// StockLedger.ApplyTransaction, which validates the bounds first.
func (s *Stock) Record(tx StockTransaction, now time.Time) {
	switch tx.Type {
	case TransactionIn:
		s.TotalStock += tx.Quantity
	case TransactionOut:
		s.TotalStock -= tx.Quantity
	}
	s.Transactions = append(s.Transactions, tx)
	s.UpdatedAt = now
}

// Reset is the destructive administrative reset: balance to zero, history
// discarded. Not derivable by replaying transactions.
func (s *Stock) Reset(now time.Time) {
	s.TotalStock = 0
	s.Transactions = nil
	s.UpdatedAt = now
}
