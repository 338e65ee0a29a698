package port

import (
	"context"

	"github.com/rl1809/resto-ops/internal/core/domain"
)

// Repositories return (nil, nil) when the identity does not exist; they never
// return partial entities. The core services only read through them — writes
// belong to the adapter layer that calls the core.

type TableRepository interface {
	// GetTable retrieves a table by its number
	GetTable(ctx context.Context, number int64) (*domain.Table, error)

	// ListTables returns every table, in no guaranteed order
	ListTables(ctx context.Context) ([]*domain.Table, error)

	// SaveTable inserts or updates a table
	SaveTable(ctx context.Context, table *domain.Table) error
}

type ReservationRepository interface {
	// GetReservation retrieves a reservation by ID
	GetReservation(ctx context.Context, id int64) (*domain.Reservation, error)

	// ListActiveByTable returns non-cancelled reservations attached to a table
	ListActiveByTable(ctx context.Context, tableNumber int64) ([]*domain.Reservation, error)

	// SaveReservation persists a reservation, assigning its ID on first save
	SaveReservation(ctx context.Context, reservation *domain.Reservation) error
}

type OrderRepository interface {
	// GetOrder retrieves an order with its items
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)

	// ListOpenOrders returns all orders still in progress, items included
	ListOpenOrders(ctx context.Context) ([]*domain.Order, error)

	// SaveOrder persists an order and replaces its item set atomically,
	// assigning identities to items that do not have one yet
	SaveOrder(ctx context.Context, order *domain.Order) error
}

type StockRepository interface {
	// GetStockByIngredient retrieves the stock record for an ingredient
	GetStockByIngredient(ctx context.Context, ingredientID int64) (*domain.Stock, error)

	// SaveStock persists the balance and appends new history entries
	SaveStock(ctx context.Context, stock *domain.Stock) error

	// ClearStock zeroes the balance and deletes the history in one transaction
	ClearStock(ctx context.Context, stock *domain.Stock) error
}
