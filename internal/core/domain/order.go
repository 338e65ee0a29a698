package domain

import "time"

type OrderStatus string

const (
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Order owns its items: an item detached during reconciliation ceases to exist.
type Order struct {
	ID          int64
	TableNumber int64
	Status      OrderStatus
	Items       []OrderItem
	CreatedAt   time.Time
	EndAt       *time.Time
}

// OrderItem identity is 0 until the item has been persisted.
type OrderItem struct {
	ID          int64
	MenuItemID  int64
	MenuExtraID *int64
	Quantity    int
	Notes       string
	IsDelivered bool
	AddedAt     time.Time
}

// Finalized reports whether the order reached a terminal state.
func (o *Order) Finalized() bool {
	switch o.Status {
	case OrderStatusCompleted, OrderStatusCancelled:
		return true
	case OrderStatusInProgress:
		return false
	}
	return false
}

// Item returns a pointer into Items for the given identity, or nil.
func (o *Order) Item(id int64) *OrderItem {
	for i := range o.Items {
		if o.Items[i].ID == id {
			return &o.Items[i]
		}
	}
	return nil
}
