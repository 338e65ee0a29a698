package service

import (
	"context"

	"github.com/rl1809/resto-ops/internal/core/domain"
	"github.com/rl1809/resto-ops/internal/port"
)

// OrderLifecycle manages an order from creation to completion or cancellation
// and reconciles its item list against caller-supplied changes.
type OrderLifecycle struct {
	registry *TableRegistry
	orders   port.OrderRepository
	clock    port.Clock
}

func NewOrderLifecycle(registry *TableRegistry, orders port.OrderRepository, clock port.Clock) *OrderLifecycle {
	return &OrderLifecycle{registry: registry, orders: orders, clock: clock}
}

// PendingItem is an undelivered item together with the order it belongs to.
type PendingItem struct {
	OrderID     int64
	TableNumber int64
	Item        domain.OrderItem
}

// Init starts an order on an available table, marking the table unavailable.
func (l *OrderLifecycle) Init(table *domain.Table) (*domain.Order, error) {
	if !table.IsAvailable {
		return nil, domain.ErrTableUnavailable
	}
	l.registry.MarkUnavailable(table)
	return &domain.Order{
		TableNumber: table.Number,
		Status:      domain.OrderStatusInProgress,
		CreatedAt:   l.clock.Now(),
	}, nil
}

// ReconcileItems replaces the order's item set with the desired list:
// existing identities absent from desired are removed, present identities are
// updated in place, identity-less entries are appended as new items. The
// replacement is all-or-nothing; a failed diff leaves the order untouched.
func (l *OrderLifecycle) ReconcileItems(order *domain.Order, desired []domain.OrderItem) error {
	if order.Finalized() {
		return domain.ErrOrderAlreadyFinalized
	}

	now := l.clock.Now()
	next := make([]domain.OrderItem, 0, len(desired))

	for _, d := range desired {
		if d.Quantity <= 0 {
			return domain.Validationf("invalid_quantity", "item quantity must be positive, got %d", d.Quantity)
		}

		if d.ID == 0 {
			d.IsDelivered = false
			d.AddedAt = now
			next = append(next, d)
			continue
		}

		existing := order.Item(d.ID)
		if existing == nil {
			return domain.ErrItemNotFound
		}
		updated := *existing
		updated.MenuItemID = d.MenuItemID
		updated.MenuExtraID = d.MenuExtraID
		updated.Quantity = d.Quantity
		updated.Notes = d.Notes
		next = append(next, updated)
	}

	order.Items = next
	return nil
}

// End completes the order and releases its table.
func (l *OrderLifecycle) End(order *domain.Order, table *domain.Table) error {
	return l.finalize(order, table, domain.OrderStatusCompleted)
}

// Cancel cancels the order and releases its table.
func (l *OrderLifecycle) Cancel(order *domain.Order, table *domain.Table) error {
	return l.finalize(order, table, domain.OrderStatusCancelled)
}

func (l *OrderLifecycle) finalize(order *domain.Order, table *domain.Table, status domain.OrderStatus) error {
	if table.Number != order.TableNumber {
		return domain.Invariantf("aggregate_mismatch", "order %d belongs to table %d, got table %d", order.ID, order.TableNumber, table.Number)
	}
	if order.Finalized() {
		return domain.ErrOrderAlreadyFinalized
	}
	now := l.clock.Now()
	order.Status = status
	order.EndAt = &now
	l.registry.MarkAvailable(table)
	return nil
}

// MarkDelivered flips delivery on exactly one item.
func (l *OrderLifecycle) MarkDelivered(order *domain.Order, itemID int64) error {
	item := order.Item(itemID)
	if item == nil {
		return domain.ErrItemNotFound
	}
	item.IsDelivered = true
	return nil
}

// ItemsPendingDelivery returns every undelivered item across open orders.
// Callers must not depend on the ordering.
func (l *OrderLifecycle) ItemsPendingDelivery(ctx context.Context) ([]PendingItem, error) {
	orders, err := l.orders.ListOpenOrders(ctx)
	if err != nil {
		return nil, err
	}

	var pending []PendingItem
	for _, o := range orders {
		for _, item := range o.Items {
			if !item.IsDelivered {
				pending = append(pending, PendingItem{OrderID: o.ID, TableNumber: o.TableNumber, Item: item})
			}
		}
	}
	return pending, nil
}
