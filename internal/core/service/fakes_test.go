package service

import (
	"context"
	"time"

	"github.com/rl1809/resto-ops/internal/core/domain"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type fakeTableRepo struct {
	tables []*domain.Table
	saved  int
}

func (f *fakeTableRepo) GetTable(ctx context.Context, number int64) (*domain.Table, error) {
	for _, t := range f.tables {
		if t.Number == number {
			return t, nil
		}
	}
	return nil, nil
}

func (f *fakeTableRepo) ListTables(ctx context.Context) ([]*domain.Table, error) {
	return f.tables, nil
}

func (f *fakeTableRepo) SaveTable(ctx context.Context, table *domain.Table) error {
	f.saved++
	return nil
}

type fakeReservationRepo struct {
	reservations []*domain.Reservation
	nextID       int64
}

func (f *fakeReservationRepo) GetReservation(ctx context.Context, id int64) (*domain.Reservation, error) {
	for _, r := range f.reservations {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeReservationRepo) ListActiveByTable(ctx context.Context, tableNumber int64) ([]*domain.Reservation, error) {
	var out []*domain.Reservation
	for _, r := range f.reservations {
		if r.TableNumber != nil && *r.TableNumber == tableNumber && !r.Cancelled() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) SaveReservation(ctx context.Context, r *domain.Reservation) error {
	if r.ID == 0 {
		f.nextID++
		r.ID = f.nextID
		f.reservations = append(f.reservations, r)
	}
	return nil
}

type fakeOrderRepo struct {
	orders []*domain.Order
}

func (f *fakeOrderRepo) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	for _, o := range f.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, nil
}

func (f *fakeOrderRepo) ListOpenOrders(ctx context.Context) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, o := range f.orders {
		if !o.Finalized() {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) SaveOrder(ctx context.Context, o *domain.Order) error {
	return nil
}

func bookedAt(table int64, date time.Time) *domain.Reservation {
	return &domain.Reservation{
		Status:          domain.ReservationStatusBooked,
		TableNumber:     &table,
		ReservationDate: date,
	}
}
