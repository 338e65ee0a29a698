package domain

import "time"

// Table is a physical dining table. Number is its unique identity.
type Table struct {
	Number      int64
	Capacity    int
	IsAvailable bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewTable(number int64, capacity int, now time.Time) (*Table, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &Table{
		Number:      number,
		Capacity:    capacity,
		IsAvailable: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// SetAvailability toggles the table. Setting the current state again is a
// no-op and leaves UpdatedAt untouched.
func (t *Table) SetAvailability(available bool, now time.Time) {
	if t.IsAvailable == available {
		return
	}
	t.IsAvailable = available
	t.UpdatedAt = now
}
