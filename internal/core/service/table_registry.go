package service

import (
	"context"
	"sort"

	"github.com/rl1809/resto-ops/internal/core/domain"
	"github.com/rl1809/resto-ops/internal/port"
)

// TableRegistry exposes table availability and capacity to the other services.
type TableRegistry struct {
	tables port.TableRepository
	clock  port.Clock
}

func NewTableRegistry(tables port.TableRepository, clock port.Clock) *TableRegistry {
	return &TableRegistry{tables: tables, clock: clock}
}

func (r *TableRegistry) MarkUnavailable(table *domain.Table) {
	table.SetAvailability(false, r.clock.Now())
}

func (r *TableRegistry) MarkAvailable(table *domain.Table) {
	table.SetAvailability(true, r.clock.Now())
}

// FindByCapacityAtLeast returns tables seating at least partySize, smallest
// sufficient table first to minimize wasted seating. Ties break on number so
// the order is deterministic.
func (r *TableRegistry) FindByCapacityAtLeast(ctx context.Context, partySize int) ([]*domain.Table, error) {
	all, err := r.tables.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]*domain.Table, 0, len(all))
	for _, t := range all {
		if t.Capacity >= partySize {
			candidates = append(candidates, t)
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Capacity != candidates[j].Capacity {
			return candidates[i].Capacity < candidates[j].Capacity
		}
		return candidates[i].Number < candidates[j].Number
	})

	return candidates, nil
}
