package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/resto-ops/internal/core/domain"
)

func TestFindByCapacityAtLeast(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)}
	repo := &fakeTableRepo{tables: []*domain.Table{
		{Number: 1, Capacity: 6, IsAvailable: true},
		{Number: 2, Capacity: 2, IsAvailable: true},
		{Number: 3, Capacity: 4, IsAvailable: true},
		{Number: 4, Capacity: 4, IsAvailable: true},
	}}
	registry := NewTableRegistry(repo, clock)

	got, err := registry.FindByCapacityAtLeast(context.Background(), 3)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, int64(3), got[0].Number)
	assert.Equal(t, int64(4), got[1].Number)
	assert.Equal(t, int64(1), got[2].Number)
}

func TestFindByCapacityAtLeast_NoneSufficient(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)}
	repo := &fakeTableRepo{tables: []*domain.Table{
		{Number: 1, Capacity: 2, IsAvailable: true},
	}}
	registry := NewTableRegistry(repo, clock)

	got, err := registry.FindByCapacityAtLeast(context.Background(), 6)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMarkUnavailable_Idempotent(t *testing.T) {
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: start}
	registry := NewTableRegistry(&fakeTableRepo{}, clock)

	table := &domain.Table{Number: 1, Capacity: 4, IsAvailable: true, UpdatedAt: start}

	clock.now = start.Add(time.Minute)
	registry.MarkUnavailable(table)
	assert.False(t, table.IsAvailable)
	assert.Equal(t, start.Add(time.Minute), table.UpdatedAt)

	// Repeating the same target state must not touch the timestamp.
	clock.now = start.Add(2 * time.Minute)
	registry.MarkUnavailable(table)
	assert.Equal(t, start.Add(time.Minute), table.UpdatedAt)

	registry.MarkAvailable(table)
	assert.True(t, table.IsAvailable)
	assert.Equal(t, start.Add(2*time.Minute), table.UpdatedAt)
}

func TestNewTable_RejectsNonPositiveCapacity(t *testing.T) {
	now := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	_, err := domain.NewTable(1, 0, now)
	require.ErrorIs(t, err, domain.ErrInvalidCapacity)

	table, err := domain.NewTable(1, 4, now)
	require.NoError(t, err)
	assert.True(t, table.IsAvailable)
}
