package service

import (
	"context"
	"time"

	"github.com/rl1809/resto-ops/internal/core/domain"
	"github.com/rl1809/resto-ops/internal/port"
)

const (
	maxPartySize = 8
	openingHour  = 12
	closingHour  = 22

	// conflictWindow is fixed regardless of party size; a per-table turnover
	// policy would replace this constant.
	conflictWindow = 2 * time.Hour
)

// ReservationScheduler allocates a conflict-free table to a new reservation
// and enforces the timing and party-size policy.
type ReservationScheduler struct {
	registry     *TableRegistry
	reservations port.ReservationRepository
	clock        port.Clock
}

func NewReservationScheduler(registry *TableRegistry, reservations port.ReservationRepository, clock port.Clock) *ReservationScheduler {
	return &ReservationScheduler{registry: registry, reservations: reservations, clock: clock}
}

// Create validates the reservation and assigns the smallest sufficient table
// with no existing reservation inside the conflict window. The reservation is
// not persisted here; the caller saves the returned entity.
func (s *ReservationScheduler) Create(ctx context.Context, res *domain.Reservation) error {
	now := s.clock.Now()

	if err := validateDate(res.ReservationDate, now); err != nil {
		return err
	}
	if err := validateHour(res.ReservationDate); err != nil {
		return err
	}
	if res.CustomerNumber > maxPartySize {
		return domain.ErrPartyTooLarge
	}
	if res.CustomerNumber <= 0 {
		return domain.Validationf("party_too_large", "party size must be positive, got %d", res.CustomerNumber)
	}

	candidates, err := s.registry.FindByCapacityAtLeast(ctx, res.CustomerNumber)
	if err != nil {
		return err
	}

	for _, table := range candidates {
		existing, err := s.reservations.ListActiveByTable(ctx, table.Number)
		if err != nil {
			return err
		}
		if hasConflict(existing, res.ReservationDate) {
			continue
		}

		number := table.Number
		res.TableNumber = &number
		res.Status = domain.ReservationStatusBooked
		res.CreatedAt = now
		return nil
	}

	return domain.ErrNoTableAvailable
}

// Cancel fails when the reservation is already cancelled; the original
// cancellation timestamp is never overwritten.
func (s *ReservationScheduler) Cancel(res *domain.Reservation) error {
	if res.Cancelled() {
		return domain.ErrInvalidTransition
	}
	now := s.clock.Now()
	res.Status = domain.ReservationStatusCancelled
	res.CancelledAt = &now
	return nil
}

// Transition moves the reservation through its state machine.
func (s *ReservationScheduler) Transition(res *domain.Reservation, to domain.ReservationStatus) error {
	if !res.Status.CanTransitionTo(to) {
		return domain.ErrInvalidTransition
	}
	if to == domain.ReservationStatusCancelled {
		return s.Cancel(res)
	}
	res.Status = to
	return nil
}

// validateDate rejects past and same-day dates and anything beyond one month
// out. Evaluated before the hour rule; first failure wins.
func validateDate(date, now time.Time) error {
	if !date.After(now) {
		return domain.Validationf("invalid_date", "reservation date %s is not in the future", date.Format(time.RFC3339))
	}
	if sameCalendarDay(date, now) {
		return domain.Validationf("invalid_date", "same-day reservations are not accepted")
	}
	if date.After(now.AddDate(0, 1, 0)) {
		return domain.Validationf("invalid_date", "reservation date %s is more than one month out", date.Format(time.RFC3339))
	}
	return nil
}

func validateHour(date time.Time) error {
	if h := date.Hour(); h < openingHour || h >= closingHour {
		return domain.Validationf("invalid_hour", "reservation hour %d outside opening hours [%d, %d)", h, openingHour, closingHour)
	}
	return nil
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}

// hasConflict reports whether any existing reservation on the table falls
// within the ±conflictWindow interval around the requested time.
func hasConflict(existing []*domain.Reservation, date time.Time) bool {
	for _, r := range existing {
		if r.Cancelled() {
			continue
		}
		diff := date.Sub(r.ReservationDate)
		if diff < 0 {
			diff = -diff
		}
		if diff <= conflictWindow {
			return true
		}
	}
	return false
}
