package domain

import "time"

type ReservationStatus string

const (
	ReservationStatusBooked      ReservationStatus = "booked"
	ReservationStatusAttended    ReservationStatus = "attended"
	ReservationStatusNotAttended ReservationStatus = "not_attended"
	ReservationStatusCancelled   ReservationStatus = "cancelled"
)

type Reservation struct {
	ID              int64
	Name            string
	Email           string
	PhoneNumber     string
	CustomerNumber  int
	ReservationDate time.Time
	Status          ReservationStatus
	TableNumber     *int64
	CreatedAt       time.Time
	CancelledAt     *time.Time
}

// CanTransitionTo encodes the reservation state machine. Cancelled is
// terminal; attended and not-attended may still be cancelled.
func (s ReservationStatus) CanTransitionTo(to ReservationStatus) bool {
	switch s {
	case ReservationStatusBooked:
		return to == ReservationStatusAttended ||
			to == ReservationStatusNotAttended ||
			to == ReservationStatusCancelled
	case ReservationStatusAttended, ReservationStatusNotAttended:
		return to == ReservationStatusCancelled
	case ReservationStatusCancelled:
		return false
	}
	return false
}

func (r *Reservation) Cancelled() bool {
	return r.Status == ReservationStatusCancelled
}
