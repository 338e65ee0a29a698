package domain

import "fmt"

type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindConflict   ErrorKind = "conflict"
	KindNotFound   ErrorKind = "not_found"
	KindInvariant  ErrorKind = "invariant"
)

// Error is the single failure type returned by the core services. Code is
// stable and comparable via errors.Is; Reason is human-readable and may vary.
type Error struct {
	Kind   ErrorKind
	Code   string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Reason)
}

// Is matches on Code so dynamic-reason errors compare equal to the sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrInvalidDate        = &Error{Kind: KindValidation, Code: "invalid_date", Reason: "reservation date outside the booking window"}
	ErrInvalidHour        = &Error{Kind: KindValidation, Code: "invalid_hour", Reason: "reservation hour outside opening hours"}
	ErrPartyTooLarge      = &Error{Kind: KindValidation, Code: "party_too_large", Reason: "party size exceeds the per-reservation limit"}
	ErrInvalidCapacity    = &Error{Kind: KindValidation, Code: "invalid_capacity", Reason: "table capacity must be positive"}
	ErrInvalidTransaction = &Error{Kind: KindValidation, Code: "invalid_transaction", Reason: "stock transaction violates balance bounds"}

	ErrNoTableAvailable      = &Error{Kind: KindConflict, Code: "no_table_available", Reason: "no conflict-free table for the requested time"}
	ErrInvalidTransition     = &Error{Kind: KindConflict, Code: "invalid_transition", Reason: "reservation status transition not permitted"}
	ErrTableUnavailable      = &Error{Kind: KindConflict, Code: "table_unavailable", Reason: "table is already occupied"}
	ErrOrderAlreadyFinalized = &Error{Kind: KindConflict, Code: "order_already_finalized", Reason: "order has already been completed or cancelled"}

	ErrItemNotFound = &Error{Kind: KindNotFound, Code: "item_not_found", Reason: "order item identity not present on the order"}

	ErrUnvalidatedTransaction = &Error{Kind: KindInvariant, Code: "unvalidated_transaction", Reason: "transaction applied without passing validation"}
	ErrAggregateMismatch      = &Error{Kind: KindInvariant, Code: "aggregate_mismatch", Reason: "entities supplied to the operation do not belong together"}
)

// Validationf builds a validation failure that still matches code via errors.Is.
func Validationf(code, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: code, Reason: fmt.Sprintf(format, args...)}
}

// Invariantf builds an invariant failure; callers treat these as contract bugs.
func Invariantf(code, format string, args ...any) *Error {
	return &Error{Kind: KindInvariant, Code: code, Reason: fmt.Sprintf(format, args...)}
}
