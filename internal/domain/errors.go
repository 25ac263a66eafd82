package domain

import "errors"

// Expected, user-facing outcomes are typed sentinels so callers can map
// them without string matching. Anything else bubbling out of the store
// is a storage failure and propagates to the operator-facing layer.
var (
	// ErrValidation marks missing or malformed input, rejected before
	// the store is touched.
	ErrValidation = errors.New("invalid input")

	// ErrConflict means the requested slot overlaps an active booking.
	ErrConflict = errors.New("time slot conflicts with an existing booking")

	// ErrNotFound covers unknown rooms, bookings and users, and cancel
	// attempts by a non-owner (indistinguishable on purpose).
	ErrNotFound = errors.New("not found")

	// ErrDenied is an unlock refusal: wrong code, expired window, or
	// cancelled booking.
	ErrDenied = errors.New("access denied")
)
