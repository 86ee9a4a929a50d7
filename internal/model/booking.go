package model

import (
	"errors"
	"time"
)

// BookingStatus is the closed set of lifecycle states a booking moves
// through.  The zero value is not valid; rows are always written with
// one of the four constants below and unknown strings coming back from
// the database are rejected by ParseBookingStatus.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"   // created, awaiting confirmation
	BookingConfirmed BookingStatus = "confirmed" // confirmed by an admin
	BookingCancelled BookingStatus = "cancelled" // terminal; row is also soft-deleted
	BookingCompleted BookingStatus = "completed" // terminal; interval has elapsed
)

// ErrUnknownStatus is returned by ParseBookingStatus for any value
// outside the closed enum.
var ErrUnknownStatus = errors.New("unknown booking status")

// ParseBookingStatus converts a raw string (request body or database
// column) into a BookingStatus.  Anything not in the enum fails.
func ParseBookingStatus(raw string) (BookingStatus, error) {
	switch BookingStatus(raw) {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return BookingStatus(raw), nil
	}
	return "", ErrUnknownStatus
}

// Blocking reports whether a booking in this status counts toward
// overlap checks.  Cancelled and completed bookings never block a
// new reservation.
func (s BookingStatus) Blocking() bool {
	return s != BookingCancelled && s != BookingCompleted
}

// Terminal reports whether the status admits no further transitions.
func (s BookingStatus) Terminal() bool {
	return s == BookingCancelled || s == BookingCompleted
}

// CanTransitionTo encodes the booking state machine:
//
//  pending   -> confirmed | cancelled
//  confirmed -> completed | cancelled
//  cancelled -> (nothing)
//  completed -> (nothing)
//
// Nothing may ever return to pending once past creation.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	if s.Terminal() || next == BookingPending {
		return false
	}
	switch next {
	case BookingCancelled:
		return true
	case BookingConfirmed:
		return s == BookingPending
	case BookingCompleted:
		return s == BookingConfirmed
	}
	return false
}

// Booking mirrors the `bookings` table.  StartTime and EndTime form a
// half-open interval [StartTime, EndTime) in UTC, so a booking ending
// at 10:00 does not collide with one starting at 10:00.  Cancellation
// is recorded as a soft delete: DeletedAt is set and the row keeps its
// history.
//
// Fields:
//  ID        – primary key identifier.
//  RoomID    – the reserved room.
//  UserID    – owner of the booking, taken from the verified token,
//              never from the request body.
//  StartTime – inclusive start of the interval (UTC).
//  EndTime   – exclusive end of the interval (UTC).
//  Status    – current lifecycle state.
//  CreatedAt – creation timestamp (UTC).
//  UpdatedAt – last update timestamp (UTC).
//  DeletedAt – set on cancellation, nil otherwise.
type Booking struct {
	ID        uint64        `json:"id"`
	RoomID    uint64        `json:"room_id"`
	UserID    uint64        `json:"user_id"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Status    BookingStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	DeletedAt *time.Time    `json:"deleted_at,omitempty"`
}
