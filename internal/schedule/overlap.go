// Package schedule decides whether a candidate booking interval
// collides with the intervals already held for a room.  It is pure:
// callers load the blocking bookings from the repository and hand the
// intervals in, so the same code runs identically in tests and inside
// a database transaction.
package schedule

import (
	"errors"
	"time"
)

// ErrInvalidRange is returned when an interval's start does not
// precede its end.
var ErrInvalidRange = errors.New("start time must be before end time")

// ErrConflict is returned by a Resolver when the candidate interval
// overlaps an existing one.  Handlers translate it to HTTP 409.
var ErrConflict = errors.New("time slot unavailable")

// Interval is a half-open time range [Start, End).  The end instant is
// excluded so back-to-back bookings ([9,10) then [10,11)) never
// conflict.
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval validates and builds an Interval.  Both bounds are
// normalized to UTC.
func NewInterval(start, end time.Time) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, ErrInvalidRange
	}
	return Interval{Start: start.UTC(), End: end.UTC()}, nil
}

// Overlaps reports whether two half-open intervals intersect:
// [a,b) and [c,d) overlap iff a < d && c < b.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Resolver checks one candidate interval against the blocking set.
// It is an interface so the linear scan below can later be swapped for
// an interval tree without touching the booking service.
type Resolver interface {
	Resolve(candidate Interval, existing []Interval) error
}

// LinearResolver walks the blocking intervals one by one.  O(k) per
// check, which is fine at the booking density a single room sees.
type LinearResolver struct{}

// Resolve returns nil when the candidate fits, ErrConflict when any
// existing interval overlaps it.
func (LinearResolver) Resolve(candidate Interval, existing []Interval) error {
	for _, iv := range existing {
		if candidate.Overlaps(iv) {
			return ErrConflict
		}
	}
	return nil
}
