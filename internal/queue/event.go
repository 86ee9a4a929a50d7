// Package queue defines the booking event payloads exchanged over the
// message broker and the background consumer that records them.
package queue

// Event types carried in BookingEvent.Type.
const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
)

// BookingEvent is published whenever a booking is created or
// cancelled.  It carries enough context for downstream consumers to
// log or notify without querying the primary database.  Timestamps
// are RFC3339 strings in UTC.
type BookingEvent struct {
	Type       string `json:"type"`
	BookingID  uint64 `json:"booking_id"`
	RoomID     uint64 `json:"room_id"`
	UserID     uint64 `json:"user_id"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Status     string `json:"status"`
	OccurredAt string `json:"occurred_at"`
}
