package model

import "time"

// RoomStatus is the stored availability flag on a room.  It is a
// derived value: the booking service sets it to RoomBooked while at
// least one blocking booking exists and back to RoomAvailable when
// the last one is cancelled.  Admins may also set it directly.
type RoomStatus string

const (
	RoomAvailable RoomStatus = "available" // room has no blocking booking
	RoomBooked    RoomStatus = "booked"    // room has at least one blocking booking
)

// ValidRoomStatus reports whether s is one of the two known statuses.
// Unknown values are rejected at the API and storage boundaries so
// free-text statuses never enter the system.
func ValidRoomStatus(s string) bool {
	switch RoomStatus(s) {
	case RoomAvailable, RoomBooked:
		return true
	}
	return false
}

// Room mirrors the `rooms` table.  A room with a non-nil DeletedAt is
// soft-deleted: it is excluded from every read path and cannot take
// new bookings.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – unique name among non-deleted rooms.
//  Status    – RoomAvailable or RoomBooked.
//  CreatedAt – creation timestamp (UTC).
//  UpdatedAt – last update timestamp (UTC).
//  DeletedAt – soft delete marker, nil while the room is live.
type Room struct {
	ID        uint64     `json:"id"`
	Name      string     `json:"name"`
	Status    RoomStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}
