// Package repository defines the data access layer for rooms,
// bookings, users and refresh tokens.  Sentinel errors declared here
// let the service and handler layers distinguish failure kinds with
// errors.Is instead of matching on driver error strings.
package repository

import "errors"

// ErrRoomNotFound is returned when a room does not exist or has been
// soft-deleted.  Handlers map it to HTTP 404.
var ErrRoomNotFound = errors.New("room not found")

// ErrRoomNameExists is returned when creating or renaming a room would
// collide with another live room's name.  Handlers map it to HTTP 409.
var ErrRoomNameExists = errors.New("room name already exists")

// ErrBookingNotFound is returned when a booking does not exist or has
// been soft-deleted.  Handlers map it to HTTP 404.
var ErrBookingNotFound = errors.New("booking not found")

// ErrUserNotFound is returned when a user lookup misses or the
// account is soft-deleted.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailExists is returned when registering with an email that is
// already taken.
var ErrEmailExists = errors.New("email already exists")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers map it to HTTP 403.
var ErrForbidden = errors.New("forbidden")
