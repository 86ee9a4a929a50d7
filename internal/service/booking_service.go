// Package service holds the booking lifecycle logic.  It is the only
// place where rooms and bookings are written together, and it always
// does so inside one transaction supplied by repository.TxManager.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/queue"
	"github.com/iliyamo/room-reservation/internal/repository"
	"github.com/iliyamo/room-reservation/internal/schedule"
)

// ErrInvalidInput is returned for malformed requests such as an
// interval whose start is not before its end.  Handlers map it to 400.
var ErrInvalidInput = errors.New("invalid input")

// ErrInvalidTransition is returned for illegal booking status changes,
// e.g. cancelling an already-cancelled booking or reverting to
// pending.
var ErrInvalidTransition = errors.New("invalid status transition")

// RoomStore is the slice of the room repository the booking service
// needs.  *repository.RoomRepo satisfies it; tests substitute an
// in-memory fake.
type RoomStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Room, error)
	LockForBooking(ctx context.Context, id uint64) error
	SetStatus(ctx context.Context, id uint64, status model.RoomStatus, now time.Time) error
}

// BookingStore is the slice of the booking repository the booking
// service needs.  *repository.BookingRepo satisfies it.
type BookingStore interface {
	Insert(ctx context.Context, b *model.Booking) error
	FindOverlapping(ctx context.Context, roomID uint64, start, end time.Time, excludeID uint64) ([]model.Booking, error)
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error)
	ListAll(ctx context.Context) ([]model.Booking, error)
	UpdateStatus(ctx context.Context, id uint64, status model.BookingStatus, now time.Time) error
	SoftDelete(ctx context.Context, id, userID uint64, now time.Time) (bool, error)
	CountBlocking(ctx context.Context, roomID uint64) (int, error)
}

// Publisher delivers a booking event to the message broker.  Failures
// are logged and otherwise ignored; events never affect the outcome of
// the request that produced them.
type Publisher func(ctx context.Context, ev queue.BookingEvent) error

// BookingService enforces the booking state machine and the
// no-overlap invariant.  Whether new bookings start as pending or
// confirmed is a deployment decision, fixed at construction.
type BookingService struct {
	tx       repository.TxManager
	rooms    RoomStore
	bookings BookingStore
	resolver schedule.Resolver
	initial  model.BookingStatus
	publish  Publisher
}

// Option configures a BookingService.
type Option func(*BookingService)

// WithInitialStatus sets the status newly created bookings start in.
// Only BookingPending and BookingConfirmed are accepted; anything else
// is ignored and the default (pending) is kept.
func WithInitialStatus(s model.BookingStatus) Option {
	return func(b *BookingService) {
		if s == model.BookingPending || s == model.BookingConfirmed {
			b.initial = s
		}
	}
}

// WithResolver swaps the overlap resolver, e.g. for an interval tree.
func WithResolver(r schedule.Resolver) Option {
	return func(b *BookingService) { b.resolver = r }
}

// WithPublisher wires a broker publisher for booking events.
func WithPublisher(p Publisher) Option {
	return func(b *BookingService) { b.publish = p }
}

// InitialStatus parses a configured starting status for new bookings.
// Only pending and confirmed are valid starting points; terminal or
// unknown values are configuration errors the caller should treat as
// fatal.
func InitialStatus(raw string) (model.BookingStatus, error) {
	s, err := model.ParseBookingStatus(raw)
	if err != nil {
		return "", err
	}
	if s != model.BookingPending && s != model.BookingConfirmed {
		return "", fmt.Errorf("bookings cannot start as %s", s)
	}
	return s, nil
}

// NewBookingService constructs the service.  All three dependencies
// must be non-nil.
func NewBookingService(tx repository.TxManager, rooms RoomStore, bookings BookingStore, opts ...Option) *BookingService {
	if tx == nil || rooms == nil || bookings == nil {
		panic("nil dependency passed to NewBookingService")
	}
	s := &BookingService{
		tx:       tx,
		rooms:    rooms,
		bookings: bookings,
		resolver: schedule.LinearResolver{},
		initial:  model.BookingPending,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateBooking reserves a room for [start, end).  The overlap check
// and the two writes (booking insert, room status) happen inside one
// transaction, with the room row locked for its duration, so two
// concurrent requests for overlapping intervals on the same room
// cannot both succeed.  Error kinds: ErrInvalidInput, schedule's
// ErrConflict, repository.ErrRoomNotFound.
func (s *BookingService) CreateBooking(ctx context.Context, roomID, userID uint64, start, end time.Time) (*model.Booking, error) {
	candidate, err := schedule.NewInterval(start, end)
	if err != nil {
		return nil, ErrInvalidInput
	}
	if _, err := s.rooms.GetByID(ctx, roomID); err != nil {
		return nil, err
	}

	booking := &model.Booking{
		RoomID:    roomID,
		UserID:    userID,
		StartTime: candidate.Start,
		EndTime:   candidate.End,
		Status:    s.initial,
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		// Serialize with other create requests for the same room.
		if err := s.rooms.LockForBooking(ctx, roomID); err != nil {
			return err
		}
		existing, err := s.bookings.FindOverlapping(ctx, roomID, candidate.Start, candidate.End, 0)
		if err != nil {
			return err
		}
		if err := s.resolver.Resolve(candidate, intervals(existing)); err != nil {
			return err
		}
		if err := s.bookings.Insert(ctx, booking); err != nil {
			return err
		}
		return s.rooms.SetStatus(ctx, roomID, model.RoomBooked, time.Now().UTC())
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, queue.EventBookingCreated, booking)
	return booking, nil
}

// CancelBooking cancels a booking on behalf of callerID.  Owners may
// cancel their own bookings; admins may cancel any.  Terminal bookings
// never move again: cancelling a completed booking reports
// ErrInvalidTransition, and a second cancel sees the tombstoned row as
// not found.  When the room has no blocking booking left, its stored
// status returns to available in the same transaction.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, callerID uint64, role string) (bool, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return false, err
	}
	if !booking.Status.CanTransitionTo(model.BookingCancelled) {
		return false, ErrInvalidTransition
	}
	admin := role == model.RoleAdmin
	if !admin && booking.UserID != callerID {
		return false, repository.ErrForbidden
	}

	changed := false
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		now := time.Now().UTC()
		owner := callerID
		if admin {
			owner = 0 // skip the ownership filter
		}
		ok, err := s.bookings.SoftDelete(ctx, bookingID, owner, now)
		if err != nil {
			return err
		}
		changed = ok
		if !ok {
			return nil
		}
		left, err := s.bookings.CountBlocking(ctx, booking.RoomID)
		if err != nil {
			return err
		}
		if left == 0 {
			return s.rooms.SetStatus(ctx, booking.RoomID, model.RoomAvailable, now)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if changed {
		booking.Status = model.BookingCancelled
		s.emit(ctx, queue.EventBookingCancelled, booking)
	}
	return changed, nil
}

// UpdateStatus applies an explicit state-machine transition, used by
// admins to confirm or complete bookings.
func (s *BookingService) UpdateStatus(ctx context.Context, bookingID uint64, next model.BookingStatus) (*model.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.Status.CanTransitionTo(next) {
		return nil, ErrInvalidTransition
	}
	if next == model.BookingCancelled {
		// Cancellation also tombstones the row; route it through the
		// cancel path so the room status stays consistent.
		return nil, ErrInvalidTransition
	}
	if err := s.bookings.UpdateStatus(ctx, bookingID, next, time.Now().UTC()); err != nil {
		return nil, err
	}
	return s.bookings.GetByID(ctx, bookingID)
}

// ConfirmBooking moves a pending booking to confirmed.
func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID uint64) (*model.Booking, error) {
	return s.UpdateStatus(ctx, bookingID, model.BookingConfirmed)
}

// CompleteBooking moves a confirmed booking to completed and frees the
// room's stored status when nothing blocking remains.
func (s *BookingService) CompleteBooking(ctx context.Context, bookingID uint64) (*model.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.Status.CanTransitionTo(model.BookingCompleted) {
		return nil, ErrInvalidTransition
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		now := time.Now().UTC()
		if err := s.bookings.UpdateStatus(ctx, bookingID, model.BookingCompleted, now); err != nil {
			return err
		}
		left, err := s.bookings.CountBlocking(ctx, booking.RoomID)
		if err != nil {
			return err
		}
		if left == 0 {
			return s.rooms.SetStatus(ctx, booking.RoomID, model.RoomAvailable, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.bookings.GetByID(ctx, bookingID)
}

// ListForUser returns the caller's live bookings, newest first.
func (s *BookingService) ListForUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

// ListAll returns every live booking.  Admin-only by route policy.
func (s *BookingService) ListAll(ctx context.Context) ([]model.Booking, error) {
	return s.bookings.ListAll(ctx)
}

func (s *BookingService) emit(ctx context.Context, typ string, b *model.Booking) {
	if s.publish == nil {
		return
	}
	ev := queue.BookingEvent{
		Type:       typ,
		BookingID:  b.ID,
		RoomID:     b.RoomID,
		UserID:     b.UserID,
		StartTime:  b.StartTime.Format(time.RFC3339),
		EndTime:    b.EndTime.Format(time.RFC3339),
		Status:     string(b.Status),
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.publish(ctx, ev); err != nil {
		log.Printf("booking-service: publish %s event failed: %v", typ, err)
	}
}

func intervals(bookings []model.Booking) []schedule.Interval {
	out := make([]schedule.Interval, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, schedule.Interval{Start: b.StartTime, End: b.EndTime})
	}
	return out
}
