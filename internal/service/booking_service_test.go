package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/queue"
	"github.com/iliyamo/room-reservation/internal/repository"
	"github.com/iliyamo/room-reservation/internal/schedule"
)

// memStore is an in-memory stand-in for the room and booking
// repositories.  It mirrors their semantics: reads skip soft-deleted
// rows, SoftDelete filters by owner unless owner is 0, and blocking
// means neither cancelled nor completed.
type memStore struct {
	rooms    map[uint64]*model.Room
	bookings map[uint64]*model.Booking
	nextID   uint64

	lockErr      error // injected LockForBooking failure
	setStatusErr error // injected SetStatus failure
}

func newMemStore(roomIDs ...uint64) *memStore {
	st := &memStore{
		rooms:    make(map[uint64]*model.Room),
		bookings: make(map[uint64]*model.Booking),
	}
	for _, id := range roomIDs {
		st.rooms[id] = &model.Room{ID: id, Name: "room", Status: model.RoomAvailable}
	}
	return st
}

func (st *memStore) clone() *memStore {
	out := &memStore{
		rooms:        make(map[uint64]*model.Room, len(st.rooms)),
		bookings:     make(map[uint64]*model.Booking, len(st.bookings)),
		nextID:       st.nextID,
		lockErr:      st.lockErr,
		setStatusErr: st.setStatusErr,
	}
	for id, r := range st.rooms {
		cp := *r
		out.rooms[id] = &cp
	}
	for id, b := range st.bookings {
		cp := *b
		out.bookings[id] = &cp
	}
	return out
}

// RoomStore

func (st *memStore) GetByID(_ context.Context, id uint64) (*model.Room, error) {
	r, ok := st.rooms[id]
	if !ok || r.DeletedAt != nil {
		return nil, repository.ErrRoomNotFound
	}
	cp := *r
	return &cp, nil
}

func (st *memStore) LockForBooking(_ context.Context, id uint64) error {
	if st.lockErr != nil {
		return st.lockErr
	}
	if r, ok := st.rooms[id]; !ok || r.DeletedAt != nil {
		return repository.ErrRoomNotFound
	}
	return nil
}

func (st *memStore) SetStatus(_ context.Context, id uint64, status model.RoomStatus, now time.Time) error {
	if st.setStatusErr != nil {
		return st.setStatusErr
	}
	r, ok := st.rooms[id]
	if !ok {
		return repository.ErrRoomNotFound
	}
	r.Status = status
	r.UpdatedAt = now
	return nil
}

// BookingStore

func (st *memStore) Insert(_ context.Context, b *model.Booking) error {
	st.nextID++
	b.ID = st.nextID
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	st.bookings[b.ID] = &cp
	return nil
}

func (st *memStore) FindOverlapping(_ context.Context, roomID uint64, start, end time.Time, excludeID uint64) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range st.bookings {
		if b.RoomID != roomID || b.DeletedAt != nil || !b.Status.Blocking() || b.ID == excludeID {
			continue
		}
		if b.StartTime.Before(end) && b.EndTime.After(start) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (st *memStore) GetBookingByID(_ context.Context, id uint64) (*model.Booking, error) {
	b, ok := st.bookings[id]
	if !ok || b.DeletedAt != nil {
		return nil, repository.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (st *memStore) ListByUser(_ context.Context, userID uint64) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range st.bookings {
		if b.UserID == userID && b.DeletedAt == nil {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (st *memStore) ListAll(_ context.Context) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range st.bookings {
		if b.DeletedAt == nil {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (st *memStore) UpdateStatus(_ context.Context, id uint64, status model.BookingStatus, now time.Time) error {
	b, ok := st.bookings[id]
	if !ok || b.DeletedAt != nil {
		return repository.ErrBookingNotFound
	}
	b.Status = status
	b.UpdatedAt = now
	return nil
}

func (st *memStore) SoftDelete(_ context.Context, id, userID uint64, now time.Time) (bool, error) {
	b, ok := st.bookings[id]
	if !ok || b.DeletedAt != nil {
		return false, nil
	}
	if userID != 0 && b.UserID != userID {
		return false, nil
	}
	b.Status = model.BookingCancelled
	b.DeletedAt = &now
	b.UpdatedAt = now
	return true, nil
}

func (st *memStore) CountBlocking(_ context.Context, roomID uint64) (int, error) {
	n := 0
	for _, b := range st.bookings {
		if b.RoomID == roomID && b.DeletedAt == nil && b.Status.Blocking() {
			n++
		}
	}
	return n, nil
}

// memTx snapshots the store when a transaction begins and restores the
// snapshot when the body fails, so tests observe real rollback.
type memTx struct {
	st *memStore
}

func (t memTx) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	snap := t.st.clone()
	if err := fn(ctx); err != nil {
		*t.st = *snap
		return err
	}
	return nil
}

// bookingFacade adapts memStore to BookingStore; GetByID would clash
// with the room method otherwise.
type bookingFacade struct {
	*memStore
}

func (f bookingFacade) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	return f.GetBookingByID(ctx, id)
}

func newTestService(st *memStore, opts ...Option) *BookingService {
	return NewBookingService(memTx{st: st}, st, bookingFacade{st}, opts...)
}

func hour(h int) time.Time {
	return time.Date(2026, time.April, 2, h, 0, 0, 0, time.UTC)
}

func TestCreateBooking(t *testing.T) {
	st := newMemStore(1)
	svc := newTestService(st)

	b, err := svc.CreateBooking(context.Background(), 1, 42, hour(9), hour(11))
	require.NoError(t, err)
	assert.NotZero(t, b.ID)
	assert.Equal(t, uint64(1), b.RoomID)
	assert.Equal(t, uint64(42), b.UserID)
	assert.Equal(t, model.BookingPending, b.Status)
	assert.Equal(t, hour(9), b.StartTime)
	assert.Equal(t, hour(11), b.EndTime)

	room, err := st.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, model.RoomBooked, room.Status)
}

func TestCreateBookingInitialStatusOption(t *testing.T) {
	st := newMemStore(1)
	svc := newTestService(st, WithInitialStatus(model.BookingConfirmed))

	b, err := svc.CreateBooking(context.Background(), 1, 42, hour(9), hour(10))
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, b.Status)

	// Terminal states are not a valid starting point and are ignored.
	svc = newTestService(newMemStore(2), WithInitialStatus(model.BookingCancelled))
	b, err = svc.CreateBooking(context.Background(), 2, 42, hour(9), hour(10))
	require.NoError(t, err)
	assert.Equal(t, model.BookingPending, b.Status)
}

func TestInitialStatus(t *testing.T) {
	s, err := InitialStatus("pending")
	require.NoError(t, err)
	assert.Equal(t, model.BookingPending, s)

	s, err = InitialStatus("confirmed")
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, s)

	for _, raw := range []string{"cancelled", "completed", "", "PENDING", "done"} {
		_, err := InitialStatus(raw)
		assert.Error(t, err, "%q is not a valid starting status", raw)
	}
}

func TestCreateBookingRejectsOverlap(t *testing.T) {
	st := newMemStore(1)
	svc := newTestService(st)
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, 1, 42, hour(10), hour(12))
	require.NoError(t, err)

	cases := []struct{ start, end time.Time }{
		{hour(10), hour(12)}, // identical
		{hour(11), hour(13)}, // overlaps the tail
		{hour(9), hour(11)},  // overlaps the head
		{hour(9), hour(13)},  // contains
		{hour(10), hour(11)}, // contained
	}
	for _, tc := range cases {
		_, err := svc.CreateBooking(ctx, 1, 7, tc.start, tc.end)
		assert.ErrorIs(t, err, schedule.ErrConflict, "[%v, %v)", tc.start, tc.end)
	}

	// Only the original booking survived.
	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCreateBookingBackToBack(t *testing.T) {
	st := newMemStore(1)
	svc := newTestService(st)
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, 1, 42, hour(10), hour(12))
	require.NoError(t, err)

	_, err = svc.CreateBooking(ctx, 1, 7, hour(12), hour(14))
	assert.NoError(t, err, "a booking starting at the previous end must fit")

	_, err = svc.CreateBooking(ctx, 1, 7, hour(8), hour(10))
	assert.NoError(t, err, "a booking ending at the next start must fit")
}

func TestCreateBookingSeparateRoomsDoNotConflict(t *testing.T) {
	st := newMemStore(1, 2)
	svc := newTestService(st)
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, 1, 42, hour(10), hour(12))
	require.NoError(t, err)
	_, err = svc.CreateBooking(ctx, 2, 42, hour(10), hour(12))
	assert.NoError(t, err)
}

func TestCreateBookingInvalidRange(t *testing.T) {
	svc := newTestService(newMemStore(1))

	_, err := svc.CreateBooking(context.Background(), 1, 42, hour(12), hour(10))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateBooking(context.Background(), 1, 42, hour(12), hour(12))
	assert.ErrorIs(t, err, ErrInvalidInput, "zero-length interval")
}

func TestCreateBookingUnknownRoom(t *testing.T) {
	svc := newTestService(newMemStore(1))

	_, err := svc.CreateBooking(context.Background(), 99, 42, hour(9), hour(10))
	assert.ErrorIs(t, err, repository.ErrRoomNotFound)
}

func TestCreateBookingRollsBackOnFailure(t *testing.T) {
	st := newMemStore(1)
	st.setStatusErr = errors.New("write failed")
	svc := newTestService(st)
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, 1, 42, hour(9), hour(11))
	require.Error(t, err)

	// The failed transaction must leave nothing behind: no booking row
	// and the room still available.
	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	room, err := st.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, model.RoomAvailable, room.Status)
}

func TestCancelBooking(t *testing.T) {
	st := newMemStore(1)
	svc := newTestService(st)
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, 1, 42, hour(9), hour(11))
	require.NoError(t, err)

	ok, err := svc.CancelBooking(ctx, b.ID, 42, model.RoleUser)
	require.NoError(t, err)
	assert.True(t, ok)

	// The slot frees up and the room's status follows.
	room, err := st.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, model.RoomAvailable, room.Status)

	_, err = svc.CreateBooking(ctx, 1, 7, hour(9), hour(11))
	assert.NoError(t, err, "cancelled bookings must not block the slot")

	// A second cancel finds no live row.
	_, err = svc.CancelBooking(ctx, b.ID, 42, model.RoleUser)
	assert.ErrorIs(t, err, repository.ErrBookingNotFound)
}

func TestCancelCompletedBookingRejected(t *testing.T) {
	st := newMemStore(1)
	svc := newTestService(st)
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, 1, 42, hour(9), hour(11))
	require.NoError(t, err)
	_, err = svc.ConfirmBooking(ctx, b.ID)
	require.NoError(t, err)
	_, err = svc.CompleteBooking(ctx, b.ID)
	require.NoError(t, err)

	for _, role := range []string{model.RoleUser, model.RoleAdmin} {
		ok, err := svc.CancelBooking(ctx, b.ID, 42, role)
		assert.ErrorIs(t, err, ErrInvalidTransition, "completed is terminal (%s)", role)
		assert.False(t, ok)
	}

	// The completed record survives untouched.
	got, err := bookingFacade{st}.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCompleted, got.Status)
	assert.Nil(t, got.DeletedAt)
}

func TestCancelBookingOwnership(t *testing.T) {
	st := newMemStore(1)
	svc := newTestService(st)
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, 1, 42, hour(9), hour(11))
	require.NoError(t, err)

	_, err = svc.CancelBooking(ctx, b.ID, 7, model.RoleUser)
	assert.ErrorIs(t, err, repository.ErrForbidden)

	// An admin may cancel anyone's booking.
	ok, err := svc.CancelBooking(ctx, b.ID, 7, model.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCancelKeepsRoomBookedWhileOthersRemain(t *testing.T) {
	st := newMemStore(1)
	svc := newTestService(st)
	ctx := context.Background()

	first, err := svc.CreateBooking(ctx, 1, 42, hour(9), hour(10))
	require.NoError(t, err)
	second, err := svc.CreateBooking(ctx, 1, 42, hour(10), hour(11))
	require.NoError(t, err)

	ok, err := svc.CancelBooking(ctx, first.ID, 42, model.RoleUser)
	require.NoError(t, err)
	require.True(t, ok)

	room, err := st.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, model.RoomBooked, room.Status, "one blocking booking remains")

	ok, err = svc.CancelBooking(ctx, second.ID, 42, model.RoleUser)
	require.NoError(t, err)
	require.True(t, ok)

	room, err = st.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, model.RoomAvailable, room.Status, "room frees when the last blocking booking goes")
}

func TestConfirmAndCompleteBooking(t *testing.T) {
	st := newMemStore(1)
	svc := newTestService(st)
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, 1, 42, hour(9), hour(11))
	require.NoError(t, err)

	confirmed, err := svc.ConfirmBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, confirmed.Status)

	_, err = svc.ConfirmBooking(ctx, b.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition, "confirm is not idempotent")

	completed, err := svc.CompleteBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCompleted, completed.Status)

	room, err := st.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, model.RoomAvailable, room.Status, "completed bookings stop blocking")

	_, err = svc.CompleteBooking(ctx, b.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCompleteRequiresConfirmed(t *testing.T) {
	st := newMemStore(1)
	svc := newTestService(st)
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, 1, 42, hour(9), hour(11))
	require.NoError(t, err)

	_, err = svc.CompleteBooking(ctx, b.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition, "pending cannot jump to completed")
}

func TestUpdateStatusRejectsCancellation(t *testing.T) {
	st := newMemStore(1)
	svc := newTestService(st)
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, 1, 42, hour(9), hour(11))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, b.ID, model.BookingCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition, "cancellation must go through CancelBooking")
}

func TestListForUser(t *testing.T) {
	st := newMemStore(1, 2)
	svc := newTestService(st)
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, 1, 42, hour(9), hour(10))
	require.NoError(t, err)
	_, err = svc.CreateBooking(ctx, 2, 42, hour(9), hour(10))
	require.NoError(t, err)
	_, err = svc.CreateBooking(ctx, 1, 7, hour(10), hour(11))
	require.NoError(t, err)

	mine, err := svc.ListForUser(ctx, 42)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, b := range mine {
		assert.Equal(t, uint64(42), b.UserID)
	}

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestBookingEventsPublished(t *testing.T) {
	st := newMemStore(1)
	var events []queue.BookingEvent
	svc := newTestService(st, WithPublisher(func(_ context.Context, ev queue.BookingEvent) error {
		events = append(events, ev)
		return nil
	}))
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, 1, 42, hour(9), hour(11))
	require.NoError(t, err)
	_, err = svc.CancelBooking(ctx, b.ID, 42, model.RoleUser)
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, queue.EventBookingCreated, events[0].Type)
	assert.Equal(t, b.ID, events[0].BookingID)
	assert.Equal(t, string(model.BookingPending), events[0].Status)
	assert.Equal(t, queue.EventBookingCancelled, events[1].Type)
	assert.Equal(t, string(model.BookingCancelled), events[1].Status)
}

func TestPublisherFailureDoesNotFailRequest(t *testing.T) {
	st := newMemStore(1)
	svc := newTestService(st, WithPublisher(func(context.Context, queue.BookingEvent) error {
		return errors.New("broker down")
	}))

	_, err := svc.CreateBooking(context.Background(), 1, 42, hour(9), hour(11))
	assert.NoError(t, err, "event delivery is best effort")
}
