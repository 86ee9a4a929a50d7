package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/room-reservation/internal/model"
)

// BookingRepo provides persistence for bookings.  It performs no
// validation beyond the structural: deciding whether a booking may be
// created or transitioned is the booking service's job.  All reads
// exclude soft-deleted rows, and timestamps are stored in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, room_id, user_id, start_time, end_time, status, created_at, updated_at, deleted_at`

func scanBooking(row interface{ Scan(...any) error }) (*model.Booking, error) {
	var b model.Booking
	var status string
	var deletedAt sql.NullTime
	if err := row.Scan(&b.ID, &b.RoomID, &b.UserID, &b.StartTime, &b.EndTime,
		&status, &b.CreatedAt, &b.UpdatedAt, &deletedAt); err != nil {
		return nil, err
	}
	parsed, err := model.ParseBookingStatus(status)
	if err != nil {
		return nil, err
	}
	b.Status = parsed
	if deletedAt.Valid {
		t := deletedAt.Time
		b.DeletedAt = &t
	}
	return &b, nil
}

// Insert writes a new booking row and populates ID and timestamps on
// the passed struct from the stored row.
func (r *BookingRepo) Insert(ctx context.Context, b *model.Booking) error {
	q := from(ctx, r.db)
	res, err := q.ExecContext(ctx,
		`INSERT INTO bookings (room_id, user_id, start_time, end_time, status) VALUES (?, ?, ?, ?, ?)`,
		b.RoomID, b.UserID, b.StartTime.UTC(), b.EndTime.UTC(), string(b.Status))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	stored, err := scanBooking(q.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, b.ID))
	if err != nil {
		return err
	}
	*b = *stored
	return nil
}

// FindOverlapping returns the blocking bookings of a room whose
// half-open interval intersects [start, end):
//
//  existing.start_time < end AND existing.end_time > start
//
// Cancelled and completed bookings never block, nor do soft-deleted
// rows.  excludeID lets a reschedule ignore the booking being moved;
// pass 0 to exclude nothing.
func (r *BookingRepo) FindOverlapping(ctx context.Context, roomID uint64, start, end time.Time, excludeID uint64) ([]model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
			  WHERE room_id = ?
				AND deleted_at IS NULL
				AND status NOT IN (?, ?)
				AND start_time < ? AND end_time > ?`
	args := []any{roomID, string(model.BookingCancelled), string(model.BookingCompleted), end.UTC(), start.UTC()}
	if excludeID != 0 {
		query += ` AND id <> ?`
		args = append(args, excludeID)
	}
	rows, err := from(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// GetByID returns a live booking or ErrBookingNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	row := from(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ? AND deleted_at IS NULL`, id)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	return b, err
}

// ListByUser returns a user's live bookings, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	return r.list(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE user_id = ? AND deleted_at IS NULL ORDER BY created_at DESC`,
		userID)
}

// ListAll returns every live booking, newest first.  Exposed to
// admins only by route policy.
func (r *BookingRepo) ListAll(ctx context.Context) ([]model.Booking, error) {
	return r.list(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE deleted_at IS NULL ORDER BY created_at DESC`)
}

func (r *BookingRepo) list(ctx context.Context, query string, args ...any) ([]model.Booking, error) {
	rows, err := from(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// UpdateStatus rewrites a live booking's status and bumps updated_at.
// Returns ErrBookingNotFound when no live row matched.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, status model.BookingStatus, now time.Time) error {
	res, err := from(ctx, r.db).ExecContext(ctx,
		`UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		string(status), now, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// SoftDelete cancels a booking in a single write: status flips to
// cancelled and deleted_at is set, so audit history survives.  When
// userID is non-zero the update is additionally filtered by owner, so
// one user can never cancel another's booking; admins pass 0.  The
// bool reports whether a row actually changed.
func (r *BookingRepo) SoftDelete(ctx context.Context, id, userID uint64, now time.Time) (bool, error) {
	query := `UPDATE bookings SET status = ?, deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`
	args := []any{string(model.BookingCancelled), now, now, id}
	if userID != 0 {
		query += ` AND user_id = ?`
		args = append(args, userID)
	}
	res, err := from(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountBlocking returns how many live, blocking bookings a room still
// has.  The booking service uses it after a cancellation to decide
// whether the room's stored status can return to available.
func (r *BookingRepo) CountBlocking(ctx context.Context, roomID uint64) (int, error) {
	var n int
	err := from(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings
		 WHERE room_id = ? AND deleted_at IS NULL AND status NOT IN (?, ?)`,
		roomID, string(model.BookingCancelled), string(model.BookingCompleted)).Scan(&n)
	return n, err
}
