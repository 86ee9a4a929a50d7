package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/room-reservation/internal/model"
)

// RoomRepo provides persistence for rooms.  Every read filters on
// `deleted_at IS NULL`: a soft-deleted room is invisible to the rest
// of the system.  Status writes that belong to the booking lifecycle
// go through LockForBooking/SetStatus inside a transaction owned by
// the booking service; the plain Update method is the admin path.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo returns a RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

const roomColumns = `id, name, status, created_at, updated_at, deleted_at`

func scanRoom(row interface{ Scan(...any) error }) (*model.Room, error) {
	var rm model.Room
	var status string
	var deletedAt sql.NullTime
	if err := row.Scan(&rm.ID, &rm.Name, &status, &rm.CreatedAt, &rm.UpdatedAt, &deletedAt); err != nil {
		return nil, err
	}
	rm.Status = model.RoomStatus(status)
	if deletedAt.Valid {
		t := deletedAt.Time
		rm.DeletedAt = &t
	}
	return &rm, nil
}

// Create inserts a room and reads the full row back so timestamps and
// defaults are populated.  A duplicate name among live rooms maps to
// ErrRoomNameExists (MySQL error 1062 on the unique index).
func (r *RoomRepo) Create(ctx context.Context, name string, status model.RoomStatus) (*model.Room, error) {
	q := from(ctx, r.db)
	res, err := q.ExecContext(ctx,
		`INSERT INTO rooms (name, status) VALUES (?, ?)`, name, string(status))
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return nil, ErrRoomNameExists
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID returns a live room or ErrRoomNotFound.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	row := from(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE id = ? AND deleted_at IS NULL`, id)
	rm, err := scanRoom(row)
	if err == sql.ErrNoRows {
		return nil, ErrRoomNotFound
	}
	return rm, err
}

// List returns live rooms, optionally restricted to a status.  When
// activeOnly is set only rooms whose status is `available` come back.
func (r *RoomRepo) List(ctx context.Context, activeOnly bool, status string) ([]model.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE deleted_at IS NULL`
	args := []any{}
	if activeOnly {
		query += ` AND status = ?`
		args = append(args, string(model.RoomAvailable))
	} else if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY id`
	rows, err := from(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Room, 0)
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rm)
	}
	return out, rows.Err()
}

// Update applies a partial update (name and/or status) to a live room
// and returns the refreshed row.  updated_at is always bumped.
func (r *RoomRepo) Update(ctx context.Context, id uint64, name *string, status *model.RoomStatus) (*model.Room, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}
	if name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *name)
	}
	if status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*status))
	}
	args = append(args, id)
	res, err := from(ctx, r.db).ExecContext(ctx,
		`UPDATE rooms SET `+strings.Join(sets, ", ")+` WHERE id = ? AND deleted_at IS NULL`, args...)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return nil, ErrRoomNameExists
		}
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Either absent or deleted; confirm with a read so an update
		// that changed nothing still succeeds.
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// SoftDelete tombstones a room.  Bookings are untouched.  Absent and
// already-deleted rooms both come back as ErrRoomNotFound: once a room
// is tombstoned it is invisible everywhere, so callers get the same
// answer a lookup would give and a repeated delete stays a 404 rather
// than a second state change.
func (r *RoomRepo) SoftDelete(ctx context.Context, id uint64) (*model.Room, error) {
	now := time.Now().UTC()
	res, err := from(ctx, r.db).ExecContext(ctx,
		`UPDATE rooms SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		now, now, id)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return nil, ErrRoomNotFound
	}
	row := from(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id)
	return scanRoom(row)
}

// LockForBooking takes an exclusive row lock on a live room.  Called
// inside the booking service's transaction it serializes concurrent
// create-booking requests for the same room: the second writer blocks
// here until the first commits, then sees its booking in the overlap
// query.  Outside a transaction the lock is released immediately and
// the call degrades to an existence check.
func (r *RoomRepo) LockForBooking(ctx context.Context, id uint64) error {
	var got uint64
	err := from(ctx, r.db).QueryRowContext(ctx,
		`SELECT id FROM rooms WHERE id = ? AND deleted_at IS NULL FOR UPDATE`, id).Scan(&got)
	if err == sql.ErrNoRows {
		return ErrRoomNotFound
	}
	return err
}

// SetStatus writes the derived status flag.  Reserved for the booking
// service; admin edits go through Update.
func (r *RoomRepo) SetStatus(ctx context.Context, id uint64, status model.RoomStatus, now time.Time) error {
	res, err := from(ctx, r.db).ExecContext(ctx,
		`UPDATE rooms SET status = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		string(status), now, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Row may simply already carry the status; only report a miss
		// when the room is truly gone.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
