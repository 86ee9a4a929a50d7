package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/room-reservation/internal/model"
)

// UserRepo provides persistence for accounts.  Passwords arrive
// already hashed; hashing lives in utils so the repository stays a
// thin SQL layer.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, email, password_hash, role, created_at, updated_at, deleted_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var deletedAt sql.NullTime
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role,
		&u.CreatedAt, &u.UpdatedAt, &deletedAt); err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		u.DeletedAt = &t
	}
	return &u, nil
}

// Create inserts a user and returns its id.  Emails are normalized to
// lower case first; a duplicate maps to ErrEmailExists via the MySQL
// 1062 duplicate-key error.
func (r *UserRepo) Create(ctx context.Context, email, passwordHash, role string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := from(ctx, r.db).ExecContext(ctx,
		`INSERT INTO users (email, password_hash, role) VALUES (?, ?, ?)`,
		email, passwordHash, role)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a live user by normalized email or
// ErrUserNotFound.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := from(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? AND deleted_at IS NULL LIMIT 1`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	return u, err
}

// GetByID fetches a live user by id or ErrUserNotFound.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	row := from(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ? AND deleted_at IS NULL LIMIT 1`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	return u, err
}

// ListActive returns every live user, newest first.  Admin-only by
// route policy.
func (r *UserRepo) ListActive(ctx context.Context) ([]model.User, error) {
	rows, err := from(ctx, r.db).QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE deleted_at IS NULL ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// SoftDelete tombstones an account.  Returns whether a live row was
// affected.
func (r *UserRepo) SoftDelete(ctx context.Context, id uint64) (bool, error) {
	now := time.Now().UTC()
	res, err := from(ctx, r.db).ExecContext(ctx,
		`UPDATE users SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		now, now, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
