package model

import "time"

// Role values stored in users.role and carried in the JWT "role"
// claim.  The booking service trusts these, not anything in a request
// body.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a row in the `users` table.  The password is stored
// only as a bcrypt hash.  Users are soft-deleted by admins the same
// way rooms and bookings are: DeletedAt is set and every read path
// filters it out.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique email address (lower-cased before storage).
//  PasswordHash – bcrypt hash of the password.
//  Role         – RoleUser or RoleAdmin.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
//  DeletedAt    – soft delete marker, nil while the account is live.
type User struct {
	ID           uint64     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only
// the SHA-256 hash of the raw token is stored; see utils.HashRefreshRaw.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the raw token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (nil if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
