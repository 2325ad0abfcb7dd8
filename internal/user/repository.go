// Package user reads and updates user records owned by the messenger's core
// service. The media gateway writes exactly one field — the profile picture
// URL — and otherwise treats these records as read-only.
package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// User represents a registered Pulse user, reduced to what the media gateway needs.
type User struct {
	ID         string    `json:"id"`
	ProfilePic *string   `json:"profilePic,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Session is one active login session of a user.
type Session struct {
	ID        string
	UserID    string
	IP        string
	UserAgent string
	Token     string
}

// ErrNotFound is returned when a user does not exist.
var ErrNotFound = errors.New("user not found")

// ErrSessionNotFound is returned when no active session matches a token.
var ErrSessionNotFound = errors.New("session not found")

// Repository handles all user database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetByID fetches a user by their UUID.
func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	u := &User{}
	err := r.db.QueryRow(ctx,
		`SELECT id, profile_pic, created_at, updated_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.ProfilePic, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// SetProfilePic stores the public URL of the user's transcoded profile picture.
func (r *Repository) SetProfilePic(ctx context.Context, id, url string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET profile_pic = $2, updated_at = now() WHERE id = $1`,
		id, url,
	)
	if err != nil {
		return fmt.Errorf("set profile pic: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// FindSessionByToken returns the active session carrying the given bearer
// token, confirming the token was not revoked since it was issued.
func (r *Repository) FindSessionByToken(ctx context.Context, token string) (*Session, error) {
	s := &Session{}
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, ip, useragent, token
		 FROM sessions WHERE token = $1`,
		token,
	).Scan(&s.ID, &s.UserID, &s.IP, &s.UserAgent, &s.Token)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find session by token: %w", err)
	}
	return s, nil
}
