// Package room reads and updates room records owned by the messenger's core
// service. Like users, rooms are external records: the media gateway only
// checks picture-change permissions and writes the room picture URL.
package room

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Room represents a chat room. Direct-message rooms carry the two friend ids;
// regular rooms have a creator instead.
type Room struct {
	ID         string    `json:"id"`
	CreatorID  string    `json:"creatorID"`
	ProfilePic *string   `json:"profilePic,omitempty"`
	FriendA    *string   `json:"-"`
	FriendB    *string   `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// IsDM reports whether the room is a direct-message (friendship) room.
// DM rooms never have a settable room picture.
func (r *Room) IsDM() bool {
	return r.FriendA != nil && r.FriendB != nil
}

// ErrNotFound is returned when a room does not exist.
var ErrNotFound = errors.New("room not found")

// Repository handles all room database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetByID fetches a room by its UUID.
func (r *Repository) GetByID(ctx context.Context, id string) (*Room, error) {
	rm := &Room{}
	err := r.db.QueryRow(ctx,
		`SELECT id, creator_id, profile_pic, friend_a, friend_b, created_at, updated_at
		 FROM rooms WHERE id = $1`,
		id,
	).Scan(&rm.ID, &rm.CreatorID, &rm.ProfilePic, &rm.FriendA, &rm.FriendB, &rm.CreatedAt, &rm.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get room by id: %w", err)
	}
	return rm, nil
}

// SetRoomPic stores the public URL of the room's transcoded picture.
func (r *Repository) SetRoomPic(ctx context.Context, id, url string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE rooms SET profile_pic = $2, updated_at = now() WHERE id = $1`,
		id, url,
	)
	if err != nil {
		return fmt.Errorf("set room pic: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
