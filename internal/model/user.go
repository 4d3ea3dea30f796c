package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	// ExistingIDs returns the subset of ids that resolve to users.
	ExistingIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
	Create(ctx context.Context, user User) (User, error)
}

// User represents a registered account.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicProfile is the subset of User safe to expose to other users.
type PublicProfile struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

// Public returns the user's public profile.
func (u User) Public() PublicProfile {
	return PublicProfile{ID: u.ID, Username: u.Username, Email: u.Email}
}
