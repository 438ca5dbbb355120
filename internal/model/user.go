package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	Create(ctx context.Context, user User) (User, error)
}

// User represents a registered account. Posts holds the identifiers of
// the posts this user created, oldest first.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Status       string
	Posts        []uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Creator is the minimal owner projection returned alongside a created post.
type Creator struct {
	ID   uuid.UUID
	Name string
}
