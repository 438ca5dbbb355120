package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PostStore defines persistence operations for posts.
//
// Create and Delete also maintain the owner's denormalized posts list:
// both writes happen in a single transaction, so the post table and the
// list can not diverge.
type PostStore interface {
	Create(ctx context.Context, post Post) (Post, error)
	GetByID(ctx context.Context, id uuid.UUID) (Post, error)
	Update(ctx context.Context, post Post) (Post, error)
	Delete(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]Post, error)
	Count(ctx context.Context) (int, error)
}

// Post represents a published post. CreatorID is set once at creation
// and never changes.
type Post struct {
	ID        uuid.UUID
	Title     string
	Content   string
	ImageURL  string
	CreatorID uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PostInput carries the mutable fields of a post.
type PostInput struct {
	Title    string
	Content  string
	ImageURL string
}

// PostPage is one page of the feed plus the total number of posts.
type PostPage struct {
	Posts      []Post
	TotalItems int
}
