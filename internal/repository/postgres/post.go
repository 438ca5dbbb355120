package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/feedhub/feedhub-server/internal/model"
)

var _ model.PostStore = (*PostRepository)(nil)

type PostRepository struct {
	db *Connection
}

func NewPostRepository(db *Connection) *PostRepository {
	return &PostRepository{
		db: db,
	}
}

// Create inserts the post and appends its ID to the owner's posts list
// in a single transaction. A missing owner rolls back the insert and
// surfaces as ErrNotFound.
func (r *PostRepository) Create(ctx context.Context, post model.Post) (model.Post, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return model.Post{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insertQuery := `INSERT INTO posts (id, title, content, image_url, creator_id)
					VALUES ($1, $2, $3, $4, $5)
					RETURNING id, title, content, image_url, creator_id, created_at, updated_at`

	var savedPost model.Post
	err = tx.QueryRow(ctx, insertQuery,
		post.ID, post.Title, post.Content, post.ImageURL, post.CreatorID,
	).Scan(
		&savedPost.ID, &savedPost.Title, &savedPost.Content, &savedPost.ImageURL,
		&savedPost.CreatorID, &savedPost.CreatedAt, &savedPost.UpdatedAt,
	)
	if err != nil {
		return model.Post{}, fmt.Errorf("failed to insert post: %w", err)
	}

	appendQuery := `UPDATE users SET posts = array_append(posts, $1), updated_at = now() WHERE id = $2`

	cmd, err := tx.Exec(ctx, appendQuery, post.ID, post.CreatorID)
	if err != nil {
		return model.Post{}, fmt.Errorf("failed to append post to user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return model.Post{}, model.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Post{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return savedPost, nil
}

func (r *PostRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Post, error) {
	query := `SELECT id, title, content, image_url, creator_id, created_at, updated_at
			  FROM posts WHERE id = $1`

	var post model.Post
	err := r.db.QueryRow(ctx, query, id).Scan(
		&post.ID, &post.Title, &post.Content, &post.ImageURL,
		&post.CreatorID, &post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Post{}, model.ErrNotFound
		}
		return model.Post{}, fmt.Errorf("failed to get post by id: %w", err)
	}

	return post, nil
}

func (r *PostRepository) Update(ctx context.Context, post model.Post) (model.Post, error) {
	query := `UPDATE posts SET title = $2, content = $3, image_url = $4, updated_at = now()
			  WHERE id = $1
			  RETURNING id, title, content, image_url, creator_id, created_at, updated_at`

	var savedPost model.Post
	err := r.db.QueryRow(ctx, query,
		post.ID, post.Title, post.Content, post.ImageURL,
	).Scan(
		&savedPost.ID, &savedPost.Title, &savedPost.Content, &savedPost.ImageURL,
		&savedPost.CreatorID, &savedPost.CreatedAt, &savedPost.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Post{}, model.ErrNotFound
		}
		return model.Post{}, fmt.Errorf("failed to update post: %w", err)
	}

	return savedPost, nil
}

// Delete removes the post and the owner's reference to it in a single
// transaction.
func (r *PostRepository) Delete(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	removeQuery := `UPDATE users SET posts = array_remove(posts, $1), updated_at = now() WHERE id = $2`

	if _, err := tx.Exec(ctx, removeQuery, id, ownerID); err != nil {
		return fmt.Errorf("failed to remove post from user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *PostRepository) List(ctx context.Context, limit, offset int) ([]model.Post, error) {
	query := `SELECT id, title, content, image_url, creator_id, created_at, updated_at
			  FROM posts
			  ORDER BY created_at DESC
			  LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		var post model.Post
		err := rows.Scan(
			&post.ID, &post.Title, &post.Content, &post.ImageURL,
			&post.CreatorID, &post.CreatedAt, &post.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}

	return posts, nil
}

func (r *PostRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM posts`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return total, nil
}
