package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/feedhub/feedhub-server/internal/apperror"
	"github.com/feedhub/feedhub-server/internal/logger"
	"github.com/feedhub/feedhub-server/internal/model"
)

// Post implements the post lifecycle: create, read, update, delete and
// the paginated feed. Ownership checks and input validation live here
// so the REST and GraphQL adapters can not drift apart.
type Post struct {
	postStore model.PostStore
	userStore model.UserStore
	storage   model.Storage
	notifier  model.Notifier
	logger    *logger.Logger
}

// NewPost creates a new Post service instance. The notifier is an
// injected dependency, not a process-wide handle.
func NewPost(
	postStore model.PostStore,
	userStore model.UserStore,
	storage model.Storage,
	notifier model.Notifier,
	logger *logger.Logger,
) *Post {
	return &Post{
		postStore: postStore,
		userStore: userStore,
		storage:   storage,
		notifier:  notifier,
		logger:    logger,
	}
}

// The feed is served two posts per page, newest first.
const postsPerPage = 2

// Create validates the input and persists a new post owned by
// creatorID. The post insert and the owner's posts-list append run in
// one store transaction; a "post created" event is emitted best-effort.
func (s *Post) Create(ctx context.Context, input model.PostInput, creatorID uuid.UUID) (model.Post, model.Creator, error) {
	if input.ImageURL == "" {
		return model.Post{}, model.Creator{}, apperror.NewValidation("missing image")
	}
	if err := validatePostInput(input.Title, input.Content); err != nil {
		return model.Post{}, model.Creator{}, err
	}

	user, err := s.userStore.GetByID(ctx, creatorID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Post{}, model.Creator{}, apperror.NewNotFound("can't find user")
	}
	if err != nil {
		return model.Post{}, model.Creator{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	post := model.Post{
		ID:        uuid.New(),
		Title:     strings.TrimSpace(input.Title),
		Content:   strings.TrimSpace(input.Content),
		ImageURL:  input.ImageURL,
		CreatorID: creatorID,
	}

	created, err := s.postStore.Create(ctx, post)
	if errors.Is(err, model.ErrNotFound) {
		return model.Post{}, model.Creator{}, apperror.NewNotFound("can't find user")
	}
	if err != nil {
		return model.Post{}, model.Creator{}, fmt.Errorf("failed to create post: %w", err)
	}

	s.notifier.PostCreated(created)

	s.logger.Info("Post service: post created",
		"post_id", created.ID,
		"creator_id", creatorID)

	return created, model.Creator{ID: user.ID, Name: user.Name}, nil
}

// Get returns the post by ID.
func (s *Post) Get(ctx context.Context, postID uuid.UUID) (model.Post, error) {
	post, err := s.postStore.GetByID(ctx, postID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Post{}, apperror.NewNotFound("can't find post")
	}
	if err != nil {
		return model.Post{}, fmt.Errorf("failed to get post by id: %w", err)
	}

	return post, nil
}

// Update replaces the title, content and image of a post. Only the
// creator may update; when the image reference changes the old stored
// object is deleted best-effort.
func (s *Post) Update(ctx context.Context, postID uuid.UUID, input model.PostInput, requesterID uuid.UUID) (model.Post, error) {
	if input.ImageURL == "" {
		return model.Post{}, apperror.NewValidation("no file picked")
	}
	if err := validatePostInput(input.Title, input.Content); err != nil {
		return model.Post{}, err
	}

	post, err := s.postStore.GetByID(ctx, postID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Post{}, apperror.NewNotFound("can't find post")
	}
	if err != nil {
		return model.Post{}, fmt.Errorf("failed to get post by id: %w", err)
	}

	if post.CreatorID != requesterID {
		return model.Post{}, apperror.NewForbidden("not authorized to edit this post")
	}

	if input.ImageURL != post.ImageURL {
		if err := s.storage.Delete(ctx, post.ImageURL); err != nil {
			s.logger.Error("Post service: failed to delete old image",
				"post_id", postID,
				"key", post.ImageURL,
				"error", err.Error())
		}
	}

	post.Title = strings.TrimSpace(input.Title)
	post.Content = strings.TrimSpace(input.Content)
	post.ImageURL = input.ImageURL

	updated, err := s.postStore.Update(ctx, post)
	if errors.Is(err, model.ErrNotFound) {
		return model.Post{}, apperror.NewNotFound("can't find post")
	}
	if err != nil {
		return model.Post{}, fmt.Errorf("failed to update post: %w", err)
	}

	s.logger.Info("Post service: post updated", "post_id", postID)

	return updated, nil
}

// Delete removes a post, its stored image (best-effort) and the
// owner's reference to it. The post delete and the posts-list removal
// run in one store transaction.
func (s *Post) Delete(ctx context.Context, postID uuid.UUID, requesterID uuid.UUID) error {
	post, err := s.postStore.GetByID(ctx, postID)
	if errors.Is(err, model.ErrNotFound) {
		return apperror.NewNotFound("can't find post")
	}
	if err != nil {
		return fmt.Errorf("failed to get post by id: %w", err)
	}

	if post.CreatorID != requesterID {
		return apperror.NewForbidden("not authorized to delete this post")
	}

	if err := s.storage.Delete(ctx, post.ImageURL); err != nil {
		s.logger.Error("Post service: failed to delete image",
			"post_id", postID,
			"key", post.ImageURL,
			"error", err.Error())
	}

	if err := s.postStore.Delete(ctx, postID, post.CreatorID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return apperror.NewNotFound("can't find post")
		}
		return fmt.Errorf("failed to delete post: %w", err)
	}

	s.logger.Info("Post service: post deleted", "post_id", postID)

	return nil
}

// List returns one page of the feed, newest first, plus the total
// number of posts. Page defaults to 1 when absent or below 1.
func (s *Post) List(ctx context.Context, page int) (model.PostPage, error) {
	if page < 1 {
		page = 1
	}

	total, err := s.postStore.Count(ctx)
	if err != nil {
		return model.PostPage{}, fmt.Errorf("failed to count posts: %w", err)
	}

	posts, err := s.postStore.List(ctx, postsPerPage, (page-1)*postsPerPage)
	if err != nil {
		return model.PostPage{}, fmt.Errorf("failed to list posts: %w", err)
	}

	return model.PostPage{Posts: posts, TotalItems: total}, nil
}

func validatePostInput(title, content string) error {
	if len(strings.TrimSpace(title)) < 5 {
		return apperror.NewValidation("title must be at least 5 characters")
	}
	if len(strings.TrimSpace(content)) < 5 {
		return apperror.NewValidation("content must be at least 5 characters")
	}
	return nil
}
