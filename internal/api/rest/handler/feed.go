package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/feedhub/feedhub-server/internal/apperror"
	"github.com/feedhub/feedhub-server/internal/logger"
	"github.com/feedhub/feedhub-server/internal/model"
)

// PostService defines the post lifecycle operations.
type PostService interface {
	Create(ctx context.Context, input model.PostInput, creatorID uuid.UUID) (model.Post, model.Creator, error)
	Get(ctx context.Context, postID uuid.UUID) (model.Post, error)
	Update(ctx context.Context, postID uuid.UUID, input model.PostInput, requesterID uuid.UUID) (model.Post, error)
	Delete(ctx context.Context, postID uuid.UUID, requesterID uuid.UUID) error
	List(ctx context.Context, page int) (model.PostPage, error)
}

// Feed handles REST endpoints for posts.
type Feed struct {
	postService    PostService
	storage        model.Storage
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewFeed creates a new Feed handler.
func NewFeed(postService PostService, storage model.Storage, contextManager model.ContextManager, logger *logger.Logger) *Feed {
	return &Feed{
		postService:    postService,
		storage:        storage,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Only browser image types are accepted; anything else is treated as
// if no file was sent, matching the original upload filter.
var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpg":  true,
	"image/jpeg": true,
}

// List returns one page of the feed.
func (h *Feed) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAuth(w, r); !ok {
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	result, err := h.postService.List(r.Context(), page)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]any{
		"message":    "fetch success",
		"posts":      viewOfPosts(result.Posts),
		"totalItems": result.TotalItems,
	})
}

// Create stores the uploaded image and persists a new post.
func (h *Feed) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.requireAuth(w, r)
	if !ok {
		return
	}

	imageKey, err := h.uploadImage(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	input := model.PostInput{
		Title:    r.FormValue("title"),
		Content:  r.FormValue("content"),
		ImageURL: imageKey,
	}

	post, creator, err := h.postService.Create(r.Context(), input, identity.UserID)
	if err != nil {
		h.discardImage(r.Context(), imageKey)
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, map[string]any{
		"message": "post create success",
		"post":    viewOfPost(post),
		"creator": map[string]any{"_id": creator.ID.String(), "name": creator.Name},
	})
}

// Get returns a single post.
func (h *Feed) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAuth(w, r); !ok {
		return
	}

	postID, err := parsePostID(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	post, err := h.postService.Get(r.Context(), postID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]any{
		"message": "find your post success",
		"post":    viewOfPost(post),
	})
}

type updateRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Image   string `json:"image"`
}

// Update replaces a post's title, content and image. The image may be
// a newly uploaded file or the existing stored reference sent as the
// `image` field.
func (h *Feed) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.requireAuth(w, r)
	if !ok {
		return
	}

	postID, err := parsePostID(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var input model.PostInput
	var uploadedKey string

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req updateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, h.logger, apperror.NewValidation("invalid request body"))
			return
		}
		input = model.PostInput{Title: req.Title, Content: req.Content, ImageURL: req.Image}
	} else {
		uploadedKey, err = h.uploadImage(r)
		if err != nil {
			respondError(w, h.logger, err)
			return
		}
		input = model.PostInput{
			Title:    r.FormValue("title"),
			Content:  r.FormValue("content"),
			ImageURL: uploadedKey,
		}
		if input.ImageURL == "" {
			input.ImageURL = r.FormValue("image")
		}
	}

	post, err := h.postService.Update(r.Context(), postID, input, identity.UserID)
	if err != nil {
		h.discardImage(r.Context(), uploadedKey)
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, map[string]any{
		"message": "update success",
		"post":    viewOfPost(post),
	})
}

// Delete removes a post.
func (h *Feed) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.requireAuth(w, r)
	if !ok {
		return
	}

	postID, err := parsePostID(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if err := h.postService.Delete(r.Context(), postID, identity.UserID); err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]any{
		"message": "delete post success",
	})
}

func (h *Feed) requireAuth(w http.ResponseWriter, r *http.Request) (model.Identity, bool) {
	identity := h.contextManager.GetIdentityFromContext(r.Context())
	if !identity.IsAuthenticated {
		respondError(w, h.logger, apperror.NewUnauthorized("not authenticated"))
		return model.Identity{}, false
	}
	return identity, true
}

// uploadImage stores the multipart `image` file and returns its key.
// A missing file, or one with a non-image content type, returns an
// empty key; the service decides whether that is an error.
func (h *Feed) uploadImage(r *http.Request) (string, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile {
			return "", nil
		}
		return "", apperror.NewValidation("invalid multipart body")
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !allowedImageTypes[contentType] {
		return "", nil
	}

	key := "images/" + uuid.NewString() + filepath.Ext(header.Filename)

	if err := h.storage.Upload(r.Context(), key, file, header.Size, contentType); err != nil {
		h.logger.Error("Feed handler: failed to upload image", "key", key, "error", err.Error())
		return "", err
	}

	return key, nil
}

// discardImage removes an uploaded object after a failed service call
// so rejected requests do not leak orphan files.
func (h *Feed) discardImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := h.storage.Delete(ctx, key); err != nil {
		h.logger.Error("Feed handler: failed to discard image", "key", key, "error", err.Error())
	}
}

func parsePostID(r *http.Request) (uuid.UUID, error) {
	postID, err := uuid.Parse(chi.URLParam(r, "postID"))
	if err != nil {
		return uuid.Nil, apperror.NewNotFound("can't find post")
	}
	return postID, nil
}
