package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/feedhub/feedhub-server/internal/apperror"
	"github.com/feedhub/feedhub-server/internal/mocks"
	"github.com/feedhub/feedhub-server/internal/model"
	"github.com/feedhub/feedhub-server/internal/service"
	"github.com/feedhub/feedhub-server/internal/testutil"
)

func makePostService(
	postStore *mocks.PostStore,
	userStore *mocks.UserStore,
	storage *mocks.Storage,
	notifier *mocks.Notifier,
) *service.Post {
	return service.NewPost(postStore, userStore, storage, notifier, testutil.MakeNoopLogger())
}

func TestPost_Create(t *testing.T) {
	ctx := context.Background()
	creatorID := uuid.New()

	t.Run("validation failures do not touch the store", func(t *testing.T) {
		tests := []struct {
			name    string
			input   model.PostInput
			wantMsg string
		}{
			{
				name:    "missing image",
				input:   model.PostInput{Title: "valid title", Content: "valid content"},
				wantMsg: "missing image",
			},
			{
				name:    "short title",
				input:   model.PostInput{Title: "abc", Content: "valid content", ImageURL: "images/a.png"},
				wantMsg: "title must be at least 5 characters",
			},
			{
				name:    "whitespace-padded short title",
				input:   model.PostInput{Title: "  abc  ", Content: "valid content", ImageURL: "images/a.png"},
				wantMsg: "title must be at least 5 characters",
			},
			{
				name:    "short content",
				input:   model.PostInput{Title: "valid title", Content: "hey", ImageURL: "images/a.png"},
				wantMsg: "content must be at least 5 characters",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				postStore := &mocks.PostStore{}
				userStore := &mocks.UserStore{}
				storage := &mocks.Storage{}
				notifier := &mocks.Notifier{}

				s := makePostService(postStore, userStore, storage, notifier)

				_, _, err := s.Create(ctx, tt.input, creatorID)
				require.Error(t, err)
				assert.Equal(t, 422, apperror.StatusOf(err))
				assert.Equal(t, tt.wantMsg, apperror.MessageOf(err))

				postStore.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				notifier.AssertNotCalled(t, "PostCreated", mock.Anything)
			})
		}
	})

	t.Run("unknown creator", func(t *testing.T) {
		postStore := &mocks.PostStore{}
		userStore := &mocks.UserStore{}
		storage := &mocks.Storage{}
		notifier := &mocks.Notifier{}

		userStore.On("GetByID", mock.Anything, creatorID).Return(model.User{}, model.ErrNotFound)

		s := makePostService(postStore, userStore, storage, notifier)

		input := model.PostInput{Title: "valid title", Content: "valid content", ImageURL: "images/a.png"}
		_, _, err := s.Create(ctx, input, creatorID)
		require.Error(t, err)
		assert.Equal(t, 404, apperror.StatusOf(err))
		assert.Equal(t, "can't find user", apperror.MessageOf(err))

		postStore.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("store rejects owner append", func(t *testing.T) {
		postStore := &mocks.PostStore{}
		userStore := &mocks.UserStore{}
		storage := &mocks.Storage{}
		notifier := &mocks.Notifier{}

		userStore.On("GetByID", mock.Anything, creatorID).
			Return(model.User{ID: creatorID, Name: "maria"}, nil)
		postStore.On("Create", mock.Anything, mock.Anything).
			Return(model.Post{}, model.ErrNotFound)

		s := makePostService(postStore, userStore, storage, notifier)

		input := model.PostInput{Title: "valid title", Content: "valid content", ImageURL: "images/a.png"}
		_, _, err := s.Create(ctx, input, creatorID)
		require.Error(t, err)
		assert.Equal(t, 404, apperror.StatusOf(err))

		notifier.AssertNotCalled(t, "PostCreated", mock.Anything)
	})

	t.Run("success notifies and returns creator", func(t *testing.T) {
		postStore := &mocks.PostStore{}
		userStore := &mocks.UserStore{}
		storage := &mocks.Storage{}
		notifier := &mocks.Notifier{}

		userStore.On("GetByID", mock.Anything, creatorID).
			Return(model.User{ID: creatorID, Name: "maria"}, nil)

		var inserted model.Post
		postStore.On("Create", mock.Anything, mock.MatchedBy(func(p model.Post) bool {
			inserted = p
			return true
		})).Return(model.Post{ID: uuid.New(), Title: "valid title", CreatorID: creatorID}, nil)
		notifier.On("PostCreated", mock.Anything).Return()

		s := makePostService(postStore, userStore, storage, notifier)

		input := model.PostInput{Title: "  valid title  ", Content: "valid content", ImageURL: "images/a.png"}
		created, creator, err := s.Create(ctx, input, creatorID)
		require.NoError(t, err)

		assert.Equal(t, "valid title", inserted.Title)
		assert.Equal(t, creatorID, inserted.CreatorID)
		assert.NotEqual(t, uuid.Nil, inserted.ID)
		assert.Equal(t, creatorID, creator.ID)
		assert.Equal(t, "maria", creator.Name)

		notifier.AssertCalled(t, "PostCreated", created)
	})
}

func TestPost_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		postStore := &mocks.PostStore{}
		postStore.On("GetByID", mock.Anything, mock.Anything).
			Return(model.Post{}, model.ErrNotFound)

		s := makePostService(postStore, &mocks.UserStore{}, &mocks.Storage{}, &mocks.Notifier{})

		_, err := s.Get(ctx, uuid.New())
		require.Error(t, err)
		assert.Equal(t, 404, apperror.StatusOf(err))
		assert.Equal(t, "can't find post", apperror.MessageOf(err))
	})

	t.Run("found", func(t *testing.T) {
		postID := uuid.New()
		postStore := &mocks.PostStore{}
		postStore.On("GetByID", mock.Anything, postID).
			Return(model.Post{ID: postID, Title: "hello world"}, nil)

		s := makePostService(postStore, &mocks.UserStore{}, &mocks.Storage{}, &mocks.Notifier{})

		post, err := s.Get(ctx, postID)
		require.NoError(t, err)
		assert.Equal(t, "hello world", post.Title)
	})
}

func TestPost_Update(t *testing.T) {
	ctx := context.Background()
	creatorID := uuid.New()
	postID := uuid.New()

	existing := model.Post{
		ID:        postID,
		Title:     "old title",
		Content:   "old content",
		ImageURL:  "images/old.png",
		CreatorID: creatorID,
	}

	t.Run("no image reference", func(t *testing.T) {
		postStore := &mocks.PostStore{}

		s := makePostService(postStore, &mocks.UserStore{}, &mocks.Storage{}, &mocks.Notifier{})

		input := model.PostInput{Title: "new title", Content: "new content"}
		_, err := s.Update(ctx, postID, input, creatorID)
		require.Error(t, err)
		assert.Equal(t, 422, apperror.StatusOf(err))
		assert.Equal(t, "no file picked", apperror.MessageOf(err))

		postStore.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("non-creator is rejected", func(t *testing.T) {
		postStore := &mocks.PostStore{}
		storage := &mocks.Storage{}

		postStore.On("GetByID", mock.Anything, postID).Return(existing, nil)

		s := makePostService(postStore, &mocks.UserStore{}, storage, &mocks.Notifier{})

		input := model.PostInput{Title: "new title", Content: "new content", ImageURL: "images/new.png"}
		_, err := s.Update(ctx, postID, input, uuid.New())
		require.Error(t, err)
		assert.Equal(t, 403, apperror.StatusOf(err))
		assert.Equal(t, "not authorized to edit this post", apperror.MessageOf(err))

		postStore.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		storage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("image change deletes old object", func(t *testing.T) {
		postStore := &mocks.PostStore{}
		storage := &mocks.Storage{}

		postStore.On("GetByID", mock.Anything, postID).Return(existing, nil)
		storage.On("Delete", mock.Anything, "images/old.png").Return(nil)
		postStore.On("Update", mock.Anything, mock.Anything).
			Return(model.Post{ID: postID, Title: "new title", ImageURL: "images/new.png"}, nil)

		s := makePostService(postStore, &mocks.UserStore{}, storage, &mocks.Notifier{})

		input := model.PostInput{Title: "new title", Content: "new content", ImageURL: "images/new.png"}
		updated, err := s.Update(ctx, postID, input, creatorID)
		require.NoError(t, err)
		assert.Equal(t, "images/new.png", updated.ImageURL)

		storage.AssertCalled(t, "Delete", mock.Anything, "images/old.png")
	})

	t.Run("unchanged image keeps old object", func(t *testing.T) {
		postStore := &mocks.PostStore{}
		storage := &mocks.Storage{}

		postStore.On("GetByID", mock.Anything, postID).Return(existing, nil)
		postStore.On("Update", mock.Anything, mock.Anything).Return(existing, nil)

		s := makePostService(postStore, &mocks.UserStore{}, storage, &mocks.Notifier{})

		input := model.PostInput{Title: "new title", Content: "new content", ImageURL: "images/old.png"}
		_, err := s.Update(ctx, postID, input, creatorID)
		require.NoError(t, err)

		storage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("storage delete failure does not block the update", func(t *testing.T) {
		postStore := &mocks.PostStore{}
		storage := &mocks.Storage{}

		postStore.On("GetByID", mock.Anything, postID).Return(existing, nil)
		storage.On("Delete", mock.Anything, "images/old.png").Return(assert.AnError)
		postStore.On("Update", mock.Anything, mock.Anything).
			Return(model.Post{ID: postID, ImageURL: "images/new.png"}, nil)

		s := makePostService(postStore, &mocks.UserStore{}, storage, &mocks.Notifier{})

		input := model.PostInput{Title: "new title", Content: "new content", ImageURL: "images/new.png"}
		_, err := s.Update(ctx, postID, input, creatorID)
		require.NoError(t, err)
	})
}

func TestPost_Delete(t *testing.T) {
	ctx := context.Background()
	creatorID := uuid.New()
	postID := uuid.New()

	existing := model.Post{ID: postID, ImageURL: "images/old.png", CreatorID: creatorID}

	t.Run("not found", func(t *testing.T) {
		postStore := &mocks.PostStore{}
		postStore.On("GetByID", mock.Anything, postID).Return(model.Post{}, model.ErrNotFound)

		s := makePostService(postStore, &mocks.UserStore{}, &mocks.Storage{}, &mocks.Notifier{})

		err := s.Delete(ctx, postID, creatorID)
		require.Error(t, err)
		assert.Equal(t, 404, apperror.StatusOf(err))
	})

	t.Run("non-creator is rejected", func(t *testing.T) {
		postStore := &mocks.PostStore{}
		storage := &mocks.Storage{}

		postStore.On("GetByID", mock.Anything, postID).Return(existing, nil)

		s := makePostService(postStore, &mocks.UserStore{}, storage, &mocks.Notifier{})

		err := s.Delete(ctx, postID, uuid.New())
		require.Error(t, err)
		assert.Equal(t, 403, apperror.StatusOf(err))
		assert.Equal(t, "not authorized to delete this post", apperror.MessageOf(err))

		postStore.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
		storage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("success removes image and record", func(t *testing.T) {
		postStore := &mocks.PostStore{}
		storage := &mocks.Storage{}

		postStore.On("GetByID", mock.Anything, postID).Return(existing, nil)
		storage.On("Delete", mock.Anything, "images/old.png").Return(nil)
		postStore.On("Delete", mock.Anything, postID, creatorID).Return(nil)

		s := makePostService(postStore, &mocks.UserStore{}, storage, &mocks.Notifier{})

		err := s.Delete(ctx, postID, creatorID)
		require.NoError(t, err)

		postStore.AssertCalled(t, "Delete", mock.Anything, postID, creatorID)
	})

	t.Run("storage failure does not block the delete", func(t *testing.T) {
		postStore := &mocks.PostStore{}
		storage := &mocks.Storage{}

		postStore.On("GetByID", mock.Anything, postID).Return(existing, nil)
		storage.On("Delete", mock.Anything, "images/old.png").Return(assert.AnError)
		postStore.On("Delete", mock.Anything, postID, creatorID).Return(nil)

		s := makePostService(postStore, &mocks.UserStore{}, storage, &mocks.Notifier{})

		err := s.Delete(ctx, postID, creatorID)
		require.NoError(t, err)
	})
}

func TestPost_List(t *testing.T) {
	ctx := context.Background()

	t.Run("page below one defaults to one", func(t *testing.T) {
		postStore := &mocks.PostStore{}
		postStore.On("Count", mock.Anything).Return(5, nil)
		postStore.On("List", mock.Anything, 2, 0).Return([]model.Post{}, nil)

		s := makePostService(postStore, &mocks.UserStore{}, &mocks.Storage{}, &mocks.Notifier{})

		_, err := s.List(ctx, 0)
		require.NoError(t, err)

		postStore.AssertCalled(t, "List", mock.Anything, 2, 0)
	})

	t.Run("second page of five posts", func(t *testing.T) {
		postStore := &mocks.PostStore{}
		page := []model.Post{{ID: uuid.New()}, {ID: uuid.New()}}
		postStore.On("Count", mock.Anything).Return(5, nil)
		postStore.On("List", mock.Anything, 2, 2).Return(page, nil)

		s := makePostService(postStore, &mocks.UserStore{}, &mocks.Storage{}, &mocks.Notifier{})

		got, err := s.List(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, 5, got.TotalItems)
		assert.Len(t, got.Posts, 2)

		postStore.AssertCalled(t, "List", mock.Anything, 2, 2)
	})

	t.Run("count failure", func(t *testing.T) {
		postStore := &mocks.PostStore{}
		postStore.On("Count", mock.Anything).Return(0, assert.AnError)

		s := makePostService(postStore, &mocks.UserStore{}, &mocks.Storage{}, &mocks.Notifier{})

		_, err := s.List(ctx, 1)
		require.Error(t, err)
	})
}
