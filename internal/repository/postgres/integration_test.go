//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/feedhub/feedhub-server/internal/model"
	repo "github.com/feedhub/feedhub-server/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "feedhub_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/feedhub_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func makeUser(t *testing.T, ctx context.Context, ur *repo.UserRepository, email string) model.User {
	t.Helper()

	user, err := ur.Create(ctx, model.User{
		ID:           uuid.New(),
		Name:         "maria",
		Email:        email,
		PasswordHash: "$2a$12$hash",
		Status:       "I am new!",
		Posts:        []uuid.UUID{},
	})
	require.NoError(t, err)
	return user
}

func TestUserRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ur := repo.NewUserRepository(conn)

	created := makeUser(t, ctx, ur, "user@example.com")
	require.NotZero(t, created.CreatedAt)
	require.Empty(t, created.Posts)

	byEmail, err := ur.GetByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	require.Equal(t, created.ID, byEmail.ID)

	byID, err := ur.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "user@example.com", byID.Email)

	_, err = ur.GetByEmail(ctx, "ghost@example.com")
	require.ErrorIs(t, err, model.ErrNotFound)

	_, err = ur.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestPostRepository_CreateMaintainsOwnerList(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ur := repo.NewUserRepository(conn)
	pr := repo.NewPostRepository(conn)

	owner := makeUser(t, ctx, ur, "owner@example.com")

	post, err := pr.Create(ctx, model.Post{
		ID:        uuid.New(),
		Title:     "first post",
		Content:   "hello from the feed",
		ImageURL:  "images/a.png",
		CreatorID: owner.ID,
	})
	require.NoError(t, err)
	require.NotZero(t, post.CreatedAt)

	reloaded, err := ur.GetByID(ctx, owner.ID)
	require.NoError(t, err)
	require.Contains(t, reloaded.Posts, post.ID)

	// An unknown owner rolls back the whole create: no orphan row.
	orphanID := uuid.New()
	_, err = pr.Create(ctx, model.Post{
		ID:        orphanID,
		Title:     "orphan",
		Content:   "no owner",
		ImageURL:  "images/b.png",
		CreatorID: uuid.New(),
	})
	require.ErrorIs(t, err, model.ErrNotFound)

	_, err = pr.GetByID(ctx, orphanID)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestPostRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ur := repo.NewUserRepository(conn)
	pr := repo.NewPostRepository(conn)

	owner := makeUser(t, ctx, ur, "editor@example.com")

	post, err := pr.Create(ctx, model.Post{
		ID:        uuid.New(),
		Title:     "before edit",
		Content:   "original content",
		ImageURL:  "images/old.png",
		CreatorID: owner.ID,
	})
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	post.Title = "after edit"
	post.ImageURL = "images/new.png"
	updated, err := pr.Update(ctx, post)
	require.NoError(t, err)
	require.Equal(t, "after edit", updated.Title)
	require.Equal(t, "images/new.png", updated.ImageURL)
	require.Equal(t, owner.ID, updated.CreatorID)
	require.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	require.NoError(t, pr.Delete(ctx, post.ID, owner.ID))

	_, err = pr.GetByID(ctx, post.ID)
	require.ErrorIs(t, err, model.ErrNotFound)

	reloaded, err := ur.GetByID(ctx, owner.ID)
	require.NoError(t, err)
	require.NotContains(t, reloaded.Posts, post.ID)

	require.ErrorIs(t, pr.Delete(ctx, post.ID, owner.ID), model.ErrNotFound)
}

func TestPostRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ur := repo.NewUserRepository(conn)
	pr := repo.NewPostRepository(conn)

	owner := makeUser(t, ctx, ur, "lister@example.com")

	before, err := pr.Count(ctx)
	require.NoError(t, err)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		post, err := pr.Create(ctx, model.Post{
			ID:        uuid.New(),
			Title:     fmt.Sprintf("post %d", i),
			Content:   "listed content",
			ImageURL:  "images/list.png",
			CreatorID: owner.ID,
		})
		require.NoError(t, err)
		ids = append(ids, post.ID)
		time.Sleep(10 * time.Millisecond)
	}

	after, err := pr.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, before+3, after)

	page, err := pr.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, ids[2], page[0].ID)
	require.Equal(t, ids[1], page[1].ID)
	require.True(t, page[0].CreatedAt.After(page[1].CreatedAt))
}
