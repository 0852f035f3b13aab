package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mangareader/internal/adapter/repository/memstore"
	"mangareader/internal/domain/entity"
)

const catalogYAML = `
manga:
  - id: one-piece
    name: One Piece
    thumbnail: https://cdn.example.com/op.jpg
    chapters:
      - number: 1
        title: Romance Dawn
        images: [https://cdn.example.com/op/1/1.jpg, https://cdn.example.com/op/1/2.jpg]
      - number: "10.5"
        images: [https://cdn.example.com/op/10.5/1.jpg]
  - id: naruto
    name: Naruto
`

// run executes mangactl against store and returns its output.
func run(t *testing.T, store *memstore.Store, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(func(context.Context, bool) (*backend, error) {
		return memoryBackend(store), nil
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSeed(t *testing.T) {
	store := memstore.New()

	out, err := run(t, store, "seed", "--file", writeFile(t, catalogYAML))
	require.NoError(t, err)
	assert.Contains(t, out, "seeded 2 manga (2 chapters)")

	op, err := store.Manga().GetByID(context.Background(), "one-piece")
	require.NoError(t, err)
	assert.Equal(t, "One Piece", op.Name)
	require.Contains(t, op.Chapters, "chapter_10.5")
	assert.Len(t, op.Chapters["chapter_1"].Images, 2)
}

func TestSeed_RejectsBadChapterNumber(t *testing.T) {
	store := memstore.New()
	bad := `
manga:
  - id: x
    name: X
    chapters:
      - number: abc
        images: [a.jpg]
`
	_, err := run(t, store, "seed", "--file", writeFile(t, bad))
	require.Error(t, err)

	items, err := store.Manga().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSeed_RequiresFile(t *testing.T) {
	_, err := run(t, memstore.New(), "seed")
	assert.Error(t, err)
}

func TestSeed_DryRunWritesNothing(t *testing.T) {
	path := writeFile(t, catalogYAML)

	cmd := newRootCmd(openBackend)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--dry-run", "seed", "--file", path})

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "[dry-run]")
	assert.Contains(t, out.String(), "seeded 2 manga")
}

func TestRecomputeRatings(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	require.NoError(t, store.Manga().Upsert(ctx, &entity.Manga{ID: "op", Name: "One Piece"}))
	require.NoError(t, store.Manga().Upsert(ctx, &entity.Manga{ID: "naruto", Name: "Naruto"}))
	_, err := store.Ratings().Rate(ctx, &entity.UserRating{UserID: "u1", MangaID: "op", Rating: 4})
	require.NoError(t, err)
	_, err = store.Ratings().Rate(ctx, &entity.UserRating{UserID: "u2", MangaID: "op", Rating: 5})
	require.NoError(t, err)

	out, err := run(t, store, "recompute-ratings")
	require.NoError(t, err)
	assert.Contains(t, out, "recomputed 2 manga")

	out, err = run(t, store, "recompute-ratings", "--manga", "op")
	require.NoError(t, err)
	assert.Contains(t, out, "recomputed 1 manga")

	op, err := store.Manga().GetByID(ctx, "op")
	require.NoError(t, err)
	assert.Equal(t, 4.5, op.Rating)
}

func TestPruneNotifications(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	require.NoError(t, store.Notifications().CreateAll(ctx, []*entity.Notification{
		{UserID: "alice", Type: entity.NotificationTypeReply, CommentID: "c1"},
		{UserID: "bob", Type: entity.NotificationTypeCommentReply, CommentID: "c1"},
		{UserID: "alice", Type: entity.NotificationTypeLike, CommentID: "c2"},
	}))

	out, err := run(t, store, "prune-notifications", "--comment", "c1")
	require.NoError(t, err)
	assert.Contains(t, out, "removed 2 notifications")

	left, err := store.Notifications().List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "c2", left[0].CommentID)

	_, err = run(t, store, "prune-notifications")
	assert.Error(t, err)
}

func TestSetRole(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	require.NoError(t, store.Users().Create(ctx, &entity.User{ID: "alice", Role: entity.RoleUser}))

	out, err := run(t, store, "set-role", "--user", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "alice is now admin")

	_, err = run(t, store, "set-role", "--user", "alice", "--role", "owner")
	assert.Error(t, err)

	_, err = run(t, store, "set-role", "--user", "ghost")
	assert.Error(t, err)

	user, err := store.Users().GetByID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, user.Role)
}
