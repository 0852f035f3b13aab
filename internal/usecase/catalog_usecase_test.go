package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mangareader/internal/adapter/repository/memstore"
	"mangareader/internal/domain/entity"
	"mangareader/internal/domain/service"
	"mangareader/pkg/errors"
)

func chapters(keys ...string) map[string]*entity.Chapter {
	out := make(map[string]*entity.Chapter, len(keys))
	for _, k := range keys {
		out[k] = &entity.Chapter{Title: k, Images: []string{k + ".jpg"}}
	}
	return out
}

func seedCatalog(t *testing.T, store *memstore.Store) {
	t.Helper()
	ctx := context.Background()
	for _, m := range []*entity.Manga{
		{ID: "op", Name: "One Piece", Chapters: chapters("chapter_2", "chapter_10", "chapter_3")},
		{ID: "naruto", Name: "Naruto", Chapters: chapters("chapter_1", "chapter_3", "chapter_5")},
	} {
		require.NoError(t, store.Manga().Upsert(ctx, m))
	}
}

func TestListManga_SearchIsCaseInsensitive(t *testing.T) {
	store := memstore.New()
	seedCatalog(t, store)
	uc := NewCatalogUseCase(store.Manga(), store.Ratings(), newMemCache())

	cards, err := uc.ListManga(context.Background(), ListMangaInput{Query: "one"})
	require.NoError(t, err)

	require.Len(t, cards, 1)
	assert.Equal(t, "One Piece", cards[0].Name)
}

func TestListManga_LatestChapterIsNumeric(t *testing.T) {
	store := memstore.New()
	seedCatalog(t, store)
	uc := NewCatalogUseCase(store.Manga(), store.Ratings(), newMemCache())

	cards, err := uc.ListManga(context.Background(), ListMangaInput{Sort: service.SortByLatest, Order: service.SortOrderDesc})
	require.NoError(t, err)

	require.Len(t, cards, 2)
	assert.Equal(t, "op", cards[0].ID)
	assert.Equal(t, "chapter_10", cards[0].LatestChapter.Key)
	assert.Equal(t, 3, cards[0].ChapterCount)
}

func TestListManga_UsesAndInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	seedCatalog(t, store)
	cache := newMemCache()
	uc := NewCatalogUseCase(store.Manga(), store.Ratings(), cache)

	_, err := uc.ListManga(ctx, ListMangaInput{})
	require.NoError(t, err)
	assert.True(t, cache.cached)

	_, err = uc.CreateManga(ctx, MangaInput{ID: "bleach", Name: "Bleach"})
	require.NoError(t, err)
	assert.False(t, cache.cached)

	cards, err := uc.ListManga(ctx, ListMangaInput{})
	require.NoError(t, err)
	assert.Len(t, cards, 3)
}

func TestGetManga_SortsChaptersAndLoadsViewerRating(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	seedCatalog(t, store)
	_, err := store.Ratings().Rate(ctx, &entity.UserRating{UserID: "u1", MangaID: "op", Rating: 4})
	require.NoError(t, err)
	uc := NewCatalogUseCase(store.Manga(), store.Ratings(), newMemCache())

	detail, err := uc.GetManga(ctx, "op", "u1")
	require.NoError(t, err)

	keys := make([]string, 0, len(detail.Chapters))
	for _, ch := range detail.Chapters {
		keys = append(keys, ch.Key)
	}
	assert.Equal(t, []string{"chapter_2", "chapter_3", "chapter_10"}, keys)
	assert.Equal(t, "chapter_10", detail.LatestChapter.Key)
	assert.Equal(t, 4, detail.MyRating)

	anonymous, err := uc.GetManga(ctx, "op", "")
	require.NoError(t, err)
	assert.Zero(t, anonymous.MyRating)
}

func TestGetManga_NotFoundIsDistinctFromOutage(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	uc := NewCatalogUseCase(store.Manga(), store.Ratings(), newMemCache())

	_, err := uc.GetManga(ctx, "missing", "")
	assert.True(t, errors.Is(err, "NOT_FOUND"))

	store.FailWith(errors.Unavailable("Firestore unreachable", nil))
	_, err = uc.GetManga(ctx, "missing", "")
	assert.True(t, errors.Is(err, "SERVICE_UNAVAILABLE"))
}

func TestNullChapterEntriesAreSkipped(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	require.NoError(t, store.Manga().Upsert(ctx, &entity.Manga{
		ID:   "op",
		Name: "One Piece",
		Chapters: map[string]*entity.Chapter{
			"chapter_1": {Title: "Romance Dawn", Images: []string{"1.jpg"}},
			"chapter_2": nil,
			"chapter_3": {Title: "Zoro", Images: []string{"3.jpg"}},
		},
	}))
	uc := NewCatalogUseCase(store.Manga(), store.Ratings(), newMemCache())

	detail, err := uc.GetManga(ctx, "op", "")
	require.NoError(t, err)
	require.Len(t, detail.Chapters, 2)
	assert.Equal(t, "chapter_1", detail.Chapters[0].Key)
	assert.Equal(t, "chapter_3", detail.Chapters[1].Key)

	_, err = uc.ReadChapter(ctx, "op", "2", "u1")
	assert.True(t, errors.Is(err, "NOT_FOUND"))

	page, err := uc.ReadChapter(ctx, "op", "1", "u1")
	require.NoError(t, err)
	require.NotNil(t, page.Next)
	assert.Equal(t, "chapter_3", page.Next.Key)

	cards, err := uc.ListManga(ctx, ListMangaInput{})
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, 2, cards[0].ChapterCount)
}

func TestReadChapter_Navigation(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	seedCatalog(t, store)
	uc := NewCatalogUseCase(store.Manga(), store.Ratings(), newMemCache())

	page, err := uc.ReadChapter(ctx, "naruto", "3", "u1")
	require.NoError(t, err)
	require.NotNil(t, page.Prev)
	require.NotNil(t, page.Next)
	assert.Equal(t, 1.0, page.Prev.Number)
	assert.Equal(t, 5.0, page.Next.Number)
	assert.Equal(t, []string{"chapter_3.jpg"}, page.Images)

	first, err := uc.ReadChapter(ctx, "naruto", "chapter_1", "u1")
	require.NoError(t, err)
	assert.Nil(t, first.Prev)

	last, err := uc.ReadChapter(ctx, "naruto", "5", "u1")
	require.NoError(t, err)
	assert.Nil(t, last.Next)
}

func TestReadChapter_RejectsBadInput(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	seedCatalog(t, store)
	uc := NewCatalogUseCase(store.Manga(), store.Ratings(), newMemCache())

	_, err := uc.ReadChapter(ctx, "naruto", "abc", "u1")
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))

	_, err = uc.ReadChapter(ctx, "naruto", "4", "u1")
	assert.True(t, errors.Is(err, "NOT_FOUND"))

	_, err = uc.ReadChapter(ctx, "missing", "1", "u1")
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestReadChapter_CountsViewsOncePerViewer(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	seedCatalog(t, store)
	uc := NewCatalogUseCase(store.Manga(), store.Ratings(), newMemCache())

	for i := 0; i < 3; i++ {
		_, err := uc.ReadChapter(ctx, "naruto", "1", "u1")
		require.NoError(t, err)
	}
	_, err := uc.ReadChapter(ctx, "naruto", "1", "u2")
	require.NoError(t, err)

	m, err := store.Manga().GetByID(ctx, "naruto")
	require.NoError(t, err)
	assert.Equal(t, int64(2), m.Views)
}

func TestPutChapter(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	seedCatalog(t, store)
	uc := NewCatalogUseCase(store.Manga(), store.Ratings(), newMemCache())

	ref, err := uc.PutChapter(ctx, "naruto", ChapterInput{Number: "5.5", Images: []string{"a.jpg"}})
	require.NoError(t, err)
	assert.Equal(t, "chapter_5.5", ref.Key)

	page, err := uc.ReadChapter(ctx, "naruto", "5", "u1")
	require.NoError(t, err)
	assert.Equal(t, 5.5, page.Next.Number)

	_, err = uc.PutChapter(ctx, "naruto", ChapterInput{Number: "0", Images: []string{"a.jpg"}})
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))
	_, err = uc.PutChapter(ctx, "missing", ChapterInput{Number: "1", Images: []string{"a.jpg"}})
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestSeed_RejectsBadChapterKeys(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	uc := NewCatalogUseCase(store.Manga(), store.Ratings(), newMemCache())

	n, err := uc.Seed(ctx, []*entity.Manga{
		{ID: "a", Name: "A", Chapters: chapters("chapter_1")},
		{ID: "b", Name: "B", Chapters: chapters("extra")},
	})

	assert.Equal(t, 1, n)
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))
}

func TestUploadPage(t *testing.T) {
	store := memstore.New()
	seedCatalog(t, store)
	images := &fakeImages{}
	uc := NewCatalogUseCase(store.Manga(), store.Ratings(), newMemCache()).WithImages(images)

	url, err := uc.UploadPage(context.Background(), "op", strings.NewReader("png"), "image/png")
	require.NoError(t, err)
	assert.Contains(t, url, "/manga/op/")

	_, err = uc.UploadPage(context.Background(), "missing", strings.NewReader("png"), "image/png")
	assert.True(t, errors.Is(err, "NOT_FOUND"))
	assert.Len(t, images.uploaded, 1)
}

func TestUploadPage_WithoutStorage(t *testing.T) {
	store := memstore.New()
	uc := NewCatalogUseCase(store.Manga(), store.Ratings(), newMemCache())

	_, err := uc.UploadPage(context.Background(), "op", strings.NewReader("png"), "image/png")
	assert.True(t, errors.Is(err, "SERVICE_UNAVAILABLE"))
}
