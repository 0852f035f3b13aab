package usecase

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"mangareader/internal/domain/entity"
	"mangareader/internal/domain/repository"
	"mangareader/internal/domain/service"
	"mangareader/pkg/errors"
	"mangareader/pkg/logger"
)

type CatalogUseCase struct {
	mangaRepo  repository.MangaRepository
	ratingRepo repository.RatingRepository
	cache      CatalogCache
	images     ImageStore
}

func NewCatalogUseCase(mangaRepo repository.MangaRepository, ratingRepo repository.RatingRepository, cache CatalogCache) *CatalogUseCase {
	return &CatalogUseCase{
		mangaRepo:  mangaRepo,
		ratingRepo: ratingRepo,
		cache:      cache,
	}
}

// WithImages enables page uploads. Without it UploadPage reports the
// storage as unavailable.
func (uc *CatalogUseCase) WithImages(images ImageStore) *CatalogUseCase {
	uc.images = images
	return uc
}

type ListMangaInput struct {
	Query string
	Sort  string
	Order string
}

// MangaCard is one entry of the catalog grid.
type MangaCard struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Thumbnail     string              `json:"thumbnail"`
	Views         int64               `json:"views"`
	Rating        float64             `json:"rating"`
	RatingCount   int                 `json:"rating_count"`
	ChapterCount  int                 `json:"chapter_count"`
	LatestChapter *service.ChapterRef `json:"latest_chapter"`
}

type ChapterSummary struct {
	Key       string    `json:"key"`
	Number    float64   `json:"number"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

type MangaDetail struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Thumbnail     string              `json:"thumbnail"`
	Description   string              `json:"description"`
	Views         int64               `json:"views"`
	Rating        float64             `json:"rating"`
	RatingCount   int                 `json:"rating_count"`
	Chapters      []ChapterSummary    `json:"chapters"`
	LatestChapter *service.ChapterRef `json:"latest_chapter"`
	MyRating      int                 `json:"my_rating,omitempty"`
}

type ChapterPage struct {
	MangaID     string              `json:"manga_id"`
	MangaName   string              `json:"manga_name"`
	Key         string              `json:"key"`
	Number      float64             `json:"number"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Images      []string            `json:"images"`
	Prev        *service.ChapterRef `json:"prev"`
	Next        *service.ChapterRef `json:"next"`
}

func (uc *CatalogUseCase) loadCatalog(ctx context.Context) ([]*entity.Manga, error) {
	if items, ok := uc.cache.GetCatalog(ctx); ok {
		return items, nil
	}

	items, err := uc.mangaRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	uc.cache.SetCatalog(ctx, items)
	return items, nil
}

func (uc *CatalogUseCase) ListManga(ctx context.Context, input ListMangaInput) ([]MangaCard, error) {
	items, err := uc.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	items = service.FilterByName(items, input.Query)
	service.SortManga(items, input.Sort, input.Order)

	cards := make([]MangaCard, 0, len(items))
	for _, m := range items {
		card := MangaCard{
			ID:           m.ID,
			Name:         m.Name,
			Thumbnail:    m.Thumbnail,
			Views:        m.Views,
			Rating:       m.Rating,
			RatingCount:  m.RatingCount,
			ChapterCount: len(service.SortChapters(m.ChapterKeys())),
		}
		if latest, ok := service.LatestChapter(m.ChapterKeys()); ok {
			card.LatestChapter = &latest
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// GetManga loads a manga and, for a signed-in viewer, their own rating.
func (uc *CatalogUseCase) GetManga(ctx context.Context, id, viewerID string) (*MangaDetail, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.Validation("manga id is required")
	}

	var (
		manga    *entity.Manga
		myRating int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := uc.mangaRepo.GetByID(gctx, id)
		manga = m
		return err
	})
	if viewerID != "" && uc.ratingRepo != nil {
		g.Go(func() error {
			r, err := uc.ratingRepo.Get(gctx, viewerID, id)
			if err != nil {
				// Not having rated yet is the common case.
				if !errors.Is(err, "NOT_FOUND") {
					logger.Warn("Failed to load rating of %s for %s: %v", viewerID, id, err)
				}
				return nil
			}
			myRating = r.Rating
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	detail := &MangaDetail{
		ID:          manga.ID,
		Name:        manga.Name,
		Thumbnail:   manga.Thumbnail,
		Description: manga.Description,
		Views:       manga.Views,
		Rating:      manga.Rating,
		RatingCount: manga.RatingCount,
		MyRating:    myRating,
	}

	refs := service.SortChapters(manga.ChapterKeys())
	detail.Chapters = make([]ChapterSummary, 0, len(refs))
	for _, ref := range refs {
		ch := manga.Chapters[ref.Key]
		detail.Chapters = append(detail.Chapters, ChapterSummary{
			Key:       ref.Key,
			Number:    ref.Number,
			Title:     ch.Title,
			CreatedAt: ch.CreatedAt,
		})
	}
	if len(refs) > 0 {
		latest := refs[len(refs)-1]
		detail.LatestChapter = &latest
	}

	return detail, nil
}

// ReadChapter returns a chapter's pages and neighbours and counts the view.
// viewer identifies the reader for view de-duplication.
func (uc *CatalogUseCase) ReadChapter(ctx context.Context, mangaID, chapter, viewer string) (*ChapterPage, error) {
	number, err := service.ParseChapterNumber(chapter)
	if err != nil {
		return nil, errors.Validation("chapter must be a positive number")
	}

	manga, err := uc.mangaRepo.GetByID(ctx, mangaID)
	if err != nil {
		return nil, err
	}

	nav, ok := service.Navigate(manga.ChapterKeys(), number)
	if !ok {
		return nil, errors.NotFound("Chapter", nil)
	}
	ch := manga.Chapters[nav.Current.Key]

	if uc.cache.FirstView(ctx, mangaID, nav.Current.Key, viewer) {
		if err := uc.mangaRepo.IncrementViews(ctx, mangaID); err != nil {
			logger.Warn("Failed to count view of %s: %v", mangaID, err)
		}
	}

	images := ch.Images
	if images == nil {
		images = []string{}
	}
	return &ChapterPage{
		MangaID:     manga.ID,
		MangaName:   manga.Name,
		Key:         nav.Current.Key,
		Number:      nav.Current.Number,
		Title:       ch.Title,
		Description: ch.Description,
		Images:      images,
		Prev:        nav.Prev,
		Next:        nav.Next,
	}, nil
}

type MangaInput struct {
	ID          string
	Name        string
	Thumbnail   string
	Description string
}

func (uc *CatalogUseCase) CreateManga(ctx context.Context, input MangaInput) (*entity.Manga, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.Validation("name is required")
	}

	manga := &entity.Manga{
		ID:          strings.TrimSpace(input.ID),
		Name:        name,
		Thumbnail:   input.Thumbnail,
		Description: input.Description,
	}
	if manga.ID == "" {
		manga.ID = uuid.New().String()
	}

	if err := uc.mangaRepo.Upsert(ctx, manga); err != nil {
		return nil, err
	}
	uc.cache.InvalidateCatalog(ctx)
	return manga, nil
}

type ChapterInput struct {
	Number      string
	Title       string
	Images      []string
	Description string
}

func (uc *CatalogUseCase) PutChapter(ctx context.Context, mangaID string, input ChapterInput) (*service.ChapterRef, error) {
	number, err := service.ParseChapterNumber(input.Number)
	if err != nil {
		return nil, errors.Validation("chapter must be a positive number")
	}
	if len(input.Images) == 0 {
		return nil, errors.Validation("a chapter needs at least one image")
	}

	ref := service.ChapterRef{Key: service.ChapterKey(number), Number: number}
	chapter := &entity.Chapter{
		Title:       strings.TrimSpace(input.Title),
		Images:      input.Images,
		Description: input.Description,
	}
	if chapter.Title == "" {
		chapter.Title = "Chapter " + strings.TrimPrefix(ref.Key, service.ChapterKeyPrefix)
	}

	if err := uc.mangaRepo.PutChapter(ctx, mangaID, ref.Key, chapter); err != nil {
		return nil, err
	}
	uc.cache.InvalidateCatalog(ctx)
	return &ref, nil
}

// UploadPage stores one page image of mangaID and returns its public URL.
func (uc *CatalogUseCase) UploadPage(ctx context.Context, mangaID string, file io.Reader, contentType string) (string, error) {
	if uc.images == nil {
		return "", errors.Unavailable("Image storage is not configured", nil)
	}
	if _, err := uc.mangaRepo.GetByID(ctx, mangaID); err != nil {
		return "", err
	}
	return uc.images.UploadImage(ctx, file, contentType, "manga/"+mangaID)
}

// Seed upserts every manga in items. It stops at the first failure.
func (uc *CatalogUseCase) Seed(ctx context.Context, items []*entity.Manga) (int, error) {
	defer uc.cache.InvalidateCatalog(ctx)

	for i, m := range items {
		if m.ID == "" || strings.TrimSpace(m.Name) == "" {
			return i, errors.Validation("every manga needs an id and a name")
		}
		for key := range m.Chapters {
			if _, ok := service.ParseChapterKey(key); !ok {
				return i, errors.Validation("invalid chapter key " + key + " in " + m.ID)
			}
		}
		if err := uc.mangaRepo.Upsert(ctx, m); err != nil {
			return i, err
		}
	}
	return len(items), nil
}
