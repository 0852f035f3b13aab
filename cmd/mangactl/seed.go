package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"mangareader/internal/domain/entity"
	"mangareader/internal/domain/service"
	"mangareader/internal/infrastructure/cache"
	"mangareader/internal/usecase"
)

// catalogFile is the YAML layout accepted by `mangactl seed`.
type catalogFile struct {
	Manga []mangaEntry `yaml:"manga"`
}

type mangaEntry struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	Thumbnail   string         `yaml:"thumbnail"`
	Description string         `yaml:"description"`
	Chapters    []chapterEntry `yaml:"chapters"`
}

type chapterEntry struct {
	// Number accepts 3, 3.5 or chapter_3.
	Number      string   `yaml:"number"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Images      []string `yaml:"images"`
}

func parseCatalog(raw []byte) ([]*entity.Manga, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("invalid catalog file: %w", err)
	}

	items := make([]*entity.Manga, 0, len(file.Manga))
	for _, m := range file.Manga {
		manga := &entity.Manga{
			ID:          m.ID,
			Name:        m.Name,
			Thumbnail:   m.Thumbnail,
			Description: m.Description,
			Chapters:    make(map[string]*entity.Chapter, len(m.Chapters)),
		}
		for _, ch := range m.Chapters {
			number, err := service.ParseChapterNumber(ch.Number)
			if err != nil {
				return nil, fmt.Errorf("manga %s: chapter %q: %w", m.ID, ch.Number, err)
			}
			if len(ch.Images) == 0 {
				return nil, fmt.Errorf("manga %s: chapter %q has no images", m.ID, ch.Number)
			}
			key := service.ChapterKey(number)
			if _, dup := manga.Chapters[key]; dup {
				return nil, fmt.Errorf("manga %s: chapter %q appears twice", m.ID, ch.Number)
			}
			manga.Chapters[key] = &entity.Chapter{
				Title:       ch.Title,
				Images:      ch.Images,
				Description: ch.Description,
			}
		}
		items = append(items, manga)
	}
	return items, nil
}

func newSeedCmd(withBackend runWithBackend) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert manga and chapters from a YAML catalog file",
		Long: `Reads a catalog file and upserts every manga in it. Existing view
counters and ratings are kept; chapters are merged by number.

Example:
  mangactl seed --file catalog.yaml`,
		Args: cobra.NoArgs,
		RunE: withBackend(func(cmd *cobra.Command, b *backend) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			items, err := parseCatalog(raw)
			if err != nil {
				return err
			}

			catalog := usecase.NewCatalogUseCase(b.manga, b.ratings, cache.NoopCache{})
			seeded, err := catalog.Seed(cmd.Context(), items)
			if err != nil {
				return fmt.Errorf("seeded %d of %d manga: %w", seeded, len(items), err)
			}

			chapters := 0
			for _, m := range items {
				chapters += len(m.Chapters)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d manga (%d chapters)\n", seeded, chapters)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog YAML file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
