package service

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"mangareader/internal/domain/entity"
)

const (
	SortByName    = "name"
	SortByViews   = "views"
	SortByRating  = "rating"
	SortByLatest  = "latest"
	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

// MatchesName reports whether query is a case-insensitive substring of name.
// Matching uses Unicode case folding, so "ONE" matches "One Piece" and "ß" matches "SS".
func MatchesName(name, query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	fold := cases.Fold()
	return strings.Contains(fold.String(name), fold.String(query))
}

// FilterByName keeps the manga whose name matches query.
func FilterByName(items []*entity.Manga, query string) []*entity.Manga {
	out := make([]*entity.Manga, 0, len(items))
	for _, m := range items {
		if MatchesName(m.Name, query) {
			out = append(out, m)
		}
	}
	return out
}

// SortManga orders items in place. Unknown fields fall back to name.
// Ties are broken by name, then id, so the order is stable across calls.
func SortManga(items []*entity.Manga, field, order string) {
	desc := order == SortOrderDesc
	fold := cases.Fold()
	latest := func(m *entity.Manga) float64 {
		ref, ok := LatestChapter(m.ChapterKeys())
		if !ok {
			return 0
		}
		return ref.Number
	}

	less := func(a, b *entity.Manga) (bool, bool) {
		switch field {
		case SortByViews:
			return a.Views < b.Views, a.Views == b.Views
		case SortByRating:
			return a.Rating < b.Rating, a.Rating == b.Rating
		case SortByLatest:
			la, lb := latest(a), latest(b)
			return la < lb, la == lb
		default:
			na, nb := fold.String(a.Name), fold.String(b.Name)
			return na < nb, na == nb
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		lt, eq := less(items[i], items[j])
		if !eq {
			if desc {
				return !lt
			}
			return lt
		}
		na, nb := fold.String(items[i].Name), fold.String(items[j].Name)
		if na != nb {
			return na < nb
		}
		return items[i].ID < items[j].ID
	})
}
