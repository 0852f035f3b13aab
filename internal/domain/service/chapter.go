package service

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

const ChapterKeyPrefix = "chapter_"

// ChapterRef is a chapter key together with the number it encodes.
type ChapterRef struct {
	Key    string  `json:"key"`
	Number float64 `json:"number"`
}

// Navigation describes where a chapter sits among its siblings.
type Navigation struct {
	Current ChapterRef  `json:"current"`
	Prev    *ChapterRef `json:"prev"`
	Next    *ChapterRef `json:"next"`
}

// ChapterKey builds the storage key for a chapter number: 3 -> "chapter_3", 10.5 -> "chapter_10.5".
func ChapterKey(number float64) string {
	return ChapterKeyPrefix + strconv.FormatFloat(number, 'f', -1, 64)
}

// ParseChapterKey extracts the number from "chapter_<n>". Keys that do not
// carry a finite number greater than zero are rejected.
func ParseChapterKey(key string) (float64, bool) {
	if !strings.HasPrefix(key, ChapterKeyPrefix) {
		return 0, false
	}
	return parsePositive(strings.TrimPrefix(key, ChapterKeyPrefix))
}

// ParseChapterNumber accepts what a reader URL carries: "12", "12.5" or "chapter_12".
func ParseChapterNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if n, ok := ParseChapterKey(s); ok {
		return n, nil
	}
	if n, ok := parsePositive(s); ok {
		return n, nil
	}
	return 0, fmt.Errorf("invalid chapter number %q", s)
}

func parsePositive(s string) (float64, bool) {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 {
		return 0, false
	}
	return n, true
}

// SortChapters parses keys, drops the ones without a number and orders the
// rest ascending. When two keys encode the same number the lexically
// smaller key wins.
func SortChapters(keys []string) []ChapterRef {
	byNumber := make(map[float64]string, len(keys))
	for _, k := range keys {
		n, ok := ParseChapterKey(k)
		if !ok {
			continue
		}
		if existing, dup := byNumber[n]; dup && existing < k {
			continue
		}
		byNumber[n] = k
	}

	refs := make([]ChapterRef, 0, len(byNumber))
	for n, k := range byNumber {
		refs = append(refs, ChapterRef{Key: k, Number: n})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Number < refs[j].Number })
	return refs
}

// LatestChapter returns the chapter with the highest number.
func LatestChapter(keys []string) (ChapterRef, bool) {
	var latest ChapterRef
	found := false
	for _, k := range keys {
		n, ok := ParseChapterKey(k)
		if !ok {
			continue
		}
		if !found || n > latest.Number || (n == latest.Number && k < latest.Key) {
			latest = ChapterRef{Key: k, Number: n}
			found = true
		}
	}
	return latest, found
}

// Navigate locates current among keys and returns its neighbours.
func Navigate(keys []string, current float64) (Navigation, bool) {
	refs := SortChapters(keys)
	idx := sort.Search(len(refs), func(i int) bool { return refs[i].Number >= current })
	if idx == len(refs) || refs[idx].Number != current {
		return Navigation{}, false
	}

	nav := Navigation{Current: refs[idx]}
	if idx > 0 {
		prev := refs[idx-1]
		nav.Prev = &prev
	}
	if idx < len(refs)-1 {
		next := refs[idx+1]
		nav.Next = &next
	}
	return nav, true
}
