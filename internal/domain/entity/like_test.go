package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommentToggleLike_RoundTrip(t *testing.T) {
	c := &Comment{Likes: 3, LikedBy: map[string]bool{"a": true, "b": true, "c": true}}

	assert.True(t, c.ToggleLike("u1"))
	assert.Equal(t, 4, c.Likes)
	assert.True(t, c.LikedBy["u1"])

	assert.False(t, c.ToggleLike("u1"))
	assert.Equal(t, 3, c.Likes)
	_, present := c.LikedBy["u1"]
	assert.False(t, present)
}

func TestReplyToggleLike_NilMap(t *testing.T) {
	r := &Reply{}

	assert.True(t, r.ToggleLike("u1"))
	assert.Equal(t, 1, r.Likes)
	assert.Equal(t, map[string]bool{"u1": true}, r.LikedBy)
}

func TestToggleLike_NeverNegative(t *testing.T) {
	c := &Comment{Likes: 0, LikedBy: map[string]bool{"u1": true}}

	assert.False(t, c.ToggleLike("u1"))
	assert.Equal(t, 0, c.Likes)
}

func TestMangaChapterKeys_SkipsNullEntries(t *testing.T) {
	m := &Manga{Chapters: map[string]*Chapter{"chapter_1": {Title: "one"}, "chapter_2": nil}}

	assert.Equal(t, []string{"chapter_1"}, m.ChapterKeys())

	m.DropEmptyChapters()
	assert.Len(t, m.Chapters, 1)
	assert.Contains(t, m.Chapters, "chapter_1")
}
