package entity

// ToggleLike flips uid's membership in LikedBy and moves Likes by one.
// It reports whether the comment is now liked by uid.
func (c *Comment) ToggleLike(uid string) bool {
	var liked bool
	c.LikedBy, c.Likes, liked = toggleLike(c.LikedBy, c.Likes, uid)
	return liked
}

// ToggleLike is the reply counterpart of Comment.ToggleLike.
func (r *Reply) ToggleLike(uid string) bool {
	var liked bool
	r.LikedBy, r.Likes, liked = toggleLike(r.LikedBy, r.Likes, uid)
	return liked
}

func toggleLike(likedBy map[string]bool, likes int, uid string) (map[string]bool, int, bool) {
	if likedBy == nil {
		likedBy = make(map[string]bool)
	}
	if likedBy[uid] {
		delete(likedBy, uid)
		if likes > 0 {
			likes--
		}
		return likedBy, likes, false
	}
	likedBy[uid] = true
	return likedBy, likes + 1, true
}
