package utils

import "github.com/VanessaDre/masterblog-api/domain/post"

// NextPostId returns one more than the largest id in posts, or 1 when posts is
// empty.
func NextPostId(posts []post.Post) int {
	maxId := 0
	for _, p := range posts {
		if p.Id > maxId {
			maxId = p.Id
		}
	}
	return maxId + 1
}
