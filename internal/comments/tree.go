// Package comments renders photo comment trees and decides when a poll may
// replace what is on screen.
package comments

import "github.com/adamavenir/auradm/internal/types"

// Walk visits comments depth-first in display order.
func Walk(list []types.Comment, fn func(c types.Comment, depth int)) {
	walk(list, 0, fn)
}

func walk(list []types.Comment, depth int, fn func(types.Comment, int)) {
	for _, c := range list {
		fn(c, depth)
		walk(c.Replies, depth+1, fn)
	}
}

// Count returns the number of comments in the tree.
func Count(list []types.Comment) int {
	n := 0
	Walk(list, func(types.Comment, int) { n++ })
	return n
}

// Find returns the comment with id anywhere in the tree.
func Find(list []types.Comment, id int64) (types.Comment, bool) {
	for _, c := range list {
		if c.ID == id {
			return c, true
		}
		if found, ok := Find(c.Replies, id); ok {
			return found, true
		}
	}
	return types.Comment{}, false
}

// CanDelete reports whether viewer may delete a comment by author on a
// profile owned by owner.
func CanDelete(viewer, owner, author string) bool {
	return viewer != "" && (viewer == author || viewer == owner)
}
