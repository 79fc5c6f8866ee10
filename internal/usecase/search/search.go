// Package search filters the recent aggregation window in memory. There is no
// index: the window is small and the haystack scan is cheap.
package search

import (
	"strings"

	"intelcore/internal/domain/entity"
)

// Defaults for the search window and result size.
const (
	DefaultSinceHours = 48.0
	DefaultLimit      = 60
)

// Filter returns the items matching the query, truncated to limit. An item
// matches when every whitespace-separated query token is a substring of its
// lowercase haystack. An empty query matches everything.
func Filter(items []entity.ScoredItem, q string, limit int) []entity.ScoredItem {
	tokens := strings.Fields(strings.ToLower(q))

	out := make([]entity.ScoredItem, 0, limit)
	for _, it := range items {
		if matches(haystack(it), tokens) {
			out = append(out, it)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out
}

func matches(hay string, tokens []string) bool {
	for _, tok := range tokens {
		if !strings.Contains(hay, tok) {
			return false
		}
	}
	return true
}

// haystack concatenates the searchable fields of one item.
func haystack(it entity.ScoredItem) string {
	return strings.ToLower(it.Title + " " + it.Description + " " +
		strings.Join(it.Tags, " ") + " " + strings.Join(it.Geos, " "))
}
