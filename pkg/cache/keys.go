package cache

import "fmt"

// Fixed key naming convention. These prefixes are part of the service's
// operational contract (dashboards and runbooks reference them), so they
// never change shape.
const (
	prefixRecommendations = "book:recommendations:"
	prefixBookDetail      = "book:detail:"
	keyBooksList          = "book:list:all"

	// KeyStatsHits and KeyStatsMisses hold the lookup counters.
	KeyStatsHits   = "stats:cache:hits"
	KeyStatsMisses = "stats:cache:misses"
)

// RecommendationsKey returns the cache key for a book's recommendations.
func RecommendationsKey(bookID int64) string {
	return fmt.Sprintf("%s%d", prefixRecommendations, bookID)
}

// BookDetailKey returns the cache key for a single book payload.
func BookDetailKey(bookID int64) string {
	return fmt.Sprintf("%s%d", prefixBookDetail, bookID)
}

// BooksListKey returns the cache key for the full books list.
func BooksListKey() string {
	return keyBooksList
}

// BooksListPageKey returns the cache key for a paged books list. A request
// without paging uses BooksListKey so the admin invalidation route keeps
// targeting the documented key.
func BooksListPageKey(limit, offset int) string {
	if limit <= 0 && offset <= 0 {
		return keyBooksList
	}
	return fmt.Sprintf("%s:limit=%d:offset=%d", keyBooksList, limit, offset)
}
