package api

import (
	"fmt"
	"net/http"

	"github.com/bookrec/bookrec/pkg/cache"
)

// The admin routes are thin proxies over the cache service: forward the
// command, return its result or a connectivity error.

// handleCacheStats reports lookup counters and backend health.
func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	writeJSON(w, http.StatusOK, map[string]any{
		"cache_stats":  s.admin.Stats(ctx),
		"redis_health": s.admin.HealthCheck(ctx),
	})
}

// handleCacheClear flushes the whole cache database. The stat counters live
// in the same database and are wiped with it.
func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if err := s.admin.Clear(r.Context()); err != nil {
		s.logger.Warn().Err(err).Msg("cache clear failed")
		writeError(w, http.StatusInternalServerError, "Failed to clear cache")
		return
	}

	s.logger.Info().Msg("admin cleared all cache")
	writeJSON(w, http.StatusOK, map[string]string{"message": "Cache cleared successfully"})
}

// handleCacheKeys lists every key currently in the cache.
func (s *Server) handleCacheKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := s.admin.Keys(r.Context())
	if err != nil {
		s.logger.Warn().Err(err).Msg("cache key listing failed")
		writeError(w, http.StatusInternalServerError, "Failed to list cache keys")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total_keys": len(keys),
		"keys":       keys,
	})
}

// handleInvalidateBook removes the cached recommendations for one book.
func (s *Server) handleInvalidateBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.admin.Delete(r.Context(), cache.RecommendationsKey(id)); err != nil {
		s.logger.Warn().Err(err).Int64("book_id", id).Msg("cache invalidation failed")
		writeError(w, http.StatusInternalServerError, "Failed to invalidate cache")
		return
	}

	s.logger.Info().Int64("book_id", id).Msg("admin invalidated book cache")
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Cache invalidated for book %d", id),
	})
}

// handleInvalidateBooksList removes the cached books list.
func (s *Server) handleInvalidateBooksList(w http.ResponseWriter, r *http.Request) {
	if err := s.admin.Delete(r.Context(), cache.BooksListKey()); err != nil {
		s.logger.Warn().Err(err).Msg("books list invalidation failed")
		writeError(w, http.StatusInternalServerError, "Failed to invalidate cache")
		return
	}

	s.logger.Info().Msg("admin invalidated books list cache")
	writeJSON(w, http.StatusOK, map[string]string{"message": "Books list cache invalidated"})
}

// handleReconnect attempts to re-establish the Redis connection.
func (s *Server) handleReconnect(w http.ResponseWriter, r *http.Request) {
	if err := s.admin.Reconnect(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reconnect to Redis")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Redis reconnected successfully",
		"status":  "connected",
	})
}
