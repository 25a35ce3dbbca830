package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/bookrec/bookrec/pkg/cache"
	"github.com/bookrec/bookrec/pkg/recommend"
	"github.com/bookrec/bookrec/pkg/store"
)

// handleBooks serves the catalog list, cached under book:list:all (or its
// page-qualified variant when limit/offset are supplied).
func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	offset, ok := queryInt(w, r, "offset")
	if !ok {
		return
	}

	key := cache.BooksListPageKey(limit, offset)
	data, hit, err := s.cache.GetOrCompute(r.Context(), key, s.cfg.BookListTTL,
		func(ctx context.Context) ([]byte, error) {
			books, err := s.catalog.Books(ctx, limit, offset)
			if err != nil {
				return nil, err
			}
			return json.Marshal(books)
		})
	if err != nil {
		s.logger.Error().Err(err).Msg("listing books failed")
		writeError(w, http.StatusInternalServerError, "Failed to list books")
		return
	}

	writeCached(w, data, hit)
}

// handleBookDetail serves a single book, cached under book:detail:{id}.
func (s *Server) handleBookDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	data, hit, err := s.cache.GetOrCompute(r.Context(), cache.BookDetailKey(id), s.cfg.BookDetailTTL,
		func(ctx context.Context) ([]byte, error) {
			book, err := s.catalog.BookByID(ctx, id)
			if err != nil {
				return nil, err
			}
			return json.Marshal(book)
		})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Book not found")
			return
		}
		s.logger.Error().Err(err).Int64("book_id", id).Msg("fetching book failed")
		writeError(w, http.StatusInternalServerError, "Failed to fetch book")
		return
	}

	writeCached(w, data, hit)
}

// recommendationsPayload is the /recommend/{id} response body.
type recommendationsPayload struct {
	BookID          int64                      `json:"book_id"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
}

// handleRecommend serves recommendations for a book, cached under
// book:recommendations:{id}.
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	data, hit, err := s.cache.GetOrCompute(r.Context(), cache.RecommendationsKey(id), s.cfg.RecommendationsTTL,
		func(ctx context.Context) ([]byte, error) {
			recs, err := s.rec.Recommend(id, 0)
			if err != nil {
				return nil, err
			}
			return json.Marshal(recommendationsPayload{BookID: id, Recommendations: recs})
		})
	if err != nil {
		if errors.Is(err, recommend.ErrUnknownBook) {
			writeError(w, http.StatusNotFound, "Book not found")
			return
		}
		s.logger.Error().Err(err).Int64("book_id", id).Msg("computing recommendations failed")
		writeError(w, http.StatusInternalServerError, "Failed to compute recommendations")
		return
	}

	writeCached(w, data, hit)
}

// handleHealth reports service liveness plus the cache backend state. The
// service is healthy even while the cache is down; callers read the cache
// field to distinguish degraded mode.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"cache":  s.admin.HealthCheck(r.Context()),
	})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid book id")
		return 0, false
	}
	return id, true
}

func queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		writeError(w, http.StatusBadRequest, "Invalid "+name+" parameter")
		return 0, false
	}
	return n, true
}

func writeCached(w http.ResponseWriter, data []byte, hit bool) {
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
