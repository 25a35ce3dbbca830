// Package recommend provides the content-based book recommender: TF-IDF
// vectors over combined book metadata text, ranked by cosine similarity.
package recommend

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bookrec/bookrec/pkg/store"
)

// ErrUnknownBook indicates the requested book is not in the trained corpus.
var ErrUnknownBook = errors.New("unknown book")

// Recommendation is one entry of a recommendations payload. JSON field
// names match the public API contract.
type Recommendation struct {
	BookID        int64   `json:"book_id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	Authors       string  `json:"authors"`
	Year          int     `json:"year"`
	Rating        float64 `json:"rating"`
	RatingsCount  int64   `json:"ratings_count"`
	ImageURL      string  `json:"image_url"`
}

// Recommender holds L2-normalized TF-IDF vectors for the whole catalog and
// answers nearest-neighbour queries by exact cosine search. The catalog is
// small enough (tens of thousands of books) that a brute-force scan per
// query is cheap; vectors are built once at startup and never mutated, so
// the type is safe for concurrent use.
type Recommender struct {
	books     []store.Book
	byID      map[int64]int
	vectors   []map[int]float64
	neighbors int
	logger    zerolog.Logger
}

// New builds a recommender over the given catalog. neighbors is the default
// number of similar books returned per query.
func New(books []store.Book, neighbors int) *Recommender {
	logger := log.With().Str("component", "recommend").Logger()

	r := &Recommender{
		books:     books,
		byID:      make(map[int64]int, len(books)),
		neighbors: neighbors,
		logger:    logger,
	}
	for i, b := range books {
		r.byID[b.ID] = i
	}

	r.vectors = vectorize(books)
	logger.Info().Int("books", len(books)).Msg("recommender trained")
	return r
}

// Recommend returns up to n books most similar to bookID, excluding the
// book itself. A non-positive n uses the configured default.
func (r *Recommender) Recommend(bookID int64, n int) ([]Recommendation, error) {
	idx, ok := r.byID[bookID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBook, bookID)
	}
	if n <= 0 {
		n = r.neighbors
	}

	query := r.vectors[idx]

	type scored struct {
		idx   int
		score float64
	}
	candidates := make([]scored, 0, len(r.books)-1)
	for i := range r.books {
		if i == idx {
			continue
		}
		candidates = append(candidates, scored{idx: i, score: dot(query, r.vectors[i])})
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].score > candidates[b].score
	})

	if n > len(candidates) {
		n = len(candidates)
	}

	recs := make([]Recommendation, 0, n)
	for _, c := range candidates[:n] {
		b := r.books[c.idx]
		recs = append(recs, Recommendation{
			BookID:        b.ID,
			Title:         b.Title,
			OriginalTitle: b.OriginalTitle,
			Authors:       b.Authors,
			Year:          b.Year,
			Rating:        b.Rating,
			RatingsCount:  b.RatingsCount,
			ImageURL:      b.ImageURL,
		})
	}

	r.logger.Debug().Int64("book_id", bookID).Int("returned", len(recs)).Msg("recommendations computed")
	return recs, nil
}

// Knows reports whether bookID is part of the trained corpus.
func (r *Recommender) Knows(bookID int64) bool {
	_, ok := r.byID[bookID]
	return ok
}

// vectorize builds L2-normalized TF-IDF vectors (smoothed IDF) over the
// combined metadata text of each book.
func vectorize(books []store.Book) []map[int]float64 {
	vocab := map[string]int{}
	docFreq := map[int]int{}
	termCounts := make([]map[int]int, len(books))

	for i, b := range books {
		tokens := tokenize(cleanText(combineText(b)))
		counts := map[int]int{}
		for _, tok := range tokens {
			id, ok := vocab[tok]
			if !ok {
				id = len(vocab)
				vocab[tok] = id
			}
			counts[id]++
		}
		for id := range counts {
			docFreq[id]++
		}
		termCounts[i] = counts
	}

	n := float64(len(books))
	idf := make([]float64, len(vocab))
	for id, df := range docFreq {
		idf[id] = math.Log((1+n)/(1+float64(df))) + 1
	}

	vectors := make([]map[int]float64, len(books))
	for i, counts := range termCounts {
		vec := make(map[int]float64, len(counts))
		var norm float64
		for id, tf := range counts {
			w := float64(tf) * idf[id]
			vec[id] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for id := range vec {
				vec[id] /= norm
			}
		}
		vectors[i] = vec
	}

	return vectors
}

// combineText merges the metadata fields that drive similarity.
func combineText(b store.Book) string {
	return fmt.Sprintf("%s %s %d rating %s",
		b.Title, b.Authors, b.Year, strconv.FormatFloat(b.Rating, 'g', -1, 64))
}

// cleanText lowercases and strips everything but letters, digits and
// whitespace.
func cleanText(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))

	lastSpace := true
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				sb.WriteByte(' ')
				lastSpace = true
			}
		}
	}

	return strings.TrimSpace(sb.String())
}

func tokenize(text string) []string {
	fields := strings.Fields(text)
	tokens := fields[:0]
	for _, f := range fields {
		if stopwords[f] {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// stopwords is a compact english stopword list; enough to keep filler words
// out of the vocabulary without dragging in a full NLP dependency.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "for": true, "from": true,
	"has": true, "he": true, "her": true, "his": true, "in": true,
	"is": true, "it": true, "its": true, "of": true, "on": true,
	"or": true, "she": true, "that": true, "the": true, "their": true,
	"they": true, "this": true, "to": true, "was": true, "were": true,
	"will": true, "with": true,
}

func dot(a, b map[int]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for id, w := range a {
		if w2, ok := b[id]; ok {
			sum += w * w2
		}
	}
	return sum
}
