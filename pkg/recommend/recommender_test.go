package recommend

import (
	"errors"
	"testing"

	"github.com/bookrec/bookrec/pkg/store"
)

// Two clusters: Tolkien fantasy and Herbert science fiction. Similarity
// within a cluster must beat similarity across clusters.
func corpusBooks() []store.Book {
	return []store.Book{
		{ID: 1, Title: "The Hobbit", Authors: "J.R.R. Tolkien", Year: 1937, Rating: 4.25},
		{ID: 2, Title: "The Fellowship of the Ring", Authors: "J.R.R. Tolkien", Year: 1954, Rating: 4.34},
		{ID: 3, Title: "The Two Towers", Authors: "J.R.R. Tolkien", Year: 1954, Rating: 4.44},
		{ID: 4, Title: "Dune", Authors: "Frank Herbert", Year: 1965, Rating: 4.23},
		{ID: 5, Title: "Dune Messiah", Authors: "Frank Herbert", Year: 1969, Rating: 3.88},
		{ID: 6, Title: "Children of Dune", Authors: "Frank Herbert", Year: 1976, Rating: 3.94},
	}
}

func TestRecommend_ClusterAffinity(t *testing.T) {
	r := New(corpusBooks(), 2)

	recs, err := r.Recommend(4, 2)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("Expected 2 recommendations, got %d", len(recs))
	}

	for _, rec := range recs {
		if rec.Authors != "Frank Herbert" {
			t.Errorf("Expected Herbert cluster for Dune, got %q (%s)", rec.Title, rec.Authors)
		}
	}
}

func TestRecommend_ExcludesSelf(t *testing.T) {
	r := New(corpusBooks(), 10)

	recs, err := r.Recommend(1, 0)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}

	for _, rec := range recs {
		if rec.BookID == 1 {
			t.Error("Recommendations must not include the query book")
		}
	}
}

func TestRecommend_UnknownBook(t *testing.T) {
	r := New(corpusBooks(), 5)

	_, err := r.Recommend(999, 5)
	if !errors.Is(err, ErrUnknownBook) {
		t.Errorf("Expected ErrUnknownBook, got %v", err)
	}
}

func TestRecommend_DefaultNeighbors(t *testing.T) {
	r := New(corpusBooks(), 3)

	recs, err := r.Recommend(2, 0)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if len(recs) != 3 {
		t.Errorf("Expected configured default of 3 neighbors, got %d", len(recs))
	}
}

func TestRecommend_BoundedByCorpus(t *testing.T) {
	r := New(corpusBooks(), 10)

	recs, err := r.Recommend(1, 50)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if len(recs) != len(corpusBooks())-1 {
		t.Errorf("Expected %d recommendations, got %d", len(corpusBooks())-1, len(recs))
	}
}

func TestKnows(t *testing.T) {
	r := New(corpusBooks(), 5)

	if !r.Knows(1) {
		t.Error("Knows(1) should be true")
	}
	if r.Knows(999) {
		t.Error("Knows(999) should be false")
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"The Hobbit", "the hobbit"},
		{"J.R.R. Tolkien", "j r r tolkien"},
		{"  Dune   Messiah ", "dune messiah"},
		{"rating 4.25", "rating 4 25"},
		{"Ender's Game!", "ender s game"},
	}

	for _, tt := range tests {
		if got := cleanText(tt.in); got != tt.want {
			t.Errorf("cleanText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTokenize_DropsStopwords(t *testing.T) {
	tokens := tokenize("the fellowship of the ring")

	for _, tok := range tokens {
		if tok == "the" || tok == "of" {
			t.Errorf("Stopword %q should be dropped", tok)
		}
	}
	if len(tokens) != 2 {
		t.Errorf("Expected [fellowship ring], got %v", tokens)
	}
}

func TestDot(t *testing.T) {
	a := map[int]float64{0: 0.6, 1: 0.8}
	b := map[int]float64{1: 1.0}

	if got := dot(a, b); got != 0.8 {
		t.Errorf("dot = %v, want 0.8", got)
	}
	if got := dot(b, a); got != 0.8 {
		t.Errorf("dot should be symmetric, got %v", got)
	}
	if got := dot(a, map[int]float64{5: 1}); got != 0 {
		t.Errorf("disjoint dot = %v, want 0", got)
	}
}
