// Package testutil provides shared fixtures for handler and integration
// tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/bookrec/bookrec/pkg/store"
)

// SampleBooks returns a small catalog with two clearly separated author
// clusters, so recommendation assertions are deterministic.
func SampleBooks() []store.Book {
	return []store.Book{
		{ID: 1, Title: "The Hobbit", OriginalTitle: "The Hobbit", Authors: "J.R.R. Tolkien", Year: 1937, Rating: 4.25, RatingsCount: 2000000, ImageURL: "https://img.example/1.jpg"},
		{ID: 2, Title: "The Fellowship of the Ring", OriginalTitle: "The Fellowship of the Ring", Authors: "J.R.R. Tolkien", Year: 1954, Rating: 4.34, RatingsCount: 1800000, ImageURL: "https://img.example/2.jpg"},
		{ID: 3, Title: "The Two Towers", OriginalTitle: "The Two Towers", Authors: "J.R.R. Tolkien", Year: 1954, Rating: 4.44, RatingsCount: 900000, ImageURL: "https://img.example/3.jpg"},
		{ID: 4, Title: "Dune", OriginalTitle: "Dune", Authors: "Frank Herbert", Year: 1965, Rating: 4.23, RatingsCount: 700000, ImageURL: "https://img.example/4.jpg"},
		{ID: 5, Title: "Dune Messiah", OriginalTitle: "Dune Messiah", Authors: "Frank Herbert", Year: 1969, Rating: 3.88, RatingsCount: 200000, ImageURL: "https://img.example/5.jpg"},
		{ID: 6, Title: "Children of Dune", OriginalTitle: "Children of Dune", Authors: "Frank Herbert", Year: 1976, Rating: 3.94, RatingsCount: 150000, ImageURL: "https://img.example/6.jpg"},
	}
}

// SeededStore opens a temporary catalog database seeded with SampleBooks.
func SeededStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "books.db"))
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.InsertBooks(context.Background(), SampleBooks()); err != nil {
		t.Fatalf("Failed to seed test store: %v", err)
	}

	return s
}
