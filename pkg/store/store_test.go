package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "books.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testBooks() []Book {
	return []Book{
		{ID: 1, Title: "The Hobbit", OriginalTitle: "The Hobbit", Authors: "J.R.R. Tolkien", Year: 1937, Rating: 4.25, RatingsCount: 2000000, ImageURL: "https://img.example/1.jpg"},
		{ID: 2, Title: "The Fellowship of the Ring", OriginalTitle: "The Fellowship of the Ring", Authors: "J.R.R. Tolkien", Year: 1954, Rating: 4.34, RatingsCount: 1800000, ImageURL: "https://img.example/2.jpg"},
		{ID: 3, Title: "Dune", OriginalTitle: "Dune", Authors: "Frank Herbert", Year: 1965, Rating: 4.23, RatingsCount: 700000, ImageURL: "https://img.example/3.jpg"},
	}
}

func TestStore_InsertAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.InsertBooks(ctx, testBooks()); err != nil {
		t.Fatalf("InsertBooks failed: %v", err)
	}

	books, err := s.Books(ctx, 0, 0)
	if err != nil {
		t.Fatalf("Books failed: %v", err)
	}
	if len(books) != 3 {
		t.Fatalf("Expected 3 books, got %d", len(books))
	}
	if books[0].Title != "The Hobbit" {
		t.Errorf("Expected ordered listing, got %q first", books[0].Title)
	}
}

func TestStore_Books_Paging(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.InsertBooks(ctx, testBooks()); err != nil {
		t.Fatalf("InsertBooks failed: %v", err)
	}

	page, err := s.Books(ctx, 2, 1)
	if err != nil {
		t.Fatalf("Books failed: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("Expected 2 books, got %d", len(page))
	}
	if page[0].ID != 2 || page[1].ID != 3 {
		t.Errorf("Unexpected page contents: %v, %v", page[0].ID, page[1].ID)
	}
}

func TestStore_BookByID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.InsertBooks(ctx, testBooks()); err != nil {
		t.Fatalf("InsertBooks failed: %v", err)
	}

	b, err := s.BookByID(ctx, 3)
	if err != nil {
		t.Fatalf("BookByID failed: %v", err)
	}
	if b.Title != "Dune" || b.Authors != "Frank Herbert" {
		t.Errorf("Unexpected book: %+v", b)
	}
}

func TestStore_BookByID_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.BookByID(context.Background(), 999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestStore_Count(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.InsertBooks(ctx, testBooks()); err != nil {
		t.Fatalf("InsertBooks failed: %v", err)
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Expected count 3, got %d", n)
	}
}

func TestImportCSV(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	csvPath := filepath.Join(t.TempDir(), "books.csv")
	content := `book_id,title,original_title,authors,original_publication_year,average_rating,ratings_count,image_url,extra
1,The Hobbit,The Hobbit,J.R.R. Tolkien,1937.0,4.25,2000000,https://img.example/1.jpg,x
2,Dune,Dune,Frank Herbert,1965.0,4.23,700000,https://img.example/2.jpg,y
3,Broken Row,,Missing Original,1999.0,4.0,100,https://img.example/3.jpg,z
4,Bad Year,Bad Year,Somebody,not-a-year,4.0,100,https://img.example/4.jpg,w
`
	if err := os.WriteFile(csvPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	n, err := ImportCSV(ctx, s, csvPath)
	if err != nil {
		t.Fatalf("ImportCSV failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 imported rows (2 skipped), got %d", n)
	}

	b, err := s.BookByID(ctx, 1)
	if err != nil {
		t.Fatalf("BookByID failed: %v", err)
	}
	if b.Year != 1937 {
		t.Errorf("Expected float year truncated to 1937, got %d", b.Year)
	}
}

func TestImportCSV_MissingColumn(t *testing.T) {
	s := openTestStore(t)

	csvPath := filepath.Join(t.TempDir(), "books.csv")
	if err := os.WriteFile(csvPath, []byte("book_id,title\n1,Only Title\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	if _, err := ImportCSV(context.Background(), s, csvPath); err == nil {
		t.Error("Expected error for csv missing required columns")
	}
}
