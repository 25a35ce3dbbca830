// Package store provides the SQLite-backed book catalog.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrNotFound indicates the requested book does not exist.
var ErrNotFound = errors.New("book not found")

// Book is a catalog entry. JSON field names match the public API payloads.
type Book struct {
	ID            int64   `json:"book_id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	Authors       string  `json:"authors"`
	Year          int     `json:"year"`
	Rating        float64 `json:"rating"`
	RatingsCount  int64   `json:"ratings_count"`
	ImageURL      string  `json:"image_url"`
}

// Store is the book catalog backed by SQLite.
type Store struct {
	db *sql.DB
}

const createBooksTable = `
CREATE TABLE IF NOT EXISTS books (
	book_id INTEGER PRIMARY KEY,
	title TEXT NOT NULL,
	original_title TEXT NOT NULL DEFAULT '',
	authors TEXT NOT NULL DEFAULT '',
	original_publication_year INTEGER NOT NULL DEFAULT 0,
	average_rating REAL NOT NULL DEFAULT 0,
	ratings_count INTEGER NOT NULL DEFAULT 0,
	image_url TEXT NOT NULL DEFAULT ''
);
`

// Open opens (creating if necessary) the catalog database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open books db: %w", err)
	}

	if _, err := db.Exec(createBooksTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate books db: %w", err)
	}

	return &Store{db: db}, nil
}

const selectBooks = `
SELECT book_id, title, original_title, authors, original_publication_year,
       average_rating, ratings_count, image_url
FROM books`

// Books lists catalog entries ordered by id. A non-positive limit returns
// the full catalog.
func (s *Store) Books(ctx context.Context, limit, offset int) ([]Book, error) {
	query := selectBooks + " ORDER BY book_id"
	args := []any{}
	if limit > 0 || offset > 0 {
		// SQLite accepts LIMIT -1 for "no limit" when only an offset is given.
		if limit <= 0 {
			limit = -1
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, max(offset, 0))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	books := []Book{}
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.OriginalTitle, &b.Authors,
			&b.Year, &b.Rating, &b.RatingsCount, &b.ImageURL); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	return books, nil
}

// BookByID fetches a single catalog entry.
func (s *Store) BookByID(ctx context.Context, id int64) (*Book, error) {
	var b Book
	err := s.db.QueryRowContext(ctx, selectBooks+" WHERE book_id = ?", id).
		Scan(&b.ID, &b.Title, &b.OriginalTitle, &b.Authors,
			&b.Year, &b.Rating, &b.RatingsCount, &b.ImageURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book %d: %w", id, err)
	}

	return &b, nil
}

// Count returns the number of catalog entries.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return n, nil
}

// InsertBooks inserts (or replaces) catalog entries in a single transaction.
func (s *Store) InsertBooks(ctx context.Context, books []Book) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO books
		(book_id, title, original_title, authors, original_publication_year,
		 average_rating, ratings_count, image_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range books {
		if _, err := stmt.ExecContext(ctx, b.ID, b.Title, b.OriginalTitle, b.Authors,
			b.Year, b.Rating, b.RatingsCount, b.ImageURL); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert book %d: %w", b.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
