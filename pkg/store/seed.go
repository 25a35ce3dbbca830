package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// Columns the seeder requires in the catalog CSV. Rows with missing or
// unparseable values in these columns are skipped, matching how the
// catalog has always been curated.
var requiredColumns = []string{
	"book_id",
	"title",
	"original_title",
	"authors",
	"original_publication_year",
	"average_rating",
	"ratings_count",
	"image_url",
}

// ImportCSV seeds the catalog from a CSV export. Returns the number of rows
// imported.
func ImportCSV(ctx context.Context, s *Store, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open catalog csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("read csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return 0, fmt.Errorf("catalog csv missing column %q", name)
		}
	}

	logger := log.With().Str("component", "seed").Logger()

	var books []Book
	skipped := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read csv row: %w", err)
		}

		b, ok := parseRow(record, cols)
		if !ok {
			skipped++
			continue
		}
		books = append(books, b)
	}

	if err := s.InsertBooks(ctx, books); err != nil {
		return 0, err
	}

	logger.Info().Int("imported", len(books)).Int("skipped", skipped).Msg("catalog seeded")
	return len(books), nil
}

func parseRow(record []string, cols map[string]int) (Book, bool) {
	field := func(name string) (string, bool) {
		i := cols[name]
		if i >= len(record) {
			return "", false
		}
		return record[i], true
	}

	var b Book
	for _, name := range requiredColumns {
		v, ok := field(name)
		if !ok || v == "" {
			return Book{}, false
		}

		switch name {
		case "book_id":
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return Book{}, false
			}
			b.ID = id
		case "title":
			b.Title = v
		case "original_title":
			b.OriginalTitle = v
		case "authors":
			b.Authors = v
		case "original_publication_year":
			// Year columns in catalog exports often carry a float form
			// ("2008.0"), so parse as float and truncate.
			y, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return Book{}, false
			}
			b.Year = int(y)
		case "average_rating":
			rating, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return Book{}, false
			}
			b.Rating = rating
		case "ratings_count":
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return Book{}, false
			}
			b.RatingsCount = n
		case "image_url":
			b.ImageURL = v
		}
	}

	return b, true
}
