// Package exporter dumps the movie catalog to a CSV file.
package exporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/AnnaBaziruwiha/movielens-api/internal/store"
)

// Catalog is the read-only slice of the store the exporter consumes.
type Catalog interface {
	StreamMovieExport(ctx context.Context, fn func(store.ExportRow) error) error
}

var header = []string{"Movie ID", "Title", "Rating", "Genres", "Tags"}

// Export writes every movie as one CSV row ordered by id and returns the
// number of rows written (excluding the header).
func Export(ctx context.Context, catalog Catalog, outputPath string) (int, error) {
	f, err := os.Create(outputPath)
	if err != nil {
		return 0, fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	count := 0
	err = catalog.StreamMovieExport(ctx, func(row store.ExportRow) error {
		record := []string{
			strconv.FormatInt(row.ID, 10),
			row.Title,
			strconv.FormatFloat(row.Rating, 'f', 1, 64),
			row.Genres,
			row.Tags,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write movie %d: %w", row.ID, err)
		}
		count++
		return nil
	})
	if err != nil {
		return count, err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return count, fmt.Errorf("flush output: %w", err)
	}
	if err := f.Close(); err != nil {
		return count, fmt.Errorf("close output: %w", err)
	}

	return count, nil
}
