package store

import (
	"context"
	"fmt"
)

// ExportRow is one movie joined with its genre and tag names, each set
// rendered as a comma-joined string.
type ExportRow struct {
	ID     int64
	Title  string
	Rating float64
	Genres string
	Tags   string
}

// StreamMovieExport calls fn for every movie in ascending id order without
// materializing the whole catalog. Returning an error from fn stops the scan.
func (s *Store) StreamMovieExport(ctx context.Context, fn func(ExportRow) error) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.title, m.rating::float8,
			COALESCE((
				SELECT string_agg(g.name, ', ' ORDER BY g.name)
				FROM movie_genres mg
				JOIN genres g ON g.id = mg.genre_id
				WHERE mg.movie_id = m.id
			), ''),
			COALESCE((
				SELECT string_agg(t.name, ', ' ORDER BY t.name)
				FROM movie_tags mt
				JOIN tags t ON t.id = mt.tag_id
				WHERE mt.movie_id = m.id
			), '')
		FROM movies m
		ORDER BY m.id ASC
	`)
	if err != nil {
		return fmt.Errorf("select movies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row ExportRow
		if err := rows.Scan(&row.ID, &row.Title, &row.Rating, &row.Genres, &row.Tags); err != nil {
			return fmt.Errorf("scan movie: %w", err)
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate movies: %w", err)
	}

	return nil
}
