package store

import (
	"context"
	"fmt"
)

// MovieSeed is one movie row from the dataset together with its pre-computed
// mean rating and genre names.
type MovieSeed struct {
	ID     int64
	Title  string
	Rating float64
	Genres []string
}

// TagLink associates one tag name with one movie id.
type TagLink struct {
	MovieID int64
	Tag     string
}

// EnsureGenres inserts any genre names not already present and reports how
// many new rows were created. Existing names are left untouched, so the
// operation is idempotent. The whole batch runs in one transaction.
func (s *Store) EnsureGenres(ctx context.Context, names []string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	created := 0
	for _, name := range names {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO genres (name)
			VALUES ($1)
			ON CONFLICT (name) DO NOTHING
		`, name)
		if err != nil {
			return 0, fmt.Errorf("insert genre %q: %w", name, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			created++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return created, nil
}

// ImportMovies loads dataset movies in one transaction. Each movie is created
// only if no row with its id exists yet; existing rows keep their title and
// rating. The genre associations are replaced either way, resolved by name
// lookup (names without a genre row are skipped). Returns the number of
// movies created.
func (s *Store) ImportMovies(ctx context.Context, seeds []MovieSeed) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	created := 0
	for _, seed := range seeds {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO movies (id, title, rating)
			VALUES ($1, $2, $3)
			ON CONFLICT (id) DO NOTHING
		`, seed.ID, seed.Title, seed.Rating)
		if err != nil {
			return 0, fmt.Errorf("insert movie %d: %w", seed.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			created++
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM movie_genres
			WHERE movie_id = $1
		`, seed.ID); err != nil {
			return 0, fmt.Errorf("clear genres for movie %d: %w", seed.ID, err)
		}
		for _, genre := range seed.Genres {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO movie_genres (movie_id, genre_id)
				SELECT $1, id
				FROM genres
				WHERE name = $2
				ON CONFLICT DO NOTHING
			`, seed.ID, genre); err != nil {
				return 0, fmt.Errorf("link genre %q to movie %d: %w", genre, seed.ID, err)
			}
		}
	}

	// Dataset ids are explicit, so move the identity sequence past them to
	// keep API-created movies from colliding.
	if _, err := tx.ExecContext(ctx, `
		SELECT setval(pg_get_serial_sequence('movies', 'id'), (SELECT GREATEST(MAX(id), 1) FROM movies))
	`); err != nil {
		return 0, fmt.Errorf("advance movie id sequence: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return created, nil
}

// ReplaceTags rebuilds the tag catalog: all existing tags are deleted (the
// join rows cascade), then every link gets its tag get-or-created by name and
// attached to the referenced movie. A link naming a movie id that does not
// exist aborts the transaction. Returns the number of links written.
func (s *Store) ReplaceTags(ctx context.Context, links []TagLink) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tags`); err != nil {
		return 0, fmt.Errorf("delete tags: %w", err)
	}

	linked := 0
	for _, link := range links {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tags (name)
			VALUES ($1)
			ON CONFLICT (name) DO NOTHING
		`, link.Tag); err != nil {
			return 0, fmt.Errorf("insert tag %q: %w", link.Tag, err)
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO movie_tags (movie_id, tag_id)
			SELECT $1, id
			FROM tags
			WHERE name = $2
			ON CONFLICT DO NOTHING
		`, link.MovieID, link.Tag)
		if err != nil {
			if isForeignKeyViolation(err) {
				return 0, fmt.Errorf("tag %q references movie %d: %w", link.Tag, link.MovieID, ErrMovieNotFound)
			}
			return 0, fmt.Errorf("link tag %q to movie %d: %w", link.Tag, link.MovieID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			linked++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return linked, nil
}
