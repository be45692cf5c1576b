package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Movie models a catalog entry with its genre and tag names. Tags carry the
// comma-joined projection used by the API and the exporter; they are derived
// from the import pipeline and never writable through movie endpoints.
type Movie struct {
	ID     int64    `json:"id"`
	Title  string   `json:"title"`
	Genres []string `json:"genres"`
	Tags   string   `json:"tags"`
	Rating float64  `json:"rating"`
}

// MovieFilter constrains and pages the results returned by ListMovies.
type MovieFilter struct {
	Genre    string
	Tag      string
	Ordering string
	Page     int
	PageSize int
}

// MovieUpdate carries the fields of a full or partial movie update. Nil
// fields are left untouched.
type MovieUpdate struct {
	Title  *string
	Rating *float64
	Genres *[]string
}

const movieSelect = `
	SELECT m.id, m.title, m.rating::float8,
		COALESCE((
			SELECT json_agg(g.name ORDER BY g.name)
			FROM movie_genres mg
			JOIN genres g ON g.id = mg.genre_id
			WHERE mg.movie_id = m.id
		), '[]'::json)::text,
		COALESCE((
			SELECT string_agg(t.name, ', ' ORDER BY t.name)
			FROM movie_tags mt
			JOIN tags t ON t.id = mt.tag_id
			WHERE mt.movie_id = m.id
		), '')
	FROM movies m
`

var orderings = map[string]string{
	"":       "m.id ASC",
	"title":  "m.title ASC, m.id ASC",
	"-title": "m.title DESC, m.id ASC",
}

// ListMovies returns one page of movies matching the filter along with the
// total number of matches across all pages.
func (s *Store) ListMovies(ctx context.Context, filter MovieFilter) ([]Movie, int, error) {
	orderBy, ok := orderings[filter.Ordering]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %q", ErrInvalidOrdering, filter.Ordering)
	}

	var (
		clauses []string
		args    []any
	)

	if genre := strings.TrimSpace(filter.Genre); genre != "" {
		args = append(args, genre)
		clauses = append(clauses, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM movie_genres mg
			JOIN genres g ON g.id = mg.genre_id
			WHERE mg.movie_id = m.id AND g.name = $%d
		)`, len(args)))
	}
	if tag := strings.TrimSpace(filter.Tag); tag != "" {
		args = append(args, tag)
		clauses = append(clauses, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM movie_tags mt
			JOIN tags t ON t.id = mt.tag_id
			WHERE mt.movie_id = m.id AND t.name = $%d
		)`, len(args)))
	}

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM movies m"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movies: %w", err)
	}

	query := movieSelect + where + " ORDER BY " + orderBy
	pageArgs := args
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		pageArgs = append(pageArgs, filter.PageSize, (page-1)*filter.PageSize)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(pageArgs)-1, len(pageArgs))
	}

	rows, err := s.db.QueryContext(ctx, query, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("select movies: %w", err)
	}
	defer rows.Close()

	movies, err := scanMovieRows(rows)
	if err != nil {
		return nil, 0, err
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate movies: %w", err)
	}

	return movies, total, nil
}

// MovieByID returns a single movie by its identifier.
func (s *Store) MovieByID(ctx context.Context, id int64) (Movie, error) {
	row := s.db.QueryRowContext(ctx, movieSelect+" WHERE m.id = $1", id)

	movie, err := scanMovieRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Movie{}, ErrMovieNotFound
		}
		return Movie{}, err
	}
	return movie, nil
}

// CreateMovie inserts a new movie and associates it with existing genres by
// name. Every genre name must already exist; tags are not settable here.
func (s *Store) CreateMovie(ctx context.Context, title string, rating float64, genres []string) (Movie, error) {
	title = strings.TrimSpace(title)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Movie{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO movies (title, rating)
		VALUES ($1, $2)
		RETURNING id
	`, title, rating).Scan(&id)
	if err != nil {
		return Movie{}, fmt.Errorf("insert movie: %w", err)
	}

	if err := setMovieGenresTx(ctx, tx, id, genres); err != nil {
		return Movie{}, err
	}

	if err := tx.Commit(); err != nil {
		return Movie{}, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	names := append([]string(nil), genres...)
	sort.Strings(names)

	return Movie{ID: id, Title: title, Genres: names, Tags: "", Rating: rating}, nil
}

// UpdateMovie applies a full or partial update to a movie. A nil Genres field
// leaves the genre associations untouched; a non-nil one replaces them.
func (s *Store) UpdateMovie(ctx context.Context, id int64, upd MovieUpdate) (Movie, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Movie{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	var existing int64
	if err := tx.QueryRowContext(ctx, `
		SELECT id
		FROM movies
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&existing); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Movie{}, ErrMovieNotFound
		}
		return Movie{}, fmt.Errorf("lookup movie: %w", err)
	}

	var (
		sets []string
		args []any
	)
	if upd.Title != nil {
		args = append(args, strings.TrimSpace(*upd.Title))
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if upd.Rating != nil {
		args = append(args, *upd.Rating)
		sets = append(sets, fmt.Sprintf("rating = $%d", len(args)))
	}
	if len(sets) > 0 {
		args = append(args, id)
		query := fmt.Sprintf("UPDATE movies SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return Movie{}, fmt.Errorf("update movie: %w", err)
		}
	}

	if upd.Genres != nil {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM movie_genres
			WHERE movie_id = $1
		`, id); err != nil {
			return Movie{}, fmt.Errorf("clear movie genres: %w", err)
		}
		if err := setMovieGenresTx(ctx, tx, id, *upd.Genres); err != nil {
			return Movie{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Movie{}, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return s.MovieByID(ctx, id)
}

// setMovieGenresTx links the movie to every named genre, failing on the first
// name that does not resolve to an existing genre row.
func setMovieGenresTx(ctx context.Context, tx *sql.Tx, movieID int64, genres []string) error {
	for _, name := range genres {
		var genreID int64
		err := tx.QueryRowContext(ctx, `
			SELECT id
			FROM genres
			WHERE name = $1
		`, name).Scan(&genreID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: %q", ErrUnknownGenre, name)
			}
			return fmt.Errorf("lookup genre: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO movie_genres (movie_id, genre_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, movieID, genreID); err != nil {
			return fmt.Errorf("link genre: %w", err)
		}
	}
	return nil
}

func scanMovieRows(rows *sql.Rows) ([]Movie, error) {
	var movies []Movie
	for rows.Next() {
		var (
			movie      Movie
			genresJSON string
		)
		if err := rows.Scan(&movie.ID, &movie.Title, &movie.Rating, &genresJSON, &movie.Tags); err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		if err := json.Unmarshal([]byte(genresJSON), &movie.Genres); err != nil {
			return nil, fmt.Errorf("decode genres: %w", err)
		}
		if movie.Genres == nil {
			movie.Genres = []string{}
		}
		movies = append(movies, movie)
	}
	return movies, nil
}

func scanMovieRow(row *sql.Row) (Movie, error) {
	var (
		movie      Movie
		genresJSON string
	)
	if err := row.Scan(&movie.ID, &movie.Title, &movie.Rating, &genresJSON, &movie.Tags); err != nil {
		return Movie{}, err
	}
	if err := json.Unmarshal([]byte(genresJSON), &movie.Genres); err != nil {
		return Movie{}, fmt.Errorf("decode genres: %w", err)
	}
	if movie.Genres == nil {
		movie.Genres = []string{}
	}
	return movie, nil
}
