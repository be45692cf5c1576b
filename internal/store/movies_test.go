package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestCreateMovieSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO movies (title, rating)
		VALUES ($1, $2)
		RETURNING id
	`)).
		WithArgs("New Movie", 4.0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(131263)))
	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id
		FROM genres
		WHERE name = $1
	`)).
		WithArgs("Comedy").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO movie_genres (movie_id, genre_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`)).
		WithArgs(int64(131263), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	got, err := s.CreateMovie(context.Background(), " New Movie ", 4.0, []string{"Comedy"})
	if err != nil {
		t.Fatalf("CreateMovie error: %v", err)
	}

	if got.ID != 131263 {
		t.Fatalf("expected movie ID 131263, got %d", got.ID)
	}
	if got.Title != "New Movie" {
		t.Fatalf("expected trimmed title, got %q", got.Title)
	}
	if len(got.Genres) != 1 || got.Genres[0] != "Comedy" {
		t.Fatalf("expected genres [Comedy], got %v", got.Genres)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateMovieUnknownGenre(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO movies`)).
		WithArgs("New Movie", 4.0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id
		FROM genres
		WHERE name = $1
	`)).
		WithArgs("Nope").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err = s.CreateMovie(context.Background(), "New Movie", 4.0, []string{"Nope"})
	if !errors.Is(err, ErrUnknownGenre) {
		t.Fatalf("expected ErrUnknownGenre, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListMoviesFilterAndPagination(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM movies m WHERE EXISTS`).
		WithArgs("Comedy").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	mock.ExpectQuery(`SELECT m\.id, m\.title, m\.rating::float8`).
		WithArgs("Comedy", 10, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "rating", "genres", "tags"}).
			AddRow(int64(11), "Eleventh", 4.5, `["Comedy"]`, "funny, quirky").
			AddRow(int64(12), "Twelfth", 5.0, `["Comedy","Drama"]`, ""))

	movies, total, err := s.ListMovies(context.Background(), MovieFilter{
		Genre:    "Comedy",
		Page:     2,
		PageSize: 10,
	})
	if err != nil {
		t.Fatalf("ListMovies error: %v", err)
	}

	if total != 12 {
		t.Fatalf("expected total 12, got %d", total)
	}
	if len(movies) != 2 {
		t.Fatalf("expected 2 movies, got %d", len(movies))
	}
	if movies[0].ID != 11 || movies[0].Tags != "funny, quirky" {
		t.Fatalf("unexpected first movie: %+v", movies[0])
	}
	if len(movies[1].Genres) != 2 || movies[1].Genres[1] != "Drama" {
		t.Fatalf("unexpected genres on second movie: %v", movies[1].Genres)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListMoviesOrderingSafelist(t *testing.T) {
	tests := []struct {
		name     string
		ordering string
		orderBy  string
	}{
		{name: "default orders by id", ordering: "", orderBy: `ORDER BY m\.id ASC`},
		{name: "title ascending", ordering: "title", orderBy: `ORDER BY m\.title ASC, m\.id ASC`},
		{name: "title descending", ordering: "-title", orderBy: `ORDER BY m\.title DESC, m\.id ASC`},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("sqlmock.New: %v", err)
			}
			defer db.Close()

			s := New(db)

			mock.ExpectQuery(`SELECT COUNT\(\*\) FROM movies m`).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
			mock.ExpectQuery(tc.orderBy + ` LIMIT \$1 OFFSET \$2`).
				WithArgs(10, 0).
				WillReturnRows(sqlmock.NewRows([]string{"id", "title", "rating", "genres", "tags"}).
					AddRow(int64(1), "Only", 5.0, `[]`, ""))

			movies, _, err := s.ListMovies(context.Background(), MovieFilter{
				Ordering: tc.ordering,
				Page:     1,
				PageSize: 10,
			})
			if err != nil {
				t.Fatalf("ListMovies error: %v", err)
			}
			if len(movies) != 1 {
				t.Fatalf("expected 1 movie, got %d", len(movies))
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestListMoviesRejectsUnsafeOrdering(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	_, _, err = s.ListMovies(context.Background(), MovieFilter{Ordering: "rating; DROP TABLE movies"})
	if !errors.Is(err, ErrInvalidOrdering) {
		t.Fatalf("expected ErrInvalidOrdering, got %v", err)
	}
}

func TestMovieByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(`SELECT m\.id, m\.title, m\.rating::float8`).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	_, err = s.MovieByID(context.Background(), 404)
	if !errors.Is(err, ErrMovieNotFound) {
		t.Fatalf("expected ErrMovieNotFound, got %v", err)
	}
}

func TestUpdateMovieNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id
		FROM movies
		WHERE id = $1
		FOR UPDATE
	`)).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	title := "Updated"
	_, err = s.UpdateMovie(context.Background(), 404, MovieUpdate{Title: &title})
	if !errors.Is(err, ErrMovieNotFound) {
		t.Fatalf("expected ErrMovieNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
