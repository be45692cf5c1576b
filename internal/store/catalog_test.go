package store

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

// Re-running the genre step against an already-populated table creates no
// rows: every insert conflicts on the unique name and reports zero affected.
func TestEnsureGenresIdempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`
			INSERT INTO genres (name)
			VALUES ($1)
			ON CONFLICT (name) DO NOTHING
		`)).
		WithArgs("Comedy").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO genres`)).
		WithArgs("Drama").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	created, err := s.EnsureGenres(context.Background(), []string{"Comedy", "Drama"})
	if err != nil {
		t.Fatalf("EnsureGenres error: %v", err)
	}
	if created != 1 {
		t.Fatalf("expected 1 created genre, got %d", created)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestImportMoviesGetOrCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectBegin()

	// Existing movie: insert conflicts, associations still replaced.
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO movies (id, title, rating)`)).
		WithArgs(int64(1), "Toy Story (1995)", 4.2).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM movie_genres`)).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO movie_genres (movie_id, genre_id)`)).
		WithArgs(int64(1), "Animation").
		WillReturnResult(sqlmock.NewResult(0, 1))

	// New movie without ratings falls back to the 5.0 default.
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO movies (id, title, rating)`)).
		WithArgs(int64(2), "Jumanji (1995)", 5.0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM movie_genres`)).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO movie_genres (movie_id, genre_id)`)).
		WithArgs(int64(2), "Adventure").
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec(regexp.QuoteMeta(`SELECT setval`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	created, err := s.ImportMovies(context.Background(), []MovieSeed{
		{ID: 1, Title: "Toy Story (1995)", Rating: 4.2, Genres: []string{"Animation"}},
		{ID: 2, Title: "Jumanji (1995)", Rating: 5.0, Genres: []string{"Adventure"}},
	})
	if err != nil {
		t.Fatalf("ImportMovies error: %v", err)
	}
	if created != 1 {
		t.Fatalf("expected 1 created movie, got %d", created)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReplaceTagsDeletesThenRebuilds(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM tags`)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO tags (name)`)).
		WithArgs("funny").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO movie_tags (movie_id, tag_id)`)).
		WithArgs(int64(1), "funny").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	linked, err := s.ReplaceTags(context.Background(), []TagLink{{MovieID: 1, Tag: "funny"}})
	if err != nil {
		t.Fatalf("ReplaceTags error: %v", err)
	}
	if linked != 1 {
		t.Fatalf("expected 1 link, got %d", linked)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
