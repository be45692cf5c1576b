package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func intPtr(v int) *int { return &v }

func TestCreateUserRatingSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM movies WHERE id = $1)`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO user_ratings (movie_id, user_id, rating)
		VALUES ($1, $2, $3)
		RETURNING id
	`)).
		WithArgs(int64(5), int64(42), 4).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(99)))

	got, err := s.CreateUserRating(context.Background(), 42, 5, intPtr(4))
	if err != nil {
		t.Fatalf("CreateUserRating error: %v", err)
	}
	if got.ID != 99 || got.UserID != 42 || got.MovieID != 5 || got.Rating != 4 {
		t.Fatalf("unexpected rating: %+v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// A missing movie must surface before any rating validation, even when the
// rating itself is absent.
func TestCreateUserRatingMissingMovieBeforeValidation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM movies WHERE id = $1)`)).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, err = s.CreateUserRating(context.Background(), 42, 404, nil)
	if !errors.Is(err, ErrMovieNotFound) {
		t.Fatalf("expected ErrMovieNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateUserRatingInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		rating *int
	}{
		{name: "missing", rating: nil},
		{name: "negative", rating: intPtr(-1)},
		{name: "too large", rating: intPtr(256)},
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

			mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM movies WHERE id = $1)`)).
				WithArgs(int64(5)).
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

			_, err = s.CreateUserRating(context.Background(), 42, 5, tc.rating)
			if !errors.Is(err, ErrInvalidRating) {
				t.Fatalf("expected ErrInvalidRating, got %v", err)
			}
		})
	}
}

func TestCreateUserRatingDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM movies WHERE id = $1)`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO user_ratings`)).
		WithArgs(int64(5), int64(42), 4).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err = s.CreateUserRating(context.Background(), 42, 5, intPtr(4))
	if !errors.Is(err, ErrAlreadyRated) {
		t.Fatalf("expected ErrAlreadyRated, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
