package store

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrMovieNotFound signals a missing movie record.
	ErrMovieNotFound = errors.New("movie not found")
	// ErrUnknownGenre indicates a movie referenced a genre name that does not exist.
	ErrUnknownGenre = errors.New("unknown genre")
	// ErrAlreadyRated signals the user has already rated the movie.
	ErrAlreadyRated = errors.New("movie already rated by user")
	// ErrInvalidRating indicates a missing or out-of-range rating value.
	ErrInvalidRating = errors.New("invalid rating")
	// ErrInvalidOrdering indicates an ordering value outside the safelist.
	ErrInvalidOrdering = errors.New("invalid ordering value")
	// ErrUserExists signals the username is already taken.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials indicates a login failure.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Store provides persistence backed by Postgres.
type Store struct {
	db *sql.DB
}

// New sets up a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}
