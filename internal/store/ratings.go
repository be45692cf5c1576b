package store

import (
	"context"
	"fmt"
)

// UserRating is one user's rating of one movie. At most one row can exist per
// (movie, user) pair; the unique constraint backs that invariant so concurrent
// duplicate submissions cannot both succeed.
type UserRating struct {
	ID      int64 `json:"id"`
	UserID  int64 `json:"user"`
	MovieID int64 `json:"movie_id"`
	Rating  int   `json:"rating"`
}

const maxUserRating = 255

// CreateUserRating records a rating for the movie by the given user. The
// movie existence check runs before any rating validation, so a missing movie
// always surfaces as ErrMovieNotFound. A nil or out-of-range rating yields
// ErrInvalidRating, a second rating for the same pair ErrAlreadyRated.
func (s *Store) CreateUserRating(ctx context.Context, userID, movieID int64, rating *int) (UserRating, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM movies WHERE id = $1)
	`, movieID).Scan(&exists); err != nil {
		return UserRating{}, fmt.Errorf("lookup movie: %w", err)
	}
	if !exists {
		return UserRating{}, ErrMovieNotFound
	}

	if rating == nil || *rating < 0 || *rating > maxUserRating {
		return UserRating{}, ErrInvalidRating
	}

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO user_ratings (movie_id, user_id, rating)
		VALUES ($1, $2, $3)
		RETURNING id
	`, movieID, userID, *rating).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return UserRating{}, ErrAlreadyRated
		}
		if isForeignKeyViolation(err) {
			return UserRating{}, ErrMovieNotFound
		}
		return UserRating{}, fmt.Errorf("insert rating: %w", err)
	}

	return UserRating{ID: id, UserID: userID, MovieID: movieID, Rating: *rating}, nil
}
