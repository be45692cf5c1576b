package ratings

import (
	"context"

	"github.com/AnnaBaziruwiha/movielens-api/internal/store"
)

// Store defines the persistence hooks for rating workflows.
type Store interface {
	CreateUserRating(ctx context.Context, userID, movieID int64, rating *int) (store.UserRating, error)
}

// Service records per-user movie ratings.
type Service interface {
	Rate(ctx context.Context, userID, movieID int64, rating *int) (store.UserRating, error)
}

type service struct {
	store Store
}

// New constructs a ratings Service backed by the given Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Rate(ctx context.Context, userID, movieID int64, rating *int) (store.UserRating, error) {
	if err := ctx.Err(); err != nil {
		return store.UserRating{}, err
	}
	return s.store.CreateUserRating(ctx, userID, movieID, rating)
}
