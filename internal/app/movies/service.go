package movies

import (
	"context"

	"github.com/AnnaBaziruwiha/movielens-api/internal/store"
)

// Store defines the persistence hooks for movie workflows.
type Store interface {
	ListMovies(ctx context.Context, filter store.MovieFilter) ([]store.Movie, int, error)
	MovieByID(ctx context.Context, id int64) (store.Movie, error)
	CreateMovie(ctx context.Context, title string, rating float64, genres []string) (store.Movie, error)
	UpdateMovie(ctx context.Context, id int64, upd store.MovieUpdate) (store.Movie, error)
}

// Service coordinates movie catalog queries and updates.
type Service interface {
	List(ctx context.Context, filter store.MovieFilter) ([]store.Movie, int, error)
	Get(ctx context.Context, id int64) (store.Movie, error)
	Create(ctx context.Context, title string, rating float64, genres []string) (store.Movie, error)
	Update(ctx context.Context, id int64, upd store.MovieUpdate) (store.Movie, error)
}

type service struct {
	store Store
}

// New constructs a movie Service backed by the given Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) List(ctx context.Context, filter store.MovieFilter) ([]store.Movie, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	return s.store.ListMovies(ctx, filter)
}

func (s *service) Get(ctx context.Context, id int64) (store.Movie, error) {
	if err := ctx.Err(); err != nil {
		return store.Movie{}, err
	}
	return s.store.MovieByID(ctx, id)
}

func (s *service) Create(ctx context.Context, title string, rating float64, genres []string) (store.Movie, error) {
	if err := ctx.Err(); err != nil {
		return store.Movie{}, err
	}
	return s.store.CreateMovie(ctx, title, rating, genres)
}

func (s *service) Update(ctx context.Context, id int64, upd store.MovieUpdate) (store.Movie, error) {
	if err := ctx.Err(); err != nil {
		return store.Movie{}, err
	}
	return s.store.UpdateMovie(ctx, id, upd)
}
