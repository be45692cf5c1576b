package users

import (
	"context"

	"github.com/AnnaBaziruwiha/movielens-api/internal/auth"
)

// Store defines the persistence hooks for account workflows.
type Store interface {
	CreateUser(ctx context.Context, username, password string) error
	Authenticate(ctx context.Context, username, password string) (int64, error)
}

// Service handles signup, login, and bearer-token authorization.
type Service interface {
	Signup(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (string, error)
	Authorize(ctx context.Context, token string) (int64, error)
}

type service struct {
	store  Store
	tokens *auth.TokenManager
}

// New constructs a users Service backed by the given Store and token manager.
func New(store Store, tokens *auth.TokenManager) Service {
	return &service{store: store, tokens: tokens}
}

func (s *service) Signup(ctx context.Context, username, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.CreateUser(ctx, username, password)
}

func (s *service) Login(ctx context.Context, username, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	userID, err := s.store.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	return s.tokens.Issue(userID)
}

func (s *service) Authorize(_ context.Context, token string) (int64, error) {
	return s.tokens.Verify(token)
}
