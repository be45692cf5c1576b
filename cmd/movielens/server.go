package main

import (
	"net/http"

	"github.com/AnnaBaziruwiha/movielens-api/internal/app/movies"
	"github.com/AnnaBaziruwiha/movielens-api/internal/app/ratings"
	"github.com/AnnaBaziruwiha/movielens-api/internal/app/users"
	"github.com/AnnaBaziruwiha/movielens-api/internal/auth"
	"github.com/AnnaBaziruwiha/movielens-api/internal/httpapi"
	"github.com/AnnaBaziruwiha/movielens-api/internal/middleware"
	"github.com/AnnaBaziruwiha/movielens-api/internal/store"
)

func newHTTPHandler(cfg Config, dataStore *store.Store) http.Handler {
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	userSvc := users.New(dataStore, tokens)
	movieSvc := movies.New(dataStore)
	ratingSvc := ratings.New(dataStore)

	handler := httpapi.New(userSvc, movieSvc, ratingSvc, cfg.PageSize).Routes()

	handler = middleware.CORS(cfg.AllowedOrigins)(handler)
	handler = middleware.RequestLogging()(handler)
	handler = middleware.Recovery()(handler)

	return handler
}
