// Package httpapi exposes the movie catalog over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/AnnaBaziruwiha/movielens-api/internal/store"
)

// UserService captures the account operations needed by the HTTP handlers.
type UserService interface {
	Signup(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (string, error)
	Authorize(ctx context.Context, token string) (int64, error)
}

// MovieService exposes movie catalog workflows.
type MovieService interface {
	List(ctx context.Context, filter store.MovieFilter) ([]store.Movie, int, error)
	Get(ctx context.Context, id int64) (store.Movie, error)
	Create(ctx context.Context, title string, rating float64, genres []string) (store.Movie, error)
	Update(ctx context.Context, id int64, upd store.MovieUpdate) (store.Movie, error)
}

// RatingService records per-user movie ratings.
type RatingService interface {
	Rate(ctx context.Context, userID, movieID int64, rating *int) (store.UserRating, error)
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	users    UserService
	movies   MovieService
	ratings  RatingService
	pageSize int
}

// New configures a Server with the given services and fixed page size.
func New(users UserService, movies MovieService, ratings RatingService, pageSize int) *Server {
	return &Server{users: users, movies: movies, ratings: ratings, pageSize: pageSize}
}

// Routes exposes the HTTP handlers for the movie catalog.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("POST /api/v1/auth/signup", s.handleSignup)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)

	mux.HandleFunc("GET /api/v1/movies", s.handleListMovies)
	mux.HandleFunc("POST /api/v1/movies", s.handleCreateMovie)
	mux.HandleFunc("GET /api/v1/movies/{id}", s.handleGetMovie)
	mux.HandleFunc("PUT /api/v1/movies/{id}", s.handleUpdateMovie)
	mux.HandleFunc("PATCH /api/v1/movies/{id}", s.handleUpdateMovie)
	mux.HandleFunc("POST /api/v1/movies/{id}/rate", s.handleRateMovie)

	return mux
}

type errorResponse struct {
	Error string `json:"error"`
}

type fieldErrorResponse struct {
	Errors map[string]string `json:"errors"`
}

// authenticate resolves the bearer token to a user id, writing a 401 response
// and returning false when the caller is not authenticated.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (int64, bool) {
	token := parseBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return 0, false
	}

	userID, err := s.users.Authorize(r.Context(), token)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid or expired token"})
		return 0, false
	}

	return userID, true
}

func parseBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func writeFieldErrors(w http.ResponseWriter, errs map[string]string) {
	writeJSON(w, http.StatusBadRequest, fieldErrorResponse{Errors: errs})
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrMovieNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Movie not found."})
	case errors.Is(err, store.ErrUnknownGenre):
		writeFieldErrors(w, map[string]string{"genres": err.Error()})
	case errors.Is(err, store.ErrInvalidOrdering):
		writeFieldErrors(w, map[string]string{"ordering": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}
