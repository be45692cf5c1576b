package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AnnaBaziruwiha/movielens-api/internal/store"
)

type rateMovieRequest struct {
	Rating *int `json:"rating"`
}

func (s *Server) handleRateMovie(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	movieID, ok := moviePathID(w, r)
	if !ok {
		return
	}

	// A malformed body degrades to a nil rating so the movie existence check
	// still runs first; a missing movie must answer 404 before any
	// validation error.
	var req rateMovieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req.Rating = nil
	}

	created, err := s.ratings.Rate(r.Context(), userID, movieID, req.Rating)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrMovieNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "Movie not found."})
		case errors.Is(err, store.ErrInvalidRating):
			writeFieldErrors(w, map[string]string{"rating": "a valid integer between 0 and 255 is required"})
		case errors.Is(err, store.ErrAlreadyRated):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "You have already rated this movie."})
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusCreated, created)
}
