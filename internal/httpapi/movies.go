package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/AnnaBaziruwiha/movielens-api/internal/store"
)

const (
	defaultMovieRating = 5.0
	// maxMovieRating is the largest value the rating column can hold.
	maxMovieRating = 9999.9
)

type movieListResponse struct {
	Count    int           `json:"count"`
	Next     *string       `json:"next"`
	Previous *string       `json:"previous"`
	Results  []store.Movie `json:"results"`
}

type createMovieRequest struct {
	Title  *string  `json:"title"`
	Rating *float64 `json:"rating"`
	Genres []string `json:"genres"`
}

type updateMovieRequest struct {
	Title  *string   `json:"title"`
	Rating *float64  `json:"rating"`
	Genres *[]string `json:"genres"`
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}

	query := r.URL.Query()

	page := 1
	if raw := query.Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "Invalid page."})
			return
		}
		page = parsed
	}

	filter := store.MovieFilter{
		Genre:    query.Get("genre"),
		Tag:      query.Get("tag"),
		Ordering: query.Get("ordering"),
		Page:     page,
		PageSize: s.pageSize,
	}

	results, total, err := s.movies.List(r.Context(), filter)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if page > 1 && len(results) == 0 {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Invalid page."})
		return
	}

	if results == nil {
		results = []store.Movie{}
	}

	resp := movieListResponse{Count: total, Results: results}
	if page*s.pageSize < total {
		resp.Next = pageLink(r, page+1)
	}
	if page > 1 {
		resp.Previous = pageLink(r, page-1)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateMovie(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}

	var req createMovieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	errs := map[string]string{}
	if req.Title == nil || *req.Title == "" {
		errs["title"] = "this field is required"
	}
	rating := defaultMovieRating
	if req.Rating != nil {
		if *req.Rating < 0 {
			errs["rating"] = "must not be negative"
		} else if *req.Rating > maxMovieRating {
			errs["rating"] = "must not exceed 9999.9"
		}
		rating = *req.Rating
	}
	if len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	created, err := s.movies.Create(r.Context(), *req.Title, rating, req.Genres)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}

	id, ok := moviePathID(w, r)
	if !ok {
		return
	}

	movie, err := s.movies.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, movie)
}

func (s *Server) handleUpdateMovie(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}

	id, ok := moviePathID(w, r)
	if !ok {
		return
	}

	var req updateMovieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	errs := map[string]string{}
	if r.Method == http.MethodPut {
		// A full update must carry every writable field.
		if req.Title == nil {
			errs["title"] = "this field is required"
		}
		if req.Genres == nil {
			errs["genres"] = "this field is required"
		}
	}
	if req.Title != nil && *req.Title == "" {
		errs["title"] = "must not be empty"
	}
	if req.Rating != nil {
		if *req.Rating < 0 {
			errs["rating"] = "must not be negative"
		} else if *req.Rating > maxMovieRating {
			errs["rating"] = "must not exceed 9999.9"
		}
	}
	if len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	updated, err := s.movies.Update(r.Context(), id, store.MovieUpdate{
		Title:  req.Title,
		Rating: req.Rating,
		Genres: req.Genres,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// moviePathID parses the {id} path segment, answering 404 for non-numeric
// values the way a typed route would.
func moviePathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Movie not found."})
		return 0, false
	}
	return id, true
}

// pageLink rebuilds the request URL pointing at the given page.
func pageLink(r *http.Request, page int) *string {
	u := *r.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	link := fmt.Sprintf("%s://%s%s", scheme, r.Host, u.RequestURI())
	if r.Host == "" {
		link = u.RequestURI()
	}
	return &link
}
