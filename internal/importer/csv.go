package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/AnnaBaziruwiha/movielens-api/internal/store"
)

// noGenres is the sentinel the dataset uses for movies without genres.
const noGenres = "(no genres listed)"

// movies.csv columns: movieId, title, genres (pipe-delimited).
// ratings.csv columns: userId, movieId, rating, timestamp.
// tags.csv columns: userId, movieId, tag, timestamp.

func openCSV(path string) (*csv.Reader, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	r := csv.NewReader(f)
	if _, err := r.Read(); err != nil { // header row
		f.Close()
		return nil, nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	return r, f, nil
}

// readGenreNames collects the distinct genre names across all movie rows,
// excluding the no-genres sentinel, in sorted order.
func readGenreNames(moviesPath string) ([]string, error) {
	r, f, err := openCSV(moviesPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	seen := make(map[string]struct{})
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s line %d: %w", moviesPath, line, err)
		}
		if len(record) < 3 {
			return nil, fmt.Errorf("parse %s line %d: expected 3 columns, got %d", moviesPath, line, len(record))
		}
		for _, name := range splitGenres(record[2]) {
			seen[name] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// readRatingMeans computes the mean rating per movie id.
func readRatingMeans(ratingsPath string) (map[int64]float64, error) {
	r, f, err := openCSV(ratingsPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	type accum struct {
		sum   float64
		count int
	}
	accums := make(map[int64]*accum)

	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s line %d: %w", ratingsPath, line, err)
		}
		if len(record) < 3 {
			return nil, fmt.Errorf("parse %s line %d: expected at least 3 columns, got %d", ratingsPath, line, len(record))
		}

		movieID, err := strconv.ParseInt(record[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s line %d: movie id: %w", ratingsPath, line, err)
		}
		rating, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s line %d: rating: %w", ratingsPath, line, err)
		}

		a := accums[movieID]
		if a == nil {
			a = &accum{}
			accums[movieID] = a
		}
		a.sum += rating
		a.count++
	}

	means := make(map[int64]float64, len(accums))
	for movieID, a := range accums {
		means[movieID] = a.sum / float64(a.count)
	}
	return means, nil
}

// readMovieSeeds turns movie rows into seeds, resolving each movie's rating
// to the mean of its dataset ratings or 5.0 when nobody rated it.
func readMovieSeeds(moviesPath string, means map[int64]float64) ([]store.MovieSeed, error) {
	r, f, err := openCSV(moviesPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var seeds []store.MovieSeed
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s line %d: %w", moviesPath, line, err)
		}
		if len(record) < 3 {
			return nil, fmt.Errorf("parse %s line %d: expected 3 columns, got %d", moviesPath, line, len(record))
		}

		movieID, err := strconv.ParseInt(record[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s line %d: movie id: %w", moviesPath, line, err)
		}

		rating, ok := means[movieID]
		if !ok {
			rating = 5.0
		}

		seeds = append(seeds, store.MovieSeed{
			ID:     movieID,
			Title:  record[1],
			Rating: rating,
			Genres: splitGenres(record[2]),
		})
	}
	return seeds, nil
}

// readTagLinks reads the tag-assignment rows.
func readTagLinks(tagsPath string) ([]store.TagLink, error) {
	r, f, err := openCSV(tagsPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var links []store.TagLink
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s line %d: %w", tagsPath, line, err)
		}
		if len(record) < 3 {
			return nil, fmt.Errorf("parse %s line %d: expected at least 3 columns, got %d", tagsPath, line, len(record))
		}

		movieID, err := strconv.ParseInt(record[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s line %d: movie id: %w", tagsPath, line, err)
		}

		links = append(links, store.TagLink{MovieID: movieID, Tag: record[2]})
	}
	return links, nil
}

func splitGenres(raw string) []string {
	var names []string
	for _, name := range strings.Split(raw, "|") {
		name = strings.TrimSpace(name)
		if name == "" || name == noGenres {
			continue
		}
		names = append(names, name)
	}
	return names
}
