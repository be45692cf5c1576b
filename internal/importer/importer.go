// Package importer populates the movie catalog from the movielens dataset:
// it downloads the archive and its checksum file, verifies the archive's MD5
// digest, extracts it, and loads genres, movies, and tags from the CSVs.
package importer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/AnnaBaziruwiha/movielens-api/internal/store"
)

var (
	// ErrChecksumMismatch signals the archive digest does not match the
	// published checksum. No catalog write happens after this error.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrChecksumFormat signals the checksum file contains no 32-hex digest.
	ErrChecksumFormat = errors.New("checksum file contains no md5 digest")
)

// Catalog is the slice of the store the importer writes through. Each method
// runs in its own transaction; committed steps persist even if a later step
// fails.
type Catalog interface {
	EnsureGenres(ctx context.Context, names []string) (int, error)
	ImportMovies(ctx context.Context, seeds []store.MovieSeed) (int, error)
	ReplaceTags(ctx context.Context, links []store.TagLink) (int, error)
}

// Stats summarizes one import run.
type Stats struct {
	GenresCreated int
	MoviesSeen    int
	MoviesCreated int
	TagLinks      int
}

// Importer is a single-threaded batch job; it is safe to re-run (genres and
// movies are idempotent, tags are rebuilt wholesale).
type Importer struct {
	catalog Catalog
	client  *http.Client
	workDir string
	log     zerolog.Logger
}

// New constructs an Importer that downloads into workDir.
func New(catalog Catalog, workDir string, log zerolog.Logger) *Importer {
	return &Importer{
		catalog: catalog,
		client:  &http.Client{Timeout: 30 * time.Minute},
		workDir: workDir,
		log:     log,
	}
}

// Import runs the whole pipeline. The checksum gate aborts the run before any
// database write; load steps commit independently in order.
func (imp *Importer) Import(ctx context.Context, sourceURL, checksumURL string) (Stats, error) {
	var stats Stats

	if err := os.MkdirAll(imp.workDir, 0o755); err != nil {
		return stats, fmt.Errorf("create work dir: %w", err)
	}

	archivePath := filepath.Join(imp.workDir, "ml-20m.zip")
	checksumPath := filepath.Join(imp.workDir, "ml-20m.zip.md5")

	imp.log.Info().Str("url", sourceURL).Msg("downloading dataset archive")
	if err := imp.download(ctx, sourceURL, archivePath); err != nil {
		return stats, fmt.Errorf("download dataset: %w", err)
	}

	imp.log.Info().Str("url", checksumURL).Msg("downloading checksum file")
	if err := imp.download(ctx, checksumURL, checksumPath); err != nil {
		return stats, fmt.Errorf("download checksum: %w", err)
	}

	if err := verifyChecksum(archivePath, checksumPath); err != nil {
		return stats, err
	}
	imp.log.Info().Msg("checksum verified")

	extractDir := filepath.Join(imp.workDir, "ml-20m")
	if err := unzip(archivePath, extractDir); err != nil {
		return stats, fmt.Errorf("extract dataset: %w", err)
	}

	// The archive nests its files under an ml-20m/ directory.
	moviesPath := filepath.Join(extractDir, "ml-20m", "movies.csv")
	ratingsPath := filepath.Join(extractDir, "ml-20m", "ratings.csv")
	tagsPath := filepath.Join(extractDir, "ml-20m", "tags.csv")

	created, err := imp.loadGenres(ctx, moviesPath)
	if err != nil {
		return stats, fmt.Errorf("populate genres: %w", err)
	}
	stats.GenresCreated = created
	imp.log.Info().Int("created", created).Msg("populated genres")

	seen, created, err := imp.loadMovies(ctx, moviesPath, ratingsPath)
	if err != nil {
		return stats, fmt.Errorf("populate movies: %w", err)
	}
	stats.MoviesSeen = seen
	stats.MoviesCreated = created
	imp.log.Info().Int("seen", seen).Int("created", created).Msg("populated movies")

	links, err := imp.loadTags(ctx, tagsPath)
	if err != nil {
		return stats, fmt.Errorf("populate tags: %w", err)
	}
	stats.TagLinks = links
	imp.log.Info().Int("links", links).Msg("populated tags")

	return stats, nil
}

// loadGenres collects the distinct genre names across all movie rows,
// skipping the "(no genres listed)" sentinel, and inserts the missing ones.
func (imp *Importer) loadGenres(ctx context.Context, moviesPath string) (int, error) {
	names, err := readGenreNames(moviesPath)
	if err != nil {
		return 0, err
	}
	return imp.catalog.EnsureGenres(ctx, names)
}

// loadMovies aggregates the mean rating per movie id, then creates every
// movie row that does not already exist, defaulting the rating to 5.0 for
// movies nobody rated.
func (imp *Importer) loadMovies(ctx context.Context, moviesPath, ratingsPath string) (int, int, error) {
	means, err := readRatingMeans(ratingsPath)
	if err != nil {
		return 0, 0, err
	}

	seeds, err := readMovieSeeds(moviesPath, means)
	if err != nil {
		return 0, 0, err
	}

	created, err := imp.catalog.ImportMovies(ctx, seeds)
	if err != nil {
		return 0, 0, err
	}
	return len(seeds), created, nil
}

// loadTags rebuilds the tag catalog from the tag-assignment rows.
func (imp *Importer) loadTags(ctx context.Context, tagsPath string) (int, error) {
	links, err := readTagLinks(tagsPath)
	if err != nil {
		return 0, err
	}
	return imp.catalog.ReplaceTags(ctx, links)
}
