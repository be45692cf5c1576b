// Command movielens-load downloads the movielens dataset, verifies its
// checksum, and populates the catalog. It is an offline batch job: a failed
// download or checksum mismatch aborts the run and must be re-invoked.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/AnnaBaziruwiha/movielens-api/internal/importer"
	"github.com/AnnaBaziruwiha/movielens-api/internal/logging"
	"github.com/AnnaBaziruwiha/movielens-api/internal/store"
)

const (
	defaultDatasetURL  = "https://files.grouplens.org/datasets/movielens/ml-20m.zip"
	defaultChecksumURL = "https://files.grouplens.org/datasets/movielens/ml-20m.zip.md5"
)

func main() {
	_ = godotenv.Load("config/local.env")

	datasetURL := flag.String("dataset-url", envOrDefault("DATASET_URL", defaultDatasetURL), "URL of the dataset archive")
	checksumURL := flag.String("checksum-url", envOrDefault("CHECKSUM_URL", defaultChecksumURL), "URL of the checksum file")
	dataDir := flag.String("data-dir", envOrDefault("DATA_DIR", "data"), "working directory for downloaded and extracted files")
	logLevel := flag.String("log-level", envOrDefault("LOG_LEVEL", "info"), "log level")
	flag.Parse()

	logger := logging.New(logging.Config{Level: *logLevel, Format: "text"})
	logging.SetGlobalLogger(logger)

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal(errors.New("DATABASE_URL env var is required"), "load config")
	}

	ctx := context.Background()

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		logger.Fatal(err, "open database")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		logger.Fatal(err, "ping database")
	}

	imp := importer.New(store.New(db), *dataDir, logger.Zerolog())

	stats, err := imp.Import(ctx, *datasetURL, *checksumURL)
	if err != nil {
		logger.Fatal(err, "import failed")
	}

	logger.Info(fmt.Sprintf("import complete: %d genres created, %d/%d movies created, %d tag links",
		stats.GenresCreated, stats.MoviesCreated, stats.MoviesSeen, stats.TagLinks))
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
