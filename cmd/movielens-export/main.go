// Command movielens-export dumps the movie catalog to a CSV file.
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

	"github.com/AnnaBaziruwiha/movielens-api/internal/exporter"
	"github.com/AnnaBaziruwiha/movielens-api/internal/logging"
	"github.com/AnnaBaziruwiha/movielens-api/internal/store"
)

func main() {
	_ = godotenv.Load("config/local.env")
	flag.Parse()

	logger := logging.New(logging.Config{Level: "info", Format: "text"})
	logging.SetGlobalLogger(logger)

	if flag.NArg() != 1 {
		logger.Fatal(errors.New("usage: movielens-export <output.csv>"), "parse arguments")
	}
	outputPath := flag.Arg(0)

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

	count, err := exporter.Export(ctx, store.New(db), outputPath)
	if err != nil {
		logger.Fatal(err, "export failed")
	}

	logger.Info(fmt.Sprintf("exported %d movies to %s", count, outputPath))
}
