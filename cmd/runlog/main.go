package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"city-deployer-service/internal/adapters/recorder"
	"city-deployer-service/internal/config"
	"city-deployer-service/internal/domain"
	"city-deployer-service/internal/platform/db"
)

// runlog prints recent per-city deployment records from the local store.
func main() {
	limit := flag.Int("n", 50, "maximum records to show")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg := config.Default()

	records, err := listRecords(cfg, *limit)
	if err != nil {
		log.Fatal(err)
	}

	if len(records) == 0 {
		fmt.Println("no run records")
		return
	}

	w := os.Stdout
	fmt.Fprintf(w, "%-36s  %-24s  %-10s  %-20s  %s\n",
		"RUN", "CITY", "STATUS", "COMPLETED", "REASON")
	for _, rec := range records {
		fmt.Fprintf(w, "%-36s  %-24s  %-10s  %-20s  %s\n",
			rec.RunID, rec.City, rec.Status,
			rec.CompletedAt.Format("2006-01-02 15:04:05"), rec.Reason)
	}
}

func listRecords(cfg config.Config, limit int) ([]domain.RunRecord, error) {
	ctx := context.Background()

	if cfg.DatabaseURL != "" {
		store, err := db.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return recorder.NewSQLRunRecorder(store).ListRecent(ctx, limit)
	}

	store, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return recorder.NewSqliteRunRecorder(store).ListRecent(ctx, limit)
}
