package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"city-deployer-service/internal/adapters/cache"
	"city-deployer-service/internal/adapters/geocode"
	"city-deployer-service/internal/adapters/hosting"
	"city-deployer-service/internal/adapters/places"
	"city-deployer-service/internal/adapters/recorder"
	"city-deployer-service/internal/adapters/wiki"
	"city-deployer-service/internal/config"
	"city-deployer-service/internal/domain"
	"city-deployer-service/internal/platform/db"
	"city-deployer-service/internal/platform/logging"
	"city-deployer-service/internal/platform/pace"
	"city-deployer-service/internal/ports"
	"city-deployer-service/internal/services"
)

// main is the application composition root. It wires the provider
// adapters (Nominatim, Wikipedia, Overpass, GitHub) behind ports and
// runs the sequential per-city deployment pipeline.
func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found (using environment variables)")
	}

	log, err := logging.New(config.Get("LOG_LEVEL", "info"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	cfg := config.Default()

	store, runRecorder, geocodeCache, err := openStore(cfg)
	if err != nil {
		log.Fatal("storage unavailable", zap.Error(err))
	}
	defer store.Close()

	// The credential is validated before any network call; a missing
	// token is fatal for the whole run.
	host, err := hosting.NewGitHubHosting(os.Getenv("GH_TOKEN"), cfg.UserAgent, 15*time.Second)
	if err != nil {
		recordFatal(runRecorder, log, err)
		log.Fatal("hosting credential rejected", zap.Error(err))
	}

	geocoder, err := geocode.NewNominatimGeocoder(cfg.UserAgent, cfg.HTTPTimeout)
	if err != nil {
		log.Fatal("geocoder init failed", zap.Error(err))
	}
	summaries, err := wiki.NewWikipediaSummaries(cfg.UserAgent, cfg.HTTPTimeout)
	if err != nil {
		log.Fatal("summary provider init failed", zap.Error(err))
	}
	placesProvider, err := places.NewOverpassProvider(cfg.UserAgent, 60*time.Second)
	if err != nil {
		log.Fatal("places provider init failed", zap.Error(err))
	}

	template, err := os.ReadFile(cfg.TemplatePath)
	if err != nil {
		log.Fatal("template unavailable", zap.String("path", cfg.TemplatePath), zap.Error(err))
	}

	reqs, err := readCityRequests(cfg.CitiesFile, cfg.DefaultRegion)
	if err != nil {
		log.Fatal("cities file unavailable", zap.String("path", cfg.CitiesFile), zap.Error(err))
	}
	if len(reqs) == 0 {
		log.Warn("cities file is empty; nothing to deploy", zap.String("path", cfg.CitiesFile))
		return
	}

	// One pacer for all provider calls keeps the mandatory spacing even
	// across component boundaries; cities get their own longer interval.
	providerPacer := pace.New(cfg.ProviderDelay)
	cityPacer := pace.New(cfg.CityDelay)

	resolver := services.NewResolver(geocoder, geocodeCache, providerPacer, cfg, log)
	aggregator := services.NewAggregator(summaries, placesProvider, providerPacer, cfg, log)
	renderer := services.NewRenderer(cfg, log)
	publisher := services.NewPublisher(host, cfg, log)

	orchestrator := services.NewOrchestrator(
		resolver, aggregator, renderer, publisher,
		runRecorder, cityPacer, template, cfg, log)

	// Runs stop between cities only; in-flight city work is finished
	// before shutdown so destinations are never left half-written.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := orchestrator.Run(ctx, reqs); err != nil {
		log.Fatal("run aborted", zap.Error(err))
	}
}

// openStore opens the run-record store: Postgres when DATABASE_URL is
// set, a local SQLite file otherwise.
func openStore(cfg config.Config) (*sql.DB, ports.RunRecorder, ports.GeocodeCache, error) {
	if cfg.DatabaseURL != "" {
		store, err := db.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := recorder.InitSchema(store); err != nil {
			store.Close()
			return nil, nil, nil, err
		}
		return store, recorder.NewSQLRunRecorder(store), cache.NewSQLGeocodeCache(store), nil
	}

	store, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := recorder.InitSchema(store); err != nil {
		store.Close()
		return nil, nil, nil, err
	}
	return store, recorder.NewSqliteRunRecorder(store), cache.NewSqliteGeocodeCache(store), nil
}

// readCityRequests parses the input file: one city per line, blank
// lines skipped, lines without a separator assigned the default region.
func readCityRequests(path, defaultRegion string) ([]domain.CityRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read cities: open %q: %w", path, err)
	}
	defer f.Close()

	var reqs []domain.CityRequest
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		req, ok := domain.ParseCityRequest(scanner.Text(), defaultRegion)
		if !ok {
			continue
		}
		reqs = append(reqs, req)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read cities: scan %q: %w", path, err)
	}

	return reqs, nil
}

// recordFatal writes the run-fatal record for failures that happen
// before the orchestrator starts.
func recordFatal(rec ports.RunRecorder, log *zap.Logger, cause error) {
	if rec == nil {
		return
	}
	err := rec.Record(context.Background(), domain.RunRecord{
		RunID:       uuid.NewString(),
		City:        "*",
		Status:      domain.StatusFatal,
		Reason:      cause.Error(),
		CompletedAt: time.Now().UTC(),
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Warn("fatal record write failed", zap.Error(err))
	}
}
