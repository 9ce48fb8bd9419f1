// cmd/spacevents/main.go
package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/time/rate"

	"spacevents/internal/catalog"
	"spacevents/internal/config"
	"spacevents/internal/planner"
	"spacevents/internal/storage"
	"spacevents/internal/storage/chaos"
	"spacevents/internal/storage/jsonfile"
	"spacevents/internal/storage/postgres"
	"spacevents/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := log.Default()

	cfg, err := config.Load(logger)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownTracing, err := telemetry.Setup(startupCtx, cfg.OTLPEndpoint, cfg.ServiceName)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Printf("WARN: telemetry shutdown: %v", err)
		}
	}()

	store, closeStore, err := openStore(startupCtx, cfg, logger)
	if err != nil {
		log.Fatalf("open %s store: %v", cfg.Store, err)
	}
	defer closeStore()

	exp := chaos.Experiment{FailureRate: cfg.ChaosFailureRate, Latency: cfg.ChaosLatency}
	if err := exp.Validate(); err != nil {
		log.Fatalf("chaos: %v", err)
	}
	if exp.Enabled() {
		logger.Printf("WARN: chaos experiment active on saves failure_rate=%v latency=%s", exp.FailureRate, exp.Latency)
		faulty := chaos.Wrap(store, exp)
		defer func() {
			res := faulty.Result()
			logger.Printf("chaos experiment saves=%d injected=%d", res.Saves, res.Injected)
		}()
		store = faulty
	}

	state := planner.Load(startupCtx, store, logger)
	svc := planner.Synchronized(planner.NewService(state, store,
		planner.WithMode(cfg.Mode),
		planner.WithLogger(logger),
	))

	limiter := rate.NewLimiter(rate.Limit(cfg.SubmitRate), cfg.SubmitBurst)
	handler := planner.NewRouter(planner.NewHandler(svc, limiter), logger)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Printf("spacevents listening on %s mode=%s store=%s events=%d", cfg.Addr, cfg.Mode, cfg.Store, svc.Count())

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("server error: %v", err)
		}
	case <-stopCtx.Done():
		logger.Printf("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Printf("server shutdown error: %v", err)
	}
	logger.Printf("server stopped")
}

// openStore returns the configured backend and a close func.
func openStore(ctx context.Context, cfg config.Config, logger *log.Logger) (planner.Store, func(), error) {
	files := jsonfile.NewStore(cfg.DataDir)
	if cfg.Store == config.StoreJSON {
		logger.Printf("using JSON files in %s", cfg.DataDir)
		writeCatalogIfMissing(ctx, files, logger)
		return files, func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	pg := postgres.NewStore(db)
	if err := pg.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	seedCatalog(ctx, pg, files, logger)

	return pg, func() { db.Close() }, nil
}

// seedCatalog copies the catalog into an empty database, preferring the JSON
// catalog file in the data directory over the built-in defaults.
func seedCatalog(ctx context.Context, pg *postgres.Store, files *jsonfile.Store, logger *log.Logger) {
	if _, err := pg.LoadEventTypes(ctx); !errors.Is(err, storage.ErrNotFound) {
		return
	}

	types, err := files.LoadEventTypes(ctx)
	if err != nil {
		logger.Printf("no usable catalog file (%v), seeding database with built-in event types", err)
		types = catalog.Defaults()
	}
	cat, _ := catalog.New(types)
	if err := pg.SaveEventTypes(ctx, cat.Types()); err != nil {
		logger.Printf("WARN: seed event types: %v", err)
		return
	}
	logger.Printf("seeded database with %d event types", len(cat.Names()))
}

// writeCatalogIfMissing puts the built-in event types in the data directory
// so they can be edited. A malformed catalog file is left alone.
func writeCatalogIfMissing(ctx context.Context, files *jsonfile.Store, logger *log.Logger) {
	if _, err := files.LoadEventTypes(ctx); !errors.Is(err, storage.ErrNotFound) {
		return
	}
	if err := files.SaveEventTypes(ctx, catalog.Defaults()); err != nil {
		logger.Printf("WARN: write %s: %v", jsonfile.CatalogFile, err)
		return
	}
	logger.Printf("wrote built-in event types to %s", jsonfile.CatalogFile)
}
