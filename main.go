package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/facility.report/internal/api"
	"github.com/banshee-data/facility.report/internal/cluster"
	"github.com/banshee-data/facility.report/internal/config"
	"github.com/banshee-data/facility.report/internal/store"
	"github.com/banshee-data/facility.report/internal/units"
	"github.com/banshee-data/facility.report/internal/version"
)

var (
	listen        = flag.String("listen", ":8080", "Listen address")
	dbFile        = flag.String("db", "facility_plans.db", "Scenario database file (empty disables persistence)")
	configFile    = flag.String("config", "", "Optional tuning config JSON file")
	unitFlag      = flag.String("units", "", "Distance unit label: units, km or mi (overrides config)")
	runMigrations = flag.Bool("migrate", false, "Run pending scenario DB migrations and continue")
	migrationsDir = flag.String("migrations-dir", "migrations", "Directory holding scenario DB migrations")
)

func main() {
	flag.Parse()

	log.Printf("facility.report %s (%s, built %s)", version.Version, version.GitSHA, version.BuildTime)

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	// Tuning: defaults, optionally overridden by a partial JSON file.
	cfg := config.EmptyTuningConfig()
	if *configFile != "" {
		var err error
		cfg, err = config.LoadTuningConfig(*configFile)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}
	unitLabel := cfg.GetUnits()
	if *unitFlag != "" {
		if !units.IsValid(*unitFlag) {
			log.Fatalf("invalid units %q, must be one of %s", *unitFlag, units.GetValidUnitsString())
		}
		unitLabel = *unitFlag
	}

	var pdb *store.PlanDB
	if *dbFile != "" {
		var err error
		pdb, err = store.NewPlanDB(*dbFile)
		if err != nil {
			log.Fatalf("failed to open scenario database: %v", err)
		}
		defer pdb.Close()

		if *runMigrations {
			if err := pdb.MigrateUp(*migrationsDir); err != nil {
				log.Fatalf("failed to run migrations: %v", err)
			}
			version, dirty, err := pdb.MigrateVersion(*migrationsDir)
			if err != nil {
				log.Printf("failed to read migration version: %v", err)
			} else {
				log.Printf("scenario DB at migration version %d (dirty=%v)", version, dirty)
			}
		}
	} else {
		log.Print("scenario persistence disabled")
	}

	st := store.New()
	solver := cluster.NewLloydSolver(cfg.GetMaxIterations(), cfg.GetConvergenceTol())
	server := api.NewServer(st, pdb, solver, unitLabel, cfg.GetChartMaxPoints())

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		httpServer := &http.Server{
			Addr:    *listen,
			Handler: api.LoggingMiddleware(server.ServeMux()),
		}

		// Start server in a goroutine so it doesn't block
		go func() {
			log.Printf("facility report server listening on %s", *listen)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		// Wait for context cancellation to shut down server
		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
	}()

	wg.Wait()
}
