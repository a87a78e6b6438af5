package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corvid-data/airspace.report/internal/api"
	"github.com/corvid-data/airspace.report/internal/deconflict"
	"github.com/corvid-data/airspace.report/internal/scenarios"
	"github.com/corvid-data/airspace.report/internal/store"
	"github.com/corvid-data/airspace.report/internal/units"
	"github.com/corvid-data/airspace.report/internal/version"
)

var (
	listen       = flag.String("listen", ":8080", "Listen address")
	dbPath       = flag.String("db", "airspace.db", "Path to the run history database (empty disables history)")
	displayUnits = flag.String("units", units.Meters, "Units for reported separations ("+units.GetValidUnitsString()+")")
	scenarioID   = flag.String("scenario", "", "Run one canned scenario, print the report, and exit")

	// Overrides for -scenario mode; zero means the scenario's own config.
	step      = flag.Float64("step", 0, "Interpolation step in seconds")
	tolerance = flag.Float64("tolerance", 0, "Time tolerance in seconds")
	safety    = flag.Float64("safety", 0, "Safety distance in metres")
)

func scenarioConfig(sc scenarios.Scenario) deconflict.CheckConfig {
	cfg := sc.Config
	if *step > 0 {
		cfg.Step = *step
	}
	if *tolerance > 0 {
		cfg.TimeTolerance = *tolerance
	}
	if *safety > 0 {
		cfg.SafetyDistance = *safety
	}
	return cfg
}

func main() {
	flag.Parse()

	if !units.IsValid(*displayUnits) {
		log.Fatalf("invalid units %q, must be one of: %s", *displayUnits, units.GetValidUnitsString())
	}

	if *scenarioID != "" {
		runScenario(*scenarioID)
		return
	}

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	var st *store.Store
	if *dbPath != "" {
		var err error
		st, err = store.Open(*dbPath)
		if err != nil {
			log.Fatalf("Failed to open run history database: %v", err)
		}
		defer st.Close()
	} else {
		log.Print("run history disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:    *listen,
		Handler: api.LoggingMiddleware(api.NewServer(st, *displayUnits).ServeMux()),
	}

	go func() {
		log.Printf("airspace.report %s (%s, built %s) listening on %s",
			version.Version, version.GitSHA, version.BuildTime, *listen)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	log.Printf("Graceful shutdown complete")
}

// runScenario checks one canned scenario and writes the report to stdout.
// The process exit code doubles as the verdict so scripts can gate on it.
func runScenario(id string) {
	sc, ok := scenarios.Get(id)
	if !ok {
		log.Printf("unknown scenario %q, available scenarios:", id)
		for _, s := range scenarios.List() {
			log.Printf("  %s - %s", s.ID, s.Description)
		}
		os.Exit(2)
	}

	report, err := deconflict.CheckMission(context.Background(), sc.Primary, sc.Others, scenarioConfig(sc))
	if err != nil {
		log.Fatalf("check failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Fatalf("failed to encode report: %v", err)
	}
	if !report.Safe {
		os.Exit(1)
	}
}
