// Package main provides the grid dispatch and capacity optimizer's
// entry point and CLI interface: a flag set (-config/-info/-help plus
// a run mode), a startup banner printed with fmt.Printf, and
// signal-based graceful shutdown via os/signal + syscall.SIGINT/SIGTERM.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/devskill-org/gridopt/internal/config"
	"github.com/devskill-org/gridopt/internal/engine"
	"github.com/devskill-org/gridopt/internal/entity"
	"github.com/devskill-org/gridopt/internal/healthsrv"
	"github.com/devskill-org/gridopt/internal/live"
	"github.com/devskill-org/gridopt/internal/persist"
	"github.com/devskill-org/gridopt/internal/series"
)

func main() {
	var (
		configFile = flag.String("config", "config.json", "Configuration file path")
		dataDir    = flag.String("data", "data", "Directory holding one <region>.csv hourly series file per configured region")
		run        = flag.Bool("run", false, "Build and solve the LP once, printing a result summary")
		serve      = flag.Bool("serve", false, "Start the health and live-progress HTTP servers alongside -run")
		healthPort = flag.Int("health-port", 8080, "Port for the health/ready/status endpoints")
		livePort   = flag.Int("live-port", 8081, "Port for the websocket progress feed")
		dsn        = flag.String("db", "", "Postgres connection string; when set, persists the solved solution and statistics")
		runName    = flag.String("run-name", "default", "Identifier the solution and statistics are persisted under")
		info       = flag.Bool("info", false, "Print a summary of the loaded configuration and exit")
		help       = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Println("Error loading configuration:", err)
		os.Exit(1)
	}

	if *info {
		printConfigInfo(cfg)
		return
	}

	if !*run {
		showHelp()
		return
	}

	logger := log.New(os.Stdout, "[ENGINE] ", log.LstdFlags)

	fmt.Printf("Starting gridopt with the following configuration:\n")
	fmt.Printf("  Years: %v\n", cfg.CommonYears)
	fmt.Printf("  Regions: %d\n", len(cfg.Countries))
	fmt.Printf("  Optimize capex: %v, heat: %v, ramp-up costs: %v\n", cfg.OptimizeCapex, cfg.OptimizeHeat, cfg.OptimizeRampUpCosts)
	fmt.Printf("  Solver: %q (timeout %.0f min)\n", cfg.Solver, cfg.SolverTimeoutMinutes)
	fmt.Println()

	regions, idx, err := buildRegions(cfg, *dataDir)
	if err != nil {
		logger.Printf("failed to build regions: %v", err)
		os.Exit(1)
	}
	links, err := cfg.Links()
	if err != nil {
		logger.Printf("failed to build interconnectors: %v", err)
		os.Exit(1)
	}

	eng := engine.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var healthServer *healthsrv.Server
	var liveServer *live.Server
	if *serve {
		healthServer = healthsrv.New(eng, *healthPort)
		liveServer = live.New(eng, *livePort)
		if err := healthServer.Start(); err != nil {
			logger.Printf("failed to start health server: %v", err)
		}
		if err := liveServer.Start(); err != nil {
			logger.Printf("failed to start live server: %v", err)
		}
		logger.Printf("health server listening on :%d, live progress on :%d", *healthPort, *livePort)
	}

	resultCh := make(chan *engine.Result, 1)
	errCh := make(chan error, 1)
	go func() {
		result, err := eng.Optimize(ctx, *runName, regions, links, idx, cfg)
		if err != nil {
			errCh <- err
			return
		}
		resultCh <- result
	}()

	var result *engine.Result
	select {
	case result = <-resultCh:
		logger.Printf("optimization finished using backend %q", result.SolverUsed)
	case err := <-errCh:
		logger.Printf("optimization failed: %v", err)
		cancel()
		os.Exit(1)
	case <-sigChan:
		logger.Printf("shutdown signal received, cancelling run...")
		cancel()
		<-errCh
		os.Exit(1)
	}

	if *dsn != "" {
		store, err := persist.Open(*dsn)
		if err != nil {
			logger.Printf("failed to open database: %v", err)
		} else {
			defer store.Close()
			if err := store.EnsureSchema(ctx); err != nil {
				logger.Printf("failed to ensure schema: %v", err)
			} else if err := store.SaveSolution(ctx, *runName, result.Regions); err != nil {
				logger.Printf("failed to persist solution: %v", err)
			} else if err := store.SaveStats(ctx, *runName, result.Stats); err != nil {
				logger.Printf("failed to persist statistics: %v", err)
			} else {
				logger.Printf("persisted solution and %d statistics rows under run %q", len(result.Stats), *runName)
			}
		}
	}

	fmt.Printf("\nSolved %d regions, %d statistics rows.\n", len(result.Regions), len(result.Stats))

	if *serve {
		logger.Printf("run complete; servers remain up. Press Ctrl+C to stop...")
		<-sigChan
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		healthServer.Stop(shutdownCtx)
		liveServer.Stop(shutdownCtx)
	}
}

// buildRegions constructs one entity.Zone per configured country,
// loading its hourly series from <dataDir>/<region>.csv, then wraps
// any in_aggregate groupings into entity.AggregateRegion. Every CSV is
// expected to already share one common hourly index (spec.md §6's
// left-join-and-backfill across regions is series.LeftJoinBackfill's
// job when region files genuinely diverge; this CLI assumes
// pre-aligned input files and does not call it).
func buildRegions(cfg *config.Config, dataDir string) ([]entity.Region, series.DatetimeIndex, error) {
	var idx series.DatetimeIndex
	zonesByName := make(map[string]*entity.Zone, len(cfg.Countries))
	aggregates := make(map[string][]*entity.Zone)

	names := make([]string, 0, len(cfg.Countries))
	for name := range cfg.Countries {
		names = append(names, name)
	}

	for _, name := range names {
		cc := cfg.Countries[name]
		frame, zoneIdx, err := loadRegionCSV(filepath.Join(dataDir, name+".csv"))
		if err != nil {
			return nil, idx, fmt.Errorf("region %s: %w", name, err)
		}
		if idx.Len() == 0 {
			idx = zoneIdx
		}

		heatOptimized := cc.HeatDemand
		zone, err := entity.NewZone(name, cc.BasicSources, cc.FlexibleSources, cc.Storage, cc.Reserves, frame, heatOptimized)
		if err != nil {
			return nil, idx, err
		}
		zonesByName[name] = zone

		if cc.InAggregate != "" {
			aggregates[cc.InAggregate] = append(aggregates[cc.InAggregate], zone)
		}
	}

	var regions []entity.Region
	used := make(map[string]bool)
	for aggName, zones := range aggregates {
		ag, err := entity.NewAggregateRegion(aggName, zones)
		if err != nil {
			return nil, idx, err
		}
		regions = append(regions, ag)
		for _, z := range zones {
			used[z.Name()] = true
		}
	}
	for _, name := range names {
		if used[name] {
			continue
		}
		regions = append(regions, zonesByName[name])
	}

	return regions, idx, nil
}

// loadRegionCSV reads a CSV with a "Date" column (RFC3339 timestamps)
// followed by one column per required/optional hourly series
// (spec.md §6). This is the CLI's only concession to the data-loader
// boundary the engine itself treats as an external collaborator.
func loadRegionCSV(path string) (*series.Frame, series.DatetimeIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, series.DatetimeIndex{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, series.DatetimeIndex{}, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) < 2 || header[0] != "Date" {
		return nil, series.DatetimeIndex{}, fmt.Errorf("expected first column %q, got %q", "Date", header[0])
	}

	var times []time.Time
	columns := make(map[string][]float64, len(header)-1)
	for _, name := range header[1:] {
		columns[name] = nil
	}

	for {
		record, err := reader.Read()
		if err != nil {
			break
		}
		ts, err := time.Parse(time.RFC3339, record[0])
		if err != nil {
			return nil, series.DatetimeIndex{}, fmt.Errorf("bad timestamp %q: %w", record[0], err)
		}
		times = append(times, ts)
		for i, name := range header[1:] {
			v, err := strconv.ParseFloat(record[i+1], 64)
			if err != nil {
				return nil, series.DatetimeIndex{}, fmt.Errorf("bad value %q in column %s: %w", record[i+1], name, err)
			}
			columns[name] = append(columns[name], v)
		}
	}

	idx := series.NewIndexFromTimes(times)
	frame := series.NewFrame(idx)
	for name, col := range columns {
		frame.SetCol(name, col)
	}
	return frame, idx, nil
}

func printConfigInfo(cfg *config.Config) {
	fmt.Println("gridopt configuration summary")
	fmt.Println("==============================")
	fmt.Printf("Years modeled:     %d (%v)\n", len(cfg.CommonYears), cfg.CommonYears)
	fmt.Printf("Regions:           %d\n", len(cfg.Countries))
	for name, cc := range cfg.Countries {
		fmt.Printf("  %-8s basic=%d flexible=%d storage=%d heat=%v\n", name, len(cc.BasicSources), len(cc.FlexibleSources), len(cc.Storage), cc.HeatDemand)
	}
	linkCount := 0
	for _, tos := range cfg.Interconnectors {
		linkCount += len(tos)
	}
	fmt.Printf("Interconnectors:   %d declared edges\n", linkCount)
	fmt.Printf("Optimize capex:    %v\n", cfg.OptimizeCapex)
	fmt.Printf("Optimize heat:     %v\n", cfg.OptimizeHeat)
	fmt.Printf("Optimize ramp-up:  %v\n", cfg.OptimizeRampUpCosts)
	fmt.Printf("Solver:            %q (timeout %.0f min)\n", cfg.Solver, cfg.SolverTimeoutMinutes)
}

func showHelp() {
	fmt.Println("gridopt - multi-region, multi-year electricity dispatch and capacity optimizer")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  Builds and solves an hourly LP over one or more electricity regions,")
	fmt.Println("  extracts the solution, estimates spot prices, and computes seasonal")
	fmt.Println("  statistics.")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  gridopt [OPTIONS]")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Solve once and print a summary")
	fmt.Println("  gridopt -run -config=config.json -data=data/")
	fmt.Println()
	fmt.Println("  # Solve and keep health/live servers running")
	fmt.Println("  gridopt -run -serve -config=config.json -data=data/")
	fmt.Println()
	fmt.Println("  # Inspect a configuration without solving")
	fmt.Println("  gridopt -info -config=config.json")
	fmt.Println()
	fmt.Println("  # Show this help")
	fmt.Println("  gridopt -help")
}
