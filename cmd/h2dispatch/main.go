// Package main provides the hydrogen electrolyzer dispatch optimizer's
// entry point and CLI interface.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ebp-rad/h2dispatch/admission"
	"github.com/ebp-rad/h2dispatch/config"
	"github.com/ebp-rad/h2dispatch/dispatch"
	"github.com/ebp-rad/h2dispatch/feeds/dayahead"
	"github.com/ebp-rad/h2dispatch/feeds/hydrogen"
	"github.com/ebp-rad/h2dispatch/feeds/ppa"
	"github.com/ebp-rad/h2dispatch/health"
	"github.com/ebp-rad/h2dispatch/hourtable"
	"github.com/ebp-rad/h2dispatch/milp"
	"github.com/ebp-rad/h2dispatch/result"
	"github.com/ebp-rad/h2dispatch/statusws"
	"github.com/ebp-rad/h2dispatch/store"
)

func main() {
	var (
		configFile = flag.String("config", "config.json", "configuration file path")
		help       = flag.Bool("help", false, "show help message")
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

	logger := log.New(os.Stdout, "[H2DISPATCH] ", log.LstdFlags)

	healthSrv := health.New(cfg.HealthCheckPort)
	wsSrv := statusws.New(cfg.StatusWSPort)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Printf("shutdown signal received")
		cancel()
	}()

	if err := healthSrv.Start(); err != nil {
		logger.Printf("health server error: %v", err)
	}
	if err := wsSrv.Start(); err != nil {
		logger.Printf("status server error: %v", err)
	}
	healthSrv.SetState(health.RunState{Stage: "loading"})

	runID := fmt.Sprintf("run-%d-%d", cfg.StartYear, cfg.EndYear)
	wsSrv.Publish(statusws.Progress{Type: "status_update", RunID: runID, Stage: "loading", Message: "loading input feeds"})

	table, err := loadHourTable(ctx, cfg)
	if err != nil {
		logger.Printf("error loading input data: %v", err)
		healthSrv.SetState(health.RunState{RunID: runID, Stage: "failed", Err: err})
		os.Exit(1)
	}

	theta := dispatch.Theta{
		PMax:       cfg.PMax,
		PMin:       cfg.PMin,
		DeltaT:     cfg.DeltaT,
		EtaEly:     cfg.EtaEly,
		PPPA:       cfg.PPPA,
		PolicyYear: cfg.PolicyYear,
	}

	healthSrv.SetState(health.RunState{RunID: runID, Stage: "solving"})
	wsSrv.Publish(statusws.Progress{Type: "status_update", RunID: runID, Stage: "solving", Message: "running dispatch optimization", Timestamp: time.Now()})

	solver := &milp.BranchAndBound{}
	raw, objective, status, err := dispatch.Optimize(table, theta, solver)
	if err != nil {
		logger.Printf("optimization failed: %v", err)
		healthSrv.SetState(health.RunState{RunID: runID, Stage: "failed", Err: err})
		os.Exit(1)
	}
	if status != dispatch.Optimal {
		logger.Printf("warning: solve completed with status %s", status)
	}

	projected := result.Project(raw, objective)
	printResults(projected)

	if cfg.PostgresConnString != "" {
		if err := persistResults(ctx, cfg, runID, projected); err != nil {
			logger.Printf("warning: failed to persist results: %v", err)
		}
	}

	healthSrv.SetState(health.RunState{RunID: runID, Stage: "done", ObjectiveValue: objective})
	wsSrv.Publish(statusws.Progress{Type: "status_update", RunID: runID, Stage: "done", Message: "run complete"})

	logger.Printf("dispatch run complete, objective=%.2f", objective)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	healthSrv.Stop(shutdownCtx)
	wsSrv.Stop(shutdownCtx)
}

func loadHourTable(ctx context.Context, cfg *config.Config) (*hourtable.HourTable, error) {
	daSource := dayahead.Workbook{Path: cfg.DayAheadWorkbookPath}

	daSeries, err := daSource.Load(cfg.StartYear, cfg.EndYear)
	if err != nil {
		return nil, fmt.Errorf("load day-ahead prices: %w", err)
	}

	h2Prices, err := hydrogen.LoadMonthly(cfg.HydrogenWorkbookPath, cfg.StartYear, cfg.EndYear)
	if err != nil {
		return nil, fmt.Errorf("load hydrogen prices: %w", err)
	}
	h2Monthly := hydrogen.ToMonthly(h2Prices)

	ppaClient := ppa.NewClient(cfg.PPAToken, cfg.PPALatitude, cfg.PPALongitude)
	var ppaSeries []hourtable.PPAPoint
	for year := cfg.StartYear; year <= cfg.EndYear; year++ {
		points, err := ppaClient.LoadForOptimizationYear(ctx, year, ppa.PV)
		if err != nil {
			return nil, fmt.Errorf("load PPA availability for %d: %w", year, err)
		}
		ppaSeries = append(ppaSeries, points...)
	}

	policy := admission.DAThreshold{Threshold: cfg.AdmissionThreshold}

	table, err := hourtable.Assemble(daSeries, h2Monthly, ppaSeries, policy)
	if err != nil {
		return nil, fmt.Errorf("assemble hour table: %w", err)
	}
	return table, nil
}

func persistResults(ctx context.Context, cfg *config.Config, runID string, table *result.Table) error {
	s, err := store.Open(cfg.PostgresConnString)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.SaveRun(ctx, runID, table)
}

func printResults(table *result.Table) {
	fmt.Println("\n========================================")
	fmt.Println("DISPATCH OPTIMIZATION RESULTS")
	fmt.Println("========================================")
	fmt.Printf("Total objective value: %.2f\n\n", table.ObjectiveValue)

	fmt.Println("┌─────────────────────┬──────────┬──────────┬──────────┬──────────┬──────────┬──────────┬───┬───┐")
	fmt.Println("│     Timestamp       │ DA Price │ H2 Price │ E (ely)  │ G (ppa)  │ B (grid) │ S (sell) │ H │ U │")
	fmt.Println("├─────────────────────┼──────────┼──────────┼──────────┼──────────┼──────────┼──────────┼───┼───┤")

	for i := range table.Datetime {
		fmt.Printf("│ %19s │ %8.2f │ %8.2f │ %8.3f │ %8.3f │ %8.3f │ %8.3f │ %d │ %d │\n",
			table.Datetime[i].Format("2006-01-02 15:04"),
			table.DAPrice[i],
			table.H2Price[i],
			table.EEly[i],
			table.GPPAUsed[i],
			table.BGrid[i],
			table.SSell[i],
			int(table.HProd[i]),
			table.U[i],
		)
	}
	fmt.Println("└─────────────────────┴──────────┴──────────┴──────────┴──────────┴──────────┴──────────┴───┴───┘")
}

func showHelp() {
	fmt.Println("h2dispatch - hourly dispatch optimizer for a PPA-backed hydrogen electrolyzer")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  Solves an hour-by-hour mixed-integer commitment and dispatch problem for an")
	fmt.Println("  electrolyzer fed by a renewable power purchase agreement, grid imports, and")
	fmt.Println("  grid sales, against day-ahead electricity prices and hydrogen offtake prices.")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  h2dispatch [OPTIONS]")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Run with default config.json")
	fmt.Println("  h2dispatch")
	fmt.Println()
	fmt.Println("  # Custom configuration")
	fmt.Println("  h2dispatch --config=prod.json")
}
