package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/dharmasatrya/faresweep/internal/app"
	"github.com/dharmasatrya/faresweep/internal/config"
	"github.com/dharmasatrya/faresweep/internal/consolidate"
	"github.com/dharmasatrya/faresweep/internal/logger"
	"github.com/dharmasatrya/faresweep/internal/report"
	"github.com/dharmasatrya/faresweep/internal/search"
	"github.com/dharmasatrya/faresweep/internal/storage"
)

const displayTopN = 5

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("faresweep", pflag.ContinueOnError)
	config.SearchFlags(flags)
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	log, err := logger.New(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper, err := app.NewSweeper(cfg, log, printProgress)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() { _ = sweeper.Close() }()

	params := cfg.SearchParameters()
	fmt.Printf("Searching %s → %s, %s, stay %d~%d days, %s\n",
		params.Origin, params.Destination, params.Period(),
		params.MinStayDays, params.MaxStayDays, params.PassengerSummary())

	result, err := sweeper.Run(ctx, params)
	switch {
	case errors.Is(err, context.Canceled):
		fmt.Printf("\nSearch canceled by user after %d of %d date pairs.\n",
			result.Progress.Completed, result.Progress.Valid)
		return 0
	case err != nil:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	now := time.Now()
	printResults(result, now)

	switch {
	case !cfg.Output.Save:
	case result.Progress.Succeeded == 0:
		fmt.Println("\nNo date pair returned flights; nothing saved.")
	default:
		store := storage.New(cfg.Output.Dir, log)
		path, err := store.SaveSearch(result.File(uuid.NewString(), now), now)
		if err != nil {
			log.Error("failed to save results", zap.Error(err))
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		fmt.Printf("\nResults saved to %s\n", path)
	}

	fmt.Printf("\nSearch completed in %s.\n", result.Elapsed().Round(time.Millisecond))
	return 0
}

func printProgress(p search.Progress) {
	fmt.Printf("  progress: %d/%d pairs (ok %d, no result %d, failed %d)\n",
		p.Completed, p.Valid, p.Succeeded, p.NoResult, p.Errored)
}

func printResults(result *search.Result, now time.Time) {
	p := result.Progress
	fmt.Printf("\nDate pairs: %d considered, %d valid, %d with flights, %d without, %d failed\n",
		p.Total, p.Valid, p.Succeeded, p.NoResult, p.Errored)

	consolidated := consolidate.Consolidate(result.WithFlights())
	rep := report.Build(consolidated.All, displayTopN, result.Params, now)
	if rep.Empty {
		fmt.Println("\nNo direct flights found.")
		return
	}

	fmt.Printf("\n### Top %d direct flights\n\n", len(rep.Top))
	report.WriteTable(os.Stdout, rep.Top)
	fmt.Println("\n### Statistics")
	report.WriteStatistics(os.Stdout, rep)
}
