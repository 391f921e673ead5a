package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/dharmasatrya/faresweep/internal/config"
	"github.com/dharmasatrya/faresweep/internal/consolidate"
	"github.com/dharmasatrya/faresweep/internal/logger"
	"github.com/dharmasatrya/faresweep/internal/report"
	"github.com/dharmasatrya/faresweep/internal/storage"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("consolidate", pflag.ContinueOnError)
	config.ConsolidateFlags(flags)
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(flags, config.WithDefault("search.destination", "NRT"))
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

	if err := consolidateRoute(cfg, log, time.Now()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func consolidateRoute(cfg *config.Config, log *zap.Logger, now time.Time) error {
	origin, destination := cfg.Search.Origin, cfg.Search.Destination
	store := storage.New(cfg.Output.Dir, log)

	pattern := cfg.Output.Pattern
	if pattern == "" {
		pattern = store.SearchPattern(origin, destination)
	}
	fmt.Printf("Looking for result files: %s\n", pattern)

	loaded, err := consolidate.LoadFiles(pattern, log)
	if err != nil {
		return err
	}
	for _, f := range loaded.Files {
		fmt.Printf("  %s: %d outcomes\n", filepath.Base(f.Path), len(f.Outcomes))
	}
	for _, f := range loaded.Failed {
		fmt.Printf("  %s: skipped (%v)\n", filepath.Base(f.Path), f.Err)
	}
	if len(loaded.Files) == 0 {
		return errors.New("no readable result files")
	}

	res := consolidate.Consolidate(loaded.Sources()...)
	params := loaded.Params(origin, destination)
	fmt.Printf("\n%d outcomes read, %d direct flights, %d unique date pairs\n",
		res.Considered, res.Eligible, len(res.All))

	file := res.File(consolidate.Summary{Params: params, Files: loaded.Paths()}, now)
	resultsPath, err := store.SaveConsolidation(origin, destination, file)
	if err != nil {
		return err
	}

	rep := report.Build(res.All, consolidate.DefaultTopN, params, now)
	rep.Log.FailedPairs, rep.Log.NoResult = loaded.Failures()
	for _, f := range loaded.Failed {
		rep.Log.SkippedFiles = append(rep.Log.SkippedFiles, filepath.Base(f.Path))
	}
	rep.Files = []string{
		storage.ConsolidationFileName(origin, destination),
		storage.SummaryFileName(origin, destination, "md"),
	}
	if cfg.Output.HTML {
		rep.Files = append(rep.Files, storage.SummaryFileName(origin, destination, "html"))
	}

	summaryPath, err := store.SaveSummary(origin, destination, report.RenderMarkdown(rep))
	if err != nil {
		return err
	}
	written := []string{resultsPath, summaryPath}

	if cfg.Output.HTML {
		page, err := report.RenderHTML(rep)
		if err != nil {
			return err
		}
		htmlPath, err := store.SaveSummaryHTML(origin, destination, page)
		if err != nil {
			return err
		}
		written = append(written, htmlPath)
	}

	if rep.Empty {
		fmt.Println("\nNo direct flights found.")
	} else {
		fmt.Printf("\n### Top %d direct flights\n\n", len(rep.Top))
		report.WriteTable(os.Stdout, rep.Top)
	}

	fmt.Println()
	for _, path := range written {
		fmt.Printf("Saved %s\n", path)
	}
	return nil
}
