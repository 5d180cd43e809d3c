package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"simcheck/internal/archive"
	"simcheck/internal/config"
	"simcheck/internal/report"
	"simcheck/internal/results"
)

// #region main

func main() {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	file := flag.String("file", "", "results file to verify (overrides config input)")
	dbPath := flag.String("db", "", "archive the run to this SQLite database")
	levels := flag.Int("levels", 0, "required batch count per record (0 = any)")
	jsonOut := flag.Bool("json", false, "emit one JSON object per record instead of summary lines")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if flag.NArg() > 0 {
		fmt.Fprintln(os.Stderr, "usage: verify [--config file] [--file output.csv] [--db archive.db] [--levels N] [--json]")
		os.Exit(2)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("load config")
		}
	}
	if *file != "" {
		cfg.Input = *file
	}
	if *dbPath != "" {
		cfg.Archive = *dbPath
	}
	if *levels > 0 {
		cfg.Levels = *levels
	}
	if *jsonOut {
		cfg.JSON = true
	}

	os.Exit(run(cfg))
}

// #endregion main

// #region run

func run(cfg config.Config) int {
	var store *archive.Store
	if cfg.Archive != "" {
		var err error
		store, err = archive.NewStore(cfg.Archive)
		if err != nil {
			log.Error().Err(err).Str("db", cfg.Archive).Msg("open archive")
			return 1
		}
		defer store.Close()
	}

	r, err := results.Open(cfg.Input)
	if err != nil {
		log.Error().Err(err).Str("file", cfg.Input).Msg("open results file")
		return 1
	}
	defer r.Close()

	var recs []results.Record
	opts := report.Options{Levels: cfg.Levels, JSON: cfg.JSON}
	if store != nil {
		opts.Observe = func(rec results.Record) {
			recs = append(recs, rec)
		}
	}

	verified, err := report.Stream(r, os.Stdout, opts)
	if err != nil {
		if store != nil {
			recordFailure(store, cfg.Input, verified, err)
		}
		log.Error().Err(err).Str("file", cfg.Input).Int("verified", verified).Msg("verification failed")
		return 1
	}

	if store != nil {
		saved, err := store.SaveRun(cfg.Input, r.Header(), recs)
		if err != nil {
			log.Error().Err(err).Msg("archive run")
			return 1
		}
		log.Info().Str("run_id", saved.RunID).Int("records", saved.RecordCount).
			Int64("total_hits", saved.TotalHits).Msg("run archived")
	}
	return 0
}

// recordFailure classifies the error that stopped the run and logs an
// aborted-run row. Archive write errors are reported but do not mask the
// verification failure.
func recordFailure(store *archive.Store, sourcePath string, verified int, err error) {
	entry := archive.ValidationEntry{Outcome: archive.OutcomeFormatError, Reason: err.Error()}

	var mismatch *results.MismatchError
	var parse *results.ParseError
	switch {
	case errors.As(err, &mismatch):
		entry.Outcome = archive.OutcomeMismatch
		entry.Position = mismatch.Position
		entry.Policy = mismatch.Policy
	case errors.As(err, &parse):
		entry.Position = parse.Position
	}

	if _, logErr := store.RecordFailure(sourcePath, verified, entry); logErr != nil {
		log.Error().Err(logErr).Msg("archive failure entry")
	}
}

// #endregion run
