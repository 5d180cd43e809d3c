package main

import (
	"flag"
	"fmt"
	"os"

	"simcheck/internal/archive"
	"simcheck/internal/results"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to archive.db")
	runID := flag.String("run", "", "run to export")
	outPath := flag.String("out", "", "output results file path")
	flag.Parse()

	if *dbPath == "" || *runID == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: export --db path/to/archive.db --run id --out path/to/output.csv")
		os.Exit(2)
	}

	if err := run(*dbPath, *runID, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region export

// run reconstructs an archived run as a results file, byte-identical to the
// verified input: the stored header plus each record's raw line.
func run(dbPath, runID, outPath string) error {
	store, err := archive.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	archived, err := store.GetRun(runID)
	if err != nil {
		return err
	}
	if archived.Status != archive.StatusVerified {
		return fmt.Errorf("run %s is %s, only verified runs can be exported", runID, archived.Status)
	}

	rows, err := store.RecordsForRun(runID)
	if err != nil {
		return err
	}

	recs := make([]results.Record, len(rows))
	for i, row := range rows {
		recs[i] = results.Record{
			Policy:    row.Policy,
			Hits:      row.Hits,
			BatchHits: row.BatchHits,
			Position:  row.Position,
			Raw:       row.RawLine,
		}
	}

	if err := results.WriteFile(outPath, archived.Header, recs); err != nil {
		return err
	}

	fmt.Printf("exported %d records to %s\n", len(recs), outPath)
	return nil
}

// #endregion export
