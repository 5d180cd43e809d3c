package main

import (
	"flag"
	"fmt"
	"os"

	"simcheck/internal/archive"
	"simcheck/internal/report"
	"simcheck/internal/results"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to archive.db")
	last := flag.Int("last", 20, "show N most recent runs")
	runID := flag.String("run", "", "show single run detail")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/archive.db [--last N] [--run id] [--json]")
		os.Exit(2)
	}

	store, err := archive.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *runID != "" {
		if err := runDetailMode(store, *runID, *jsonOut); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	} else {
		if err := runListMode(store, *last, *jsonOut); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	RunID     string `json:"run_id"`
	Status    string `json:"status"`
	Source    string `json:"source"`
	Records   int    `json:"records"`
	TotalHits int64  `json:"total_hits"`
	CreatedAt string `json:"created_at"`
}

func runListMode(store *archive.Store, last int, jsonOut bool) error {
	runs, err := store.ListRuns(last)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stderr, "no runs found")
		return nil
	}

	// Store returns DESC, reverse for chronological
	listRows := make([]listRow, len(runs))
	for i, run := range runs {
		listRows[len(runs)-1-i] = listRow{
			RunID:     run.RunID,
			Status:    run.Status,
			Source:    run.SourcePath,
			Records:   run.RecordCount,
			TotalHits: run.TotalHits,
			CreatedAt: run.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	if jsonOut {
		return report.WriteJSON(os.Stdout, listRows)
	}
	return printListTable(listRows)
}

func printListTable(rows []listRow) error {
	fmt.Printf("%-12s  %-9s  %-20s  %8s  %10s  %s\n",
		"Run", "Status", "Source", "Records", "Total Hits", "Time")
	fmt.Printf("%-12s+-%-9s+-%-20s+-%8s+-%10s+-%s\n",
		"------------", "---------", "--------------------", "--------", "----------", "--------------------")

	for _, r := range rows {
		fmt.Printf("%-12s  %-9s  %-20s  %8d  %10d  %s\n",
			shortID(r.RunID), r.Status, r.Source, r.Records, r.TotalHits, r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	RunID     string          `json:"run_id"`
	Status    string          `json:"status"`
	Source    string          `json:"source"`
	Header    string          `json:"header,omitempty"`
	CreatedAt string          `json:"created_at"`
	TotalHits int64           `json:"total_hits"`
	Records   []recordRow     `json:"records,omitempty"`
	Failures  []validationRow `json:"failures,omitempty"`
}

type recordRow struct {
	Position  int     `json:"position"`
	Policy    string  `json:"policy"`
	Hits      int64   `json:"hits"`
	BatchHits []int64 `json:"batch_hits"`
}

type validationRow struct {
	Position int    `json:"position"`
	Policy   string `json:"policy,omitempty"`
	Outcome  string `json:"outcome"`
	Reason   string `json:"reason,omitempty"`
}

func runDetailMode(store *archive.Store, runID string, jsonOut bool) error {
	run, err := store.GetRun(runID)
	if err != nil {
		return err
	}
	recs, err := store.RecordsForRun(runID)
	if err != nil {
		return err
	}
	entries, err := store.ValidationLogForRun(runID)
	if err != nil {
		return err
	}

	out := detailOutput{
		RunID:     run.RunID,
		Status:    run.Status,
		Source:    run.SourcePath,
		Header:    run.Header,
		CreatedAt: run.CreatedAt.Format("2006-01-02T15:04:05Z"),
		TotalHits: run.TotalHits,
	}
	for _, rec := range recs {
		out.Records = append(out.Records, recordRow{
			Position:  rec.Position,
			Policy:    rec.Policy,
			Hits:      rec.Hits,
			BatchHits: rec.BatchHits,
		})
	}
	for _, e := range entries {
		if e.Outcome == archive.OutcomeOK {
			continue
		}
		out.Failures = append(out.Failures, validationRow{
			Position: e.Position,
			Policy:   e.Policy,
			Outcome:  e.Outcome,
			Reason:   e.Reason,
		})
	}

	if jsonOut {
		return report.WriteJSON(os.Stdout, out)
	}

	fmt.Printf("Run:        %s\n", out.RunID)
	fmt.Printf("Status:     %s\n", out.Status)
	fmt.Printf("Source:     %s\n", out.Source)
	fmt.Printf("Created:    %s\n", out.CreatedAt)
	fmt.Printf("Total Hits: %d\n", out.TotalHits)

	if len(out.Records) > 0 {
		fmt.Printf("\nRecords:\n")
		for _, rec := range recs {
			fmt.Printf("  %s\n", report.Summary(results.Record{
				Policy:    rec.Policy,
				Hits:      rec.Hits,
				BatchHits: rec.BatchHits,
			}))
		}
	}

	if len(out.Failures) > 0 {
		fmt.Printf("\nFailures:\n")
		for _, f := range out.Failures {
			fmt.Printf("  record %d  %-12s  %s\n", f.Position, f.Outcome, f.Reason)
		}
	}

	return nil
}

// #endregion detail-mode

// #region output

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
