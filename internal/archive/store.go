// Package archive persists verified simulator runs in SQLite so they can be
// listed, inspected, and re-exported later.
package archive

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"simcheck/internal/results"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id        TEXT PRIMARY KEY,
	status        TEXT NOT NULL,
	source_path   TEXT NOT NULL,
	header        TEXT,
	record_count  INTEGER NOT NULL,
	total_hits    INTEGER NOT NULL,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS records (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id           TEXT NOT NULL,
	position         INTEGER NOT NULL,
	policy           TEXT NOT NULL,
	hits             INTEGER NOT NULL,
	batch_hits_json  TEXT NOT NULL,
	raw_line         TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE TABLE IF NOT EXISTS validation_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL,
	position      INTEGER NOT NULL,
	policy        TEXT,
	outcome       TEXT NOT NULL,
	reason        TEXT,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`
// #endregion schema

// #region store-struct
// Store manages the run archive in SQLite.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
// #endregion close

// #region save-run
// SaveRun archives a fully verified run: the run row, every record, and one
// "ok" validation entry per record, in a single transaction.
func (s *Store) SaveRun(sourcePath, header string, recs []results.Record) (Run, error) {
	now := time.Now().UTC()
	run := Run{
		RunID:       uuid.New().String(),
		Status:      StatusVerified,
		SourcePath:  sourcePath,
		Header:      header,
		RecordCount: len(recs),
		CreatedAt:   now,
	}
	for _, rec := range recs {
		run.TotalHits += rec.Hits
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Run{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, status, source_path, header, record_count, total_hits, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Status, run.SourcePath, nullIfEmpty(run.Header),
		run.RecordCount, run.TotalHits, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}

	for _, rec := range recs {
		batchJSON, err := json.Marshal(rec.BatchHits)
		if err != nil {
			return Run{}, fmt.Errorf("marshal batch hits: %w", err)
		}
		_, err = tx.Exec(
			`INSERT INTO records (run_id, position, policy, hits, batch_hits_json, raw_line)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			run.RunID, rec.Position, rec.Policy, rec.Hits, string(batchJSON), rec.Raw,
		)
		if err != nil {
			return Run{}, fmt.Errorf("insert record %d: %w", rec.Position, err)
		}
		_, err = tx.Exec(
			`INSERT INTO validation_log (run_id, position, policy, outcome, reason, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			run.RunID, rec.Position, rec.Policy, OutcomeOK, nil, now.Format(time.RFC3339Nano),
		)
		if err != nil {
			return Run{}, fmt.Errorf("log record %d: %w", rec.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("commit: %w", err)
	}
	return run, nil
}
// #endregion save-run

// #region record-failure
// RecordFailure archives an aborted run attempt: a run row with no records
// and a single validation entry describing what stopped the run.
func (s *Store) RecordFailure(sourcePath string, verified int, entry ValidationEntry) (Run, error) {
	now := time.Now().UTC()
	run := Run{
		RunID:       uuid.New().String(),
		Status:      StatusAborted,
		SourcePath:  sourcePath,
		RecordCount: verified,
		CreatedAt:   now,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Run{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, status, source_path, header, record_count, total_hits, created_at)
		 VALUES (?, ?, ?, ?, ?, 0, ?)`,
		run.RunID, run.Status, run.SourcePath, nil, run.RecordCount, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO validation_log (run_id, position, policy, outcome, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.RunID, entry.Position, nullIfEmpty(entry.Policy), entry.Outcome,
		nullIfEmpty(entry.Reason), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Run{}, fmt.Errorf("log failure: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("commit: %w", err)
	}
	return run, nil
}
// #endregion record-failure

// #region get-run
// GetRun retrieves a run by ID.
func (s *Store) GetRun(runID string) (Run, error) {
	var run Run
	var header sql.NullString
	var createdStr string

	err := s.db.QueryRow(
		`SELECT run_id, status, source_path, header, record_count, total_hits, created_at
		 FROM runs WHERE run_id = ?`, runID,
	).Scan(&run.RunID, &run.Status, &run.SourcePath, &header,
		&run.RecordCount, &run.TotalHits, &createdStr)
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", runID, err)
	}

	if header.Valid {
		run.Header = header.String
	}
	run.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return run, nil
}
// #endregion get-run

// #region list-runs
// ListRuns returns the most recent runs.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT run_id, status, source_path, header, record_count, total_hits, created_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var header sql.NullString
		var createdStr string
		if err := rows.Scan(&run.RunID, &run.Status, &run.SourcePath, &header,
			&run.RecordCount, &run.TotalHits, &createdStr); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if header.Valid {
			run.Header = header.String
		}
		run.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
// #endregion list-runs

// #region records-for-run
// RecordsForRun returns a run's records in file order.
func (s *Store) RecordsForRun(runID string) ([]ArchivedRecord, error) {
	rows, err := s.db.Query(
		`SELECT run_id, position, policy, hits, batch_hits_json, raw_line
		 FROM records WHERE run_id = ? ORDER BY position ASC`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var recs []ArchivedRecord
	for rows.Next() {
		var rec ArchivedRecord
		var batchJSON string
		if err := rows.Scan(&rec.RunID, &rec.Position, &rec.Policy, &rec.Hits,
			&batchJSON, &rec.RawLine); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if err := json.Unmarshal([]byte(batchJSON), &rec.BatchHits); err != nil {
			return nil, fmt.Errorf("unmarshal batch hits: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return recs, nil
}
// #endregion records-for-run

// #region validation-log
// ValidationLogForRun returns a run's validation entries in file order.
func (s *Store) ValidationLogForRun(runID string) ([]ValidationEntry, error) {
	rows, err := s.db.Query(
		`SELECT run_id, position, policy, outcome, reason, created_at
		 FROM validation_log WHERE run_id = ? ORDER BY position ASC`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query validation log: %w", err)
	}
	defer rows.Close()

	var entries []ValidationEntry
	for rows.Next() {
		var e ValidationEntry
		var policy, reason sql.NullString
		var createdStr string
		if err := rows.Scan(&e.RunID, &e.Position, &policy, &e.Outcome,
			&reason, &createdStr); err != nil {
			return nil, fmt.Errorf("scan validation entry: %w", err)
		}
		if policy.Valid {
			e.Policy = policy.String
		}
		if reason.Valid {
			e.Reason = reason.String
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate validation log: %w", err)
	}
	return entries, nil
}
// #endregion validation-log

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
