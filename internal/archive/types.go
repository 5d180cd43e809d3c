package archive

import "time"

// #region run
// Run is one archived verification of a results file.
type Run struct {
	RunID       string
	Status      string // "verified" | "aborted"
	SourcePath  string
	Header      string
	RecordCount int
	TotalHits   int64
	CreatedAt   time.Time
}

// Run statuses.
const (
	StatusVerified = "verified"
	StatusAborted  = "aborted"
)
// #endregion run

// #region archived-record
// ArchivedRecord is one stored result record within a run.
type ArchivedRecord struct {
	RunID     string
	Position  int
	Policy    string
	Hits      int64
	BatchHits []int64
	RawLine   string
}
// #endregion archived-record

// #region validation-entry
// ValidationEntry is one row of the per-record validation log.
type ValidationEntry struct {
	RunID     string
	Position  int
	Policy    string
	Outcome   string // "ok" | "mismatch" | "format_error"
	Reason    string
	CreatedAt time.Time
}

// Validation outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeMismatch    = "mismatch"
	OutcomeFormatError = "format_error"
)
// #endregion validation-entry
