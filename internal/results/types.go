package results

import (
	"errors"
	"fmt"
)

// #region record
// Record is one policy result line from a simulator output file.
// Columns this tool does not interpret are preserved verbatim in Raw.
type Record struct {
	Policy    string
	Hits      int64
	BatchHits []int64
	Position  int // 1-based data-line index (header excluded)
	Raw       string
}

// Sum returns the total of the per-batch hit counts.
func (r Record) Sum() int64 {
	var sum int64
	for _, h := range r.BatchHits {
		sum += h
	}
	return sum
}

// Validate checks the record invariant: the recorded hit total must equal
// the sum of the per-batch breakdown.
func (r Record) Validate() error {
	if sum := r.Sum(); sum != r.Hits {
		return &MismatchError{
			Position: r.Position,
			Policy:   r.Policy,
			Hits:     r.Hits,
			Sum:      sum,
		}
	}
	return nil
}
// #endregion record

// #region errors
// ErrSumMismatch is the sentinel for the hits invariant violation.
var ErrSumMismatch = errors.New("recorded hits do not match batch sum")

// MismatchError reports a record whose recorded total disagrees with the
// recomputed batch sum.
type MismatchError struct {
	Position int
	Policy   string
	Hits     int64
	Sum      int64
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("record %d: policy %q: recorded hits %d but batch sum is %d",
		e.Position, e.Policy, e.Hits, e.Sum)
}

func (e *MismatchError) Is(target error) bool {
	return target == ErrSumMismatch
}

// ParseError reports a malformed data line.
type ParseError struct {
	Position int
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Position, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
// #endregion errors
