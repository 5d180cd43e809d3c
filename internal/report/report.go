// Package report renders verified records for humans: one summary line per
// record on stdout, in the exact format the upstream tooling printed.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"simcheck/internal/results"
)

// #region summary

// Summary renders one record as "{policy}, {hits} = sum([a, b, c])".
func Summary(rec results.Record) string {
	return fmt.Sprintf("%s, %d = sum(%s)", rec.Policy, rec.Hits, formatList(rec.BatchHits))
}

// formatList renders the batch breakdown with comma+space separators, the
// list representation the upstream script printed.
func formatList(batch []int64) string {
	tokens := make([]string, len(batch))
	for i, h := range batch {
		tokens[i] = strconv.FormatInt(h, 10)
	}
	return "[" + strings.Join(tokens, ", ") + "]"
}

// #endregion summary

// #region json

// recordJSON is the per-record shape Stream emits in JSON mode.
type recordJSON struct {
	Policy    string  `json:"policy"`
	Hits      int64   `json:"hits"`
	BatchHits []int64 `json:"batch_hits"`
}

// WriteJSON renders v as indented JSON on w; shared by the CLIs' --json
// modes.
func WriteJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if _, err := fmt.Fprintln(w, string(data)); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// #endregion json

// #region stream

// Options adjusts Stream behavior.
type Options struct {
	// Levels, when positive, requires every record's batch list to have
	// exactly this many entries.
	Levels int

	// JSON emits one compact JSON object per record instead of the summary
	// line format.
	JSON bool

	// Observe, when set, is called with each record after it verifies and
	// its summary line is written.
	Observe func(results.Record)
}

// Stream reads records lazily, verifies each one, and writes its summary
// line to w. It stops at the first failure; lines already written stay
// written. Returns the number of records emitted.
func Stream(r *results.Reader, w io.Writer, opts Options) (int, error) {
	emitted := 0
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return emitted, nil
		}
		if err != nil {
			return emitted, err
		}
		if opts.Levels > 0 && len(rec.BatchHits) != opts.Levels {
			return emitted, &results.ParseError{
				Position: rec.Position,
				Err: fmt.Errorf("policy %q: expected %d batch counts, got %d",
					rec.Policy, opts.Levels, len(rec.BatchHits)),
			}
		}
		if err := rec.Validate(); err != nil {
			return emitted, err
		}
		if err := emit(w, rec, opts.JSON); err != nil {
			return emitted, err
		}
		emitted++
		if opts.Observe != nil {
			opts.Observe(rec)
		}
	}
}

// emit writes one verified record: a summary line, or one compact JSON
// object per line in JSON mode (line-oriented so an abort leaves valid
// output behind).
func emit(w io.Writer, rec results.Record, asJSON bool) error {
	if !asJSON {
		if _, err := fmt.Fprintln(w, Summary(rec)); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		return nil
	}
	data, err := json.Marshal(recordJSON{
		Policy:    rec.Policy,
		Hits:      rec.Hits,
		BatchHits: rec.BatchHits,
	})
	if err != nil {
		return fmt.Errorf("marshal record %d: %w", rec.Position, err)
	}
	if _, err := fmt.Fprintln(w, string(data)); err != nil {
		return fmt.Errorf("write record %d: %w", rec.Position, err)
	}
	return nil
}

// #endregion stream
