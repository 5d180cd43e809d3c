package results

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// #region line-format

// FormatBatch renders a batch list in the upstream writer's convention:
// space-separated inside square brackets.
func FormatBatch(batch []int64) string {
	tokens := make([]string, len(batch))
	for i, h := range batch {
		tokens[i] = strconv.FormatInt(h, 10)
	}
	return "[" + strings.Join(tokens, " ") + "]"
}

// FormatLine renders a record as one data line. Records read from a file
// round-trip byte-identically through Raw; constructed records fall back to
// the minimal layout (the unused second column is left empty).
func FormatLine(rec Record) string {
	if rec.Raw != "" {
		return rec.Raw
	}
	return fmt.Sprintf("%s,,%d,%s", rec.Policy, rec.Hits, FormatBatch(rec.BatchHits))
}

// #endregion line-format

// #region file-write

// WriteFile writes a header and records in the upstream file format.
func WriteFile(path, header string, recs []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create results file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := fmt.Fprintln(w, header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range recs {
		if _, err := fmt.Fprintln(w, FormatLine(rec)); err != nil {
			return fmt.Errorf("write record %d: %w", rec.Position, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return f.Close()
}

// #endregion file-write
