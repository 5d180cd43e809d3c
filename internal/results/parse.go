package results

import (
	"fmt"
	"strconv"
	"strings"
)

// #region line-parse

// minFields is the smallest layout that still has distinct policy, hits and
// batch-hits columns: [0]=policy, [2]=hits, [last]=batch hits.
const minFields = 4

// ParseLine parses one comma-separated data line into a Record. position is
// the 1-based data-line index used in error messages. The line must not
// include its terminator; Reader strips it.
func ParseLine(line string, position int) (Record, error) {
	fields := strings.Split(line, ",")
	if len(fields) < minFields {
		return Record{}, &ParseError{
			Position: position,
			Err:      fmt.Errorf("expected at least %d fields, got %d", minFields, len(fields)),
		}
	}

	hits, err := parseCount(fields[2])
	if err != nil {
		return Record{}, &ParseError{
			Position: position,
			Err:      fmt.Errorf("hits field %q: %w", fields[2], err),
		}
	}

	batch, err := parseBatchHits(fields[len(fields)-1])
	if err != nil {
		return Record{}, &ParseError{Position: position, Err: err}
	}

	return Record{
		Policy:    fields[0],
		Hits:      hits,
		BatchHits: batch,
		Position:  position,
		Raw:       line,
	}, nil
}

// #endregion line-parse

// #region batch-parse

// parseBatchHits extracts the bracketed, space-separated integer list from
// the last field. The brackets are located explicitly rather than trimmed by
// width, so a trailing \r or a missing terminator cannot corrupt the last
// count.
func parseBatchHits(field string) ([]int64, error) {
	open := strings.IndexByte(field, '[')
	if open < 0 {
		return nil, fmt.Errorf("batch field %q: no opening bracket", field)
	}
	closing := strings.LastIndexByte(field, ']')
	if closing < open {
		return nil, fmt.Errorf("batch field %q: no closing bracket", field)
	}

	tokens := strings.Fields(field[open+1 : closing])
	if len(tokens) == 0 {
		return nil, fmt.Errorf("batch field %q: empty batch list", field)
	}

	batch := make([]int64, len(tokens))
	for i, tok := range tokens {
		n, err := parseCount(tok)
		if err != nil {
			return nil, fmt.Errorf("batch field %q: token %q: %w", field, tok, err)
		}
		batch[i] = n
	}
	return batch, nil
}

// parseCount parses a non-negative integer counter.
func parseCount(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not an integer")
	}
	if n < 0 {
		return 0, fmt.Errorf("negative count %d", n)
	}
	return n, nil
}

// #endregion batch-parse
