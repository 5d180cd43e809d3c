package results

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// #region reader

// Reader iterates over a simulator results file one record at a time. The
// first line is the header and is never parsed as data. Next does not check
// the hits invariant; callers decide whether to fail fast or classify.
type Reader struct {
	f      *os.File
	sc     *bufio.Scanner
	header string
	pos    int
}

// Open opens a results file and consumes its header line. The returned
// Reader owns the file handle; Close releases it on any exit path.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open results file: %w", err)
	}
	r := newReader(f)
	r.f = f
	if err := r.sc.Err(); err != nil {
		f.Close()
		return nil, fmt.Errorf("read header: %w", err)
	}
	return r, nil
}

// NewReader wraps an in-memory results stream; used by tests and by callers
// that already hold the bytes.
func NewReader(rd io.Reader) *Reader {
	return newReader(rd)
}

func newReader(rd io.Reader) *Reader {
	sc := bufio.NewScanner(rd)
	r := &Reader{sc: sc}
	if sc.Scan() {
		r.header = sc.Text()
	}
	return r
}

// Header returns the discarded header line.
func (r *Reader) Header() string {
	return r.header
}

// Pos returns the 1-based index of the last record returned by Next.
func (r *Reader) Pos() int {
	return r.pos
}

// Next returns the next record, or io.EOF after the last data line.
func (r *Reader) Next() (Record, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return Record{}, fmt.Errorf("read record %d: %w", r.pos+1, err)
		}
		return Record{}, io.EOF
	}
	r.pos++
	return ParseLine(r.sc.Text(), r.pos)
}

// Close releases the underlying file handle, if any.
func (r *Reader) Close() error {
	if r.f == nil {
		return nil
	}
	return r.f.Close()
}

// #endregion reader
