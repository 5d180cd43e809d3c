package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"simcheck/internal/results"
)

const sampleInput = `Policy,Hit Rate,Hits,Misses,Requests,Batch Hits
greedy,42,99,[3 5 7 84]
linked.Lru,35.12,3512,6488,10000,[1800 1000 712]
`

func TestSummaryFormat(t *testing.T) {
	rec, err := results.ParseLine("greedy,42,99,[3 5 7 84]", 1)
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}

	want := "greedy, 99 = sum([3, 5, 7, 84])"
	if got := Summary(rec); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestStreamEmitsAllRecords(t *testing.T) {
	var buf bytes.Buffer
	n, err := Stream(results.NewReader(strings.NewReader(sampleInput)), &buf, Options{})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 records emitted, got %d", n)
	}

	want := "greedy, 99 = sum([3, 5, 7, 84])\n" +
		"linked.Lru, 3512 = sum([1800, 1000, 712])\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n--- want ---\n%s--- got ---\n%s", want, buf.String())
	}
}

// The first invariant violation aborts the stream. Lines already written
// stay written; the failing record and everything after it are suppressed.
func TestStreamAbortsOnMismatch(t *testing.T) {
	input := "Policy,Hit Rate,Hits,Batch Hits\n" +
		"greedy,42,99,[3 5 7 84]\n" +
		"lru,0,10,[2 2 2]\n" +
		"fifo,0,6,[2 2 2]\n"

	var buf bytes.Buffer
	n, err := Stream(results.NewReader(strings.NewReader(input)), &buf, Options{})
	if !errors.Is(err, results.ErrSumMismatch) {
		t.Fatalf("expected ErrSumMismatch, got %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 record emitted before abort, got %d", n)
	}
	if buf.String() != "greedy, 99 = sum([3, 5, 7, 84])\n" {
		t.Fatalf("unexpected output before abort: %q", buf.String())
	}
}

func TestStreamAbortsOnFormatError(t *testing.T) {
	input := "Policy,Hit Rate,Hits,Batch Hits\n" +
		"greedy,42,99,[3 5 7 84]\n" +
		"broken,42,abc,[1 2]\n"

	var buf bytes.Buffer
	n, err := Stream(results.NewReader(strings.NewReader(input)), &buf, Options{})

	var parse *results.ParseError
	if !errors.As(err, &parse) {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	if parse.Position != 2 {
		t.Fatalf("expected failure at record 2, got %d", parse.Position)
	}
	if n != 1 {
		t.Fatalf("expected 1 record emitted before abort, got %d", n)
	}
}

func TestStreamEnforcesLevels(t *testing.T) {
	var buf bytes.Buffer
	_, err := Stream(results.NewReader(strings.NewReader(sampleInput)), &buf, Options{Levels: 3})

	var parse *results.ParseError
	if !errors.As(err, &parse) {
		t.Fatalf("expected *ParseError for level count, got %v", err)
	}
	if parse.Position != 1 {
		t.Fatalf("expected failure at record 1 (4 batch counts), got %d", parse.Position)
	}
}

func TestStreamJSONMode(t *testing.T) {
	var buf bytes.Buffer
	n, err := Stream(results.NewReader(strings.NewReader(sampleInput)), &buf, Options{JSON: true})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 records emitted, got %d", n)
	}

	want := `{"policy":"greedy","hits":99,"batch_hits":[3,5,7,84]}` + "\n" +
		`{"policy":"linked.Lru","hits":3512,"batch_hits":[1800,1000,712]}` + "\n"
	if buf.String() != want {
		t.Fatalf("unexpected JSON output:\n--- want ---\n%s--- got ---\n%s", want, buf.String())
	}
}

// JSON mode keeps the fail-fast contract: one valid object per line, and an
// abort leaves only the already-emitted lines behind.
func TestStreamJSONModeAbortsOnMismatch(t *testing.T) {
	input := "Policy,Hit Rate,Hits,Batch Hits\n" +
		"greedy,42,99,[3 5 7 84]\n" +
		"lru,0,10,[2 2 2]\n"

	var buf bytes.Buffer
	n, err := Stream(results.NewReader(strings.NewReader(input)), &buf, Options{JSON: true})
	if !errors.Is(err, results.ErrSumMismatch) {
		t.Fatalf("expected ErrSumMismatch, got %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 record emitted before abort, got %d", n)
	}
	if buf.String() != `{"policy":"greedy","hits":99,"batch_hits":[3,5,7,84]}`+"\n" {
		t.Fatalf("unexpected output before abort: %q", buf.String())
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	err := WriteJSON(&buf, []string{"a", "b"})
	if err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	want := "[\n  \"a\",\n  \"b\"\n]\n"
	if buf.String() != want {
		t.Fatalf("expected %q, got %q", want, buf.String())
	}
}

func TestStreamObserve(t *testing.T) {
	var seen []results.Record
	var buf bytes.Buffer
	opts := Options{Observe: func(rec results.Record) { seen = append(seen, rec) }}

	n, err := Stream(results.NewReader(strings.NewReader(sampleInput)), &buf, opts)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if len(seen) != n {
		t.Fatalf("expected observer to see %d records, saw %d", n, len(seen))
	}
	if seen[0].Policy != "greedy" || seen[1].Policy != "linked.Lru" {
		t.Fatalf("observer saw wrong records: %+v", seen)
	}
}

// Running the verifier twice over an unchanged file must produce
// byte-identical output.
func TestStreamIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.csv")
	if err := os.WriteFile(path, []byte(sampleInput), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	runOnce := func() string {
		r, err := results.Open(path)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		defer r.Close()
		var buf bytes.Buffer
		if _, err := Stream(r, &buf, Options{}); err != nil {
			t.Fatalf("Stream: %v", err)
		}
		return buf.String()
	}

	first := runOnce()
	second := runOnce()
	if first != second {
		t.Fatalf("output not idempotent:\n--- first ---\n%s--- second ---\n%s", first, second)
	}
}
