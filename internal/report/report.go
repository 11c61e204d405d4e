// Package report writes the run's outputs: the calls table, the
// failures table and an end-of-run summary by classification.
package report

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	linq "github.com/ahmetb/go-linq"

	"github.com/ncezid-biome/espwAlleleCaller/internal/espw"
	"github.com/ncezid-biome/espwAlleleCaller/internal/logging"
)

const (
	callsFile    = "espW_calls.tsv"
	failuresFile = "espW_failures.tsv"
)

// Writer renders batch results into an output directory.
type Writer struct {
	dir string
	log logging.Logger
}

// NewWriter creates the output directory if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	return &Writer{dir: dir, log: logging.Named("report")}, nil
}

// WriteCalls writes the calls table and returns its path.
func (w *Writer) WriteCalls(results []espw.CallResult) (string, error) {
	path := filepath.Join(w.dir, callsFile)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}

	bw := bufio.NewWriter(f)
	fmt.Fprintln(bw, "key\tclassification\tevidence\tsubject\trationale")
	for _, res := range results {
		fmt.Fprintf(bw, "%s\t%s\t%s\t%s\t%s\n", res.Key, res.Classification, res.Evidence, res.Subject, tsvSafe(res.Rationale))
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	w.log.Info("calls written", logging.String("path", path), logging.Int("records", len(results)))
	return path, nil
}

// WriteFailures writes the failures table and returns its path. The
// file is written even when empty so downstream tooling can rely on
// its presence.
func (w *Writer) WriteFailures(failures []espw.Failure) (string, error) {
	path := filepath.Join(w.dir, failuresFile)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}

	bw := bufio.NewWriter(f)
	fmt.Fprintln(bw, "key\treason")
	for _, fail := range failures {
		fmt.Fprintf(bw, "%s\t%s\n", fail.Key, tsvSafe(fail.Reason))
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	if len(failures) > 0 {
		w.log.Warn("failures written", logging.String("path", path), logging.Int("records", len(failures)))
	}
	return path, nil
}

// ClassCount is one summary row.
type ClassCount struct {
	Classification espw.Classification
	Count          int
}

// Summarize groups results by classification, most frequent first,
// ties in name order.
func Summarize(results []espw.CallResult) []ClassCount {
	var counts []ClassCount
	linq.From(results).
		GroupByT(
			func(r espw.CallResult) espw.Classification { return r.Classification },
			func(r espw.CallResult) string { return r.Key },
		).
		SelectT(func(g linq.Group) ClassCount {
			return ClassCount{Classification: g.Key.(espw.Classification), Count: len(g.Group)}
		}).
		OrderByDescendingT(func(c ClassCount) int { return c.Count }).
		ThenByT(func(c ClassCount) string { return string(c.Classification) }).
		ToSlice(&counts)
	return counts
}

// LogSummary reports the classification breakdown at info level.
func (w *Writer) LogSummary(results []espw.CallResult) {
	for _, c := range Summarize(results) {
		w.log.Info("summary",
			logging.String("classification", string(c.Classification)),
			logging.Int("count", c.Count))
	}
}

// tsvSafe keeps one result per line even if a rationale ever picks up
// a tab or newline.
func tsvSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\t', '\n', '\r':
			return ' '
		}
		return r
	}, s)
}
