// Package manifest reads the batch input listing: one genome per
// line, tab-separated as
//
//	key	assembly-accession	run-accession
//
// The run accession is optional; a record without one skips the
// assembly fallback. "#" comments and blank lines are ignored. A
// malformed manifest is fatal: unlike a bad alignment row there is
// nothing to degrade to before the batch has even started.
package manifest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ncezid-biome/espwAlleleCaller/internal/espw"
)

// Load reads a manifest file into genome records.
func Load(path string) ([]espw.GenomeRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &espw.ConfigurationError{Reason: fmt.Sprintf("opening manifest: %v", err)}
	}
	defer f.Close()

	recs, err := Parse(f)
	if err != nil {
		return nil, &espw.ConfigurationError{Reason: fmt.Sprintf("manifest %s: %v", path, err)}
	}
	return recs, nil
}

// Parse reads manifest records from a reader.
func Parse(r io.Reader) ([]espw.GenomeRecord, error) {
	var recs []espw.GenomeRecord
	seen := map[string]int{}

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		row := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(row) == "" || strings.HasPrefix(row, "#") {
			continue
		}

		cols := strings.Split(row, "\t")
		for i := range cols {
			cols[i] = strings.TrimSpace(cols[i])
		}
		if len(cols) < 2 || len(cols) > 3 {
			return nil, fmt.Errorf("line %d: expected 2 or 3 tab-separated fields, got %d", line, len(cols))
		}

		rec := espw.GenomeRecord{Key: cols[0], Accession: cols[1]}
		if len(cols) == 3 {
			rec.ReadRun = cols[2]
		}
		if rec.Key == "" {
			return nil, fmt.Errorf("line %d: empty key", line)
		}
		if rec.Accession == "" {
			return nil, fmt.Errorf("line %d: record %q has no accession", line, rec.Key)
		}
		if prev, dup := seen[rec.Key]; dup {
			return nil, fmt.Errorf("line %d: key %q already used on line %d", line, rec.Key, prev)
		}
		seen[rec.Key] = line

		recs = append(recs, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("no records")
	}
	return recs, nil
}
