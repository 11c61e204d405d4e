package espw

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// TableFormat is the tabular output format the hit parser understands.
// Alignment runners pass it to blastn via -outfmt.
const TableFormat = "6 qseqid sseqid pident length mismatch gaps qstart qend sstart send sstrand"

const tableFields = 11

// Strand of the subject relative to the query.
type Strand string

const (
	Plus  Strand = "plus"
	Minus Strand = "minus"
)

// Hit is a single local alignment between an allele reference (the
// query) and a genome sequence (the subject). Coordinates are 1-based
// inclusive; QueryStart <= QueryEnd and SubjectStart <= SubjectEnd
// always hold, with minus-strand hits flipped during parsing.
type Hit struct {
	QueryID      string
	SubjectID    string
	Identity     float64
	Length       int
	Mismatches   int
	Gaps         int
	QueryStart   int
	QueryEnd     int
	SubjectStart int
	SubjectEnd   int
	Strand       Strand
}

func (h Hit) String() string {
	return fmt.Sprintf("%s vs %s:%d-%d (%.1f%% identity, %d bp, q %d-%d)",
		h.QueryID, h.SubjectID, h.SubjectStart, h.SubjectEnd, h.Identity, h.Length, h.QueryStart, h.QueryEnd)
}

// QuerySpan returns the aligned range on the query reference.
func (h Hit) QuerySpan() Span {
	return Span{Start: h.QueryStart, End: h.QueryEnd}
}

// ParseTable reads tabular alignment output in TableFormat. Blank
// lines and "#" comment lines are skipped. A row with the wrong
// column count or an unparsable field yields a ParseError naming the
// offending line.
func ParseTable(r io.Reader) ([]Hit, error) {
	var hits []Hit

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		row := strings.TrimRight(scanner.Text(), "\r")
		if row == "" || strings.HasPrefix(row, "#") {
			continue
		}

		cols := strings.Split(row, "\t")
		if len(cols) != tableFields {
			return nil, &ParseError{Line: line, Reason: fmt.Sprintf("expected %d tab-separated fields, got %d", tableFields, len(cols))}
		}

		h := Hit{QueryID: cols[0], SubjectID: cols[1]}

		var err error
		if h.Identity, err = strconv.ParseFloat(cols[2], 64); err != nil {
			return nil, &ParseError{Line: line, Reason: fmt.Sprintf("bad identity %q", cols[2])}
		}
		ints := []struct {
			dst  *int
			name string
			raw  string
		}{
			{&h.Length, "length", cols[3]},
			{&h.Mismatches, "mismatch", cols[4]},
			{&h.Gaps, "gaps", cols[5]},
			{&h.QueryStart, "qstart", cols[6]},
			{&h.QueryEnd, "qend", cols[7]},
			{&h.SubjectStart, "sstart", cols[8]},
			{&h.SubjectEnd, "send", cols[9]},
		}
		for _, f := range ints {
			if *f.dst, err = strconv.Atoi(f.raw); err != nil {
				return nil, &ParseError{Line: line, Reason: fmt.Sprintf("bad %s %q", f.name, f.raw)}
			}
		}

		switch Strand(cols[10]) {
		case Plus:
			h.Strand = Plus
		case Minus:
			h.Strand = Minus
		default:
			return nil, &ParseError{Line: line, Reason: fmt.Sprintf("bad strand %q", cols[10])}
		}

		// blastn reports minus-strand subject coordinates descending
		if h.SubjectStart > h.SubjectEnd {
			h.SubjectStart, h.SubjectEnd = h.SubjectEnd, h.SubjectStart
		}
		if h.QueryStart > h.QueryEnd {
			h.QueryStart, h.QueryEnd = h.QueryEnd, h.QueryStart
		}

		hits = append(hits, h)
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Line: line, Reason: err.Error()}
	}

	return hits, nil
}

// Better reports whether a outranks b: higher identity, then longer
// alignment, then fewer mismatches, then the lexicographically lesser
// subject position. The final tiebreak makes the ordering total, so
// the best of a hit set does not depend on input order.
func Better(a, b Hit) bool {
	if a.Identity != b.Identity {
		return a.Identity > b.Identity
	}
	if a.Length != b.Length {
		return a.Length > b.Length
	}
	if a.Mismatches != b.Mismatches {
		return a.Mismatches < b.Mismatches
	}
	if a.SubjectID != b.SubjectID {
		return a.SubjectID < b.SubjectID
	}
	if a.SubjectStart != b.SubjectStart {
		return a.SubjectStart < b.SubjectStart
	}
	return a.SubjectEnd < b.SubjectEnd
}

// BestHit returns the highest-ranked hit under Better. ok is false for
// an empty slice.
func BestHit(hits []Hit) (best Hit, ok bool) {
	for i, h := range hits {
		if i == 0 || Better(h, best) {
			best = h
			ok = true
		}
	}
	return best, ok
}
