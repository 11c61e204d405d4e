package espw

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParseTable(t *testing.T) {
	in := strings.Join([]string{
		"# blastn run",
		"",
		"espw-full\tcontig1\t99.800\t501\t1\t0\t1\t501\t2200\t2700\tplus",
		"espw-del\tcontig2\t95.000\t200\t10\t0\t1\t200\t900\t701\tminus",
	}, "\n")

	hits, err := ParseTable(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseTable: %v", err)
	}

	want := []Hit{
		{
			QueryID:      "espw-full",
			SubjectID:    "contig1",
			Identity:     99.8,
			Length:       501,
			Mismatches:   1,
			QueryStart:   1,
			QueryEnd:     501,
			SubjectStart: 2200,
			SubjectEnd:   2700,
			Strand:       Plus,
		},
		{
			QueryID:      "espw-del",
			SubjectID:    "contig2",
			Identity:     95.0,
			Length:       200,
			Mismatches:   10,
			QueryStart:   1,
			QueryEnd:     200,
			SubjectStart: 701,
			SubjectEnd:   900,
			Strand:       Minus,
		},
	}
	if !reflect.DeepEqual(hits, want) {
		t.Errorf("ParseTable = %+v, want %+v", hits, want)
	}
}

func TestParseTableErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"too few fields", "espw-full\tcontig1\t99.8\t501\t1\t0\t1\t501\t2200\t2700"},
		{"too many fields", "espw-full\tcontig1\t99.8\t501\t1\t0\t1\t501\t2200\t2700\tplus\textra"},
		{"bad identity", "espw-full\tcontig1\tninety\t501\t1\t0\t1\t501\t2200\t2700\tplus"},
		{"bad length", "espw-full\tcontig1\t99.8\tlong\t1\t0\t1\t501\t2200\t2700\tplus"},
		{"bad strand", "espw-full\tcontig1\t99.8\t501\t1\t0\t1\t501\t2200\t2700\tboth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTable(strings.NewReader(tt.in))
			if err == nil {
				t.Fatal("expected an error")
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("error %T is not a ParseError", err)
			}
			if perr.Line != 1 {
				t.Errorf("ParseError.Line = %d, want 1", perr.Line)
			}
		})
	}
}

func TestParseTableEmpty(t *testing.T) {
	hits, err := ParseTable(strings.NewReader("# no hits\n"))
	if err != nil {
		t.Fatalf("ParseTable: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits, got %d", len(hits))
	}
}

func TestBetter(t *testing.T) {
	base := Hit{
		QueryID:      "espw-full",
		SubjectID:    "contig1",
		Identity:     98.0,
		Length:       400,
		Mismatches:   8,
		SubjectStart: 100,
		SubjectEnd:   499,
	}

	tests := []struct {
		name   string
		mutate func(h *Hit)
		want   bool
	}{
		{"higher identity wins", func(h *Hit) { h.Identity = 99.0 }, true},
		{"lower identity loses", func(h *Hit) { h.Identity = 97.0 }, false},
		{"longer wins at equal identity", func(h *Hit) { h.Length = 500 }, true},
		{"fewer mismatches wins", func(h *Hit) { h.Mismatches = 2 }, true},
		{"lesser subject id wins the tie", func(h *Hit) { h.SubjectID = "contig0" }, true},
		{"lesser subject start wins the tie", func(h *Hit) { h.SubjectStart = 50 }, true},
		{"identical hit is not better", func(h *Hit) {}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := base
			tt.mutate(&other)
			if got := Better(other, base); got != tt.want {
				t.Errorf("Better = %t, want %t", got, tt.want)
			}
		})
	}
}

// The best hit of a set must not depend on the order hits arrive in.
func TestBestHitOrderIndependent(t *testing.T) {
	a := Hit{QueryID: "espw-full", SubjectID: "contig1", Identity: 99.0, Length: 400, SubjectStart: 10, SubjectEnd: 409}
	b := Hit{QueryID: "espw-full", SubjectID: "contig1", Identity: 99.0, Length: 400, SubjectStart: 900, SubjectEnd: 1299}
	c := Hit{QueryID: "espw-full", SubjectID: "contig2", Identity: 97.5, Length: 450, SubjectStart: 5, SubjectEnd: 454}

	orders := [][]Hit{
		{a, b, c},
		{c, b, a},
		{b, a, c},
		{b, c, a},
	}
	for i, hits := range orders {
		best, ok := BestHit(hits)
		if !ok {
			t.Fatalf("order %d: no best hit", i)
		}
		if !reflect.DeepEqual(best, a) {
			t.Errorf("order %d: best = %+v, want %+v", i, best, a)
		}
	}

	if _, ok := BestHit(nil); ok {
		t.Error("BestHit(nil) reported ok")
	}
}
