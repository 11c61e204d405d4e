package espw

import (
	"strings"
	"testing"
)

// testQuerySet builds a small reference set whose distinguishing
// regions are the three homopolymer motifs at positions 25 onward.
func testQuerySet(t *testing.T) QuerySet {
	t.Helper()

	pre := strings.Repeat("acgt", 6)  // 24 bp
	post := strings.Repeat("tgca", 7) // 28 bp
	set, err := NewQuerySet([]AlleleQuery{
		{ID: "espw-del", Allele: Deletion, Seq: pre + "gaaaaaaag" + post, Region: Span{Start: 25, End: 33}},
		{ID: "espw-full", Allele: FullLength, Seq: pre + "gaaaaaaaag" + post, Region: Span{Start: 25, End: 34}},
		{ID: "espw-ins", Allele: Insertion, Seq: pre + "gaaaaaaaaag" + post, Region: Span{Start: 25, End: 35}},
	})
	if err != nil {
		t.Fatalf("building query set: %v", err)
	}
	return set
}

// testPolicy uses thresholds scaled to the short test references.
func testPolicy() Policy {
	return Policy{
		MinIdentity:     90.0,
		MinAlignLength:  30,
		EdgeMargin:      3,
		MaxRegionGaps:   0,
		MinContigLength: 40,
	}
}

// spanningHit covers the whole reference of the given query id and so
// cleanly spans its region under testPolicy.
func spanningHit(queryID string, queryLen int) Hit {
	return Hit{
		QueryID:      queryID,
		SubjectID:    "contig1",
		Identity:     99.0,
		Length:       queryLen,
		QueryStart:   1,
		QueryEnd:     queryLen,
		SubjectStart: 1000,
		SubjectEnd:   1000 + queryLen - 1,
		Strand:       Plus,
	}
}
