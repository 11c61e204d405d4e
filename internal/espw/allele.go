// Package espw decides which structural allele of the espW gene a
// genome carries. It interprets alignment hits against the three
// canonical references and, when those are inconclusive, the contigs
// of a targeted read assembly. The package consumes alignment results
// and assembly output through small interfaces; it never runs the
// external tools itself.
package espw

import (
	"fmt"
	"strconv"
	"strings"
)

// Allele identifies one of the three known structural variants of espW.
type Allele int

const (
	Deletion Allele = iota
	FullLength
	Insertion
)

// Alleles returns the three alleles in a fixed evaluation order.
func Alleles() [3]Allele {
	return [3]Allele{Deletion, FullLength, Insertion}
}

func (a Allele) String() string {
	switch a {
	case Deletion:
		return "deletion"
	case FullLength:
		return "full-length"
	case Insertion:
		return "insertion"
	}
	return fmt.Sprintf("allele(%d)", int(a))
}

// ParseAllele maps a label to its Allele. "full length" is accepted as
// a legacy spelling of "full-length".
func ParseAllele(s string) (Allele, error) {
	switch s {
	case "deletion":
		return Deletion, nil
	case "full-length", "full length":
		return FullLength, nil
	case "insertion":
		return Insertion, nil
	}
	return 0, fmt.Errorf("unknown allele %q", s)
}

// Classification is the five-way label assigned to a genome.
type Classification string

const (
	CallDeletion   Classification = "deletion"
	CallFullLength Classification = "full-length"
	CallInsertion  Classification = "insertion"
	CallAbsent     Classification = "absent"
	CallAmbiguous  Classification = "ambiguous"
)

// Classification returns the label used when this allele is called.
func (a Allele) Classification() Classification {
	switch a {
	case Deletion:
		return CallDeletion
	case FullLength:
		return CallFullLength
	case Insertion:
		return CallInsertion
	}
	return CallAmbiguous
}

// Evidence tags the source a classification was derived from.
type Evidence string

const (
	EvidenceAlignment Evidence = "alignment"
	EvidenceAssembly  Evidence = "assembly"
	EvidenceNone      Evidence = "none"
)

// Span is a 1-based inclusive coordinate range on a reference sequence.
type Span struct {
	Start int
	End   int
}

func (s Span) Len() int {
	return s.End - s.Start + 1
}

func (s Span) String() string {
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}

// ParseSpan reads a "start-end" coordinate pair, e.g. "118-127".
func ParseSpan(s string) (Span, error) {
	lo, hi, ok := strings.Cut(s, "-")
	if !ok {
		return Span{}, fmt.Errorf("span %q is not start-end", s)
	}
	start, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return Span{}, fmt.Errorf("span %q has a bad start: %v", s, err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return Span{}, fmt.Errorf("span %q has a bad end: %v", s, err)
	}
	if start < 1 || end < start {
		return Span{}, fmt.Errorf("span %q is not a forward 1-based range", s)
	}
	return Span{Start: start, End: end}, nil
}

// AlleleQuery is one canonical reference sequence together with the
// coordinates of the region whose length differs between the alleles.
type AlleleQuery struct {
	// ID is the FASTA record id of the reference, used as the query id
	// in alignment output.
	ID string

	// Allele this reference represents.
	Allele Allele

	// Seq is the reference nucleotide sequence.
	Seq string

	// Region is the distinguishing region on this reference.
	Region Span
}

// Length returns the reference length in bases.
func (q AlleleQuery) Length() int { return len(q.Seq) }

// RegionSeq returns the distinguishing-region subsequence, the motif
// that separates this allele from the other two.
func (q AlleleQuery) RegionSeq() string {
	if q.Region.Start < 1 || q.Region.End > len(q.Seq) || q.Region.Start > q.Region.End {
		return ""
	}
	return q.Seq[q.Region.Start-1 : q.Region.End]
}

// QuerySet holds exactly one reference per allele. Construct with
// NewQuerySet; the zero value is unusable.
type QuerySet struct {
	queries [3]AlleleQuery
	loaded  bool
}

// NewQuerySet validates that the three alleles are each represented
// exactly once and that every region lies inside its sequence.
func NewQuerySet(queries []AlleleQuery) (QuerySet, error) {
	var set QuerySet
	if len(queries) != 3 {
		return set, &ConfigurationError{Reason: fmt.Sprintf("need exactly 3 allele references, got %d", len(queries))}
	}

	seen := map[Allele]bool{}
	ids := map[string]bool{}
	for _, q := range queries {
		if q.Allele < Deletion || q.Allele > Insertion {
			return set, &ConfigurationError{Reason: fmt.Sprintf("reference %q has an unknown allele", q.ID)}
		}
		if seen[q.Allele] {
			return set, &ConfigurationError{Reason: fmt.Sprintf("allele %s is defined twice", q.Allele)}
		}
		if q.ID == "" {
			return set, &ConfigurationError{Reason: fmt.Sprintf("allele %s reference has an empty id", q.Allele)}
		}
		if ids[q.ID] {
			return set, &ConfigurationError{Reason: fmt.Sprintf("reference id %q is used twice", q.ID)}
		}
		if len(q.Seq) == 0 {
			return set, &ConfigurationError{Reason: fmt.Sprintf("reference %q has an empty sequence", q.ID)}
		}
		if q.Region.Start < 1 || q.Region.End < q.Region.Start || q.Region.End > len(q.Seq) {
			return set, &ConfigurationError{
				Reason: fmt.Sprintf("reference %q region %s lies outside the %d bp sequence", q.ID, q.Region, len(q.Seq)),
			}
		}
		seen[q.Allele] = true
		ids[q.ID] = true
		set.queries[q.Allele] = q
	}
	set.loaded = true
	return set, nil
}

// Get returns the reference for an allele.
func (s QuerySet) Get(a Allele) AlleleQuery {
	return s.queries[a]
}

// All returns the three references in allele order.
func (s QuerySet) All() [3]AlleleQuery {
	return s.queries
}

// ByID looks a reference up by its FASTA record id.
func (s QuerySet) ByID(id string) (AlleleQuery, bool) {
	for _, q := range s.queries {
		if q.ID == id {
			return q, true
		}
	}
	return AlleleQuery{}, false
}

// Loaded reports whether the set was built by NewQuerySet.
func (s QuerySet) Loaded() bool { return s.loaded }
