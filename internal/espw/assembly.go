package espw

import (
	"fmt"
	"strings"
)

// AssemblyResult is what targeted read assembly produced for one
// genome. Contig holds the longest assembled sequence; an assembly
// that produced nothing has Success false.
type AssemblyResult struct {
	Success  bool
	ContigID string
	Contig   string

	// Contigs is the number of sequences the assembler emitted.
	Contigs int

	// Depth is the mean read depth the assembler reported for the
	// contig, zero when unknown.
	Depth float64
}

// AlignContigFunc aligns the three allele references against an
// assembled contig and returns the resulting hits.
type AlignContigFunc func(contig string) ([]Hit, error)

// AssemblyVerdict is the outcome of the assembly-evidence stage. It
// is always a final classification.
type AssemblyVerdict struct {
	Classification Classification
	Evidence       Evidence
	Rationale      string
}

// EvaluateAssembly classifies a genome from its targeted assembly. A
// failed or empty assembly means the gene's neighborhood is absent
// from the reads; a contig below the policy minimum is dismissed as
// unusable; otherwise the contig is aligned against the references
// and judged by the same single-clean-span rule as the primary
// alignment stage, with ambiguity now terminal. An alignment error at
// this stage degrades to zero hits rather than failing the record.
func EvaluateAssembly(res AssemblyResult, align AlignContigFunc, set QuerySet, p Policy) AssemblyVerdict {
	if !res.Success {
		return AssemblyVerdict{
			Classification: CallAbsent,
			Evidence:       EvidenceNone,
			Rationale:      "targeted assembly produced no contigs",
		}
	}
	if len(res.Contig) < p.MinContigLength {
		return AssemblyVerdict{
			Classification: CallAbsent,
			Evidence:       EvidenceAssembly,
			Rationale:      fmt.Sprintf("assembled contig %s is %d bp, below the %d bp minimum", res.ContigID, len(res.Contig), p.MinContigLength),
		}
	}

	var note string
	hits, err := align(res.Contig)
	if err != nil {
		hits = nil
		note = fmt.Sprintf("contig alignment failed (%v); ", err)
	}

	ev, spanning := digestHits(hits, set, p)
	motifs := motifSummary(res.Contig, set)

	if len(spanning) == 1 {
		a := spanning[0]
		return AssemblyVerdict{
			Classification: a.Classification(),
			Evidence:       EvidenceAssembly,
			Rationale: fmt.Sprintf("%scontig %s (%d bp): %s; %s",
				note, res.ContigID, len(res.Contig), ev[a].describe(a, set.Get(a)), motifs),
		}
	}

	var reason string
	switch {
	case len(hits) == 0:
		reason = "contig matched no allele reference"
	case len(spanning) == 0:
		reason = "no allele spans its distinguishing region on the contig"
	default:
		names := make([]string, len(spanning))
		for i, a := range spanning {
			names[i] = a.String()
		}
		reason = fmt.Sprintf("%d alleles span their distinguishing regions on the contig (%s)", len(spanning), strings.Join(names, ", "))
	}
	return AssemblyVerdict{
		Classification: CallAmbiguous,
		Evidence:       EvidenceAssembly,
		Rationale:      fmt.Sprintf("%scontig %s (%d bp): %s; %s", note, res.ContigID, len(res.Contig), reason, motifs),
	}
}

// motifSummary reports which distinguishing-region sequences occur
// verbatim in the contig. It informs the rationale only; the
// classification itself always comes from alignment spans.
func motifSummary(contig string, set QuerySet) string {
	lower := strings.ToLower(contig)
	var found []string
	for _, a := range [3]Allele{Insertion, FullLength, Deletion} {
		motif := strings.ToLower(set.Get(a).RegionSeq())
		if motif != "" && strings.Contains(lower, motif) {
			found = append(found, a.String())
		}
	}
	if len(found) == 0 {
		return "no region motif found in contig"
	}
	return "region motif present for " + strings.Join(found, ", ")
}
