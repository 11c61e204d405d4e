package espw

import (
	"fmt"
	"strings"
)

// AlignmentVerdict is the outcome of the alignment-evidence stage.
type AlignmentVerdict struct {
	// Conclusive is true when exactly one allele's reference spans its
	// distinguishing region cleanly.
	Conclusive bool

	// Allele and Winner are set only when Conclusive.
	Allele Allele
	Winner Hit

	// Rationale describes the per-allele evidence in one line.
	Rationale string
}

// alleleEvidence is the digested hit evidence for one allele.
type alleleEvidence struct {
	best  Hit
	found bool
	spans bool
}

func (e alleleEvidence) describe(a Allele, q AlleleQuery) string {
	switch {
	case !e.found:
		return fmt.Sprintf("%s: no qualifying hit", a)
	case !e.spans:
		return fmt.Sprintf("%s: best hit q %d-%d does not span region %s cleanly", a, e.best.QueryStart, e.best.QueryEnd, q.Region)
	default:
		return fmt.Sprintf("%s: region %s spanned by %s", a, q.Region, e.best)
	}
}

// digestHits reduces a hit set to per-allele evidence: the best
// qualifying hit for each reference and whether it spans the
// distinguishing region. Hits whose query id matches none of the
// references are ignored.
func digestHits(hits []Hit, set QuerySet, p Policy) (ev [3]alleleEvidence, spanning []Allele) {
	for _, h := range hits {
		q, ok := set.ByID(h.QueryID)
		if !ok || !p.qualifies(h) {
			continue
		}
		e := &ev[q.Allele]
		if !e.found || Better(h, e.best) {
			e.best = h
			e.found = true
		}
	}
	for _, a := range Alleles() {
		e := &ev[a]
		if e.found && p.cleanSpan(e.best, set.Get(a)) {
			e.spans = true
			spanning = append(spanning, a)
		}
	}
	return ev, spanning
}

func describeAll(ev [3]alleleEvidence, set QuerySet) string {
	parts := make([]string, 0, 3)
	for _, a := range Alleles() {
		parts = append(parts, ev[a].describe(a, set.Get(a)))
	}
	return strings.Join(parts, "; ")
}

// EvaluateAlignment applies the threshold filter and the
// single-clean-span rule to a hit set. It is conclusive only when
// exactly one allele reference has a qualifying hit that spans its
// distinguishing region; zero or several spanning alleles leave the
// verdict open for the assembly fallback. With no qualifying hits at
// all the verdict is inconclusive, never an error.
func EvaluateAlignment(hits []Hit, set QuerySet, p Policy) AlignmentVerdict {
	ev, spanning := digestHits(hits, set, p)

	if len(spanning) == 1 {
		a := spanning[0]
		return AlignmentVerdict{
			Conclusive: true,
			Allele:     a,
			Winner:     ev[a].best,
			Rationale:  describeAll(ev, set),
		}
	}

	var reason string
	switch {
	case len(hits) == 0:
		reason = "no alignment hits"
	case len(spanning) == 0:
		reason = "no allele spans its distinguishing region cleanly"
	default:
		names := make([]string, len(spanning))
		for i, a := range spanning {
			names[i] = a.String()
		}
		reason = fmt.Sprintf("%d alleles span their distinguishing regions (%s)", len(spanning), strings.Join(names, ", "))
	}
	return AlignmentVerdict{
		Conclusive: false,
		Rationale:  reason + "; " + describeAll(ev, set),
	}
}
