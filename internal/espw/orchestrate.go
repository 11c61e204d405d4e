package espw

import (
	"context"
	"fmt"

	"github.com/ncezid-biome/espwAlleleCaller/internal/logging"
)

// HitSource produces alignment hits between the allele references and
// one genome.
type HitSource interface {
	Hits(ctx context.Context, rec GenomeRecord) ([]Hit, error)
}

// Assembler runs targeted read assembly for one genome's read set.
type Assembler interface {
	Assemble(ctx context.Context, rec GenomeRecord) (AssemblyResult, error)
}

// ContigAligner aligns the allele references against an assembled
// contig.
type ContigAligner interface {
	AlignContig(ctx context.Context, contig string) ([]Hit, error)
}

// state of the per-record classification machine.
type state int

const (
	stateStart state = iota
	stateAlignmentEval
	stateNeedsAssembly
	stateAssemblyFetch
	stateAssemblyEval
	stateDone
)

func (s state) String() string {
	switch s {
	case stateStart:
		return "start"
	case stateAlignmentEval:
		return "alignment-eval"
	case stateNeedsAssembly:
		return "needs-assembly"
	case stateAssemblyFetch:
		return "assembly-fetch"
	case stateAssemblyEval:
		return "assembly-eval"
	case stateDone:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Orchestrator runs the classification machine for single genomes.
type Orchestrator struct {
	set     QuerySet
	policy  Policy
	hits    HitSource
	asm     Assembler
	contigs ContigAligner
	log     logging.Logger
}

// NewOrchestrator wires the evaluators to their evidence sources. The
// query set must come from NewQuerySet and the policy from a passed
// Validate.
func NewOrchestrator(set QuerySet, p Policy, hits HitSource, asm Assembler, contigs ContigAligner) (*Orchestrator, error) {
	if !set.Loaded() {
		return nil, &ConfigurationError{Reason: "allele query set not loaded"}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if hits == nil || asm == nil || contigs == nil {
		return nil, &ConfigurationError{Reason: "orchestrator requires a hit source, an assembler and a contig aligner"}
	}
	return &Orchestrator{
		set:     set,
		policy:  p,
		hits:    hits,
		asm:     asm,
		contigs: contigs,
		log:     logging.Named("orchestrator"),
	}, nil
}

// Call classifies one genome. It always returns a result with a
// non-empty classification; evidence-gathering problems are returned
// as failures alongside the degraded result, never as an error.
//
// The machine visits each state at most once:
//
//	start → alignment-eval → done
//	                       ↘ needs-assembly → assembly-fetch → assembly-eval → done
func (o *Orchestrator) Call(ctx context.Context, rec GenomeRecord) (CallResult, []Failure) {
	var (
		res      = CallResult{Key: rec.Key}
		failures []Failure
		hits     []Hit
		asmRes   AssemblyResult
		note     string
	)

	log := o.log.Named(rec.Key)
	for st := stateStart; st != stateDone; {
		log.Debug("state", logging.String("state", st.String()))
		switch st {
		case stateStart:
			var err error
			hits, err = o.hits.Hits(ctx, rec)
			if err != nil {
				failures = append(failures, Failure{Key: rec.Key, Reason: "alignment step: " + err.Error()})
				hits = nil
				note = "alignment step failed; "
				log.Warn("alignment step failed", logging.Error(err))
			}
			st = stateAlignmentEval

		case stateAlignmentEval:
			v := EvaluateAlignment(hits, o.set, o.policy)
			if v.Conclusive {
				res.Classification = v.Allele.Classification()
				res.Evidence = EvidenceAlignment
				res.Subject = v.Winner.SubjectID
				res.Rationale = note + v.Rationale
				st = stateDone
				break
			}
			note += "alignment inconclusive: " + v.Rationale + "; "
			st = stateNeedsAssembly

		case stateNeedsAssembly:
			if !rec.HasReads() {
				res.Classification = CallAmbiguous
				res.Evidence = EvidenceAlignment
				res.Rationale = note + "no read set for assembly fallback"
				st = stateDone
				break
			}
			st = stateAssemblyFetch

		case stateAssemblyFetch:
			var err error
			asmRes, err = o.asm.Assemble(ctx, rec)
			if err != nil {
				failures = append(failures, Failure{Key: rec.Key, Reason: "assembly step: " + err.Error()})
				res.Classification = CallAbsent
				res.Evidence = EvidenceNone
				res.Rationale = note + "assembly step failed: " + err.Error()
				log.Warn("assembly step failed", logging.Error(err))
				st = stateDone
				break
			}
			st = stateAssemblyEval

		case stateAssemblyEval:
			align := func(contig string) ([]Hit, error) {
				return o.contigs.AlignContig(ctx, contig)
			}
			v := EvaluateAssembly(asmRes, align, o.set, o.policy)
			res.Classification = v.Classification
			res.Evidence = v.Evidence
			res.Rationale = note + v.Rationale
			st = stateDone
		}
	}

	log.Info("classified",
		logging.String("classification", string(res.Classification)),
		logging.String("evidence", string(res.Evidence)))
	return res, failures
}
