package espw

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeHitSource struct {
	hits  []Hit
	err   error
	calls int
}

func (f *fakeHitSource) Hits(ctx context.Context, rec GenomeRecord) ([]Hit, error) {
	f.calls++
	return f.hits, f.err
}

type fakeAssembler struct {
	res   AssemblyResult
	err   error
	calls int
}

func (f *fakeAssembler) Assemble(ctx context.Context, rec GenomeRecord) (AssemblyResult, error) {
	f.calls++
	return f.res, f.err
}

type fakeContigAligner struct {
	hits  []Hit
	err   error
	calls int
}

func (f *fakeContigAligner) AlignContig(ctx context.Context, contig string) ([]Hit, error) {
	f.calls++
	return f.hits, f.err
}

func testOrchestrator(t *testing.T, hits *fakeHitSource, asm *fakeAssembler, contigs *fakeContigAligner) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(testQuerySet(t), testPolicy(), hits, asm, contigs)
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}
	return o
}

func TestNewOrchestratorValidation(t *testing.T) {
	set := testQuerySet(t)
	hits := &fakeHitSource{}
	asm := &fakeAssembler{}
	contigs := &fakeContigAligner{}

	if _, err := NewOrchestrator(QuerySet{}, testPolicy(), hits, asm, contigs); err == nil {
		t.Error("accepted an unloaded query set")
	}
	if _, err := NewOrchestrator(set, Policy{}, hits, asm, contigs); err == nil {
		t.Error("accepted an invalid policy")
	}
	if _, err := NewOrchestrator(set, testPolicy(), nil, asm, contigs); err == nil {
		t.Error("accepted a nil hit source")
	}
}

func TestCallConclusiveAlignmentSkipsAssembly(t *testing.T) {
	set := testQuerySet(t)
	hits := &fakeHitSource{hits: []Hit{spanningHit("espw-ins", set.Get(Insertion).Length())}}
	asm := &fakeAssembler{}
	contigs := &fakeContigAligner{}

	o := testOrchestrator(t, hits, asm, contigs)
	res, fails := o.Call(context.Background(), GenomeRecord{Key: "g1", ReadRun: "SRR1"})

	if res.Classification != CallInsertion {
		t.Errorf("classification = %s, want insertion", res.Classification)
	}
	if res.Evidence != EvidenceAlignment {
		t.Errorf("evidence = %s, want alignment", res.Evidence)
	}
	if res.Subject != "contig1" {
		t.Errorf("subject = %q, want contig1", res.Subject)
	}
	if len(fails) != 0 {
		t.Errorf("unexpected failures: %+v", fails)
	}
	if asm.calls != 0 {
		t.Errorf("assembler ran %d times for a conclusive alignment", asm.calls)
	}
}

func TestCallFallsBackToAssembly(t *testing.T) {
	set := testQuerySet(t)
	del := set.Get(Deletion)
	hits := &fakeHitSource{} // no hits at all
	asm := &fakeAssembler{res: AssemblyResult{Success: true, ContigID: "ctg.1", Contig: del.Seq, Contigs: 1}}
	contigs := &fakeContigAligner{hits: []Hit{spanningHit("espw-del", del.Length())}}

	o := testOrchestrator(t, hits, asm, contigs)
	res, fails := o.Call(context.Background(), GenomeRecord{Key: "g1", ReadRun: "SRR1"})

	if res.Classification != CallDeletion {
		t.Errorf("classification = %s, want deletion", res.Classification)
	}
	if res.Evidence != EvidenceAssembly {
		t.Errorf("evidence = %s, want assembly", res.Evidence)
	}
	if len(fails) != 0 {
		t.Errorf("unexpected failures: %+v", fails)
	}
	if asm.calls != 1 || contigs.calls != 1 {
		t.Errorf("assembler ran %d times, contig aligner %d, want 1 and 1", asm.calls, contigs.calls)
	}
	if !strings.Contains(res.Rationale, "alignment inconclusive") {
		t.Errorf("rationale %q should mention the inconclusive alignment", res.Rationale)
	}
}

func TestCallDegradesHitSourceError(t *testing.T) {
	set := testQuerySet(t)
	full := set.Get(FullLength)
	hits := &fakeHitSource{err: &ToolInvocationError{Tool: "blastn", Err: errors.New("exit status 2")}}
	asm := &fakeAssembler{res: AssemblyResult{Success: true, ContigID: "ctg.1", Contig: full.Seq, Contigs: 1}}
	contigs := &fakeContigAligner{hits: []Hit{spanningHit("espw-full", full.Length())}}

	o := testOrchestrator(t, hits, asm, contigs)
	res, fails := o.Call(context.Background(), GenomeRecord{Key: "g1", ReadRun: "SRR1"})

	if res.Classification != CallFullLength {
		t.Errorf("classification = %s, want full-length from assembly", res.Classification)
	}
	if len(fails) != 1 || !strings.Contains(fails[0].Reason, "alignment step") {
		t.Errorf("failures = %+v, want one alignment-step failure", fails)
	}
}

func TestCallDegradesAssemblyError(t *testing.T) {
	hits := &fakeHitSource{}
	asm := &fakeAssembler{err: &DownloadError{Target: "SRR1", Err: errors.New("connection refused")}}
	contigs := &fakeContigAligner{}

	o := testOrchestrator(t, hits, asm, contigs)
	res, fails := o.Call(context.Background(), GenomeRecord{Key: "g1", ReadRun: "SRR1"})

	if res.Classification != CallAbsent {
		t.Errorf("classification = %s, want absent", res.Classification)
	}
	if res.Evidence != EvidenceNone {
		t.Errorf("evidence = %s, want none", res.Evidence)
	}
	if len(fails) != 1 || !strings.Contains(fails[0].Reason, "assembly step") {
		t.Errorf("failures = %+v, want one assembly-step failure", fails)
	}
	if contigs.calls != 0 {
		t.Errorf("contig aligner ran %d times after a failed assembly", contigs.calls)
	}
}

func TestCallWithoutReadsStaysAmbiguous(t *testing.T) {
	hits := &fakeHitSource{}
	asm := &fakeAssembler{}
	contigs := &fakeContigAligner{}

	o := testOrchestrator(t, hits, asm, contigs)
	res, fails := o.Call(context.Background(), GenomeRecord{Key: "g1", Accession: "GCA_1"})

	if res.Classification != CallAmbiguous {
		t.Errorf("classification = %s, want ambiguous", res.Classification)
	}
	if res.Evidence != EvidenceAlignment {
		t.Errorf("evidence = %s, want alignment", res.Evidence)
	}
	if !strings.Contains(res.Rationale, "no read set") {
		t.Errorf("rationale %q should mention the missing reads", res.Rationale)
	}
	if asm.calls != 0 {
		t.Errorf("assembler ran %d times without reads", asm.calls)
	}
	if len(fails) != 0 {
		t.Errorf("unexpected failures: %+v", fails)
	}
}
