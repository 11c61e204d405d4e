// Package pipeline assembles the collaborators behind the
// orchestrator's interfaces. Remote resolves accessions over the
// network for batch runs; Local classifies one on-disk genome and
// read pair.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ncezid-biome/espwAlleleCaller/internal/asm"
	"github.com/ncezid-biome/espwAlleleCaller/internal/blast"
	"github.com/ncezid-biome/espwAlleleCaller/internal/espw"
	"github.com/ncezid-biome/espwAlleleCaller/internal/fasta"
	"github.com/ncezid-biome/espwAlleleCaller/internal/fetch"
	"github.com/ncezid-biome/espwAlleleCaller/internal/logging"
	"github.com/ncezid-biome/espwAlleleCaller/internal/workspace"
)

const asmOutDir = "ariba_results"

// base carries everything the two modes share: the scratch workspace,
// the reference set and the tool runners. The assembler reference
// directory is built lazily, once per run.
type base struct {
	ws        *workspace.Workspace
	set       espw.QuerySet
	aligner   *blast.Runner
	assembler *asm.Runner
	log       logging.Logger

	refOnce sync.Once
	refDir  string
	refErr  error
}

// refs prepares the assembler reference directory under the workspace
// root on first use.
func (b *base) refs(ctx context.Context) (string, error) {
	b.refOnce.Do(func() {
		b.refDir, b.refErr = b.assembler.PrepareRef(ctx, b.set, b.ws.Root())
		if b.refErr == nil {
			b.log.Debug("assembler references prepared", logging.String("dir", b.refDir))
		}
	})
	return b.refDir, b.refErr
}

// stageGenome writes a plain-text copy of the genome into dir.
// makeblastdb cannot read gzip, and parsing rejects inputs that are
// not FASTA at all.
func (b *base) stageGenome(src, dir string) (string, error) {
	recs, err := fasta.Read(src)
	if err != nil {
		return "", fmt.Errorf("reading genome %s: %w", src, err)
	}
	if len(recs) == 0 {
		return "", fmt.Errorf("genome %s contains no sequences", src)
	}
	dst := filepath.Join(dir, "genome.fna")
	if err := fasta.WriteFile(dst, recs); err != nil {
		return "", err
	}
	return dst, nil
}

// AlignContig realigns the reference set against an assembled contig
// in a throwaway directory under the workspace root.
func (b *base) AlignContig(ctx context.Context, contig string) ([]espw.Hit, error) {
	dir, err := os.MkdirTemp(b.ws.Root(), "contig")
	if err != nil {
		return nil, err
	}
	return b.aligner.AlignToContig(ctx, b.set, contig, dir)
}

// Remote serves batch records: the genome FASTA and the paired reads
// are downloaded by accession before alignment and assembly.
type Remote struct {
	base
	client *fetch.Client
}

// NewRemote wires the batch-mode pipeline.
func NewRemote(ws *workspace.Workspace, set espw.QuerySet, aligner *blast.Runner, assembler *asm.Runner, client *fetch.Client) *Remote {
	return &Remote{
		base: base{
			ws:        ws,
			set:       set,
			aligner:   aligner,
			assembler: assembler,
			log:       logging.Named("pipeline"),
		},
		client: client,
	}
}

// Hits downloads the record's genome and aligns the reference set
// against it.
func (p *Remote) Hits(ctx context.Context, rec espw.GenomeRecord) ([]espw.Hit, error) {
	dir, err := p.ws.RecordDir(rec.Key)
	if err != nil {
		return nil, err
	}
	downloaded, err := p.client.Genome(ctx, rec.Accession, dir)
	if err != nil {
		return nil, err
	}
	genome, err := p.stageGenome(downloaded, dir)
	if err != nil {
		return nil, err
	}
	return p.aligner.AlignToGenome(ctx, p.set, genome, dir)
}

// Assemble downloads the record's read pair and runs the targeted
// assembler against the shared reference directory.
func (p *Remote) Assemble(ctx context.Context, rec espw.GenomeRecord) (espw.AssemblyResult, error) {
	refDir, err := p.refs(ctx)
	if err != nil {
		return espw.AssemblyResult{}, err
	}
	dir, err := p.ws.RecordDir(rec.Key)
	if err != nil {
		return espw.AssemblyResult{}, err
	}
	read1, read2, err := p.client.Reads(ctx, rec.ReadRun, dir)
	if err != nil {
		return espw.AssemblyResult{}, err
	}
	return p.assembler.Run(ctx, refDir, read1, read2, filepath.Join(dir, asmOutDir))
}

// Local serves single-genome runs from files already on disk. The
// record's accession and read-run fields are informational; the paths
// given at construction are what run.
type Local struct {
	base
	genome string
	read1  string
	read2  string
}

// NewLocal wires the call-mode pipeline around a local genome FASTA
// (plain or gzipped) and an optional local read pair.
func NewLocal(ws *workspace.Workspace, set espw.QuerySet, aligner *blast.Runner, assembler *asm.Runner, genome, read1, read2 string) *Local {
	return &Local{
		base: base{
			ws:        ws,
			set:       set,
			aligner:   aligner,
			assembler: assembler,
			log:       logging.Named("pipeline"),
		},
		genome: genome,
		read1:  read1,
		read2:  read2,
	}
}

// Hits aligns the reference set against the local genome.
func (p *Local) Hits(ctx context.Context, rec espw.GenomeRecord) ([]espw.Hit, error) {
	dir, err := p.ws.RecordDir(rec.Key)
	if err != nil {
		return nil, err
	}
	genome, err := p.stageGenome(p.genome, dir)
	if err != nil {
		return nil, err
	}
	return p.aligner.AlignToGenome(ctx, p.set, genome, dir)
}

// Assemble runs the targeted assembler on the local read pair.
func (p *Local) Assemble(ctx context.Context, rec espw.GenomeRecord) (espw.AssemblyResult, error) {
	refDir, err := p.refs(ctx)
	if err != nil {
		return espw.AssemblyResult{}, err
	}
	dir, err := p.ws.RecordDir(rec.Key)
	if err != nil {
		return espw.AssemblyResult{}, err
	}
	return p.assembler.Run(ctx, refDir, p.read1, p.read2, filepath.Join(dir, asmOutDir))
}
