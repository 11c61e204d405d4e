// Package blast wraps the NCBI BLAST+ binaries. It aligns the three
// allele references against either a genome (makeblastdb + blastn) or
// a single assembled contig (blastn -subject) and parses the tabular
// output into hits.
package blast

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ncezid-biome/espwAlleleCaller/internal/espw"
	"github.com/ncezid-biome/espwAlleleCaller/internal/fasta"
	"github.com/ncezid-biome/espwAlleleCaller/internal/logging"
)

// Options locates the BLAST+ binaries and sets the shared blastn
// flags.
type Options struct {
	// BlastN and MakeBlastDB are the executables, bare names resolved
	// on PATH.
	BlastN      string
	MakeBlastDB string

	// Identity is passed as -perc_identity, a coarse prefilter under
	// the evaluator's own threshold.
	Identity float64

	// Threads is passed as -num_threads.
	Threads int
}

func (o Options) withDefaults() Options {
	if o.BlastN == "" {
		o.BlastN = "blastn"
	}
	if o.MakeBlastDB == "" {
		o.MakeBlastDB = "makeblastdb"
	}
	if o.Identity <= 0 {
		o.Identity = 90
	}
	if o.Threads < 1 {
		o.Threads = 1
	}
	return o
}

// Runner executes BLAST+ against genomes and contigs.
type Runner struct {
	opts Options
	log  logging.Logger
}

func NewRunner(opts Options) *Runner {
	return &Runner{opts: opts.withDefaults(), log: logging.Named("blast")}
}

// blastExec is one blastn invocation: a query FASTA aligned against
// either a database or a subject FASTA.
type blastExec struct {
	blastn   string
	query    string
	db       string
	subject  string
	out      string
	identity float64
	threads  int
}

// run calls blastn against a database.
func (b *blastExec) run(ctx context.Context) error {
	flags := []string{
		"-task", "blastn",
		"-query", b.query,
		"-db", b.db,
		"-out", b.out,
		"-outfmt", espw.TableFormat,
		"-perc_identity", strconv.FormatFloat(b.identity, 'f', -1, 64),
		"-max_target_seqs", "10000",
		"-num_threads", strconv.Itoa(b.threads),
	}

	cmd := exec.CommandContext(ctx, b.blastn, flags...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return &espw.ToolInvocationError{Tool: "blastn", Err: fmt.Errorf("%v: %s", err, strings.TrimSpace(string(output)))}
	}
	return nil
}

// runAgainst calls blastn with a subject file instead of a database.
func (b *blastExec) runAgainst(ctx context.Context) error {
	flags := []string{
		"-task", "blastn",
		"-query", b.query,
		"-subject", b.subject,
		"-out", b.out,
		"-outfmt", espw.TableFormat,
		"-perc_identity", strconv.FormatFloat(b.identity, 'f', -1, 64),
	}

	cmd := exec.CommandContext(ctx, b.blastn, flags...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return &espw.ToolInvocationError{Tool: "blastn", Err: fmt.Errorf("%v: %s", err, strings.TrimSpace(string(output)))}
	}
	return nil
}

// parse reads the tabular output file into hits.
func (b *blastExec) parse() ([]espw.Hit, error) {
	f, err := os.Open(b.out)
	if err != nil {
		return nil, fmt.Errorf("reading blastn output: %w", err)
	}
	defer f.Close()
	return espw.ParseTable(f)
}

// AlignToGenome builds a nucleotide database from the genome FASTA
// and aligns the references against it. Intermediate files live under
// dir.
func (r *Runner) AlignToGenome(ctx context.Context, set espw.QuerySet, genomePath, dir string) ([]espw.Hit, error) {
	query, err := r.writeQueries(set, dir)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSuffix(filepath.Base(genomePath), filepath.Ext(genomePath))
	db := filepath.Join(dir, "blastdb", name)
	if err := os.MkdirAll(filepath.Dir(db), 0o755); err != nil {
		return nil, fmt.Errorf("creating blastdb dir: %w", err)
	}
	cmd := exec.CommandContext(ctx, r.opts.MakeBlastDB,
		"-dbtype", "nucl",
		"-in", genomePath,
		"-out", db,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, &espw.ToolInvocationError{Tool: "makeblastdb", Err: fmt.Errorf("%v: %s", err, strings.TrimSpace(string(output)))}
	}

	b := &blastExec{
		blastn:   r.opts.BlastN,
		query:    query,
		db:       db,
		out:      filepath.Join(dir, name+"_vs_espW.tsv"),
		identity: r.opts.Identity,
		threads:  r.opts.Threads,
	}
	r.log.Debug("blastn", logging.String("db", db))
	if err := b.run(ctx); err != nil {
		return nil, err
	}
	return b.parse()
}

// AlignToContig aligns the references against one assembled contig
// using blastn's subject mode, skipping database construction.
func (r *Runner) AlignToContig(ctx context.Context, set espw.QuerySet, contig, dir string) ([]espw.Hit, error) {
	query, err := r.writeQueries(set, dir)
	if err != nil {
		return nil, err
	}

	subject := filepath.Join(dir, "contig.fna")
	if err := fasta.WriteFile(subject, []fasta.Record{{ID: "contig", Seq: contig}}); err != nil {
		return nil, fmt.Errorf("writing contig: %w", err)
	}

	b := &blastExec{
		blastn:   r.opts.BlastN,
		query:    query,
		subject:  subject,
		out:      filepath.Join(dir, "contig_vs_espW.tsv"),
		identity: r.opts.Identity,
	}
	r.log.Debug("blastn -subject", logging.String("contig", subject))
	if err := b.runAgainst(ctx); err != nil {
		return nil, err
	}
	return b.parse()
}

// writeQueries renders the reference set as the blastn query FASTA.
// The file is rewritten on every call; the references are tiny.
func (r *Runner) writeQueries(set espw.QuerySet, dir string) (string, error) {
	recs := make([]fasta.Record, 0, 3)
	for _, q := range set.All() {
		recs = append(recs, fasta.Record{ID: q.ID, Desc: q.Allele.String(), Seq: q.Seq})
	}
	path := filepath.Join(dir, "espW_queries.fna")
	if err := fasta.WriteFile(path, recs); err != nil {
		return "", fmt.Errorf("writing query fasta: %w", err)
	}
	return path, nil
}
