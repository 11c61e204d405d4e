// Package asm adapts a targeted read assembler (ariba or compatible)
// for the espW fallback: a reference database is prepared once from
// the allele references, each read pair is assembled against it, and
// the gzipped contig FASTA it emits is parsed into an assembly
// result.
package asm

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

// contigFile is the assembler's output of interest inside a run
// directory.
const contigFile = "assembled_seqs.fa.gz"

// Options configures the assembler executable.
type Options struct {
	// Exe is the assembler binary, a bare name resolved on PATH.
	Exe string

	// Threads is passed to the assembler's run subcommand.
	Threads int
}

func (o Options) withDefaults() Options {
	if o.Exe == "" {
		o.Exe = "ariba"
	}
	if o.Threads < 1 {
		o.Threads = 1
	}
	return o
}

// Runner wraps the assembler binary.
type Runner struct {
	opts Options
	log  logging.Logger
}

func NewRunner(opts Options) *Runner {
	return &Runner{opts: opts.withDefaults(), log: logging.Named("asm")}
}

// PrepareRef builds the assembler's reference database from the three
// allele references under dir. The database is shared by every run of
// a batch.
func (r *Runner) PrepareRef(ctx context.Context, set espw.QuerySet, dir string) (string, error) {
	recs := make([]fasta.Record, 0, 3)
	for _, q := range set.All() {
		recs = append(recs, fasta.Record{ID: q.ID, Desc: q.Allele.String(), Seq: q.Seq})
	}
	refFasta := filepath.Join(dir, "espW_refs.fna")
	if err := fasta.WriteFile(refFasta, recs); err != nil {
		return "", fmt.Errorf("writing assembler references: %w", err)
	}

	refDir := filepath.Join(dir, "ariba_db")
	cmd := exec.CommandContext(ctx, r.opts.Exe,
		"prepareref",
		"--all_coding", "no",
		"-f", refFasta,
		refDir,
	)
	r.log.Debug("prepareref", logging.String("db", refDir))
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", &espw.ToolInvocationError{Tool: r.opts.Exe + " prepareref", Err: fmt.Errorf("%v: %s", err, strings.TrimSpace(string(output)))}
	}
	return refDir, nil
}

// Run assembles one read pair against a prepared reference database.
// outDir must not exist yet; the assembler refuses to reuse it. A
// completed run that assembled nothing yields Success false rather
// than an error.
func (r *Runner) Run(ctx context.Context, refDir, read1, read2, outDir string) (espw.AssemblyResult, error) {
	cmd := exec.CommandContext(ctx, r.opts.Exe,
		"run",
		"--threads", strconv.Itoa(r.opts.Threads),
		refDir,
		read1,
		read2,
		outDir,
	)
	r.log.Debug("assemble", logging.String("out", outDir))
	if output, err := cmd.CombinedOutput(); err != nil {
		return espw.AssemblyResult{}, &espw.ToolInvocationError{Tool: r.opts.Exe + " run", Err: fmt.Errorf("%v: %s", err, strings.TrimSpace(string(output)))}
	}

	return ParseContigs(filepath.Join(outDir, contigFile))
}

// ParseContigs reads the assembler's contig FASTA into a result
// carrying the longest contig. A missing or empty file means the
// assembler found nothing near the gene: Success false, no error.
func ParseContigs(path string) (espw.AssemblyResult, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return espw.AssemblyResult{}, nil
	}
	recs, err := fasta.Read(path)
	if err != nil {
		return espw.AssemblyResult{}, fmt.Errorf("assembler output: %w", err)
	}

	longest, ok := fasta.Longest(recs)
	if !ok || len(longest.Seq) == 0 {
		return espw.AssemblyResult{}, nil
	}
	return espw.AssemblyResult{
		Success:  true,
		ContigID: longest.ID,
		Contig:   longest.Seq,
		Contigs:  len(recs),
		Depth:    parseDepth(longest.ID),
	}, nil
}

// parseDepth pulls the mean coverage out of a SPAdes-style contig id
// such as NODE_3_length_713_cov_41.5, returning 0 when absent.
func parseDepth(id string) float64 {
	parts := strings.Split(id, "_")
	for i, p := range parts {
		if p == "cov" && i+1 < len(parts) {
			if d, err := strconv.ParseFloat(parts[i+1], 64); err == nil {
				return d
			}
		}
	}
	return 0
}
