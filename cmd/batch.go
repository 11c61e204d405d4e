package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/ncezid-biome/espwAlleleCaller/internal/depcheck"
	"github.com/ncezid-biome/espwAlleleCaller/internal/espw"
	"github.com/ncezid-biome/espwAlleleCaller/internal/fetch"
	"github.com/ncezid-biome/espwAlleleCaller/internal/manifest"
	"github.com/ncezid-biome/espwAlleleCaller/internal/pipeline"
	"github.com/ncezid-biome/espwAlleleCaller/internal/report"
	"github.com/ncezid-biome/espwAlleleCaller/internal/workspace"
)

var batchManifest string
var batchOut string

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Classify every genome in a manifest of sequence-archive accessions",
	Long: `Classify every genome in a manifest of sequence-archive accessions.

The manifest is a TSV of key, assembly accession and optional
read-run accession, one genome per line. Genomes are downloaded and
classified by --threads workers; a record that fails a step is
degraded and reported, never aborts its siblings. The calls and
failures tables land in the --out directory.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runBatch(cmd); err != nil {
			log.Fatalf("%v", err)
		}
	},
}

func init() {
	RootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&batchManifest, "manifest", "m", "", "TSV manifest of genomes to classify")
	batchCmd.Flags().StringVarP(&batchOut, "out", "o", "", "directory for the calls and failures tables")

	batchCmd.MarkFlagRequired("manifest")
	batchCmd.MarkFlagRequired("out")
}

func runBatch(cmd *cobra.Command) error {
	c, tools, set := setup()

	recs, err := manifest.Load(batchManifest)
	if err != nil {
		return err
	}

	if err := depcheck.Binaries([]depcheck.Tool{
		{Name: "blastn", Path: tools.BlastN},
		{Name: "makeblastdb", Path: tools.MakeBlastDB},
		{Name: "assembler", Path: tools.Assembler},
	}); err != nil {
		return err
	}

	w, err := report.NewWriter(batchOut)
	if err != nil {
		return err
	}

	ws, err := workspace.New(c.WorkDir, c.KeepFiles)
	if err != nil {
		return err
	}
	defer ws.Close()

	client := fetch.NewClient(fetch.Options{
		GenomeURL:     tools.GenomeURL,
		FileReportURL: tools.FileReportURL,
		Timeout:       c.Fetch.Timeout,
		MaxRetries:    c.Fetch.MaxRetries,
	})
	aligner, assembler := buildRunners(c, tools)
	pipe := pipeline.NewRemote(ws, set, aligner, assembler, client)

	orch, err := espw.NewOrchestrator(set, c.Policy(), pipe, pipe, pipe)
	if err != nil {
		return err
	}
	b, err := espw.NewBatch(orch, c.Threads)
	if err != nil {
		return err
	}

	results, failures, err := b.Run(cmd.Context(), recs)
	if err != nil {
		return err
	}

	if _, err := w.WriteCalls(results); err != nil {
		return err
	}
	if _, err := w.WriteFailures(failures); err != nil {
		return err
	}
	w.LogSummary(results)
	return nil
}
