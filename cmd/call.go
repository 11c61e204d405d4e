package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ncezid-biome/espwAlleleCaller/internal/depcheck"
	"github.com/ncezid-biome/espwAlleleCaller/internal/espw"
	"github.com/ncezid-biome/espwAlleleCaller/internal/logging"
	"github.com/ncezid-biome/espwAlleleCaller/internal/pipeline"
	"github.com/ncezid-biome/espwAlleleCaller/internal/workspace"
)

var callFastaPath string
var callReads string

// callCmd represents the call command
var callCmd = &cobra.Command{
	Use:   "call",
	Short: "Determine the espW allele of one genome from local files",
	Long: `Determine the espW allele of one genome from local files.

The genome FASTA is aligned against the three espW reference alleles
(deletion, full-length, insertion); when exactly one reference spans
its distinguishing homopolymer region cleanly, that allele is the
call. If the alignment is inconclusive and a read pair was given, the
gene's neighborhood is assembled from the reads and the contig
decides.

Prints the classification to stdout, followed by the matching genome
contig when the primary alignment decided the call.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runCall(cmd); err != nil {
			log.Fatalf("%v", err)
		}
	},
}

func init() {
	RootCmd.AddCommand(callCmd)

	callCmd.Flags().StringVarP(&callFastaPath, "fasta", "f", "", "input nucleotide fasta file")
	callCmd.Flags().StringVarP(&callReads, "reads", "r", "", "input reads as a pair of files separated by a comma (read1,read2)")

	callCmd.MarkFlagRequired("fasta")
}

func runCall(cmd *cobra.Command) error {
	c, tools, set := setup()

	if _, err := os.Stat(callFastaPath); err != nil {
		return err
	}
	var read1, read2 string
	if callReads != "" {
		parts := strings.Split(callReads, ",")
		if len(parts) != 2 {
			return fmt.Errorf("must specify exactly two reads separated by a comma")
		}
		read1, read2 = parts[0], parts[1]
		for _, r := range []string{read1, read2} {
			if _, err := os.Stat(r); err != nil {
				return err
			}
		}
	}

	required := []depcheck.Tool{
		{Name: "blastn", Path: tools.BlastN},
		{Name: "makeblastdb", Path: tools.MakeBlastDB},
	}
	if callReads != "" {
		required = append(required, depcheck.Tool{Name: "assembler", Path: tools.Assembler})
	}
	if err := depcheck.Binaries(required); err != nil {
		return err
	}

	ws, err := workspace.New(c.WorkDir, c.KeepFiles)
	if err != nil {
		return err
	}
	defer ws.Close()

	aligner, assembler := buildRunners(c, tools)
	pipe := pipeline.NewLocal(ws, set, aligner, assembler, callFastaPath, read1, read2)
	orch, err := espw.NewOrchestrator(set, c.Policy(), pipe, pipe, pipe)
	if err != nil {
		return err
	}

	key := strings.TrimSuffix(filepath.Base(callFastaPath), filepath.Ext(callFastaPath))
	res, failures := orch.Call(cmd.Context(), espw.GenomeRecord{Key: key, ReadRun: callReads})
	for _, f := range failures {
		logging.Named("call").Warn(f.Reason)
	}

	if res.Subject != "" {
		fmt.Printf("%s\t%s\n", res.Classification, res.Subject)
	} else {
		fmt.Println(res.Classification)
	}
	return nil
}
