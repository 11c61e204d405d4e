package cmd

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/ncezid-biome/espwAlleleCaller/config"
	"github.com/ncezid-biome/espwAlleleCaller/internal/depcheck"
	"github.com/ncezid-biome/espwAlleleCaller/internal/logging"
	"github.com/ncezid-biome/espwAlleleCaller/internal/scheme"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the external tools, the allele scheme and the thresholds",
	Long: `Verify the external tools, the allele scheme and the thresholds
without classifying anything. Reports every problem it finds rather
than stopping at the first.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runCheck(); err != nil {
			log.Fatalf("%v", err)
		}
	},
}

func init() {
	RootCmd.AddCommand(checkCmd)
}

func runCheck() error {
	c := config.NewConfig()
	logging.Init()
	if err := logging.SetLevel(c.LogLevel); err != nil {
		return err
	}

	tools, err := config.LoadTools()
	if err != nil {
		return err
	}

	ok := true
	for _, s := range depcheck.Lookup([]depcheck.Tool{
		{Name: "blastn", Path: tools.BlastN},
		{Name: "makeblastdb", Path: tools.MakeBlastDB},
		{Name: "assembler", Path: tools.Assembler},
	}) {
		if s.Err != nil {
			ok = false
			fmt.Printf("%-12s MISSING (%s)\n", s.Name, s.Path)
			continue
		}
		fmt.Printf("%-12s %s\n", s.Name, s.Resolved)
	}

	if c.Scheme.Path == "" {
		ok = false
		fmt.Println("scheme       not configured: pass --scheme or set scheme.path")
	} else {
		overrides, schemeErr := c.RegionOverrides()
		if schemeErr == nil {
			_, schemeErr = scheme.Load(c.Scheme.Path, overrides)
		}
		if schemeErr != nil {
			ok = false
			fmt.Printf("scheme       %v\n", schemeErr)
		} else {
			fmt.Printf("scheme       %s\n", c.Scheme.Path)
		}
	}

	if err := c.Policy().Validate(); err != nil {
		ok = false
		fmt.Printf("thresholds   %v\n", err)
	} else {
		fmt.Printf("thresholds   %+v\n", c.Policy())
	}

	if !ok {
		return errors.New("environment is not ready")
	}
	return nil
}
