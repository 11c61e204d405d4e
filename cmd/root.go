// Package cmd is for command line interactions with the espwAlleleCaller application
package cmd

import (
	"errors"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ncezid-biome/espwAlleleCaller/config"
	"github.com/ncezid-biome/espwAlleleCaller/internal/asm"
	"github.com/ncezid-biome/espwAlleleCaller/internal/blast"
	"github.com/ncezid-biome/espwAlleleCaller/internal/espw"
	"github.com/ncezid-biome/espwAlleleCaller/internal/logging"
	"github.com/ncezid-biome/espwAlleleCaller/internal/scheme"
)

var cfgFile string

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use: "espwAlleleCaller",
	Short: `Determine the allele of espW from genomic sequence data.
Alignment against the three reference alleles decides most genomes;
targeted read assembly resolves the rest`,
	Version: "1.0.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./espw.yaml)")
	RootCmd.PersistentFlags().IntP("threads", "n", 1, "the number of threads to use for parallel processes")
	RootCmd.PersistentFlags().BoolP("keep-files", "s", false, "save intermediate files generated by this program")
	RootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn or error")
	RootCmd.PersistentFlags().String("scheme", "", "path to the allele scheme YAML")
	RootCmd.PersistentFlags().String("work-dir", "", "parent directory for the scratch workspace (default system temp)")

	viper.BindPFlag("threads", RootCmd.PersistentFlags().Lookup("threads"))
	viper.BindPFlag("keep-files", RootCmd.PersistentFlags().Lookup("keep-files"))
	viper.BindPFlag("log-level", RootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("scheme.path", RootCmd.PersistentFlags().Lookup("scheme"))
	viper.BindPFlag("work-dir", RootCmd.PersistentFlags().Lookup("work-dir"))
}

// initConfig reads in the config file and ESPW_* environment
// variables if set.
func initConfig() {
	config.SetDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("espw")
	}

	viper.SetEnvPrefix("espw")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatalf("reading config: %v", err)
		}
	}
}

// setup builds what every work command needs: the decoded settings,
// logging at the configured level, the tool locations and the loaded
// allele scheme.
func setup() (config.Config, config.Tools, espw.QuerySet) {
	c := config.NewConfig()
	logging.Init()
	if err := logging.SetLevel(c.LogLevel); err != nil {
		log.Fatalf("%v", err)
	}

	tools, err := config.LoadTools()
	if err != nil {
		log.Fatalf("reading tool locations: %v", err)
	}

	if c.Scheme.Path == "" {
		log.Fatalf("no allele scheme: pass --scheme or set scheme.path")
	}
	overrides, err := c.RegionOverrides()
	if err != nil {
		log.Fatalf("%v", err)
	}
	set, err := scheme.Load(c.Scheme.Path, overrides)
	if err != nil {
		log.Fatalf("%v", err)
	}

	return c, tools, set
}

// buildRunners constructs the two tool wrappers from the settings.
func buildRunners(c config.Config, tools config.Tools) (*blast.Runner, *asm.Runner) {
	aligner := blast.NewRunner(blast.Options{
		BlastN:      tools.BlastN,
		MakeBlastDB: tools.MakeBlastDB,
		Identity:    c.Thresholds.MinIdentity,
		Threads:     c.Threads,
	})
	assembler := asm.NewRunner(asm.Options{
		Exe:     tools.Assembler,
		Threads: c.Threads,
	})
	return aligner, assembler
}
