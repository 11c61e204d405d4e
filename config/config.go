// Package config is for app wide settings that are unmarshalled
// from Viper (see: /cmd). Run settings come from espw.yaml, bound
// flags and ESPW_* variables; tool locations come only from the
// environment, the machine-setup half of configuration.
package config

import (
	"log"
	"reflect"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/ncezid-biome/espwAlleleCaller/internal/espw"
)

// ThresholdConfig are the call-decision thresholds.
type ThresholdConfig struct {
	// minimum percent identity for an alignment hit to count
	MinIdentity float64 `mapstructure:"min-identity"`

	// minimum alignment length for a hit to count
	MinAlignLength int `mapstructure:"min-align-length"`

	// bases beyond the distinguishing region a clean span must cover
	EdgeMargin int `mapstructure:"edge-margin"`

	// gap bases tolerated in a clean-spanning hit
	MaxRegionGaps int `mapstructure:"max-region-gaps"`

	// contigs shorter than this are not assembly evidence
	MinContigLength int `mapstructure:"min-contig-length"`
}

// SchemeConfig locates the allele scheme.
type SchemeConfig struct {
	// path to the scheme YAML
	Path string `mapstructure:"path"`

	// distinguishing-region overrides keyed by allele name,
	// values written "start-end"
	Regions map[string]espw.Span `mapstructure:"regions"`
}

// FetchConfig tunes the sequence-archive downloads. Endpoint
// locations live in Tools; these are per-run knobs.
type FetchConfig struct {
	// per-request timeout
	Timeout time.Duration `mapstructure:"timeout"`

	// retries per request before giving up
	MaxRetries uint64 `mapstructure:"max-retries"`
}

// Config is the root-level settings struct and is a mix of settings
// available in espw.yaml and those available from the command line
type Config struct {
	// worker count for batch mode, also passed to the tools
	Threads int `mapstructure:"threads"`

	// keep the scratch workspace after the run
	KeepFiles bool `mapstructure:"keep-files"`

	// debug, info, warn or error
	LogLevel string `mapstructure:"log-level"`

	// parent of the scratch workspace, system temp when empty
	WorkDir string `mapstructure:"work-dir"`

	// decision thresholds
	Thresholds ThresholdConfig `mapstructure:"thresholds"`

	// allele scheme location and overrides
	Scheme SchemeConfig `mapstructure:"scheme"`

	// download tuning
	Fetch FetchConfig `mapstructure:"fetch"`
}

// SetDefaults registers the defaults with viper; the config file,
// environment and bound flags override them.
func SetDefaults() {
	p := espw.DefaultPolicy()
	viper.SetDefault("threads", 1)
	viper.SetDefault("log-level", "info")
	viper.SetDefault("thresholds.min-identity", p.MinIdentity)
	viper.SetDefault("thresholds.min-align-length", p.MinAlignLength)
	viper.SetDefault("thresholds.edge-margin", p.EdgeMargin)
	viper.SetDefault("thresholds.max-region-gaps", p.MaxRegionGaps)
	viper.SetDefault("thresholds.min-contig-length", p.MinContigLength)
	viper.SetDefault("fetch.timeout", 15*time.Minute)
	viper.SetDefault("fetch.max-retries", 4)
}

// NewConfig returns a new Config struct populated by Viper settings
// (either from the local espw.yaml) and/or command line arguments
func NewConfig() Config {
	var c Config

	err := viper.Unmarshal(&c, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		StringToSpanHookFunc(),
	)))
	if err != nil {
		log.Fatalf("unable to decode into struct, %v", err)
	}

	return c
}

// StringToSpanHookFunc decodes "start-end" strings into coordinate
// spans during unmarshalling.
func StringToSpanHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(espw.Span{}) {
			return data, nil
		}
		return espw.ParseSpan(data.(string))
	}
}

// Policy converts the configured thresholds into the core policy.
func (c Config) Policy() espw.Policy {
	return espw.Policy{
		MinIdentity:     c.Thresholds.MinIdentity,
		MinAlignLength:  c.Thresholds.MinAlignLength,
		EdgeMargin:      c.Thresholds.EdgeMargin,
		MaxRegionGaps:   c.Thresholds.MaxRegionGaps,
		MinContigLength: c.Thresholds.MinContigLength,
	}
}

// RegionOverrides converts the configured region strings into the
// typed map the scheme loader takes.
func (c Config) RegionOverrides() (map[espw.Allele]espw.Span, error) {
	if len(c.Scheme.Regions) == 0 {
		return nil, nil
	}
	out := make(map[espw.Allele]espw.Span, len(c.Scheme.Regions))
	for name, span := range c.Scheme.Regions {
		allele, err := espw.ParseAllele(name)
		if err != nil {
			return nil, err
		}
		out[allele] = span
	}
	return out, nil
}

// Tools locates the external executables and can relocate the
// archive endpoints. These come from the environment only, so a
// container image sets them once and run settings never mention
// them.
type Tools struct {
	BlastN        string `envconfig:"ESPW_BLASTN" default:"blastn"`
	MakeBlastDB   string `envconfig:"ESPW_MAKEBLASTDB" default:"makeblastdb"`
	Assembler     string `envconfig:"ESPW_ASSEMBLER" default:"ariba"`
	GenomeURL     string `envconfig:"ESPW_ENA_GENOME_URL"`
	FileReportURL string `envconfig:"ESPW_ENA_FILEREPORT_URL"`
}

// LoadTools reads the ESPW_* tool locations.
func LoadTools() (Tools, error) {
	var t Tools
	if err := envconfig.Process("", &t); err != nil {
		return Tools{}, err
	}
	return t, nil
}
