// Package scheme loads the allele reference scheme: a YAML descriptor
// naming the three espW references and their distinguishing regions,
// next to the FASTA that carries the sequences.
//
// A scheme file looks like:
//
//	gene: espW
//	fasta: espW_alleles.fna
//	references:
//	  - id: espW_del
//	    allele: deletion
//	    region: 118-126
//	  - id: espW
//	    allele: full-length
//	    region: 118-127
//	  - id: espW_ins
//	    allele: insertion
//	    region: 118-128
//
// The fasta path is resolved relative to the scheme file.
package scheme

import (
	"fmt"
	"os"
	"path/filepath"

	yaml "gopkg.in/yaml.v2"

	"github.com/ncezid-biome/espwAlleleCaller/internal/espw"
	"github.com/ncezid-biome/espwAlleleCaller/internal/fasta"
)

// File is the YAML layout of a scheme descriptor.
type File struct {
	Gene       string      `yaml:"gene"`
	Fasta      string      `yaml:"fasta"`
	References []Reference `yaml:"references"`
}

// Reference names one allele sequence in the scheme FASTA.
type Reference struct {
	ID     string `yaml:"id"`
	Allele string `yaml:"allele"`
	Region string `yaml:"region"`
}

// Load reads a scheme descriptor and its FASTA into a validated query
// set. Region overrides, when non-nil, replace the file's coordinates
// for the alleles they name. All problems are configuration errors:
// a broken scheme fails the whole run.
func Load(path string, overrides map[espw.Allele]espw.Span) (espw.QuerySet, error) {
	f, err := os.Open(path)
	if err != nil {
		return espw.QuerySet{}, &espw.ConfigurationError{Reason: fmt.Sprintf("opening scheme: %v", err)}
	}
	defer f.Close()

	var file File
	if err := yaml.NewDecoder(f).Decode(&file); err != nil {
		return espw.QuerySet{}, &espw.ConfigurationError{Reason: fmt.Sprintf("scheme %s: %v", path, err)}
	}
	if file.Fasta == "" {
		return espw.QuerySet{}, &espw.ConfigurationError{Reason: fmt.Sprintf("scheme %s names no fasta", path)}
	}

	fastaPath := file.Fasta
	if !filepath.IsAbs(fastaPath) {
		fastaPath = filepath.Join(filepath.Dir(path), fastaPath)
	}
	recs, err := fasta.Read(fastaPath)
	if err != nil {
		return espw.QuerySet{}, &espw.ConfigurationError{Reason: fmt.Sprintf("scheme fasta: %v", err)}
	}
	byID := make(map[string]string, len(recs))
	for _, rec := range recs {
		byID[rec.ID] = rec.Seq
	}

	queries := make([]espw.AlleleQuery, 0, len(file.References))
	for _, ref := range file.References {
		allele, err := espw.ParseAllele(ref.Allele)
		if err != nil {
			return espw.QuerySet{}, &espw.ConfigurationError{Reason: fmt.Sprintf("scheme reference %q: %v", ref.ID, err)}
		}
		region, err := espw.ParseSpan(ref.Region)
		if err != nil {
			return espw.QuerySet{}, &espw.ConfigurationError{Reason: fmt.Sprintf("scheme reference %q: %v", ref.ID, err)}
		}
		if override, ok := overrides[allele]; ok {
			region = override
		}
		seq, ok := byID[ref.ID]
		if !ok {
			return espw.QuerySet{}, &espw.ConfigurationError{Reason: fmt.Sprintf("scheme reference %q is not in %s", ref.ID, fastaPath)}
		}
		queries = append(queries, espw.AlleleQuery{
			ID:     ref.ID,
			Allele: allele,
			Seq:    seq,
			Region: region,
		})
	}

	return espw.NewQuerySet(queries)
}
