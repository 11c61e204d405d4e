package cmd

import (
	"fmt"
	"log"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// https://pmarsceill.github.io/just-the-docs/docs/navigation-structure/
const rootDoc = `---
layout: default
title: %s
nav_order: %d
has_children: true
permalink: /
---
`

const childDoc = `---
layout: default
title: %s
parent: %s
nav_order: %d
---
`

// docMeta is for describing the position/info for a command doc page
type docMeta struct {
	title    string
	navOrder int
	parent   string
}

// map from the base Markdown file name to its build meta
var docMetaMap = map[string]docMeta{
	"espwAlleleCaller":       {"espwAlleleCaller", 0, ""},
	"espwAlleleCaller_call":  {"call", 0, "espwAlleleCaller"},
	"espwAlleleCaller_batch": {"batch", 1, "espwAlleleCaller"},
	"espwAlleleCaller_check": {"check", 2, "espwAlleleCaller"},
}

// docsCmd writes the command tree out as Markdown for the docs site.
var docsCmd = &cobra.Command{
	Use:    "docs",
	Short:  "Generate Markdown documentation for the command tree",
	Hidden: true,
	Run: func(cmd *cobra.Command, args []string) {
		if err := doc.GenMarkdownTreeCustom(RootCmd, "./docs", docPrepender, docLink); err != nil {
			log.Fatalf("%v", err)
		}
	},
}

func init() {
	RootCmd.AddCommand(docsCmd)
}

// docPrepender adds YAML headings that are required by the just-the-docs theme
// https://github.com/spf13/cobra/blob/master/doc/md_docs.md
func docPrepender(filename string) string {
	name := filepath.Base(filename)
	base := strings.TrimSuffix(name, path.Ext(name))
	m, ok := docMetaMap[base]
	if !ok {
		return ""
	}

	if m.parent == "" {
		return fmt.Sprintf(rootDoc, m.title, m.navOrder)
	}
	return fmt.Sprintf(childDoc, m.title, m.parent, m.navOrder)
}

// docLink returns the URL to a documentation page
func docLink(filename string) string {
	name := filepath.Base(filename)
	base := strings.TrimSuffix(name, path.Ext(name))

	if base == "espwAlleleCaller" {
		return "/"
	}
	return base
}
