// Package depcheck verifies the runtime environment before any
// records are scheduled: the external tools must resolve on PATH and
// the policy must be sane. Failing fast here beats failing once per
// record later.
package depcheck

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/ncezid-biome/espwAlleleCaller/internal/espw"
)

// Tool names one external executable requirement.
type Tool struct {
	Name string // role reported in errors, e.g. "blastn"
	Path string // executable name or absolute path to resolve
}

// ToolStatus is the lookup outcome for one tool.
type ToolStatus struct {
	Tool
	Resolved string
	Err      error
}

// Lookup resolves every tool on PATH and reports each outcome.
func Lookup(tools []Tool) []ToolStatus {
	statuses := make([]ToolStatus, 0, len(tools))
	for _, t := range tools {
		s := ToolStatus{Tool: t}
		s.Resolved, s.Err = exec.LookPath(t.Path)
		statuses = append(statuses, s)
	}
	return statuses
}

// Binaries returns a ConfigurationError naming every tool that did
// not resolve, or nil when all are present.
func Binaries(tools []Tool) error {
	var missing []string
	for _, s := range Lookup(tools) {
		if s.Err != nil {
			missing = append(missing, fmt.Sprintf("%s (%s)", s.Name, s.Path))
		}
	}
	if len(missing) > 0 {
		return &espw.ConfigurationError{
			Reason: fmt.Sprintf("missing external tools: %s", strings.Join(missing, ", ")),
		}
	}
	return nil
}
