// Package workspace manages the per-run scratch directory holding
// blast databases, alignment tables and assembly output. Every run
// gets its own uuid-suffixed root so concurrent runs in one working
// directory never collide, and per-record subdirectories keep the
// batch workers apart.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ncezid-biome/espwAlleleCaller/internal/logging"
)

// Workspace is a run-scoped scratch directory. Close removes it
// unless the workspace was created with keep.
type Workspace struct {
	root string
	keep bool
	log  logging.Logger

	mu    sync.Mutex
	dirs  map[string]string // record key -> created directory
	names map[string]bool   // directory names already taken
}

// New creates the scratch root under base, or under the system temp
// directory when base is empty.
func New(base string, keep bool) (*Workspace, error) {
	if base == "" {
		base = os.TempDir()
	}
	root := filepath.Join(base, "espw_"+uuid.New().String())
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}
	w := &Workspace{
		root:  root,
		keep:  keep,
		log:   logging.Named("workspace"),
		dirs:  map[string]string{},
		names: map[string]bool{},
	}
	w.log.Debug("created", logging.String("root", root))
	return w, nil
}

// Root returns the scratch root path.
func (w *Workspace) Root() string { return w.root }

// RecordDir creates (if needed) and returns the subdirectory for one
// record key. The same key always maps to the same directory, and
// distinct keys never share one: when sanitizing collapses two keys
// to the same name, the later key gets a numbered suffix.
func (w *Workspace) RecordDir(key string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if dir, ok := w.dirs[key]; ok {
		return dir, nil
	}

	base := sanitize(key)
	name := base
	for n := 2; w.names[name]; n++ {
		name = fmt.Sprintf("%s_%d", base, n)
	}
	dir := filepath.Join(w.root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("record dir for %s: %w", key, err)
	}
	w.dirs[key] = dir
	w.names[name] = true
	return dir, nil
}

// Close removes the scratch root. When the workspace keeps its files
// it only logs where they are.
func (w *Workspace) Close() error {
	if w.keep {
		w.log.Info("keeping intermediate files", logging.String("root", w.root))
		return nil
	}
	return os.RemoveAll(w.root)
}

// sanitize makes a record key safe as a directory name.
func sanitize(key string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, key)
	if mapped == "" || mapped == "." || mapped == ".." {
		return "record"
	}
	return mapped
}
