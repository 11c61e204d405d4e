package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWorkspaceLifecycle(t *testing.T) {
	base := t.TempDir()

	w, err := New(base, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(w.Root()), "espw_") {
		t.Errorf("root %q lacks the espw_ prefix", w.Root())
	}

	dir, err := w.RecordDir("SRR123456")
	if err != nil {
		t.Fatalf("RecordDir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "hits.tsv"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	// same key returns the same dir
	again, err := w.RecordDir("SRR123456")
	if err != nil || again != dir {
		t.Errorf("RecordDir again = %q, %v, want %q", again, err, dir)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(w.Root()); !os.IsNotExist(err) {
		t.Errorf("root survived Close: %v", err)
	}
}

func TestWorkspaceKeep(t *testing.T) {
	w, err := New(t.TempDir(), true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := w.RecordDir("g1"); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(w.Root()); err != nil {
		t.Errorf("kept root is gone: %v", err)
	}
}

func TestTwoRunsNeverCollide(t *testing.T) {
	base := t.TempDir()
	a, err := New(base, false)
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(base, false)
	if err != nil {
		t.Fatal(err)
	}
	if a.Root() == b.Root() {
		t.Errorf("two runs share the root %q", a.Root())
	}
}

func TestRecordDirKeysNeverCollide(t *testing.T) {
	w, err := New(t.TempDir(), false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	// "sample 1" and "sample_1" sanitize to the same name but must
	// not share a directory: batch workers stage genome.fna, blast
	// databases and reads under these paths concurrently.
	a, err := w.RecordDir("sample 1")
	if err != nil {
		t.Fatalf("RecordDir: %v", err)
	}
	b, err := w.RecordDir("sample_1")
	if err != nil {
		t.Fatalf("RecordDir: %v", err)
	}
	c, err := w.RecordDir("sample/1")
	if err != nil {
		t.Fatalf("RecordDir: %v", err)
	}
	if a == b || a == c || b == c {
		t.Fatalf("colliding keys share a directory: %q %q %q", a, b, c)
	}

	// one record's staged genome survives the other's staging
	if err := os.WriteFile(filepath.Join(a, "genome.fna"), []byte(">rec1\nAAAA\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(b, "genome.fna"), []byte(">rec2\nCCCC\n"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(filepath.Join(a, "genome.fna"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != ">rec1\nAAAA\n" {
		t.Errorf("first record's genome was replaced: %q", got)
	}

	// each key keeps mapping to its own directory
	again, err := w.RecordDir("sample 1")
	if err != nil || again != a {
		t.Errorf("RecordDir(sample 1) again = %q, %v, want %q", again, err, a)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"SRR123", "SRR123"},
		{"a/b\\c", "a_b_c"},
		{"..", "record"},
		{"", "record"},
		{"GCA_0001.1", "GCA_0001.1"},
	}
	for _, tt := range tests {
		if got := sanitize(tt.in); got != tt.want {
			t.Errorf("sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
