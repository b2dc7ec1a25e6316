package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAnalyzeBatch_AttachWithCollisionSuffix(t *testing.T) {
	home := isolateHome(t)

	// Prepare two CSV files with the same basename in different directories
	d1 := filepath.Join(home, "d1")
	d2 := filepath.Join(home, "d2")
	if err := os.MkdirAll(d1, 0o755); err != nil {
		t.Fatalf("mkdir d1: %v", err)
	}
	if err := os.MkdirAll(d2, 0o755); err != nil {
		t.Fatalf("mkdir d2: %v", err)
	}
	writeBlobs(t, d1, "metrics.csv")
	writeBlobs(t, d2, "metrics.csv")

	runCLI(t, "init", "batchp", "-d", "batch project")
	runCLI(t, "analyze-batch", filepath.Join(home, "d*", "metrics.csv"), "-p", "batchp", "--quiet")

	projDir, err := resolveProjectDirByName("batchp")
	if err != nil {
		t.Fatalf("resolve project: %v", err)
	}
	dir := filepath.Join(projDir, summariesDirName)
	b1 := filepath.Join(dir, "metrics.summary.md")
	b2 := filepath.Join(dir, "metrics__2.summary.md")
	for _, p := range []string{b1, b2} {
		body, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("missing summary %s: %v", p, err)
		}
		if !strings.Contains(string(body), "[DATASET SUMMARY]") {
			t.Fatalf("summary %s lacks dataset section", p)
		}
	}
}

func TestAnalyzeBatch_ProgressAndNoMatch(t *testing.T) {
	home := isolateHome(t)
	writeBlobs(t, home, "a.csv")
	writeBlobs(t, home, "b.csv")

	out := runCLI(t, "analyze-batch", filepath.Join(home, "*.csv"), filepath.Join(home, "a.csv"))
	if !strings.Contains(out, "[1/2] Processing a.csv") || !strings.Contains(out, "[2/2] Processing b.csv") {
		t.Fatalf("expected de-duplicated progress lines, got: %s", out)
	}
	if _, err := execCmd(t, "analyze-batch", filepath.Join(home, "*.tsv")); err == nil {
		t.Fatalf("expected error when nothing matches")
	}
}

func TestExpandInputsSortsAndDeduplicates(t *testing.T) {
	home := t.TempDir()
	for _, n := range []string{"b.csv", "a.csv"} {
		if err := os.WriteFile(filepath.Join(home, n), []byte("x\n1\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", n, err)
		}
	}
	got := expandInputs([]string{filepath.Join(home, "*.csv"), filepath.Join(home, "a.csv"), filepath.Join(home, "missing.csv")})
	want := []string{filepath.Join(home, "a.csv"), filepath.Join(home, "b.csv")}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expandInputs = %v, want %v", got, want)
	}
}
